package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/cohort/internal/domain/types"
)

// RunDependencies defines the interface for triggering matching runs.
type RunDependencies interface {
	RunMatching(ctx context.Context, now time.Time) (*types.RunReport, error)
}

// RunsHandler handles run requests.
type RunsHandler struct {
	deps RunDependencies
	now  func() time.Time
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunDependencies, now func() time.Time) *RunsHandler {
	return &RunsHandler{deps: deps, now: now}
}

// HandlePostRun handles POST /runs. The run is detached from the request
// context so a client disconnect does not abort it halfway through persistence.
func (h *RunsHandler) HandlePostRun(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_run"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	report, err := h.deps.RunMatching(context.WithoutCancel(r.Context()), h.now())
	switch {
	case errors.Is(err, types.ErrRunInProgress):
		writeError(w, http.StatusConflict, "run_in_progress", WrapKind(op, ErrConflict, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, report)
	}
}
