package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/cohort/internal/domain/model"
)

// GroupDependencies defines the interface for reading stored groups.
type GroupDependencies interface {
	GroupsForWeek(ctx context.Context, t time.Time) ([]model.GroupRecord, error)
}

// GroupsHandler handles group listing requests.
type GroupsHandler struct {
	deps GroupDependencies
	now  func() time.Time
}

// NewGroupsHandler creates a new groups handler.
func NewGroupsHandler(deps GroupDependencies, now func() time.Time) *GroupsHandler {
	return &GroupsHandler{deps: deps, now: now}
}

type groupsResponse struct {
	WeekOf string              `json:"week_of"`
	Groups []model.GroupRecord `json:"groups"`
}

// HandleGetGroups handles GET /groups?week=YYYY-MM-DD. Without week it lists
// the current week. Any day of a week selects that whole week.
func (h *GroupsHandler) HandleGetGroups(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_groups"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	day := h.now()
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("week must be YYYY-MM-DD: %w", err)))
			return
		}
		day = parsed
	}
	week := model.WeekOf(day)

	groups, err := h.deps.GroupsForWeek(r.Context(), week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if groups == nil {
		groups = []model.GroupRecord{}
	}
	writeJSON(w, http.StatusOK, groupsResponse{WeekOf: week.Format(time.DateOnly), Groups: groups})
}
