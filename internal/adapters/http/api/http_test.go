package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/cohort/internal/adapters/http/api"
	"github.com/okian/cohort/internal/domain/model"
	"github.com/okian/cohort/internal/domain/types"
)

type fakeDeps struct {
	mu        sync.Mutex
	runErr    error
	report    *types.RunReport
	groups    []model.GroupRecord
	groupsErr error
	runs      []time.Time
	weeks     []time.Time
	runCtxErr error
}

func (f *fakeDeps) RunMatching(ctx context.Context, now time.Time) (*types.RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, now)
	f.runCtxErr = ctx.Err()
	return f.report, f.runErr
}

func (f *fakeDeps) GroupsForWeek(_ context.Context, t time.Time) ([]model.GroupRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.weeks = append(f.weeks, t)
	return f.groups, f.groupsErr
}

type fakeStats struct{}

func (fakeStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"runs": 2, "running": false}
}

var fixedNow = time.Date(2026, 3, 12, 15, 4, 0, 0, time.UTC) // a Thursday

func newMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	srv := api.NewServer(deps, fakeStats{}, api.WithClock(func() time.Time { return fixedNow }))
	srv.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestRunsEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &fakeDeps{report: &types.RunReport{
			RunID:     "run-1",
			Outcome:   types.OutcomeFormed,
			Attempted: 1,
			Persisted: 1,
			Groups:    []types.GroupReport{{ID: "g1", MemberIDs: []string{"a", "b", "c"}, Score: 0.8, Persisted: true}},
		}}
		mux := newMux(deps)

		Convey("When a run is posted", func() {
			rec := do(mux, http.MethodPost, "/runs")

			Convey("Then the report is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				body := decode(rec)
				So(body["run_id"], ShouldEqual, "run-1")
				So(body["outcome"], ShouldEqual, "formed")
				So(body["persisted"], ShouldEqual, 1.0)
			})

			Convey("Then the service sees the server clock and a live context", func() {
				So(deps.runs, ShouldHaveLength, 1)
				So(deps.runs[0].Equal(fixedNow), ShouldBeTrue)
				So(deps.runCtxErr, ShouldBeNil)
			})
		})

		Convey("When another run holds the lock", func() {
			deps.report = nil
			deps.runErr = fmt.Errorf("service: %w", types.ErrRunInProgress)
			rec := do(mux, http.MethodPost, "/runs")

			Convey("Then the request conflicts", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(decode(rec)["code"], ShouldEqual, "run_in_progress")
			})
		})

		Convey("When the run fails", func() {
			deps.runErr = errors.New("database is gone")
			rec := do(mux, http.MethodPost, "/runs")

			Convey("Then an internal error is reported", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				body := decode(rec)
				So(body["code"], ShouldEqual, "internal_error")
				So(body["message"], ShouldContainSubstring, "database is gone")
			})
		})

		Convey("When runs is called with GET", func() {
			rec := do(mux, http.MethodGet, "/runs")

			Convey("Then it is not found and no run starts", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(deps.runs, ShouldBeEmpty)
			})
		})
	})
}

func TestGroupsEndpoint(t *testing.T) {
	Convey("Given an API server with stored groups", t, func() {
		week := model.WeekOf(fixedNow)
		deps := &fakeDeps{groups: []model.GroupRecord{{
			ID:             "g1",
			WeekOf:         week,
			Score:          0.7,
			MemberIDs:      []string{"a", "b", "c"},
			WelcomeMessage: "hello",
		}}}
		mux := newMux(deps)

		Convey("When no week is given", func() {
			rec := do(mux, http.MethodGet, "/groups")

			Convey("Then the current week is listed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["week_of"], ShouldEqual, "2026-03-09")
				So(body["groups"], ShouldHaveLength, 1)
				So(deps.weeks[0].Equal(week), ShouldBeTrue)
			})
		})

		Convey("When a mid-week day is given", func() {
			rec := do(mux, http.MethodGet, "/groups?week=2026-02-19")

			Convey("Then the Monday of that week is used", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["week_of"], ShouldEqual, "2026-02-16")
			})
		})

		Convey("When the week is malformed", func() {
			rec := do(mux, http.MethodGet, "/groups?week=last-week")

			Convey("Then the request is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(rec)["code"], ShouldEqual, "bad_request")
				So(deps.weeks, ShouldBeEmpty)
			})
		})

		Convey("When the week has no groups", func() {
			deps.groups = nil
			rec := do(mux, http.MethodGet, "/groups")

			Convey("Then an empty list is returned, not null", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"groups":[]`)
			})
		})

		Convey("When the store fails", func() {
			deps.groupsErr = errors.New("boom")
			rec := do(mux, http.MethodGet, "/groups")

			Convey("Then an internal error is reported", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestOperationalEndpoints(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("Then healthz reports ok", func() {
			rec := do(mux, http.MethodGet, "/healthz")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["status"], ShouldEqual, "ok")
		})

		Convey("Then stats returns the provider's map", func() {
			rec := do(mux, http.MethodGet, "/stats")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["runs"], ShouldEqual, 2.0)
		})

		Convey("Then metrics exposes the request counters after traffic", func() {
			do(mux, http.MethodGet, "/healthz")
			rec := do(mux, http.MethodGet, "/metrics")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.Contains(rec.Body.String(), "http_requests_total"), ShouldBeTrue)
		})
	})
}

func TestErrorKinds(t *testing.T) {
	Convey("Given an operation error", t, func() {
		cause := errors.New("disk full")
		err := api.WrapKind("api.test", api.ErrConflict, cause)

		Convey("Then it matches both the kind and the cause", func() {
			So(errors.Is(err, api.ErrConflict), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.test: conflict: disk full")
		})

		Convey("Then Wrap marks the error internal", func() {
			So(errors.Is(api.Wrap("api.test", cause), api.ErrInternal), ShouldBeTrue)
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by the metrics middleware", t, func() {
		h := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}, "test")

		Convey("Then the wrapped status reaches the client", func() {
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodPost, "/test", nil))
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})
	})
}
