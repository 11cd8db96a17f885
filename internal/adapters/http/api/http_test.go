package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/challengeboard/internal/adapters/http/api"
	"github.com/okian/challengeboard/internal/adapters/repository"
	service "github.com/okian/challengeboard/internal/app"
	"github.com/okian/challengeboard/internal/domain/measure"
	"github.com/okian/challengeboard/internal/domain/model"
	"github.com/okian/challengeboard/internal/domain/types"
	"github.com/okian/challengeboard/internal/domain/validation"
	"github.com/okian/challengeboard/internal/pipeline"
	"github.com/okian/challengeboard/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// Mock implementations for testing.
type mockDependencies struct {
	submitted []model.RawSubmission
	outcome   pipeline.Outcome
	submitErr error

	view     pipeline.View
	viewErr  error
	info     pipeline.Info
	resets   int
	boardN   int
	boardErr error
}

func (m *mockDependencies) Submit(_ context.Context, raw model.RawSubmission) (pipeline.Outcome, error) {
	m.submitted = append(m.submitted, raw)
	if m.submitErr != nil {
		return pipeline.Outcome{}, m.submitErr
	}
	return m.outcome, nil
}

func (m *mockDependencies) Snapshot(context.Context) (pipeline.View, error) {
	return m.view, m.viewErr
}

func (m *mockDependencies) Leaderboard(_ context.Context, n int) ([]types.Standing, error) {
	m.boardN = n
	if m.boardErr != nil {
		return nil, m.boardErr
	}
	rows := m.view.Leaderboard
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows, nil
}

func (m *mockDependencies) Session(context.Context) (pipeline.Info, error) {
	return m.info, m.viewErr
}

func (m *mockDependencies) Reset(context.Context) (pipeline.Info, error) {
	m.resets++
	return m.info, m.viewErr
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

type mockRenderer struct {
	err error
}

func (m *mockRenderer) Render(w io.Writer, bars []types.Bar) error {
	if m.err != nil {
		return m.err
	}
	_, err := fmt.Fprintf(w, "PNG:%d", len(bars))
	return err
}

func (m *mockRenderer) ContentType() string { return "image/png" }

func newMux(deps *mockDependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, opts...).
		Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func sampleView() pipeline.View {
	return pipeline.View{
		Entries: []model.Entry{{Seq: 0, Name: "Ann", Value: 30}, {Seq: 1, Name: "Bo", Value: 50}},
		Chart:   []types.Bar{{Label: "Ann", Value: 30}, {Label: "Bo", Value: 50}},
		Leaderboard: []types.Standing{
			{Rank: 1, Name: "Bo", Value: 50, DisplayValue: "50.0 lbs"},
			{Rank: 2, Name: "Ann", Value: 30, DisplayValue: "30.0 lbs"},
		},
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{view: sampleView()}
		mux := newMux(deps, api.WithChartRenderer(&mockRenderer{}))

		for _, path := range []string{"/healthz", "/stats", "/leaderboard", "/chart", "/chart.png", "/entries", "/session"} {
			Convey("GET "+path+" is served", func() {
				w := do(mux, http.MethodGet, path, "", "")
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		}

		Convey("Healthz exposes the kiosk metrics", func() {
			do(mux, http.MethodGet, "/stats", "", "")
			w := do(mux, http.MethodGet, "/healthz", "", "")
			So(w.Body.String(), ShouldContainSubstring, "kiosk_challenge_http_requests_total")
		})

		Convey("Wrong methods are not found", func() {
			So(do(mux, http.MethodGet, "/submissions", "", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/leaderboard", "", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/session/reset", "", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSubmissionsHandler(t *testing.T) {
	Convey("Given a submissions endpoint", t, func() {
		deps := &mockDependencies{outcome: pipeline.Outcome{Message: "Welcome Ann! You're the first participant! 🥳"}}
		mux := newMux(deps)

		Convey("When posting JSON with numbers as strings and as numbers", func() {
			w := do(mux, http.MethodPost, "/submissions", "application/json",
				`{"submission_id":"s1","name":"Ann","age":10,"measurement":"30"}`)

			Convey("Then the outcome is returned with 201", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(w.Body.String(), ShouldContainSubstring, "first participant")
				So(deps.submitted, ShouldHaveLength, 1)
				raw := deps.submitted[0]
				So(raw.SubmissionID, ShouldEqual, "s1")
				So(raw.Age.Text, ShouldEqual, "10")
				So(raw.Measurement.Text, ShouldEqual, "30")
				So(raw.Feet.Present, ShouldBeFalse)
			})
		})

		Convey("When posting the kiosk form", func() {
			form := url.Values{"name": {"Ann"}, "age": {"0"}, "feet": {"3"}, "inches": {"6"}}
			w := do(mux, http.MethodPost, "/submissions", "application/x-www-form-urlencoded", form.Encode())

			Convey("Then the fields are read from the form", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				raw := deps.submitted[0]
				So(raw.Age.Text, ShouldEqual, "0")
				So(raw.Feet.Text, ShouldEqual, "3")
				So(raw.Measurement.Present, ShouldBeFalse)
			})
		})

		Convey("When the idempotency key comes in a header", func() {
			req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(`{"name":"Ann"}`))
			req.Header.Set("Idempotency-Key", "hdr-1")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusCreated)
			So(deps.submitted[0].SubmissionID, ShouldEqual, "hdr-1")
		})

		Convey("When the body is malformed", func() {
			w := do(mux, http.MethodPost, "/submissions", "application/json", `{"name":`)

			Convey("Then it is a bad request and nothing is submitted", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
				So(deps.submitted, ShouldBeEmpty)
			})
		})

		Convey("When the core rejects the submission", func() {
			cases := []struct {
				err    error
				status int
				code   string
			}{
				{&validation.Error{Field: "measurement", Kind: validation.ErrMissingField, Msg: "please fill in all the fields: measurement is missing"},
					http.StatusUnprocessableEntity, "missing_field"},
				{&validation.Error{Field: "age", Kind: validation.ErrInvalidNumber, Msg: "age must be a whole number"},
					http.StatusUnprocessableEntity, "invalid_number"},
				{fmt.Errorf("submission s1: %w", service.ErrDuplicate), http.StatusConflict, "duplicate"},
				{service.ErrBackpressure, http.StatusTooManyRequests, "backpressure"},
				{fmt.Errorf("submit: %w", repository.ErrCapacityExceeded), http.StatusInsufficientStorage, "capacity_exceeded"},
				{service.ErrStopped, http.StatusServiceUnavailable, "unavailable"},
				{fmt.Errorf("waiting: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
				{fmt.Errorf("waiting: %w", context.Canceled), 499, "client_closed_request"},
				{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
			}

			for _, c := range cases {
				deps.submitErr = c.err
				w := do(mux, http.MethodPost, "/submissions", "application/json", `{"name":"Ann"}`)
				So(w.Code, ShouldEqual, c.status)
				So(decodeError(w)["code"], ShouldEqual, c.code)
			}
		})

		Convey("When validation fails the message is shown verbatim", func() {
			deps.submitErr = &validation.Error{Field: "name", Kind: validation.ErrMissingField,
				Msg: "please fill in all the fields: name is missing"}
			w := do(mux, http.MethodPost, "/submissions", "application/json", `{}`)

			body := decodeError(w)
			So(body["message"], ShouldEqual, "please fill in all the fields: name is missing")
			So(body["field"], ShouldEqual, "name")
		})
	})
}

func TestSubmissionsHandler_DoubleTap(t *testing.T) {
	Convey("Given the submissions endpoint backed by a running service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)

		Convey("When the same kiosk form is posted twice", func() {
			form := url.Values{"submission_id": {"form-1"}, "name": {"Ann"}, "age": {"10"}, "measurement": {"30"}}
			first := do(mux, http.MethodPost, "/submissions", "application/x-www-form-urlencoded", form.Encode())
			second := do(mux, http.MethodPost, "/submissions", "application/x-www-form-urlencoded", form.Encode())

			Convey("Then only the first tap is recorded", func() {
				So(first.Code, ShouldEqual, http.StatusCreated)
				So(second.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(second)["code"], ShouldEqual, "duplicate")

				view, err := svc.Snapshot(context.Background())
				So(err, ShouldBeNil)
				So(view.Entries, ShouldHaveLength, 1)
			})
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a leaderboard endpoint", t, func() {
		deps := &mockDependencies{view: sampleView()}
		mux := newMux(deps, api.WithDefaultLeaderboardLimit(3), api.WithMaxLeaderboardLimit(10))

		Convey("Without a limit it returns the default top-K", func() {
			w := do(mux, http.MethodGet, "/leaderboard", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.boardN, ShouldEqual, 3)

			var rows []types.Standing
			So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[0].Name, ShouldEqual, "Bo")
		})

		Convey("An explicit limit is honoured", func() {
			w := do(mux, http.MethodGet, "/leaderboard?limit=1", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.boardN, ShouldEqual, 1)
		})

		Convey("Invalid and oversized limits are rejected", func() {
			So(do(mux, http.MethodGet, "/leaderboard?limit=abc", "", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/leaderboard?limit=0", "", "").Code, ShouldEqual, http.StatusBadRequest)
			w := do(mux, http.MethodGet, "/leaderboard?limit=11", "", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("A stopped service is unavailable", func() {
			deps.boardErr = service.ErrNotStarted
			So(do(mux, http.MethodGet, "/leaderboard", "", "").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestChartHandler(t *testing.T) {
	Convey("Given chart endpoints", t, func() {
		deps := &mockDependencies{view: sampleView()}

		Convey("GET /chart returns bars in submission order", func() {
			w := do(newMux(deps), http.MethodGet, "/chart", "", "")
			var bars []types.Bar
			So(json.Unmarshal(w.Body.Bytes(), &bars), ShouldBeNil)
			So(bars[0].Label, ShouldEqual, "Ann")
			So(bars[1].Label, ShouldEqual, "Bo")
		})

		Convey("GET /chart.png renders through the renderer", func() {
			w := do(newMux(deps, api.WithChartRenderer(&mockRenderer{})), http.MethodGet, "/chart.png", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(w.Body.String(), ShouldEqual, "PNG:2")
		})

		Convey("GET /chart.png on an empty session has no content", func() {
			deps.view = pipeline.View{Chart: []types.Bar{}}
			w := do(newMux(deps, api.WithChartRenderer(&mockRenderer{})), http.MethodGet, "/chart.png", "", "")
			So(w.Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("A failing renderer is a server error", func() {
			w := do(newMux(deps, api.WithChartRenderer(&mockRenderer{err: errors.New("font")})), http.MethodGet, "/chart.png", "", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["code"], ShouldEqual, "render_failed")
		})

		Convey("Without a renderer the image route is not found", func() {
			So(do(newMux(deps), http.MethodGet, "/chart.png", "", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSessionHandler(t *testing.T) {
	Convey("Given session endpoints", t, func() {
		deps := &mockDependencies{
			view: sampleView(),
			info: pipeline.Info{ID: "sess-1", Kind: measure.KindScalar, Unit: "lbs", TopK: 3},
		}
		mux := newMux(deps)

		Convey("GET /entries returns the whole store", func() {
			w := do(mux, http.MethodGet, "/entries", "", "")
			var entries []model.Entry
			So(json.Unmarshal(w.Body.Bytes(), &entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
		})

		Convey("GET /session describes the session", func() {
			w := do(mux, http.MethodGet, "/session", "", "")
			var info pipeline.Info
			So(json.Unmarshal(w.Body.Bytes(), &info), ShouldBeNil)
			So(info.ID, ShouldEqual, "sess-1")
			So(info.Unit, ShouldEqual, "lbs")
		})

		Convey("POST /session/reset resets once", func() {
			w := do(mux, http.MethodPost, "/session/reset", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.resets, ShouldEqual, 1)
		})
	})
}

func TestStatsHandler(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		h := api.NewStatsHandler(&mockStatsProvider{stats: map[string]interface{}{"entries": 3, "kind": "scalar"}})
		w := httptest.NewRecorder()
		h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

		Convey("Then it returns the provider's stats", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["kind"], ShouldEqual, "scalar")
			So(stats["entries"], ShouldEqual, 3)
			So(stats, ShouldContainKey, "uptimeSeconds")
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")
		})
	})
}

func TestErrorHelpers(t *testing.T) {
	Convey("Op errors keep their kind and cause", t, func() {
		cause := errors.New("eof")
		err := api.WrapKind("api.test", api.ErrBadRequest, cause)
		So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.test: bad request: eof")

		So(api.NewKind("api.test", api.ErrLimitExceeded).Error(), ShouldEqual, "api.test: limit exceeded")
		So(api.Wrap("api.test", nil), ShouldBeNil)
		So(errors.Is(api.Wrap("api.test", cause), cause), ShouldBeTrue)
	})
}
