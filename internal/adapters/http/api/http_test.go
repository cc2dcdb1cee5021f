package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/okian/kinetic/internal/adapters/http/api"
	"github.com/okian/kinetic/internal/adapters/mq/queue"
	"github.com/okian/kinetic/internal/adapters/skeletonfile"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/domain/session"
	"github.com/okian/kinetic/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDependencies struct {
	configs   map[string]gesture.Config
	state     session.State
	replayErr error
	cursor    int
	frames    int
	saveErr   error
	saved     []types.RecordingRequest
	match     types.MatchStatus
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{configs: map[string]gesture.Config{}}
}

func (m *mockDependencies) Gestures(context.Context) []gesture.Config {
	out := make([]gesture.Config, 0, len(m.configs))
	for _, c := range m.configs {
		out = append(out, c)
	}
	return out
}

func (m *mockDependencies) AddGesture(_ context.Context, cfg gesture.Config) (gesture.Config, error) {
	if err := cfg.Validate(); err != nil {
		return gesture.Config{}, err
	}
	cfg.ID = uuid.New()
	m.configs[cfg.Name] = cfg
	return cfg, nil
}

func (m *mockDependencies) RemoveGesture(_ context.Context, name string) (bool, error) {
	if _, ok := m.configs[name]; !ok {
		return false, nil
	}
	delete(m.configs, name)
	return true, nil
}

func (m *mockDependencies) Session(context.Context) types.SessionStatus {
	return types.SessionStatus{State: m.state.String(), BufferCap: 500, ReplayPos: m.cursor, ReplayTotal: m.frames}
}

func (m *mockDependencies) LastMatch(context.Context) types.MatchStatus { return m.match }

func (m *mockDependencies) transition(to session.State) error {
	if (m.state == session.Idle) == (to == session.Idle) {
		return fmt.Errorf("%w: %s -> %s", session.ErrInvalidTransition, m.state, to)
	}
	m.state = to
	return nil
}

func (m *mockDependencies) StartCapture(context.Context) error     { return m.transition(session.Capturing) }
func (m *mockDependencies) StartRecognizing(context.Context) error { return m.transition(session.Recognizing) }
func (m *mockDependencies) StopSession(context.Context) error      { return m.transition(session.Idle) }

func (m *mockDependencies) StartReplay(_ context.Context, _ string) error {
	if m.replayErr != nil {
		return m.replayErr
	}
	if err := m.transition(session.Replaying); err != nil {
		return err
	}
	m.cursor, m.frames = 0, 10
	return nil
}

func (m *mockDependencies) SeekReplay(_ context.Context, index int) error {
	if m.state != session.Replaying {
		return session.ErrNotReplaying
	}
	if index < 0 || index >= m.frames {
		return fmt.Errorf("%w: %d of %d frames", session.ErrCursor, index, m.frames)
	}
	m.cursor = index
	return nil
}

func (m *mockDependencies) SaveRecording(_ context.Context, req types.RecordingRequest) (types.RecordingAck, error) {
	if m.saveErr != nil {
		return types.RecordingAck{}, m.saveErr
	}
	m.saved = append(m.saved, req)
	return types.RecordingAck{JobID: "job-1", Frames: 10, Status: "accepted"}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newMockDependencies()
		stats := &mockStatsProvider{stats: map[string]interface{}{"session": "idle"}}
		mux := http.NewServeMux()
		api.NewServer(deps, stats).Register(context.Background(), mux)

		Convey("Health serves the metrics exposition", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Stats returns the provider's map", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["session"], ShouldEqual, "idle")
		})

		Convey("Unknown routes are 404", func() {
			So(do(mux, http.MethodGet, "/events", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a gesture is added", func() {
			w := do(mux, http.MethodPost, "/gestures", `{"name":"wave","min_length":20,"max_length":60}`)
			So(w.Code, ShouldEqual, http.StatusCreated)

			Convey("Then it is listed", func() {
				w := do(mux, http.MethodGet, "/gestures", "")
				var cfgs []gesture.Config
				So(json.Unmarshal(w.Body.Bytes(), &cfgs), ShouldBeNil)
				So(cfgs, ShouldHaveLength, 1)
				So(cfgs[0].Name, ShouldEqual, "wave")
				So(cfgs[0].ID, ShouldNotEqual, uuid.Nil)
			})

			Convey("Then it can be deleted once", func() {
				So(do(mux, http.MethodDelete, "/gestures/wave", "").Code, ShouldEqual, http.StatusNoContent)
				w := do(mux, http.MethodDelete, "/gestures/wave", "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, "not found")
			})
		})

		Convey("Invalid gestures are rejected", func() {
			So(do(mux, http.MethodPost, "/gestures", `{"name":"wave","min_length":9,"max_length":1}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/gestures", `{"name":"wave","colour":"red"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/gestures", `not json`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Session actions drive the state machine", func() {
			w := do(mux, http.MethodPost, "/session/capture", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var st types.SessionStatus
			So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
			So(st.State, ShouldEqual, "capturing")

			So(do(mux, http.MethodPost, "/session/recognize", "").Code, ShouldEqual, http.StatusConflict)
			So(do(mux, http.MethodPost, "/session/stop", "").Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/session", "").Body.String(), ShouldContainSubstring, `"state":"idle"`)
		})

		Convey("Replay needs a path", func() {
			So(do(mux, http.MethodPost, "/session/replay", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/session/replay", `{"path":"a.xml"}`).Code, ShouldEqual, http.StatusOK)
		})

		Convey("Replay of a corrupt file is unprocessable", func() {
			deps.replayErr = fmt.Errorf("%w: truncated", skeletonfile.ErrParse)
			So(do(mux, http.MethodPost, "/session/replay", `{"path":"a.xml"}`).Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("Replay of a missing file is 404", func() {
			deps.replayErr = fmt.Errorf("%w: open gone.xml: %w", skeletonfile.ErrIO, fs.ErrNotExist)
			w := do(mux, http.MethodPost, "/session/replay", `{"path":"gone.xml"}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, "not_found")
		})

		Convey("Other replay i/o failures stay internal errors", func() {
			deps.replayErr = fmt.Errorf("%w: disk on fire", skeletonfile.ErrIO)
			So(do(mux, http.MethodPost, "/session/replay", `{"path":"a.xml"}`).Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("Seek scrubs a running replay", func() {
			So(do(mux, http.MethodPost, "/session/seek", `{"index":3}`).Code, ShouldEqual, http.StatusConflict)
			So(do(mux, http.MethodPost, "/session/replay", `{"path":"a.xml"}`).Code, ShouldEqual, http.StatusOK)

			w := do(mux, http.MethodPost, "/session/seek", `{"index":3}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var st types.SessionStatus
			So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
			So(st.ReplayPos, ShouldEqual, 3)

			So(do(mux, http.MethodPost, "/session/seek", `{"index":10}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/session/seek", `{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/session/seek", `{"index":"x"}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Unknown session actions are 404", func() {
			So(do(mux, http.MethodPost, "/session/pause", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Match returns the last result", func() {
			deps.match = types.MatchStatus{Label: "wave", Distance: 3.5, Matched: true}
			w := do(mux, http.MethodGet, "/match", "")
			var m types.MatchStatus
			So(json.Unmarshal(w.Body.Bytes(), &m), ShouldBeNil)
			So(m.Label, ShouldEqual, "wave")
			So(m.Matched, ShouldBeTrue)
		})

		Convey("Recordings are accepted asynchronously", func() {
			w := do(mux, http.MethodPost, "/recordings", `{"gesture":"wave","start":2,"end":40}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(deps.saved, ShouldHaveLength, 1)
			So(*deps.saved[0].End, ShouldEqual, 40)
		})

		Convey("Invalid recording requests are rejected before the service", func() {
			So(do(mux, http.MethodPost, "/recordings", `{"start":2,"end":4}`).Code, ShouldEqual, http.StatusBadRequest)
			So(deps.saved, ShouldBeEmpty)
		})

		Convey("A full persistence queue is reported as backpressure", func() {
			deps.saveErr = queue.ErrFull
			So(do(mux, http.MethodPost, "/recordings", `{"name":"take"}`).Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("An out of range window is a bad request", func() {
			deps.saveErr = fmt.Errorf("trim: %w", gesture.ErrRange)
			So(do(mux, http.MethodPost, "/recordings", `{"name":"take","start":0,"end":900}`).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
