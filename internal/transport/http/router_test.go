package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/dropfour/internal/domain"
	"github.com/iamasit07/dropfour/internal/service/game"
	"github.com/iamasit07/dropfour/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var fastTimings = game.Timings{
	AnimationDelay: 10 * time.Millisecond,
	DebounceWindow: 10 * time.Millisecond,
	MessageTimeout: 50 * time.Millisecond,
}

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSnapshotReader struct {
	snaps map[string]domain.Snapshot
}

func (f *fakeSnapshotReader) GetSnapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	snap, ok := f.snaps[sessionID]
	if !ok {
		return nil, errors.New("not cached")
	}
	return &snap, nil
}

type fakeHistory struct {
	games     []domain.GameRecord
	lastLimit int
	err       error
}

func (f *fakeHistory) RecentGames(ctx context.Context, limit int) ([]domain.GameRecord, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.games, nil
}

func (f *fakeHistory) GetGameByID(ctx context.Context, id int64) (*domain.GameRecord, error) {
	for i := range f.games {
		if f.games[i].ID == id {
			return &f.games[i], nil
		}
	}
	return nil, nil
}

func newTestRouter(t *testing.T, cfg RouterConfig) (*gin.Engine, *game.SessionManager) {
	t.Helper()
	sm := game.NewSessionManager(game.SessionManagerConfig{Timings: fastTimings})
	cfg.SessionManager = sm
	cfg.JWTSecret = testSecret
	cfg.TokenTTL = time.Hour
	return NewRouter(cfg), sm
}

func do(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router http.Handler) createSessionResponse {
	t.Helper()
	w := do(router, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp createSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) domain.Snapshot {
	t.Helper()
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, RouterConfig{})
	w := do(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}

func TestSessionHandler_Create(t *testing.T) {
	router, sm := newTestRouter(t, RouterConfig{})

	w := do(router, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp createSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, domain.PhaseAwaitingInput, resp.State.Phase)
	assert.Equal(t, domain.Player1, resp.State.CurrentPlayer)
	assert.Equal(t, 1, sm.Count())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, httputil.SessionCookieName, cookies[0].Name)
	assert.Equal(t, resp.Token, cookies[0].Value)
}

func TestSessionHandler_CreateRollsBackWithoutToken(t *testing.T) {
	sm := game.NewSessionManager(game.SessionManagerConfig{Timings: fastTimings})
	router := NewRouter(RouterConfig{SessionManager: sm, TokenTTL: time.Hour})

	w := do(router, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Zero(t, sm.Count())
	require.Empty(t, w.Result().Cookies())
}

func TestSessionHandler_Play(t *testing.T) {
	router, _ := newTestRouter(t, RouterConfig{})
	created := createSession(t, router)
	base := "/api/sessions/" + created.SessionID

	t.Run("requires the session token", func(t *testing.T) {
		w := do(router, http.MethodGet, base, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a token of another session", func(t *testing.T) {
		other := createSession(t, router)
		w := do(router, http.MethodGet, base, other.Token)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects a column that is not a number", func(t *testing.T) {
		w := do(router, http.MethodPost, base+"/columns/left", created.Token)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a column off the board", func(t *testing.T) {
		w := do(router, http.MethodPost, base+"/columns/7", created.Token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "invalid column")
	})

	t.Run("drops a piece", func(t *testing.T) {
		w := do(router, http.MethodPost, base+"/columns/3", created.Token)
		require.Equal(t, http.StatusAccepted, w.Code)

		require.Eventually(t, func() bool {
			snap := decodeSnapshot(t, do(router, http.MethodGet, base, created.Token))
			return snap.MoveCount == 1 && snap.Phase == domain.PhaseAwaitingInput
		}, 2*time.Second, 10*time.Millisecond)

		snap := decodeSnapshot(t, do(router, http.MethodGet, base, created.Token))
		assert.Equal(t, int(domain.Player1), snap.Board[domain.Rows-1][3])
		assert.Equal(t, domain.Player2, snap.CurrentPlayer)
	})

	t.Run("restart clears the board", func(t *testing.T) {
		w := do(router, http.MethodPost, base+"/restart", created.Token)
		require.Equal(t, http.StatusOK, w.Code)

		snap := decodeSnapshot(t, w)
		assert.Zero(t, snap.MoveCount)
		assert.Equal(t, domain.NewBoard().Ints(), snap.Board)
		assert.Equal(t, domain.Player1, snap.CurrentPlayer)
	})

	t.Run("close removes the session", func(t *testing.T) {
		w := do(router, http.MethodDelete, base, created.Token)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = do(router, http.MethodGet, base, created.Token)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestWatchHandler_GetSnapshot(t *testing.T) {
	t.Run("falls back to the live session", func(t *testing.T) {
		router, _ := newTestRouter(t, RouterConfig{})
		created := createSession(t, router)

		w := do(router, http.MethodGet, "/api/watch/"+created.SessionID, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, domain.PhaseAwaitingInput, decodeSnapshot(t, w).Phase)
	})

	t.Run("serves the cached snapshot", func(t *testing.T) {
		cached := domain.Snapshot{Phase: domain.PhaseResolved, MoveCount: 42}
		router, _ := newTestRouter(t, RouterConfig{
			Cache: &fakeSnapshotReader{snaps: map[string]domain.Snapshot{"gone": cached}},
		})

		w := do(router, http.MethodGet, "/api/watch/gone", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, 42, decodeSnapshot(t, w).MoveCount)
	})

	t.Run("live session wins over a stale cache entry", func(t *testing.T) {
		cache := &fakeSnapshotReader{snaps: map[string]domain.Snapshot{}}
		router, _ := newTestRouter(t, RouterConfig{Cache: cache})
		created := createSession(t, router)
		cache.snaps[created.SessionID] = domain.Snapshot{Phase: domain.PhaseResolved, MoveCount: 42}

		w := do(router, http.MethodGet, "/api/watch/"+created.SessionID, "")
		require.Equal(t, http.StatusOK, w.Code)
		snap := decodeSnapshot(t, w)
		require.Zero(t, snap.MoveCount)
		require.Equal(t, domain.PhaseAwaitingInput, snap.Phase)
	})

	t.Run("unknown session", func(t *testing.T) {
		router, _ := newTestRouter(t, RouterConfig{Cache: &fakeSnapshotReader{}})
		w := do(router, http.MethodGet, "/api/watch/nope", "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHistoryHandler(t *testing.T) {
	t.Run("unavailable without a database", func(t *testing.T) {
		router, _ := newTestRouter(t, RouterConfig{})
		w := do(router, http.MethodGet, "/api/history", "")
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	history := &fakeHistory{games: []domain.GameRecord{
		{ID: 1, SessionID: "a", Result: domain.ResultWin, Winner: domain.Player2, TotalMoves: 12},
		{ID: 2, SessionID: "b", Result: domain.ResultDraw, TotalMoves: 42},
	}}
	router, _ := newTestRouter(t, RouterConfig{History: history})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantLimit  int
	}{
		{name: "default limit", wantStatus: http.StatusOK, wantLimit: defaultHistoryLimit},
		{name: "explicit limit", query: "?limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "limit is capped", query: "?limit=5000", wantStatus: http.StatusOK, wantLimit: maxHistoryLimit},
		{name: "bad limit", query: "?limit=zero", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history.lastLimit = 0
			w := do(router, http.MethodGet, "/api/history"+tt.query, "")
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				require.Equal(t, tt.wantLimit, history.lastLimit)
				var games []domain.GameRecord
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &games))
				require.Len(t, games, 2)
			}
		})
	}

	t.Run("game details", func(t *testing.T) {
		w := do(router, http.MethodGet, "/api/history/2", "")
		require.Equal(t, http.StatusOK, w.Code)
		var record domain.GameRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		require.Equal(t, domain.ResultDraw, record.Result)

		require.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/api/history/99", "").Code)
		require.Equal(t, http.StatusBadRequest, do(router, http.MethodGet, "/api/history/abc", "").Code)
	})

	t.Run("repository failure", func(t *testing.T) {
		history.err = errors.New("connection refused")
		defer func() { history.err = nil }()
		require.Equal(t, http.StatusInternalServerError, do(router, http.MethodGet, "/api/history", "").Code)
	})
}

func TestFaultBoundary(t *testing.T) {
	router := gin.New()
	router.Use(FaultBoundary())
	router.GET("/boom", func(c *gin.Context) {
		panic("render failed: <nil board>")
	})
	router.GET("/fine", func(c *gin.Context) {
		c.String(http.StatusOK, "fine")
	})

	t.Run("json fallback", func(t *testing.T) {
		w := do(router, http.MethodGet, "/boom", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "render failed: <nil board>", body["description"])
		assert.Equal(t, "reload", body["action"])
		assert.Equal(t, "/", body["reloadUrl"])
	})

	t.Run("html fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
		assert.Contains(t, w.Body.String(), "render failed: &lt;nil board&gt;")
		assert.Contains(t, w.Body.String(), "Reload")
	})

	t.Run("other routes keep working", func(t *testing.T) {
		w := do(router, http.MethodGet, "/fine", "")
		require.Equal(t, http.StatusOK, w.Code)
	})
}
