package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/antigravity/minigolfscore/internal/models"
	"github.com/antigravity/minigolfscore/internal/session"
	"github.com/antigravity/minigolfscore/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testServer struct {
	t      *testing.T
	router *chi.Mux
	store  storage.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, err := storage.NewFileStore(afero.NewMemMapFs(), "/cards")
	require.NoError(t, err)
	log := zaptest.NewLogger(t).Sugar()

	cards := session.NewManager(st, log)
	_, err = cards.Open(context.Background(), "save.dat")
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(cards, log).Router(r)
	return &testServer{t: t, router: r, store: st}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestGetCardDefaults(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/cards/save.dat", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))

	card := decode[models.Card](t, rec)
	assert.Equal(t, "save.dat", card.Key)
	assert.Len(t, card.Players, 2)
	assert.Len(t, card.Holes, 18)
	assert.Equal(t, models.Hole{HoleNumber: 1, Par: 3}, card.Holes[0])
	assert.Equal(t, "Player 1", card.Players[0].Name)
	assert.False(t, card.CanUndo)
}

func TestEditAndUndo(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/cards/save.dat/holes/0/par", map[string]int{"par": 4})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/api/cards/save.dat/scores", models.Score{Player: 0, Hole: 0, Strokes: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	card := decode[models.Card](t, rec)
	assert.Equal(t, 5, card.Scores[0][0])
	assert.Equal(t, 4, card.Holes[0].Par)
	assert.True(t, card.CanUndo)

	rec = s.do(http.MethodPost, "/api/cards/save.dat/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	undo := decode[models.Undo](t, rec)
	assert.True(t, undo.Undone)
	assert.Equal(t, "score", undo.Kind)
	require.NotNil(t, undo.Player)
	require.NotNil(t, undo.Hole)
	assert.Zero(t, *undo.Player)
	assert.Zero(t, *undo.Hole)

	card = decode[models.Card](t, s.do(http.MethodGet, "/api/cards/save.dat", nil))
	assert.Zero(t, card.Scores[0][0])

	rec = s.do(http.MethodPost, "/api/cards/save.dat/players/1/name", map[string]string{"name": "Bea"})
	require.Equal(t, http.StatusOK, rec.Code)
	undo = decode[models.Undo](t, s.do(http.MethodPost, "/api/cards/save.dat/undo", nil))
	assert.Equal(t, "player_name", undo.Kind)
	assert.Nil(t, undo.Hole)
}

func TestUndoWithNothingPending(t *testing.T) {
	s := newTestServer(t)
	undo := decode[models.Undo](t, s.do(http.MethodPost, "/api/cards/save.dat/undo", nil))
	assert.False(t, undo.Undone)
	assert.Empty(t, undo.Kind)
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/cards/save.dat/holes/18/par", map[string]int{"par": 4}},
		{http.MethodPost, "/api/cards/save.dat/holes/x/par", map[string]int{"par": 4}},
		{http.MethodPost, "/api/cards/save.dat/players/-1/name", map[string]string{"name": "x"}},
		{http.MethodPost, "/api/cards/save.dat/scores", models.Score{Player: 2, Hole: 0, Strokes: 1}},
		{http.MethodPost, "/api/cards/save.dat/scores", models.Score{Player: 0, Hole: 0, Strokes: -2}},
		{http.MethodPost, "/api/cards/save.dat/settings", models.Settings{Players: 21, Holes: 18}},
		{http.MethodPost, "/api/cards/save.dat/prefs", map[string]int{"selected_player": 5}},
		{http.MethodGet, "/api/cards/bad%20key", nil},
		{http.MethodGet, "/api/cards/save.dat/export?relative=maybe", nil},
	}
	for _, c := range cases {
		rec := s.do(c.method, c.path, c.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", c.method, c.path)
	}

	rec := s.do(http.MethodDelete, "/api/cards/never.dat", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownCardIsNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/cards/typo.dat", "/api/cards/typo.dat/results"} {
		rec := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := s.do(http.MethodPost, "/api/cards/typo.dat/scores", models.Score{Player: 0, Hole: 0, Strokes: 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	keys := decode[[]string](t, s.do(http.MethodGet, "/api/cards", nil))
	assert.Equal(t, []string{"save.dat"}, keys)
}

func TestSettingsResize(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/cards/save.dat/scores", models.Score{Player: 1, Hole: 3, Strokes: 2})

	rec := s.do(http.MethodPost, "/api/cards/save.dat/settings",
		models.Settings{Players: 4, Holes: 9, ForceLandscape: true})
	require.Equal(t, http.StatusOK, rec.Code)

	card := decode[models.Card](t, rec)
	assert.Len(t, card.Players, 4)
	assert.Len(t, card.Holes, 9)
	assert.Equal(t, 2, card.Scores[1][3])
	assert.True(t, card.Prefs.ForceLandscape)
	assert.False(t, card.CanUndo)
}

func TestSuspendPersists(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/cards/save.dat/scores", models.Score{Player: 0, Hole: 0, Strokes: 3})

	rec := s.do(http.MethodPost, "/api/cards/save.dat/suspend", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	keys := decode[[]string](t, s.do(http.MethodGet, "/api/cards", nil))
	assert.Equal(t, []string{"save.dat"}, keys)

	// A second server over the same store sees the saved card.
	log := zaptest.NewLogger(t).Sugar()
	r := chi.NewRouter()
	NewHandler(session.NewManager(s.store, log), log).Router(r)
	out := httptest.NewRecorder()
	r.ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/api/cards/save.dat", nil))
	card := decode[models.Card](t, out)
	assert.Equal(t, 3, card.Scores[0][0])
	assert.True(t, card.CanUndo)
}

func TestCreateAndDeleteCard(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/cards", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	card := decode[models.Card](t, rec)
	require.NotEmpty(t, card.Key)

	keys := decode[[]string](t, s.do(http.MethodGet, "/api/cards", nil))
	assert.Contains(t, keys, card.Key)

	rec = s.do(http.MethodDelete, "/api/cards/"+card.Key, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	keys = decode[[]string](t, s.do(http.MethodGet, "/api/cards", nil))
	assert.NotContains(t, keys, card.Key)
}

func TestResultsAndExport(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/cards/save.dat/players/0/name", map[string]string{"name": "Ann"})
	s.do(http.MethodPost, "/api/cards/save.dat/players/1/name", map[string]string{"name": "Bo"})
	s.do(http.MethodPost, "/api/cards/save.dat/scores", models.Score{Player: 0, Hole: 0, Strokes: 5})
	s.do(http.MethodPost, "/api/cards/save.dat/scores", models.Score{Player: 1, Hole: 0, Strokes: 2})

	results := decode[[]models.Result](t, s.do(http.MethodGet, "/api/cards/save.dat/results", nil))
	require.Len(t, results, 2)
	assert.Equal(t, models.Result{Player: 1, Name: "Bo", Gross: 2, VsPar: -1, HolesPlayed: 1}, results[0])
	assert.Equal(t, models.Result{Player: 0, Name: "Ann", Gross: 5, VsPar: 2, HolesPlayed: 1}, results[1])

	rec := s.do(http.MethodGet, "/api/cards/save.dat/export?relative=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ann: +2 -")
	assert.Contains(t, rec.Body.String(), "Par: 3 3")
}

func TestImportCourse(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "course.csv")
	require.NoError(t, err)
	fw.Write([]byte("hole_number,par\n1,2\n2,3\n3,4\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cards/save.dat/course/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	card := decode[models.Card](t, rec)
	assert.Equal(t, []models.Hole{{HoleNumber: 1, Par: 2}, {HoleNumber: 2, Par: 3}, {HoleNumber: 3, Par: 4}}, card.Holes)

	body.Reset()
	mw = multipart.NewWriter(&body)
	fw, _ = mw.CreateFormFile("file", "course.html")
	fw.Write([]byte("<p>no table</p>"))
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/api/cards/save.dat/course/import", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
