package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/antigravity/minigolfscore/internal/course"
	"github.com/antigravity/minigolfscore/internal/models"
	"github.com/antigravity/minigolfscore/internal/scorecard"
	"github.com/antigravity/minigolfscore/internal/session"
	"github.com/antigravity/minigolfscore/internal/storage"
)

type Handler struct {
	cards *session.Manager
	log   *zap.SugaredLogger
}

func NewHandler(cards *session.Manager, log *zap.SugaredLogger) *Handler {
	return &Handler{cards: cards, log: log}
}

func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Router(r chi.Router) {
	r.Route("/api/cards", func(r chi.Router) {
		r.Use(NoCache)
		r.Get("/", h.ListCards)
		r.Post("/", h.CreateCard)
		r.Route("/{key}", func(r chi.Router) {
			r.Get("/", h.GetCard)
			r.Delete("/", h.DeleteCard)
			r.Post("/players/{player}/name", h.SetPlayerName)
			r.Post("/holes/{hole}/par", h.SetPar)
			r.Post("/scores", h.SetScore)
			r.Post("/undo", h.Undo)
			r.Post("/reset", h.Reset)
			r.Post("/settings", h.Settings)
			r.Post("/prefs", h.Prefs)
			r.Get("/results", h.Results)
			r.Get("/export", h.Export)
			r.Post("/course/import", h.ImportCourse)
			r.Post("/suspend", h.Suspend)
		})
	})
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, scorecard.ErrOutOfRange),
		errors.Is(err, scorecard.ErrInvalidDimensions),
		errors.Is(err, course.ErrNoCourse),
		errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Errorw("Request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.cards.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return s, true
}

// update applies fn to the card and answers with the resulting card.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, fn func(rec *scorecard.Record) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var card models.Card
	err := s.Update(func(rec *scorecard.Record) error {
		if err := fn(rec); err != nil {
			return err
		}
		card = models.NewCard(s.Key(), rec)
		return nil
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, card)
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		http.Error(w, "Bad "+name+" index", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	keys, err := h.cards.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, keys)
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	s, err := h.cards.Create(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var card models.Card
	s.View(func(rec *scorecard.Record) { card = models.NewCard(s.Key(), rec) })
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(card)
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var card models.Card
	s.View(func(rec *scorecard.Record) { card = models.NewCard(s.Key(), rec) })
	writeJSON(w, card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.cards.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) SetPlayerName(w http.ResponseWriter, r *http.Request) {
	player, ok := intParam(w, r, "player")
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.update(w, r, func(rec *scorecard.Record) error {
		return rec.SetPlayerName(player, req.Name)
	})
}

func (h *Handler) SetPar(w http.ResponseWriter, r *http.Request) {
	hole, ok := intParam(w, r, "hole")
	if !ok {
		return
	}
	var req struct {
		Par int `json:"par"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.update(w, r, func(rec *scorecard.Record) error {
		return rec.SetPar(hole, req.Par)
	})
}

func (h *Handler) SetScore(w http.ResponseWriter, r *http.Request) {
	var s models.Score
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if s.Strokes < 0 {
		http.Error(w, "Strokes must not be negative", http.StatusBadRequest)
		return
	}
	h.update(w, r, func(rec *scorecard.Record) error {
		return rec.SetScore(s.Player, s.Hole, s.Strokes)
	})
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var res models.Undo
	s.Update(func(rec *scorecard.Record) error {
		change, undone := rec.UndoLast()
		res = models.NewUndo(change, undone)
		return nil
	})
	writeJSON(w, res)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, func(rec *scorecard.Record) error {
		rec.ResetScores()
		rec.SetSelectedPlayer(0)
		rec.SetSelectedHole(0)
		return nil
	})
}

// Settings resizes the card and stores the landscape flag.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	var req models.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.update(w, r, func(rec *scorecard.Record) error {
		if req.Players != rec.PlayerCount() || req.Holes != rec.HoleCount() {
			if err := rec.Resize(req.Players, req.Holes); err != nil {
				return err
			}
		}
		rec.SetForceLandscape(req.ForceLandscape)
		return nil
	})
}

func (h *Handler) Prefs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SelectedPlayer int  `json:"selected_player"`
		SelectedHole   int  `json:"selected_hole"`
		ScoreRelative  bool `json:"score_relative"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.update(w, r, func(rec *scorecard.Record) error {
		if err := rec.SetSelectedPlayer(req.SelectedPlayer); err != nil {
			return err
		}
		if err := rec.SetSelectedHole(req.SelectedHole); err != nil {
			return err
		}
		rec.SetScoreRelative(req.ScoreRelative)
		return nil
	})
}

// Results lists player totals, best score against par first.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var totals []scorecard.PlayerTotal
	s.View(func(rec *scorecard.Record) { totals = rec.Totals() })

	results := make([]models.Result, 0, len(totals))
	for _, t := range totals {
		results = append(results, models.Result{
			Player:      t.Player,
			Name:        t.Name,
			Gross:       t.Strokes,
			VsPar:       t.VsPar,
			HolesPlayed: t.HolesPlayed,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].VsPar < results[j].VsPar
	})
	writeJSON(w, results)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var relative *bool
	if v := r.URL.Query().Get("relative"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "Bad relative flag", http.StatusBadRequest)
			return
		}
		relative = &b
	}
	var text string
	s.View(func(rec *scorecard.Record) {
		if relative == nil {
			text = rec.Summary(rec.ScoreRelative())
			return
		}
		text = rec.Summary(*relative)
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=scores.txt")
	w.Write([]byte(text))
}

func (h *Handler) ImportCourse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	pars, err := course.Parse(header.Filename, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.update(w, r, func(rec *scorecard.Record) error {
		return rec.ReplacePar(pars)
	})
}

func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Suspend(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
