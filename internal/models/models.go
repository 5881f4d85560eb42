package models

import "github.com/antigravity/minigolfscore/internal/scorecard"

type Player struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type Hole struct {
	HoleNumber int `json:"hole_number"`
	Par        int `json:"par"`
}

type Score struct {
	Player  int `json:"player"`
	Hole    int `json:"hole"`
	Strokes int `json:"strokes"`
}

type Prefs struct {
	SelectedPlayer int  `json:"selected_player"`
	SelectedHole   int  `json:"selected_hole"`
	ScoreRelative  bool `json:"score_relative"`
	ForceLandscape bool `json:"force_landscape"`
}

type Settings struct {
	Players        int  `json:"players"`
	Holes          int  `json:"holes"`
	ForceLandscape bool `json:"force_landscape"`
}

type Card struct {
	Key     string   `json:"key"`
	Players []Player `json:"players"`
	Holes   []Hole   `json:"holes"`
	Scores  [][]int  `json:"scores"`
	CanUndo bool     `json:"can_undo"`
	Prefs   Prefs    `json:"prefs"`
}

type Result struct {
	Player      int    `json:"player"`
	Name        string `json:"name"`
	Gross       int    `json:"gross"`
	VsPar       int    `json:"vs_par"`
	HolesPlayed int    `json:"holes_played"`
}

// Undo reports what an undo restored. Player and Hole are nil when the
// undo did not touch them.
type Undo struct {
	Undone bool   `json:"undone"`
	Kind   string `json:"kind,omitempty"`
	Player *int   `json:"player,omitempty"`
	Hole   *int   `json:"hole,omitempty"`
}

func NewCard(key string, r *scorecard.Record) Card {
	c := Card{
		Key:     key,
		Players: make([]Player, r.PlayerCount()),
		Holes:   make([]Hole, r.HoleCount()),
		Scores:  make([][]int, r.PlayerCount()),
		CanUndo: r.CanUndo(),
		Prefs: Prefs{
			SelectedPlayer: r.SelectedPlayer(),
			SelectedHole:   r.SelectedHole(),
			ScoreRelative:  r.ScoreRelative(),
			ForceLandscape: r.ForceLandscape(),
		},
	}
	for h := range c.Holes {
		par, _ := r.Par(h)
		c.Holes[h] = Hole{HoleNumber: h + 1, Par: par}
	}
	for p := range c.Players {
		name, _ := r.PlayerName(p)
		c.Players[p] = Player{Index: p, Name: name}
		row := make([]int, r.HoleCount())
		for h := range row {
			row[h], _ = r.Score(p, h)
		}
		c.Scores[p] = row
	}
	return c
}

func NewUndo(change scorecard.Change, undone bool) Undo {
	u := Undo{Undone: undone}
	if !undone {
		return u
	}
	u.Kind = change.Kind.String()
	if change.HasPlayer() {
		p := change.Player
		u.Player = &p
	}
	if change.HasHole() {
		h := change.Hole
		u.Hole = &h
	}
	return u
}
