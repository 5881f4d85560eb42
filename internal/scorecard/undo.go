package scorecard

// UndoKind identifies the edit held in the undo slot. The numeric values
// are part of the saved record format.
type UndoKind int32

const (
	UndoNone UndoKind = iota
	UndoPar
	UndoPlayerName
	UndoScore
)

func (k UndoKind) String() string {
	switch k {
	case UndoNone:
		return "none"
	case UndoPar:
		return "par"
	case UndoPlayerName:
		return "player_name"
	case UndoScore:
		return "score"
	}
	return "unknown"
}

// Undo is the inverse of the most recent edit. It is one of ParUndo,
// NameUndo or ScoreUndo.
type Undo interface {
	Kind() UndoKind
	apply(r *Record) Change
}

// ParUndo restores Value as par of Hole.
type ParUndo struct {
	Hole  int
	Value int
}

// NameUndo restores Name as the name of Player.
type NameUndo struct {
	Player int
	Name   string
}

// ScoreUndo restores Value as the score of Player on Hole.
type ScoreUndo struct {
	Player int
	Hole   int
	Value  int
}

func (ParUndo) Kind() UndoKind   { return UndoPar }
func (NameUndo) Kind() UndoKind  { return UndoPlayerName }
func (ScoreUndo) Kind() UndoKind { return UndoScore }

func (u ParUndo) apply(r *Record) Change {
	r.setPar(u.Hole, u.Value)
	r.selHole = u.Hole
	return Change{Kind: UndoPar, Hole: u.Hole}
}

func (u NameUndo) apply(r *Record) Change {
	r.setPlayerName(u.Player, u.Name)
	r.selPlayer = u.Player
	return Change{Kind: UndoPlayerName, Player: u.Player}
}

func (u ScoreUndo) apply(r *Record) Change {
	r.setScore(u.Player, u.Hole, u.Value)
	r.selPlayer = u.Player
	r.selHole = u.Hole
	return Change{Kind: UndoScore, Player: u.Player, Hole: u.Hole}
}

// Change reports which cell an undo touched. Player is meaningful for
// player-name and score undos, Hole for par and score undos.
type Change struct {
	Kind   UndoKind
	Player int
	Hole   int
}

func (c Change) HasPlayer() bool { return c.Kind == UndoPlayerName || c.Kind == UndoScore }

func (c Change) HasHole() bool { return c.Kind == UndoPar || c.Kind == UndoScore }

func (r *Record) CanUndo() bool { return r.undo != nil }

// PendingUndo returns the edit UndoLast would revert, or nil.
func (r *Record) PendingUndo() Undo { return r.undo }

// UndoLast reverts the most recent par, name or score edit and moves the
// saved selection onto the restored cell.
//
// The revert goes through the ordinary setter, so it leaves its own inverse
// in the slot: a second UndoLast puts the edit back. Calling it repeatedly
// toggles between the two values.
func (r *Record) UndoLast() (Change, bool) {
	if r.undo == nil {
		return Change{}, false
	}
	return r.undo.apply(r), true
}
