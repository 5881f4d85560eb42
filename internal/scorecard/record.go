// Package scorecard holds the mini-golf score sheet: player names, par per
// hole, the stroke grid, a single-slot undo and a few saved preferences.
//
// A Record is not safe for concurrent use. It expects one owner that
// serializes every call.
package scorecard

import "fmt"

const (
	MinPlayers = 1
	MaxPlayers = 20
	MinHoles   = 1
	MaxHoles   = 90

	DefaultPlayers = 2
	DefaultHoles   = 18
	DefaultPar     = 3
)

// Record is one score sheet. The zero value is not usable; call New.
type Record struct {
	names  []string
	par    []int
	scores [][]int // [player][hole], 0 means not yet played

	undo Undo

	selPlayer      int
	selHole        int
	scoreRelative  bool
	forceLandscape bool
}

// New returns a record with two players, eighteen holes and default values.
func New() *Record {
	r := &Record{}
	r.reset()
	return r
}

func (r *Record) reset() {
	r.allocate(DefaultPlayers, DefaultHoles)
	r.undo = nil
	r.selPlayer = 0
	r.selHole = 0
	r.scoreRelative = false
	r.forceLandscape = false
}

// allocate replaces names, par and scores with defaulted containers of the
// given size.
func (r *Record) allocate(players, holes int) {
	r.names = make([]string, players)
	for p := range r.names {
		r.names[p] = defaultPlayerName(p)
	}
	r.par = make([]int, holes)
	for h := range r.par {
		r.par[h] = DefaultPar
	}
	r.scores = newGrid(players, holes)
}

func newGrid(players, holes int) [][]int {
	cells := make([]int, players*holes)
	grid := make([][]int, players)
	for p := range grid {
		grid[p] = cells[p*holes : (p+1)*holes : (p+1)*holes]
	}
	return grid
}

func defaultPlayerName(p int) string {
	return fmt.Sprintf("Player %d", p+1)
}

func (r *Record) PlayerCount() int { return len(r.names) }

func (r *Record) HoleCount() int { return len(r.par) }

func (r *Record) checkPlayer(player int) error {
	if player < 0 || player >= len(r.names) {
		return fmt.Errorf("%w: player %d of %d", ErrOutOfRange, player, len(r.names))
	}
	return nil
}

func (r *Record) checkHole(hole int) error {
	if hole < 0 || hole >= len(r.par) {
		return fmt.Errorf("%w: hole %d of %d", ErrOutOfRange, hole, len(r.par))
	}
	return nil
}

// PlayerName returns the name of the player at index player.
func (r *Record) PlayerName(player int) (string, error) {
	if err := r.checkPlayer(player); err != nil {
		return "", err
	}
	return r.names[player], nil
}

// Par returns par for a hole. Holes are 0-based, so hole 1 is index 0.
func (r *Record) Par(hole int) (int, error) {
	if err := r.checkHole(hole); err != nil {
		return 0, err
	}
	return r.par[hole], nil
}

// Score returns the strokes a player took on a hole, 0 if not yet played.
func (r *Record) Score(player, hole int) (int, error) {
	if err := r.checkPlayer(player); err != nil {
		return 0, err
	}
	if err := r.checkHole(hole); err != nil {
		return 0, err
	}
	return r.scores[player][hole], nil
}

// SetPar sets par for a hole. Setting the current value is a no-op and
// leaves the undo slot alone.
func (r *Record) SetPar(hole, par int) error {
	if err := r.checkHole(hole); err != nil {
		return err
	}
	r.setPar(hole, par)
	return nil
}

func (r *Record) setPar(hole, par int) {
	if r.par[hole] == par {
		return
	}
	r.undo = ParUndo{Hole: hole, Value: r.par[hole]}
	r.par[hole] = par
}

// SetPlayerName renames a player. Same no-op rule as SetPar.
func (r *Record) SetPlayerName(player int, name string) error {
	if err := r.checkPlayer(player); err != nil {
		return err
	}
	r.setPlayerName(player, name)
	return nil
}

func (r *Record) setPlayerName(player int, name string) {
	if r.names[player] == name {
		return
	}
	r.undo = NameUndo{Player: player, Name: r.names[player]}
	r.names[player] = name
}

// SetScore records strokes for a player on a hole. Same no-op rule as SetPar.
func (r *Record) SetScore(player, hole, score int) error {
	if err := r.checkPlayer(player); err != nil {
		return err
	}
	if err := r.checkHole(hole); err != nil {
		return err
	}
	r.setScore(player, hole, score)
	return nil
}

func (r *Record) setScore(player, hole, score int) {
	if r.scores[player][hole] == score {
		return
	}
	r.undo = ScoreUndo{Player: player, Hole: hole, Value: r.scores[player][hole]}
	r.scores[player][hole] = score
}

// ResetScores zeroes every score. It cannot be undone and it empties the
// undo slot.
func (r *Record) ResetScores() {
	r.scores = newGrid(len(r.names), len(r.par))
	r.undo = nil
}

// Resize changes the sheet dimensions. Names, par and scores inside the
// overlap of the old and new sizes are kept; everything outside is lost.
// The undo slot is emptied and the resize itself is not undoable.
func (r *Record) Resize(players, holes int) error {
	if err := checkDimensions(players, holes); err != nil {
		return err
	}

	oldNames, oldPar, oldScores := r.names, r.par, r.scores
	keepPlayers := min(len(oldNames), players)
	keepHoles := min(len(oldPar), holes)

	r.allocate(players, holes)
	r.undo = nil

	for p := 0; p < keepPlayers; p++ {
		r.names[p] = oldNames[p]
		copy(r.scores[p][:keepHoles], oldScores[p][:keepHoles])
	}
	copy(r.par[:keepHoles], oldPar[:keepHoles])

	r.selPlayer = min(r.selPlayer, players-1)
	r.selHole = min(r.selHole, holes-1)
	return nil
}

func checkDimensions(players, holes int) error {
	if players < MinPlayers || players > MaxPlayers {
		return fmt.Errorf("%w: %d players, want %d-%d", ErrInvalidDimensions, players, MinPlayers, MaxPlayers)
	}
	if holes < MinHoles || holes > MaxHoles {
		return fmt.Errorf("%w: %d holes, want %d-%d", ErrInvalidDimensions, holes, MinHoles, MaxHoles)
	}
	return nil
}

// ReplacePar loads a whole course at once. The hole count follows the
// course, players and the overlapping scores are kept. Like ResetScores
// this is a bulk edit and empties the undo slot.
func (r *Record) ReplacePar(pars []int) error {
	if err := r.Resize(len(r.names), len(pars)); err != nil {
		return err
	}
	copy(r.par, pars)
	return nil
}

func (r *Record) SelectedPlayer() int { return r.selPlayer }

func (r *Record) SelectedHole() int { return r.selHole }

func (r *Record) ScoreRelative() bool { return r.scoreRelative }

func (r *Record) ForceLandscape() bool { return r.forceLandscape }

func (r *Record) SetSelectedPlayer(player int) error {
	if err := r.checkPlayer(player); err != nil {
		return err
	}
	r.selPlayer = player
	return nil
}

func (r *Record) SetSelectedHole(hole int) error {
	if err := r.checkHole(hole); err != nil {
		return err
	}
	r.selHole = hole
	return nil
}

func (r *Record) SetScoreRelative(relative bool) { r.scoreRelative = relative }

func (r *Record) SetForceLandscape(force bool) { r.forceLandscape = force }
