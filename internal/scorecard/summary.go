package scorecard

import (
	"fmt"
	"strings"
)

// PlayerTotal sums a player's card. Holes with no score are skipped, so
// VsPar only counts holes actually played.
type PlayerTotal struct {
	Player      int
	Name        string
	Strokes     int
	VsPar       int
	HolesPlayed int
}

func (r *Record) TotalPar() int {
	total := 0
	for _, par := range r.par {
		total += par
	}
	return total
}

func (r *Record) Totals() []PlayerTotal {
	totals := make([]PlayerTotal, len(r.names))
	for p, row := range r.scores {
		t := PlayerTotal{Player: p, Name: r.names[p]}
		for h, s := range row {
			if s <= 0 {
				continue
			}
			t.Strokes += s
			t.VsPar += s - r.par[h]
			t.HolesPlayed++
		}
		totals[p] = t
	}
	return totals
}

// Summary renders the card as plain text, one line per row:
//
//	Hole: 1 2 3 / Total (+/-)
//	Par: 3 3 4 / 10
//	Ann: 2 - 5 / 7 (+0)
//
// With relative set, played cells show strokes against par instead.
func (r *Record) Summary(relative bool) string {
	var b strings.Builder

	b.WriteString("Hole:")
	for h := range r.par {
		fmt.Fprintf(&b, " %d", h+1)
	}
	b.WriteString(" / Total (+/-)\n")

	b.WriteString("Par:")
	for _, par := range r.par {
		fmt.Fprintf(&b, " %d", par)
	}
	fmt.Fprintf(&b, " / %d\n", r.TotalPar())

	totals := r.Totals()
	for p, row := range r.scores {
		fmt.Fprintf(&b, "%s:", r.names[p])
		for h, s := range row {
			switch {
			case s <= 0:
				b.WriteString(" -")
			case relative:
				fmt.Fprintf(&b, " %+d", s-r.par[h])
			default:
				fmt.Fprintf(&b, " %d", s)
			}
		}
		fmt.Fprintf(&b, " / %d (%+d)\n", totals[p].Strokes, totals[p].VsPar)
	}
	return b.String()
}
