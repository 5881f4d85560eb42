// Package course reads par for every hole of a course from an uploaded
// scorecard, either a CSV export or an HTML page with a score table.
package course

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/antigravity/minigolfscore/internal/scorecard"
)

var ErrNoCourse = errors.New("no course found")

// Parse picks a reader from the file name: .htm and .html are parsed as
// HTML, anything else as CSV.
func Parse(name string, r io.Reader) ([]int, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".htm", ".html":
		return ParseHTML(r)
	}
	return ParseCSV(r)
}

// ParseCSV reads "hole_number,par" rows. A header row is skipped. Holes
// may come in any order but must cover 1..N exactly once.
func ParseCSV(r io.Reader) ([]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ErrNoCourse, err)
	}

	pars := make(map[int]int)
	for i, record := range records {
		if len(record) < 2 {
			continue
		}
		hole, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			// Skip header if it looks like one
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%w: row %d: bad hole number %q", ErrNoCourse, i+1, record[0])
		}
		par, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad par %q", ErrNoCourse, i+1, record[1])
		}
		if _, dup := pars[hole]; dup {
			return nil, fmt.Errorf("%w: hole %d listed twice", ErrNoCourse, hole)
		}
		pars[hole] = par
	}
	return collect(pars)
}

// ParseHTML looks for a table with a row labelled "Par". If the same table
// has a row labelled "Hole", par cells are matched to hole numbers by
// column so subtotal columns such as "Out" or "Total" drop out. Otherwise
// every numeric par cell is taken in order.
func ParseHTML(r io.Reader) ([]int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrNoCourse, err)
	}

	var (
		result   []int
		parseErr error
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var holeRow, parRow []string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := rowCells(tr)
			if len(cells) == 0 {
				return
			}
			switch strings.ToLower(strings.TrimSuffix(cells[0], ":")) {
			case "hole", "holes", "hole #", "#":
				if holeRow == nil {
					holeRow = cells
				}
			case "par":
				if parRow == nil {
					parRow = cells
				}
			}
		})
		if parRow == nil {
			return true
		}
		result, parseErr = parsFromRows(holeRow, parRow)
		return false
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if result == nil {
		return nil, fmt.Errorf("%w: no table row labelled Par", ErrNoCourse)
	}
	return result, nil
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	return cells
}

func parsFromRows(holeRow, parRow []string) ([]int, error) {
	if holeRow == nil {
		var pars []int
		for _, cell := range parRow[1:] {
			if par, err := strconv.Atoi(cell); err == nil {
				pars = append(pars, par)
			}
		}
		if len(pars) == 0 {
			return nil, fmt.Errorf("%w: Par row has no numbers", ErrNoCourse)
		}
		if len(pars) > scorecard.MaxHoles {
			return nil, fmt.Errorf("%w: %d holes", ErrNoCourse, len(pars))
		}
		return pars, nil
	}

	pars := make(map[int]int)
	for col := 1; col < len(holeRow) && col < len(parRow); col++ {
		hole, err := strconv.Atoi(holeRow[col])
		if err != nil {
			continue
		}
		par, err := strconv.Atoi(parRow[col])
		if err != nil {
			return nil, fmt.Errorf("%w: hole %d: bad par %q", ErrNoCourse, hole, parRow[col])
		}
		pars[hole] = par
	}
	return collect(pars)
}

// collect turns hole number -> par into a slice, requiring holes 1..N.
func collect(pars map[int]int) ([]int, error) {
	n := len(pars)
	if n == 0 {
		return nil, ErrNoCourse
	}
	if n > scorecard.MaxHoles {
		return nil, fmt.Errorf("%w: %d holes", ErrNoCourse, n)
	}
	out := make([]int, n)
	for hole := 1; hole <= n; hole++ {
		par, ok := pars[hole]
		if !ok {
			return nil, fmt.Errorf("%w: hole %d missing", ErrNoCourse, hole)
		}
		out[hole-1] = par
	}
	return out, nil
}
