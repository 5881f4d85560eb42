package course

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	pars, err := ParseCSV(strings.NewReader("hole_number,par\n2,4\n1,3\n3, 2\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 2}, pars)

	pars, err = ParseCSV(strings.NewReader("1,2\n2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, pars)
}

func TestParseCSVErrors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"header only": "hole_number,par\n",
		"gap":         "1,3\n3,3\n",
		"duplicate":   "1,3\n1,4\n",
		"bad par":     "1,three\n",
		"bad hole":    "1,3\nx,3\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(input))
			assert.ErrorIs(t, err, ErrNoCourse)
		})
	}
}

const courseHTML = `<html><body>
<h1>Putt Palace</h1>
<table class="nav"><tr><td>Home</td><td>Prices</td></tr></table>
<table class="scorecard">
  <tr><th>Hole</th><th>1</th><th>2</th><th>3</th><th>Out</th><th>4</th></tr>
  <tr><td>Par</td><td>2</td><td>3</td><td>4</td><td>9</td><td>3</td></tr>
  <tr><td>Name</td><td></td><td></td><td></td><td></td><td></td></tr>
</table>
</body></html>`

func TestParseHTMLMatchesHoleColumns(t *testing.T) {
	pars, err := ParseHTML(strings.NewReader(courseHTML))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 3}, pars)
}

func TestParseHTMLWithoutHoleRow(t *testing.T) {
	pars, err := ParseHTML(strings.NewReader(
		`<table><tr><td>Par:</td><td>2</td><td>2</td><td>5</td></tr></table>`))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 5}, pars)
}

func TestParseHTMLNoCourse(t *testing.T) {
	_, err := ParseHTML(strings.NewReader(`<p>closed for winter</p>`))
	assert.ErrorIs(t, err, ErrNoCourse)

	_, err = ParseHTML(strings.NewReader(`<table><tr><td>Par</td><td>-</td></tr></table>`))
	assert.ErrorIs(t, err, ErrNoCourse)
}

func TestParseDispatchesOnExtension(t *testing.T) {
	pars, err := Parse("course.HTML", strings.NewReader(courseHTML))
	require.NoError(t, err)
	assert.Len(t, pars, 4)

	pars, err = Parse("course.csv", strings.NewReader("1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, pars)
}
