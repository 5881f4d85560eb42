package scorecard

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	fileCookie  int32 = 20000613
	fileVersion int32 = 7

	maxStringLen = 4096
)

var byteOrder = binary.BigEndian

// MarshalBinary encodes the record, undo slot included.
func (r *Record) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := r.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces r with the decoded record. On error r is left
// unchanged.
func (r *Record) UnmarshalBinary(data []byte) error {
	_, err := r.ReadFrom(bytes.NewReader(data))
	return err
}

// WriteTo writes fields in saved-record order.
func (r *Record) WriteTo(w io.Writer) (int64, error) {
	e := &encoder{w: bufio.NewWriter(w)}

	e.int(int(fileCookie))
	e.int(int(fileVersion))
	e.int(len(r.names))
	e.int(len(r.par))
	for _, name := range r.names {
		e.string(name)
	}
	for _, par := range r.par {
		e.int(par)
	}
	for _, row := range r.scores {
		for _, score := range row {
			e.int(score)
		}
	}

	e.bool(r.scoreRelative)
	e.int(r.selPlayer)
	e.int(r.selHole)
	e.bool(r.forceLandscape)

	var (
		kind                UndoKind
		hole, player, value int
		name                string
	)
	switch u := r.undo.(type) {
	case ParUndo:
		kind, hole, value = UndoPar, u.Hole, u.Value
	case NameUndo:
		kind, player, name = UndoPlayerName, u.Player, u.Name
	case ScoreUndo:
		kind, player, hole, value = UndoScore, u.Player, u.Hole, u.Value
	}
	e.int(int(kind))
	e.int(hole)
	e.int(player)
	e.int(value)
	e.string(name)

	if e.err == nil {
		e.err = e.w.Flush()
	}
	return e.n, e.err
}

// ReadFrom decodes a saved record. Any mismatch or short read fails with
// ErrCorruptRecord and r is not modified.
func (r *Record) ReadFrom(rd io.Reader) (int64, error) {
	d := &decoder{r: bufio.NewReader(rd)}
	rec, err := d.record()
	if err != nil {
		return d.n, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	*r = *rec
	return d.n, nil
}

func (d *decoder) record() (*Record, error) {
	if cookie := d.int(); d.err == nil && cookie != fileCookie {
		return nil, fmt.Errorf("bad cookie %d", cookie)
	}
	if version := d.int(); d.err == nil && version != fileVersion {
		return nil, fmt.Errorf("unsupported version %d", version)
	}
	players, holes := int(d.int()), int(d.int())
	if d.err != nil {
		return nil, d.err
	}
	if err := checkDimensions(players, holes); err != nil {
		return nil, err
	}

	rec := &Record{}
	rec.allocate(players, holes)
	for p := range rec.names {
		rec.names[p] = d.string()
	}
	for h := range rec.par {
		rec.par[h] = int(d.int())
	}
	for _, row := range rec.scores {
		for h := range row {
			row[h] = int(d.int())
		}
	}

	rec.scoreRelative = d.bool()
	rec.selPlayer = int(d.int())
	rec.selHole = int(d.int())
	rec.forceLandscape = d.bool()

	kind := UndoKind(d.int())
	hole, player, value := int(d.int()), int(d.int()), int(d.int())
	name := d.string()
	if d.err != nil {
		return nil, d.err
	}

	if rec.checkPlayer(rec.selPlayer) != nil || rec.checkHole(rec.selHole) != nil {
		return nil, fmt.Errorf("selection %d/%d outside %dx%d", rec.selPlayer, rec.selHole, players, holes)
	}

	switch kind {
	case UndoNone:
	case UndoPar:
		rec.undo = ParUndo{Hole: hole, Value: value}
	case UndoPlayerName:
		rec.undo = NameUndo{Player: player, Name: name}
	case UndoScore:
		rec.undo = ScoreUndo{Player: player, Hole: hole, Value: value}
	default:
		return nil, fmt.Errorf("unknown undo kind %d", kind)
	}
	if kind == UndoPar || kind == UndoScore {
		if err := rec.checkHole(hole); err != nil {
			return nil, fmt.Errorf("undo: %w", err)
		}
	}
	if kind == UndoPlayerName || kind == UndoScore {
		if err := rec.checkPlayer(player); err != nil {
			return nil, fmt.Errorf("undo: %w", err)
		}
	}
	return rec, nil
}

// encoder and decoder keep the first error and turn later calls into
// no-ops, so the field lists above read straight through.
type encoder struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (e *encoder) write(p []byte) {
	if e.err != nil {
		return
	}
	n, err := e.w.Write(p)
	e.n += int64(n)
	e.err = err
}

func (e *encoder) int(v int) {
	if e.err == nil && (v < math.MinInt32 || v > math.MaxInt32) {
		e.err = fmt.Errorf("value %d does not fit in int32", v)
	}
	var b [4]byte
	byteOrder.PutUint32(b[:], uint32(int32(v)))
	e.write(b[:])
}

func (e *encoder) bool(v bool) {
	if v {
		e.write([]byte{1})
	} else {
		e.write([]byte{0})
	}
}

func (e *encoder) string(s string) {
	if e.err == nil && len(s) > maxStringLen {
		e.err = fmt.Errorf("string length %d exceeds %d", len(s), maxStringLen)
	}
	e.int(len(s))
	e.write([]byte(s))
}

type decoder struct {
	r   *bufio.Reader
	n   int64
	err error
}

func (d *decoder) read(p []byte) {
	if d.err != nil {
		return
	}
	n, err := io.ReadFull(d.r, p)
	d.n += int64(n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	d.err = err
}

func (d *decoder) int() int32 {
	var b [4]byte
	d.read(b[:])
	if d.err != nil {
		return 0
	}
	return int32(byteOrder.Uint32(b[:]))
}

func (d *decoder) bool() bool {
	var b [1]byte
	d.read(b[:])
	if d.err != nil {
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	}
	d.err = fmt.Errorf("bad bool byte %#x", b[0])
	return false
}

func (d *decoder) string() string {
	n := d.int()
	if d.err != nil {
		return ""
	}
	if n < 0 || n > maxStringLen {
		d.err = fmt.Errorf("string length %d out of bounds", n)
		return ""
	}
	b := make([]byte, n)
	d.read(b)
	if d.err != nil {
		return ""
	}
	return string(b)
}
