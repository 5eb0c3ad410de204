package universe

import (
	"strings"

	"github.com/pkg/errors"
)

//DefSize is the default universe dimension
const DefSize = 64

var (
	ErrInvalidSize        = errors.New("universe size must be a positive integer")
	ErrInvalidProbability = errors.New("alive probability must be within [0, 1]")
	ErrNotSquare          = errors.New("universe grid must be square")
	ErrNilRandomSource    = errors.New("random source is required")
)

var DefaultUniverseOptions = Options{
	Size:             DefSize,
	AliveProbability: DefAliveProbability,
}

//offsets of the Moore neighbourhood
var neighbourOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{1, 1}, {1, 0}, {1, -1},
	{0, 1}, {0, -1},
}

//Options represents the Universe's configurable options
type Options struct {
	Size             int
	AliveProbability float64
}

//Universe is the square bounded field where cells live
//it is not safe for concurrent use, callers must serialize access
//next is the spare buffer swapped with cells on every tick
type Universe struct {
	size  int
	cells [][]Cell
	next  [][]Cell
}

//New creates the universe settled with random cells
func New(o *Options, r RandomSource) (*Universe, error) {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	if o.Size <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "size %d", o.Size)
	}
	//NaN is out of range as well
	if !(o.AliveProbability >= 0 && o.AliveProbability <= 1) {
		return nil, errors.Wrapf(ErrInvalidProbability, "probability %v", o.AliveProbability)
	}
	if r == nil {
		return nil, ErrNilRandomSource
	}

	u := newUniverse(o.Size)
	for i := range u.cells {
		for j := range u.cells[i] {
			u.cells[i][j] = NewRandomCell(r, o.AliveProbability)
		}
	}
	return u, nil
}

//FromCells creates the universe from a literal grid, rows first
//the cells are copied
func FromCells(cells [][]Cell) (*Universe, error) {
	size := len(cells)
	if size == 0 {
		return nil, errors.Wrap(ErrInvalidSize, "empty grid")
	}
	for i, row := range cells {
		if len(row) != size {
			return nil, errors.Wrapf(ErrNotSquare, "row %d has %d cells, want %d", i, len(row), size)
		}
	}

	u := newUniverse(size)
	for i := range cells {
		copy(u.cells[i], cells[i])
	}
	return u, nil
}

func newUniverse(size int) *Universe {
	return &Universe{
		size:  size,
		cells: createArea(size),
		next:  createArea(size),
	}
}

//Size returns the dimension of the square field
func (u *Universe) Size() int {
	return u.size
}

//Cell returns the cell at row i, column j
func (u *Universe) Cell(i int, j int) Cell {
	return u.cells[i][j]
}

//Tick advances the universe by one generation
//every next state is calculated into the spare buffer from the current generation,
//then the buffers are swapped
func (u *Universe) Tick() {
	for i := range u.cells {
		for j := range u.cells[i] {
			c := u.cells[i][j]
			c.Advance(u.aliveNeighbours(i, j))
			u.next[i][j] = c
		}
	}
	u.cells, u.next = u.next, u.cells
}

//AliveCells counts the alive cells of the current generation
func (u *Universe) AliveCells() int {
	return u.countCells(Alive)
}

//DeadCells counts the dead cells of the current generation
func (u *Universe) DeadCells() int {
	return u.countCells(Dead)
}

//Equal reports whether both universes hold the same generation
func (u *Universe) Equal(other *Universe) bool {
	if other == nil || u.size != other.size {
		return false
	}
	for i := range u.cells {
		for j := range u.cells[i] {
			if u.cells[i][j] != other.cells[i][j] {
				return false
			}
		}
	}
	return true
}

//String renders the universe: one line per row, one glyph per cell
func (u *Universe) String() string {
	var b strings.Builder
	b.Grow(u.size * (u.size*len(AliveGlyph) + 1))
	for i := range u.cells {
		for j := range u.cells[i] {
			b.WriteString(u.cells[i][j].String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (u *Universe) countCells(s State) (count int) {
	u.walkArea(func(i int, j int, c Cell) {
		if c.state == s {
			count++
		}
	})
	return
}

//aliveNeighbours counts the alive cells around i, j
//positions outside the field are skipped, the field doesn't wrap
func (u *Universe) aliveNeighbours(i int, j int) (count int) {
	u.walkNeighbours(i, j, func(c Cell) {
		if c.state == Alive {
			count++
		}
	})
	return
}

func (u *Universe) walkNeighbours(i int, j int, cb func(c Cell)) {
	for _, o := range neighbourOffsets {
		ni, nj := i+o[0], j+o[1]
		if ni < 0 || nj < 0 || ni >= u.size || nj >= u.size {
			continue
		}
		cb(u.cells[ni][nj])
	}
}

//walkArea calls cb for every cell, rows first
func (u *Universe) walkArea(cb func(i int, j int, c Cell)) {
	for i := range u.cells {
		for j := range u.cells[i] {
			cb(i, j, u.cells[i][j])
		}
	}
}

//createArea allocates size rows backed by one slice
func createArea(size int) [][]Cell {
	area := make([][]Cell, size)
	b := make([]Cell, size*size)
	for i := range area {
		start := size * i
		area[i] = b[start : start+size : start+size]
	}
	return area
}
