package universe

//State is the life state of a single Cell
type State uint8

const (
	Dead State = iota
	Alive
)

//glyphs used by Cell.String, one rune plus the trailing space
const (
	AliveGlyph = "◼ "
	DeadGlyph  = "◻ "
)

//DefAliveProbability is the chance of a random cell to be born alive
const DefAliveProbability = 0.2

//RandomSource is the source of randomness used to settle new cells
//*rand.Rand satisfies it
type RandomSource interface {
	Float64() float64
}

//Cell represents one position of the universe
//the zero value is a dead cell
type Cell struct {
	state State
}

func (s State) String() string {
	if s == Alive {
		return "alive"
	}
	return "dead"
}

//NewCell creates the cell with the given state
func NewCell(s State) Cell {
	if s != Alive {
		return Cell{state: Dead}
	}
	return Cell{state: Alive}
}

//NewRandomCell creates the cell which is alive with probability aliveProbability
func NewRandomCell(r RandomSource, aliveProbability float64) Cell {
	if r.Float64() < aliveProbability {
		return Cell{state: Alive}
	}
	return Cell{state: Dead}
}

//State returns the current state of the cell
func (c Cell) State() State {
	return c.state
}

//Alive reports whether the cell is alive
func (c Cell) Alive() bool {
	return c.state == Alive
}

//Advance moves the cell to its next state
//aliveNeighbours must be taken from the generation the cell belongs to
func (c *Cell) Advance(aliveNeighbours int) {
	switch {
	case c.state == Alive && aliveNeighbours < 2:
		//underpopulation
		c.state = Dead
	case c.state == Alive && (aliveNeighbours == 2 || aliveNeighbours == 3):
		c.state = Alive
	case c.state == Alive && aliveNeighbours > 3:
		//overpopulation
		c.state = Dead
	case c.state == Dead && aliveNeighbours == 3:
		//reproduction
		c.state = Alive
	default:
		c.state = Dead
	}
}

func (c Cell) String() string {
	if c.state == Alive {
		return AliveGlyph
	}
	return DeadGlyph
}
