package universe

import (
	"math/rand"
	"testing"
)

type fixedSource float64

func (f fixedSource) Float64() float64 {
	return float64(f)
}

func TestCellAdvance(t *testing.T) {
	tests := []struct {
		name       string
		from       State
		neighbours int
		want       State
	}{
		{"alive, no neighbours", Alive, 0, Dead},
		{"alive, underpopulation", Alive, 1, Dead},
		{"alive, survives with two", Alive, 2, Alive},
		{"alive, survives with three", Alive, 3, Alive},
		{"alive, overpopulation", Alive, 4, Dead},
		{"alive, full neighbourhood", Alive, 8, Dead},
		{"alive, out of range count", Alive, 12, Dead},
		{"alive, negative count", Alive, -1, Dead},
		{"dead, reproduction", Dead, 3, Alive},
		{"dead, two neighbours", Dead, 2, Dead},
		{"dead, four neighbours", Dead, 4, Dead},
		{"dead, no neighbours", Dead, 0, Dead},
		{"dead, out of range count", Dead, 9, Dead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCell(tt.from)
			c.Advance(tt.neighbours)
			if c.State() != tt.want {
				t.Errorf("Advance(%d) from %v = %v, want %v", tt.neighbours, tt.from, c.State(), tt.want)
			}
		})
	}
}

func TestCellAdvanceTruthTable(t *testing.T) {
	for n := 0; n <= 16; n++ {
		alive := NewCell(Alive)
		alive.Advance(n)
		if got, want := alive.Alive(), n == 2 || n == 3; got != want {
			t.Errorf("alive cell with %d neighbours: alive = %v, want %v", n, got, want)
		}

		dead := NewCell(Dead)
		dead.Advance(n)
		if got, want := dead.Alive(), n == 3; got != want {
			t.Errorf("dead cell with %d neighbours: alive = %v, want %v", n, got, want)
		}
	}
}

func TestCellString(t *testing.T) {
	if got := NewCell(Alive).String(); got != "◼ " {
		t.Errorf("alive glyph = %q", got)
	}
	if got := NewCell(Dead).String(); got != "◻ " {
		t.Errorf("dead glyph = %q", got)
	}
	var zero Cell
	if zero.Alive() || zero.String() != DeadGlyph {
		t.Errorf("zero cell must be dead, got %v", zero.State())
	}
}

func TestNewRandomCell(t *testing.T) {
	if c := NewRandomCell(fixedSource(0.19), DefAliveProbability); !c.Alive() {
		t.Errorf("0.19 < %v should give an alive cell", DefAliveProbability)
	}
	if c := NewRandomCell(fixedSource(0.2), DefAliveProbability); c.Alive() {
		t.Errorf("0.2 should give a dead cell")
	}

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		if NewRandomCell(r, 0).Alive() {
			t.Fatal("probability 0 gave an alive cell")
		}
		if !NewRandomCell(r, 1).Alive() {
			t.Fatal("probability 1 gave a dead cell")
		}
	}
}
