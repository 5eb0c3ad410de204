package simulation

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"termlife/src/universe"
)

type recorder struct {
	sync.Mutex
	statuses []Status
	ch       chan Status
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Status, 1024)}
}

func (r *recorder) Refresh(s Status) {
	r.Lock()
	r.statuses = append(r.statuses, s)
	r.Unlock()
	select {
	case r.ch <- s:
	default:
	}
}

func (r *recorder) all() []Status {
	r.Lock()
	defer r.Unlock()
	return append([]Status(nil), r.statuses...)
}

//waitFor reads refreshes until cond holds
func (r *recorder) waitFor(t *testing.T, cond func(s Status) bool) Status {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s := <-r.ch:
			if cond(s) {
				return s
			}
		case <-timeout:
			t.Fatal("timed out waiting for the simulation")
			return Status{}
		}
	}
}

func randomSeeder(size int, seed int64) Seeder {
	return func() (*universe.Universe, error) {
		return universe.New(&universe.Options{Size: size, AliveProbability: universe.DefAliveProbability}, rand.New(rand.NewSource(seed)))
	}
}

func literalSeeder(rows ...string) Seeder {
	return func() (*universe.Universe, error) {
		cells := make([][]universe.Cell, len(rows))
		for i, r := range rows {
			for _, ch := range r {
				s := universe.Dead
				if ch == '#' {
					s = universe.Alive
				}
				cells[i] = append(cells[i], universe.NewCell(s))
			}
		}
		return universe.FromCells(cells)
	}
}

func runToFinish(t *testing.T, o Options, seed Seeder) (*Simulation, *recorder) {
	t.Helper()
	o.ExitOnFinish = true
	s, err := New(o, seed)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := newRecorder()
	s.RegisterViewer(r)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return s, r
}

func TestRunMaxSteps(t *testing.T) {
	const size, steps = 16, 5
	s, r := runToFinish(t, Options{MaxSteps: steps}, randomSeeder(size, 11))

	st := s.Status()
	if st.Mode != RunningStateFinished || st.Reason != ReasonMaxSteps {
		t.Errorf("mode %v reason %q, want finished by max steps", st.Mode, st.Reason)
	}
	if st.Generation != steps {
		t.Errorf("generation = %d, want %d", st.Generation, steps)
	}
	if st.Alive+st.Dead != size*size {
		t.Errorf("alive %d + dead %d != %d", st.Alive, st.Dead, size*size)
	}

	//initial refresh plus one per step
	statuses := r.all()
	if len(statuses) != steps+1 {
		t.Fatalf("got %d refreshes, want %d", len(statuses), steps+1)
	}
	for i, got := range statuses {
		if got.Generation != i {
			t.Errorf("refresh %d has generation %d", i, got.Generation)
		}
	}

	u, _ := randomSeeder(size, 11)()
	for i := 0; i < steps; i++ {
		u.Tick()
	}
	if st.Text != u.String() {
		t.Errorf("simulation diverged from a directly ticked universe:\n%s\nwant\n%s", st.Text, u)
	}
}

func TestRunStopWhenStill(t *testing.T) {
	s, _ := runToFinish(t, Options{StopWhenStill: true}, literalSeeder(
		"....",
		".##.",
		".##.",
		"....",
	))
	st := s.Status()
	if st.Reason != ReasonStill || st.Generation != 1 {
		t.Errorf("reason %q at generation %d, want %q at 1", st.Reason, st.Generation, ReasonStill)
	}
	if st.Alive != 4 {
		t.Errorf("alive = %d, want 4", st.Alive)
	}
}

func TestRunStopWhenExtinct(t *testing.T) {
	s, _ := runToFinish(t, Options{StopWhenStill: true}, literalSeeder(
		"...",
		".#.",
		"...",
	))
	st := s.Status()
	if st.Reason != ReasonExtinct || st.Generation != 1 {
		t.Errorf("reason %q at generation %d, want %q at 1", st.Reason, st.Generation, ReasonExtinct)
	}
	if st.Dead != 9 {
		t.Errorf("dead = %d, want 9", st.Dead)
	}
}

func TestRunOscillatorIsNotStill(t *testing.T) {
	s, _ := runToFinish(t, Options{StopWhenStill: true, MaxSteps: 6}, literalSeeder(
		".....",
		"..#..",
		"..#..",
		"..#..",
		".....",
	))
	if st := s.Status(); st.Reason != ReasonMaxSteps {
		t.Errorf("blinker finished with %q", st.Reason)
	}
}

func TestStepWhilePaused(t *testing.T) {
	s, err := New(Options{Interval: time.Hour, StartPaused: true}, randomSeeder(8, 5))
	if err != nil {
		t.Fatal(err)
	}
	r := newRecorder()
	s.RegisterViewer(r)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for i := 0; i < 3; i++ {
		s.Step()
	}
	st := r.waitFor(t, func(s Status) bool { return s.Generation == 3 })
	if st.Mode != RunningStateManual {
		t.Errorf("mode after steps = %v, want paused", st.Mode)
	}

	s.Resume()
	r.waitFor(t, func(s Status) bool { return s.Mode == RunningStateRun })
	s.TogglePause()
	r.waitFor(t, func(s Status) bool { return s.Mode == RunningStateManual })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}
	if got := s.Status().Generation; got != 3 {
		t.Errorf("generation = %d, want 3 with an hour interval", got)
	}
}

func TestReseed(t *testing.T) {
	calls := 0
	seed := func() (*universe.Universe, error) {
		calls++
		return randomSeeder(8, int64(calls))()
	}
	s, err := New(Options{Interval: time.Hour, StartPaused: true}, seed)
	if err != nil {
		t.Fatal(err)
	}
	r := newRecorder()
	s.RegisterViewer(r)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	s.Step()
	r.waitFor(t, func(s Status) bool { return s.Generation == 1 })
	s.Reseed()
	st := r.waitFor(t, func(s Status) bool { return s.Generation == 0 })
	if st.Alive+st.Dead != 64 {
		t.Errorf("reseeded counts %d + %d != 64", st.Alive, st.Dead)
	}
	cancel()
	if calls != 2 {
		t.Errorf("seeder called %d times, want 2", calls)
	}
}

func TestStatusWhileRunning(t *testing.T) {
	const size = 24
	s, err := New(Options{MaxSteps: 300, ExitOnFinish: true}, randomSeeder(size, 3))
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(context.Background())
	}()

	for {
		st := s.Status()
		if st.Alive+st.Dead != size*size {
			t.Fatalf("inconsistent status at generation %d: %d + %d", st.Generation, st.Alive, st.Dead)
		}
		if st.Mode == RunningStateFinished {
			break
		}
	}
	<-done
}

func TestNew(t *testing.T) {
	if _, err := New(DefaultOptions, nil); err == nil {
		t.Error("expected error without seeder")
	}
	if _, err := New(Options{Interval: -time.Second}, randomSeeder(4, 1)); err == nil {
		t.Error("expected error for negative interval")
	}
	_, err := New(DefaultOptions, func() (*universe.Universe, error) {
		return universe.New(&universe.Options{Size: 0}, rand.New(rand.NewSource(1)))
	})
	if !errors.Is(err, universe.ErrInvalidSize) {
		t.Errorf("New with invalid seeder = %v, want ErrInvalidSize", err)
	}
}

func TestRunningStateString(t *testing.T) {
	for st, want := range map[RunningState]string{
		RunningStateManual:   "paused",
		RunningStateRun:      "running",
		RunningStateFinished: "finished",
		RunningState(42):     "unknown",
	} {
		if got := st.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(st), got, want)
		}
	}
}
