package simulation

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"

	"termlife/src/universe"
)

//The simulation running state at the concrete moment
type RunningState int

const (
	RunningStateManual RunningState = iota
	RunningStateRun
	RunningStateFinished
)

//reasons to finish
const (
	ReasonMaxSteps = "max steps"
	ReasonExtinct  = "extinct"
	ReasonStill    = "still"
)

//default options
const (
	DefSimulationInterval = time.Millisecond * 250
	DefControlQueue       = 8
)

var DefaultOptions = Options{
	Interval: DefSimulationInterval,
}

//Options represents the Simulation's configurable options
//MaxSteps limits the simulation, 0 is unlimited
//ExitOnFinish makes Run return once the simulation is finished
type Options struct {
	Interval      time.Duration
	MaxSteps      int
	StopWhenStill bool
	StartPaused   bool
	ExitOnFinish  bool
	Logger        *log.Logger
}

//Status represents the status of the simulation at concrete moment
type Status struct {
	Generation    int
	Mode          RunningState
	Size          int
	Alive         int
	Dead          int
	Text          string
	IterationTime time.Duration
	Reason        string
}

//Viewer is the interface to any Viewer - the object who can display simulation data
//Refresh is called from the simulation goroutine, outside of the universe lock
type Viewer interface {
	Refresh(s Status)
}

//Seeder creates a new universe, it's called on start and on every reseed
type Seeder func() (*universe.Universe, error)

//Simulation owns the universe and drives it
//the universe is shared by two roles through a single lock:
//the advancer (the Run loop) and the renderers (Status callers)
type Simulation struct {
	options Options
	seed    Seeder
	world   struct {
		sync.Mutex
		u      *universe.Universe
		status Status
	}
	views     []Viewer
	controlCh chan func()
}

func (s RunningState) String() string {
	switch s {
	case RunningStateManual:
		return "paused"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return "unknown"
}

//New creates the simulation and settles the first universe
func New(o Options, seed Seeder) (*Simulation, error) {
	if seed == nil {
		return nil, errors.New("seeder is required")
	}
	if o.Interval < 0 {
		return nil, errors.Errorf("negative interval %v", o.Interval)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard, "", 0)
	}
	s := &Simulation{
		options:   o,
		seed:      seed,
		controlCh: make(chan func(), DefControlQueue),
	}
	if err := s.settle(); err != nil {
		return nil, err
	}
	return s, nil
}

//RegisterViewer registers the viewer - the simulation will call the viewer when the state is changed
//must be called before Run
func (s *Simulation) RegisterViewer(v Viewer) {
	s.views = append(s.views, v)
}

func (s *Simulation) Options() Options {
	return s.options
}

//Status returns a copy of the current status
func (s *Simulation) Status() Status {
	s.world.Lock()
	defer s.world.Unlock()
	return s.world.status
}

//Step pauses the simulation and does one simulation step, returns immediately
func (s *Simulation) Step() {
	s.enqueue(func() {
		s.world.Lock()
		if s.world.status.Mode == RunningStateFinished {
			s.world.Unlock()
			return
		}
		s.world.status.Mode = RunningStateManual
		s.world.Unlock()
		s.step()
	})
}

//Pause stops the running cycle, returns immediately
func (s *Simulation) Pause() {
	s.enqueue(func() {
		if s.Status().Mode == RunningStateRun {
			s.switchRunningState(RunningStateManual)
		}
	})
}

//Resume continues the running cycle, returns immediately
func (s *Simulation) Resume() {
	s.enqueue(func() {
		if s.Status().Mode == RunningStateManual {
			s.switchRunningState(RunningStateRun)
		}
	})
}

func (s *Simulation) TogglePause() {
	s.enqueue(func() {
		switch s.Status().Mode {
		case RunningStateRun:
			s.switchRunningState(RunningStateManual)
		case RunningStateManual:
			s.switchRunningState(RunningStateRun)
		}
	})
}

//Reseed replaces the universe with a fresh one from the seeder and resets the counters
func (s *Simulation) Reseed() {
	s.enqueue(func() {
		if err := s.settle(); err != nil {
			s.options.Logger.Printf("reseed failed: %v", err)
			return
		}
		s.options.Logger.Printf("reseeded, alive cells: %d", s.Status().Alive)
		s.refreshView()
	})
}

//Run is the main cycle, it executes commands and advances the universe every Interval
//returns when ctx is done, or when finished if ExitOnFinish is set
func (s *Simulation) Run(ctx context.Context) error {
	tickCh, stop := s.ticker()
	defer stop()

	s.refreshView()
	for {
		mode := s.Status().Mode
		if s.options.ExitOnFinish && mode == RunningStateFinished {
			return nil
		}
		//only a running simulation waits for the ticker
		var next <-chan time.Time
		if mode == RunningStateRun {
			next = tickCh
		}
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.controlCh:
			cmd()
		case <-next:
			s.step()
		}
	}
}

//ticker returns the channel signalling the next step
//a zero interval means stepping as fast as possible
func (s *Simulation) ticker() (<-chan time.Time, func()) {
	if s.options.Interval <= 0 {
		ch := make(chan time.Time)
		close(ch)
		return ch, func() {}
	}
	t := time.NewTicker(s.options.Interval)
	return t.C, t.Stop
}

func (s *Simulation) enqueue(cmd func()) {
	select {
	case s.controlCh <- cmd:
	default:
		//the queue is full, the user is faster than the loop
	}
}

//settle replaces the universe, resets the counters
func (s *Simulation) settle() error {
	u, err := s.seed()
	if err != nil {
		return errors.Wrap(err, "seed universe")
	}
	mode := RunningStateRun
	if s.options.StartPaused {
		mode = RunningStateManual
	}

	s.world.Lock()
	defer s.world.Unlock()
	s.world.u = u
	s.world.status = Status{
		Mode:  mode,
		Size:  u.Size(),
		Alive: u.AliveCells(),
		Dead:  u.DeadCells(),
		Text:  u.String(),
	}
	return nil
}

//step does the new one generation for entire universe
func (s *Simulation) step() {
	s.world.Lock()
	u := s.world.u
	st := &s.world.status

	start := time.Now()
	u.Tick()
	text := u.String()
	st.IterationTime = time.Since(start)

	still := text == st.Text
	st.Generation++
	st.Text = text
	st.Alive = u.AliveCells()
	st.Dead = u.DeadCells()

	switch {
	case s.options.MaxSteps > 0 && st.Generation >= s.options.MaxSteps:
		st.Mode, st.Reason = RunningStateFinished, ReasonMaxSteps
	case s.options.StopWhenStill && st.Alive == 0:
		st.Mode, st.Reason = RunningStateFinished, ReasonExtinct
	case s.options.StopWhenStill && still:
		st.Mode, st.Reason = RunningStateFinished, ReasonStill
	}
	finished := st.Mode == RunningStateFinished
	generation, reason := st.Generation, st.Reason
	s.world.Unlock()

	if finished {
		s.options.Logger.Printf("finished at generation %d: %s", generation, reason)
	}
	s.refreshView()
}

func (s *Simulation) switchRunningState(to RunningState) {
	s.world.Lock()
	s.world.status.Mode = to
	s.world.Unlock()
	s.refreshView()
}

//refreshView calls Refresh event for all registered views
func (s *Simulation) refreshView() {
	if len(s.views) == 0 {
		return
	}
	st := s.Status()
	for _, v := range s.views {
		v.Refresh(st)
	}
}
