package view

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/logrusorgru/aurora"

	"termlife/src/simulation"
)

//DefProgressEvery is how often ConsoleOut reports the progress, in generations
const DefProgressEvery = 10

//ConsoleOut is the headless viewer writing progress lines and the final universe
type ConsoleOut struct {
	w         io.Writer
	au        aurora.Aurora
	every     int
	startTime time.Time
	mu        sync.Mutex
}

func NewConsoleOut(w io.Writer, colors bool, every int) *ConsoleOut {
	if every <= 0 {
		every = DefProgressEvery
	}
	return &ConsoleOut{
		w:     w,
		au:    aurora.NewAurora(colors),
		every: every,
	}
}

//Start prints the running configuration
func (c *ConsoleOut) Start(configuration map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	fmt.Fprintln(c.w, c.au.Bold("Running configuration:"))
	c.printHashData(configuration)
	fmt.Fprintln(c.w, "\nSimulation started...")
}

func (c *ConsoleOut) Refresh(st simulation.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st.Generation > 0 && st.Generation%c.every == 0 {
		fmt.Fprintf(c.w, "  Generation %v: %s %v, %s %v\n",
			st.Generation,
			c.au.Green("alive"), st.Alive,
			c.au.Blue("dead"), st.Dead)
	}
	if st.Mode == simulation.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		fmt.Fprintln(c.w, c.au.Red("\nFinished:"))
		c.printHashData(map[string]interface{}{
			"Last generation": st.Generation,
			"Total time":      totalTime,
			"Alive cells":     st.Alive,
			"Dead cells":      st.Dead,
			"Reason":          st.Reason,
		})
		fmt.Fprint(c.w, st.Text)
	}
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
