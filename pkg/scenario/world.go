package scenario

import (
	"fmt"
	"strings"
)

// World holds the built executions of a run and the observers notified
// while they run. A Suite owns exactly one World.
type World struct {
	executions []*Execution
	observers  []Observer
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{}
}

// Executions returns the built executions in build order.
func (w *World) Executions() []*Execution {
	return append([]*Execution(nil), w.executions...)
}

// Observers returns the registered observers.
func (w *World) Observers() []Observer {
	return append([]Observer(nil), w.observers...)
}

// AddObserver registers an observer for the next run.
func (w *World) AddObserver(o Observer) {
	w.observers = append(w.observers, o)
}

func (w *World) add(e *Execution) {
	w.executions = append(w.executions, e)
}

func (w *World) notify(fn func(Observer)) {
	for _, o := range w.observers {
		fn(o)
	}
}

// Summary counts executions per status.
func (w *World) Summary() Summary {
	s := Summary{ByStatus: map[Status]int{}}
	for _, e := range w.executions {
		s.add(e.Status())
	}
	return s
}

// Summary is the outcome of a run.
type Summary struct {
	Total    int
	ByStatus map[Status]int
	// Statuses lists the statuses present, in order of first appearance.
	Statuses []Status
}

func (s *Summary) add(st Status) {
	if s.ByStatus == nil {
		s.ByStatus = map[Status]int{}
	}
	if s.ByStatus[st] == 0 {
		s.Statuses = append(s.Statuses, st)
	}
	s.ByStatus[st]++
	s.Total++
}

// Count returns the number of executions with the given status.
func (s Summary) Count(st Status) int { return s.ByStatus[st] }

// Failed reports whether any execution failed or did not finish.
func (s Summary) Failed() bool {
	for st, n := range s.ByStatus {
		if n > 0 && (st == StatusFailed || !st.Terminal()) {
			return true
		}
	}
	return false
}

// String renders "3 scenarios (2 passed, 1 failed)".
func (s Summary) String() string {
	noun := "scenarios"
	if s.Total == 1 {
		noun = "scenario"
	}
	if len(s.Statuses) == 0 {
		return fmt.Sprintf("%d %s", s.Total, noun)
	}
	parts := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		parts[i] = fmt.Sprintf("%d %s", s.ByStatus[st], st)
	}
	return fmt.Sprintf("%d %s (%s)", s.Total, noun, strings.Join(parts, ", "))
}
