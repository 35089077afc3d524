package scenario

// Observer receives lifecycle callbacks. Callbacks run on the runner's
// goroutine and must not panic. Embed BaseObserver to implement only the
// callbacks you need.
type Observer interface {
	// Started is called once before the first execution runs. All
	// executions are already built.
	Started(w *World)
	// Finished is called once after the last execution ran.
	Finished(w *World)
	ScenarioStarted(e *Execution)
	ScenarioFinished(e *Execution)
	// StepStarted and StepFinished are called for every group and step
	// that is run, including those found to be ignored. Skipped nodes are
	// not reported.
	StepStarted(n Node)
	StepFinished(n Node)
}

// BaseObserver implements Observer with no-ops.
type BaseObserver struct{}

func (BaseObserver) Started(*World) {}
func (BaseObserver) Finished(*World) {}
func (BaseObserver) ScenarioStarted(*Execution) {}
func (BaseObserver) ScenarioFinished(*Execution) {}
func (BaseObserver) StepStarted(Node) {}
func (BaseObserver) StepFinished(Node) {}

// Filter decides whether a built execution takes part in the run.
// An execution is kept only if every filter returns true.
type Filter func(*Execution) bool
