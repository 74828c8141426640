package pipeline

import (
	"errors"
	"fmt"
	"time"
)

type State string

const (
	StateCleansing    State = "cleansing"
	StateScoring      State = "scoring"
	StateMarketLookup State = "market_lookup"
	StateVisualizing  State = "visualizing"
	StateReporting    State = "reporting"
	StateRendering    State = "rendering"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Stages lists the working states in execution order.
var Stages = []State{
	StateCleansing,
	StateScoring,
	StateMarketLookup,
	StateVisualizing,
	StateReporting,
	StateRendering,
}

// Message is the progress line shown while a state is running.
func (s State) Message() string {
	switch s {
	case StateCleansing:
		return "Cleaning transcript text..."
	case StateScoring:
		return "Performing sentiment analysis..."
	case StateMarketLookup:
		return "Fetching market data..."
	case StateVisualizing:
		return "Creating visualizations..."
	case StateReporting:
		return "Generating summary report..."
	case StateRendering:
		return "Building PDF report..."
	case StateDone:
		return "Analysis complete!"
	case StateFailed:
		return "Analysis failed."
	default:
		return string(s)
	}
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDegraded Outcome = "degraded"
	OutcomeFatal    Outcome = "fatal"
)

// StageResult records how one stage finished. Err is the warning for a
// degraded stage and the cause for a fatal one.
type StageResult struct {
	State    State
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

var ErrInvalidRequest = errors.New("invalid analysis request")

// StageError is returned when a stage fails and the run moves to StateFailed.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
