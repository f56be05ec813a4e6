package scope

import "fmt"

// State tells whether the translator is inside a function body.
type State int

const (
	Outside State = iota
	Inside
)

func (s State) String() string {
	switch s {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Input classifies one normalized line, or the end of input.
type Input int

const (
	InputHeader Input = iota
	InputMalformedHeader
	InputIndented
	InputUnindented
	InputEnd
)

// Transition lists the actions for one input, in the order they apply:
// close the open function, open a new one, translate the line as a
// statement.
type Transition struct {
	CloseFunction bool
	OpenFunction  bool
	Statement     bool
	Next          State
}

var transitions = map[State]map[Input]Transition{
	Outside: {
		InputHeader:          {OpenFunction: true, Next: Inside},
		InputMalformedHeader: {Next: Outside},
		InputIndented:        {Statement: true, Next: Outside},
		InputUnindented:      {Statement: true, Next: Outside},
		InputEnd:             {Next: Outside},
	},
	Inside: {
		InputHeader:          {CloseFunction: true, OpenFunction: true, Next: Inside},
		InputMalformedHeader: {CloseFunction: true, Next: Outside},
		InputIndented:        {Statement: true, Next: Inside},
		InputUnindented:      {CloseFunction: true, Statement: true, Next: Outside},
		InputEnd:             {CloseFunction: true, Next: Outside},
	},
}

// Tracker follows function boundaries across one translation run.
type Tracker struct {
	state State
}

// New returns a tracker in the Outside state.
func New() *Tracker {
	return &Tracker{state: Outside}
}

func (t *Tracker) State() State {
	return t.state
}

// Step applies input and returns the transition taken.
func (t *Tracker) Step(input Input) Transition {
	transition, ok := transitions[t.state][input]
	if !ok {
		panic(fmt.Sprintf("scope: no transition from %s on input %d", t.state, input))
	}

	t.state = transition.Next
	return transition
}
