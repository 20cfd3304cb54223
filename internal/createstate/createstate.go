// Package createstate tracks what the curator has selected while creating a
// node mapping: source paths, a target definition node and the node mapping
// they form. The state is derived from the selection; the transition between
// two states is computed from both states and the setter that caused it.
package createstate

//go:generate go tool stringer -type=State,Setter,CreateTransition -linecomment -output=createstate_string.go

import (
	"errors"
	"fmt"
)

// ErrUnreachable is the panic value (wrapped) for a transition the model
// cannot produce.
var ErrUnreachable = errors.New("unreachable create transition")

// State is the selection state.
type State int

const (
	Nothing         State = iota // NOTHING
	SourceOnly                   // SOURCE_ONLY
	TargetOnly                   // TARGET_ONLY
	SourceAndTarget              // SOURCE_AND_TARGET
	Complete                     // COMPLETE
)

// Setter names what changed last.
type Setter int

const (
	SetterNone        Setter = iota // NONE
	SetterSource                    // SOURCE
	SetterTarget                    // TARGET
	SetterNodeMapping               // NODE_MAPPING
)

// CreateTransition is a move between two states.
type CreateTransition int

const (
	NothingToSource       CreateTransition = iota // NOTHING_TO_SOURCE
	NothingToTarget                               // NOTHING_TO_TARGET
	NothingToComplete                             // NOTHING_TO_COMPLETE
	SourceToNothing                               // SOURCE_TO_NOTHING
	SourceToArmed                                 // SOURCE_TO_ARMED
	SourceToComplete                              // SOURCE_TO_COMPLETE
	TargetToNothing                               // TARGET_TO_NOTHING
	TargetToArmed                                 // TARGET_TO_ARMED
	TargetToComplete                              // TARGET_TO_COMPLETE
	ArmedToNothing                                // ARMED_TO_NOTHING
	ArmedToSource                                 // ARMED_TO_SOURCE
	ArmedToTarget                                 // ARMED_TO_TARGET
	ArmedToArmedSource                            // ARMED_TO_ARMED_SOURCE
	ArmedToArmedTarget                            // ARMED_TO_ARMED_TARGET
	ArmedToCompleteSource                         // ARMED_TO_COMPLETE_SOURCE
	ArmedToCompleteTarget                         // ARMED_TO_COMPLETE_TARGET
	CreateComplete                                // CREATE_COMPLETE
	CompleteToNothing                             // COMPLETE_TO_NOTHING
	CompleteToArmedSource                         // COMPLETE_TO_ARMED_SOURCE
	CompleteToArmedTarget                         // COMPLETE_TO_ARMED_TARGET
	CompleteToComplete                            // COMPLETE_TO_COMPLETE
)

// StateOf derives the state from what is selected.
func StateOf(hasSource, hasTarget, hasNodeMapping bool) State {
	switch {
	case hasNodeMapping:
		return Complete
	case hasSource && hasTarget:
		return SourceAndTarget
	case hasSource:
		return SourceOnly
	case hasTarget:
		return TargetOnly
	default:
		return Nothing
	}
}

// Transition computes the move from one state to another. Moves that drop
// the source or the target are named by what changed: clearing the target
// of an armed or complete selection is ARMED_TO_TARGET. Changing a selection
// without changing its state is not a transition, except for the armed and
// complete states. Transition panics with ErrUnreachable for every other
// combination.
func Transition(from, to State, setter Setter) CreateTransition {
	switch from {
	case Nothing:
		switch to {
		case SourceOnly:
			return NothingToSource
		case TargetOnly:
			return NothingToTarget
		case Complete:
			return NothingToComplete
		}
	case SourceOnly:
		switch to {
		case Nothing:
			return SourceToNothing
		case SourceAndTarget:
			return SourceToArmed
		case Complete:
			return SourceToComplete
		}
	case TargetOnly:
		switch to {
		case Nothing:
			return TargetToNothing
		case SourceAndTarget:
			return TargetToArmed
		case Complete:
			return TargetToComplete
		}
	case SourceAndTarget:
		switch to {
		case Nothing:
			return ArmedToNothing
		case SourceOnly:
			return ArmedToTarget
		case TargetOnly:
			return ArmedToSource
		case SourceAndTarget:
			switch setter {
			case SetterSource:
				return ArmedToArmedSource
			case SetterTarget:
				return ArmedToArmedTarget
			}
		case Complete:
			switch setter {
			case SetterSource:
				return ArmedToCompleteSource
			case SetterTarget:
				return ArmedToCompleteTarget
			case SetterNodeMapping:
				return CreateComplete
			}
		}
	case Complete:
		switch to {
		case Nothing:
			return CompleteToNothing
		case SourceOnly:
			return ArmedToTarget
		case TargetOnly:
			return ArmedToSource
		case SourceAndTarget:
			switch setter {
			case SetterSource:
				return CompleteToArmedSource
			case SetterTarget:
				return CompleteToArmedTarget
			}
		case Complete:
			return CompleteToComplete
		}
	}

	panic(fmt.Errorf("%w: %s to %s by %s", ErrUnreachable, from, to, setter))
}

// isMove reports whether going from one state to another is a transition.
func isMove(from, to State) bool {
	return from != to || from == SourceAndTarget || from == Complete
}
