package statemachine

import (
	"errors"
	"strings"

	"marketplace/models"
)

// Actor names the side of an order performing a change
type Actor string

const (
	ActorDelivery Actor = "delivery"
	ActorCustomer Actor = "customer"
)

// ErrInvalidTransition is wrapped by every rejection from CanTransition
var ErrInvalidTransition = errors.New("invalid transition")

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// validTransitions is the authoritative state machine definition.
// Orders move forward one step at a time; cancellation is removal, not a status.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusAccepted, Actor: ActorDelivery},
	{From: models.StatusAccepted, To: models.StatusOutForDelivery, Actor: ActorDelivery},
	{From: models.StatusOutForDelivery, To: models.StatusDelivered, Actor: ActorDelivery},
}

// cancellable holds the statuses from which a customer may remove an order
var cancellable = map[models.OrderStatus]bool{
	models.StatusPending: true,
}

type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return &TransitionError{From: from, To: to, Actor: actor}
}

// CanCancel reports whether an order in status may still be removed by its customer
func CanCancel(status models.OrderStatus) bool {
	return cancellable[status]
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	out := make([]Transition, len(validTransitions))
	copy(out, validTransitions)
	return out
}

// TransitionError describes a rejected status change
type TransitionError struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

func (e *TransitionError) Error() string {
	return "invalid transition: " + string(e.From) + " → " + string(e.To) +
		" is not allowed for actor '" + string(e.Actor) + "'. " +
		"Valid transitions from " + string(e.From) + " are: " + describeValidFrom(e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
