package services

import (
	"fmt"

	"github.com/heartscript/storefront/app/models"
)

// StatusPolicy decides whether an order may move from one status to another.
type StatusPolicy interface {
	Allow(from, to string) error
}

// FreeFormPolicy accepts any non-empty status, including moving backwards.
type FreeFormPolicy struct{}

func (FreeFormPolicy) Allow(from, to string) error {
	if to == "" {
		return invalid("status is required")
	}
	return nil
}

// TransitionTable only allows the edges it lists. Setting the current status
// again is always allowed.
type TransitionTable map[string][]string

// DefaultTransitions walks an order forward to delivery; any non-terminal
// status may also be cancelled.
var DefaultTransitions = TransitionTable{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusCODPending: {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

func (t TransitionTable) Allow(from, to string) error {
	if to == "" {
		return invalid("status is required")
	}
	if from == to {
		return nil
	}
	if t.Terminal(from) {
		return fmt.Errorf("order is already %s: %w", from, ErrInvalidTransition)
	}
	if _, known := t[to]; !known {
		return fmt.Errorf("unknown status %q: %w", to, ErrInvalidTransition)
	}
	for _, next := range t[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%q -> %q: %w", from, to, ErrInvalidTransition)
}

// Terminal reports whether no further transition leaves status.
func (t TransitionTable) Terminal(status string) bool {
	next, known := t[status]
	return known && len(next) == 0
}
