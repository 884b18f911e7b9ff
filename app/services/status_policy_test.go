package services

import (
	"testing"

	"github.com/heartscript/storefront/app/models"
	"github.com/stretchr/testify/assert"
)

func TestFreeFormPolicyAcceptsAnything(t *testing.T) {
	p := FreeFormPolicy{}
	assert.NoError(t, p.Allow(models.OrderStatusDelivered, models.OrderStatusPending))
	assert.NoError(t, p.Allow(models.OrderStatusPending, "Packed with love"))
	assert.ErrorIs(t, p.Allow(models.OrderStatusPending, ""), ErrValidation)
}

func TestTransitionTable(t *testing.T) {
	tt := DefaultTransitions

	assert.NoError(t, tt.Allow(models.OrderStatusPending, models.OrderStatusConfirmed))
	assert.NoError(t, tt.Allow(models.OrderStatusCODPending, models.OrderStatusConfirmed))
	assert.NoError(t, tt.Allow(models.OrderStatusConfirmed, models.OrderStatusShipped))
	assert.NoError(t, tt.Allow(models.OrderStatusShipped, models.OrderStatusDelivered))
	assert.NoError(t, tt.Allow(models.OrderStatusShipped, models.OrderStatusCancelled))
	assert.NoError(t, tt.Allow(models.OrderStatusShipped, models.OrderStatusShipped))

	assert.ErrorIs(t, tt.Allow(models.OrderStatusDelivered, models.OrderStatusPending), ErrInvalidTransition)
	assert.ErrorIs(t, tt.Allow(models.OrderStatusCancelled, models.OrderStatusConfirmed), ErrInvalidTransition)
	assert.ErrorIs(t, tt.Allow(models.OrderStatusPending, models.OrderStatusDelivered), ErrInvalidTransition)
	assert.ErrorIs(t, tt.Allow(models.OrderStatusPending, "Lost"), ErrInvalidTransition)
	assert.ErrorIs(t, tt.Allow(models.OrderStatusPending, ""), ErrValidation)

	err := tt.Allow(models.OrderStatusDelivered, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "already Delivered")
	assert.NoError(t, tt.Allow(models.OrderStatusDelivered, models.OrderStatusDelivered))

	assert.True(t, tt.Terminal(models.OrderStatusDelivered))
	assert.False(t, tt.Terminal(models.OrderStatusShipped))
}
