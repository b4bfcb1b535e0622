package statemachine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   Actor
		allowed bool
	}{
		{"accept", models.StatusPending, models.StatusAccepted, ActorDelivery, true},
		{"dispatch", models.StatusAccepted, models.StatusOutForDelivery, ActorDelivery, true},
		{"deliver", models.StatusOutForDelivery, models.StatusDelivered, ActorDelivery, true},
		{"skip to delivered", models.StatusPending, models.StatusDelivered, ActorDelivery, false},
		{"skip a step", models.StatusAccepted, models.StatusDelivered, ActorDelivery, false},
		{"backward", models.StatusOutForDelivery, models.StatusAccepted, ActorDelivery, false},
		{"customer cannot advance", models.StatusPending, models.StatusAccepted, ActorCustomer, false},
		{"nothing leaves delivered", models.StatusDelivered, models.StatusPending, ActorDelivery, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.actor)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))
		})
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	err := CanTransition(models.StatusDelivered, models.StatusAccepted, ActorDelivery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none (terminal state)")

	err = CanTransition(models.StatusPending, models.StatusDelivered, ActorDelivery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Valid transitions from Pending are: Accepted")
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t, []models.OrderStatus{models.StatusAccepted}, ValidTransitionsFrom(models.StatusPending))
	assert.Empty(t, ValidTransitionsFrom(models.StatusDelivered))
	assert.True(t, IsTerminal(models.StatusDelivered))
	assert.False(t, IsTerminal(models.StatusAccepted))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(models.StatusPending))
	for _, s := range []models.OrderStatus{models.StatusAccepted, models.StatusOutForDelivery, models.StatusDelivered} {
		assert.False(t, CanCancel(s), s)
	}
}

func TestGetAllTransitionsIsACopy(t *testing.T) {
	all := GetAllTransitions()
	require.Len(t, all, 3)
	all[0].To = models.StatusDelivered
	assert.NoError(t, CanTransition(models.StatusPending, models.StatusAccepted, ActorDelivery))
}
