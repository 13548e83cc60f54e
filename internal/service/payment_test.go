package service_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshmi-kamath/BookMySpace/internal/service"
)

func TestSimulator_Threshold(t *testing.T) {
	sim := service.NewSimulator(service.DefaultSuccessRate)

	sim.Roll = func() float64 { return 0.69 }
	out, err := sim.Attempt(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, service.PaymentApproved, out)

	sim.Roll = func() float64 { return 0.7 }
	out, err = sim.Attempt(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, service.PaymentDeclined, out)
}

func TestSimulator_ClampsRate(t *testing.T) {
	assert.Equal(t, 0.0, service.NewSimulator(-1).SuccessRate)
	assert.Equal(t, 1.0, service.NewSimulator(3).SuccessRate)
}

func TestSimulator_ApprovalFrequency(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	sim := service.NewSimulator(service.DefaultSuccessRate)
	sim.Roll = r.Float64

	const n = 20000
	approved := 0
	for i := 0; i < n; i++ {
		out, err := sim.Attempt(context.Background(), 50)
		require.NoError(t, err)
		if out == service.PaymentApproved {
			approved++
		}
	}
	assert.InDelta(t, 0.7, float64(approved)/n, 0.02)
}

func TestSimulator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := service.NewSimulator(1).Attempt(ctx, 10)
	assert.Error(t, err)
	assert.Equal(t, service.PaymentDeclined, out)
}
