package service

import (
	"context"
	"math/rand/v2"
)

// PaymentOutcome is the result of one authorization attempt.
type PaymentOutcome int

const (
	PaymentDeclined PaymentOutcome = iota
	PaymentApproved
)

func (o PaymentOutcome) String() string {
	if o == PaymentApproved {
		return "success"
	}
	return "failed"
}

// PaymentProcessor authorizes a charge.  Implementations stand in for an
// external gateway; an error is treated by the engine as a declined
// payment.
type PaymentProcessor interface {
	Attempt(ctx context.Context, amount float64) (PaymentOutcome, error)
}

// DefaultSuccessRate is the approval probability of the simulator.
const DefaultSuccessRate = 0.7

// Simulator approves each attempt independently with probability
// SuccessRate.  It never retries.
type Simulator struct {
	SuccessRate float64
	// Roll returns a value in [0,1).  Nil uses math/rand/v2.
	Roll func() float64
}

// NewSimulator clamps rate into [0,1].
func NewSimulator(rate float64) *Simulator {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return &Simulator{SuccessRate: rate}
}

// Attempt implements PaymentProcessor.
func (s *Simulator) Attempt(ctx context.Context, _ float64) (PaymentOutcome, error) {
	if err := ctx.Err(); err != nil {
		return PaymentDeclined, err
	}
	roll := rand.Float64
	if s.Roll != nil {
		roll = s.Roll
	}
	if roll() < s.SuccessRate {
		return PaymentApproved, nil
	}
	return PaymentDeclined, nil
}
