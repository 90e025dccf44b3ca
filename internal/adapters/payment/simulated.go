// Package payment provides the simulated payment collaborator. The real
// product charges through an external proxy; this service only needs the
// confirmation signal.
package payment

import (
	"context"
	"time"
)

// Simulated confirms every charge after a short verification delay.
type Simulated struct {
	Delay time.Duration
}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Confirm(ctx context.Context) error {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
