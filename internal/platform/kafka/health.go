// Package kafka holds the event-stream plumbing shared by the relay producer
// and the status projector consumer.
package kafka

import (
	"context"
	"errors"
	"fmt"
)

// Pinger is satisfied by the producer and consumer clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports the stream as healthy only when every registered
// client reaches a broker. Names identify the failing client in readiness output.
type HealthChecker struct {
	names   []string
	clients []Pinger
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

// Add registers a client; nil clients are skipped.
func (h *HealthChecker) Add(name string, p Pinger) *HealthChecker {
	if p != nil {
		h.names = append(h.names, name)
		h.clients = append(h.clients, p)
	}
	return h
}

func (h *HealthChecker) Check(ctx context.Context) error {
	if len(h.clients) == 0 {
		return errors.New("no kafka clients configured")
	}
	var errs []error
	for i, c := range h.clients {
		if err := c.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.names[i], err))
		}
	}
	return errors.Join(errs...)
}

func (h *HealthChecker) Name() string {
	return "kafka"
}
