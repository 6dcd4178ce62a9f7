package server

import (
	"context"

	"github.com/alanyoungcy/betalert/internal/domain"
	"github.com/alanyoungcy/betalert/internal/server/ws"
)

// DecisionStream publishes placed wagers to the WebSocket hub.
type DecisionStream struct {
	hub *ws.Hub
}

func NewDecisionStream(hub *ws.Hub) *DecisionStream {
	return &DecisionStream{hub: hub}
}

func (s *DecisionStream) DecisionPlaced(_ context.Context, d domain.Decision) {
	s.hub.Publish("decisions", "decision", d)
}
