// Package notify fans judgment and portal events out to connected
// WebSocket clients and registered Web Push endpoints. Delivery is best
// effort: a failed notification is logged and never fails the operation
// that triggered it.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/store"
	"github.com/mfarouk/hunterhall/internal/websocket"
)

// Event types emitted by the engines.
const (
	EventQuestLaunch       = "quest_launch"
	EventFastingReminder   = "fasting_reminder"
	EventJudgmentReward    = "judgment_reward"
	EventJudgmentProtected = "judgment_protected"
	EventJudgmentPenalty   = "judgment_penalty"
	EventPortalSpawned     = "portal_spawned"
	EventPortalStarted     = "portal_started"
	EventPortalCleared     = "portal_cleared"
	EventPortalBroken      = "portal_broken"
)

// Service delivers notifications over both transports.
type Service struct {
	hub     *websocket.Hub
	sender  *PushSender
	pushes  *store.PushStore
	players *store.PlayerStore
	logger  *slog.Logger
}

func NewService(hub *websocket.Hub, sender *PushSender, pushes *store.PushStore, players *store.PlayerStore, logger *slog.Logger) *Service {
	return &Service{
		hub:     hub,
		sender:  sender,
		pushes:  pushes,
		players: players,
		logger:  logger,
	}
}

// Player notifies a single player on every transport they have.
func (s *Service) Player(ctx context.Context, playerID, eventType, title, body string, data map[string]any) {
	s.hub.SendTo(playerID, websocket.Event{
		Type:  eventType,
		Title: title,
		Body:  body,
		Data:  data,
	})

	player, err := s.players.GetByID(playerID)
	if err != nil {
		s.logger.Error("notify: load player", "player_id", playerID, "error", err)
		return
	}
	if player == nil || !player.NotificationsEnabled {
		return
	}

	subs, err := s.pushes.ListByPlayer(playerID)
	if err != nil {
		s.logger.Error("notify: list subscriptions", "player_id", playerID, "error", err)
		return
	}
	for i := range subs {
		s.push(ctx, &subs[i], PushPayload{Title: title, Body: body, Tag: eventType})
	}
}

// Broadcast notifies every connected client and every push endpoint.
func (s *Service) Broadcast(ctx context.Context, eventType, title, body string, data map[string]any) {
	s.hub.Broadcast(websocket.Event{
		Type:  eventType,
		Title: title,
		Body:  body,
		Data:  data,
	})

	subs, err := s.pushes.ListAll()
	if err != nil {
		s.logger.Error("notify: list subscriptions", "error", err)
		return
	}
	for i := range subs {
		s.push(ctx, &subs[i], PushPayload{Title: title, Body: body, Tag: eventType})
	}
}

// push sends with a short exponential backoff; expired endpoints are
// dropped instead of retried.
func (s *Service) push(ctx context.Context, sub *model.PushSubscription, payload PushPayload) {
	if s.sender == nil {
		return
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.sender.Send(sub, payload)
		if errors.Is(err, ErrExpired) {
			return err
		}
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if errors.Is(err, ErrExpired) {
		if derr := s.pushes.DeleteEndpoint(sub.Endpoint); derr != nil {
			s.logger.Error("notify: drop expired endpoint", "error", derr)
		}
		return
	}
	if err != nil {
		s.logger.Warn("notify: push failed", "player_id", sub.PlayerID, "error", err)
	}
}
