// Package portal implements the cooperative group-challenge subsystem:
// spawning timed portals from quest templates, the join/start/complete
// lifecycle, and the group penalty when a public portal breaks.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/mfarouk/hunterhall/internal/hijri"
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/notify"
	"github.com/mfarouk/hunterhall/internal/quest"
	"github.com/mfarouk/hunterhall/internal/store"
)

const (
	// defaultSpawnInterval is used when no portal_interval_hours config
	// is set.
	defaultSpawnInterval = 2 * time.Hour

	// quietWindowEnd is the local hour before which the spawner stays
	// silent. The window starts at midnight.
	quietWindowEnd = 8

	// Clear rewards: base experience comes from the quest; coins roll
	// uniformly in [coinRewardMin, coinRewardMax].
	coinRewardMin = 200
	coinRewardMax = 500
)

// Engine drives the portal lifecycle.
type Engine struct {
	portals  *store.PortalStore
	players  *store.PlayerStore
	config   *store.ConfigStore
	notifier *notify.Service
	logger   *slog.Logger
	rng      *rand.Rand
}

func NewEngine(
	portals *store.PortalStore,
	players *store.PlayerStore,
	config *store.ConfigStore,
	notifier *notify.Service,
	logger *slog.Logger,
	rng *rand.Rand,
) *Engine {
	return &Engine{
		portals:  portals,
		players:  players,
		config:   config,
		notifier: notifier,
		logger:   logger,
		rng:      rng,
	}
}

// Tick is the per-minute check: first expire overdue portals, then
// consider spawning a new one. Deadlines are always re-derived from stored
// timestamps, so a missed tick only delays enforcement.
func (e *Engine) Tick(ctx context.Context, now time.Time) error {
	if err := e.expireOverdue(ctx, now); err != nil {
		e.logger.Error("portal expiry", "error", err)
	}
	return e.maybeSpawn(ctx, now)
}

func (e *Engine) expireOverdue(ctx context.Context, now time.Time) error {
	open, err := e.portals.ListOpen()
	if err != nil {
		return err
	}

	for i := range open {
		p := &open[i]
		q, err := e.portals.GetQuest(p.QuestID)
		if err != nil || q == nil {
			e.logger.Error("quest lookup for portal", "portal_id", p.ID, "error", err)
			continue
		}

		switch p.Status {
		case model.PortalRecruiting:
			if now.Sub(p.CreatedAt) >= model.RecruitTimeout {
				e.breakPortal(ctx, p, q, now, "recruiting timed out")
			}
		case model.PortalActive:
			if p.StartedAt != nil && now.Sub(*p.StartedAt) >= time.Duration(q.DurationMinutes)*time.Minute {
				e.breakPortal(ctx, p, q, now, "time ran out")
			}
		}
	}
	return nil
}

// maybeSpawn spawns at most one portal per tick: seasonal quests first
// (once per calendar day on their Hijri date), then a random regular quest
// once the spawn interval has elapsed. Spawning is suppressed entirely
// during the midnight-to-morning quiet window.
func (e *Engine) maybeSpawn(ctx context.Context, now time.Time) error {
	if now.Hour() < quietWindowEnd {
		return nil
	}

	if spawned, err := e.spawnSeasonal(ctx, now); err != nil {
		return err
	} else if spawned {
		return nil
	}

	last, err := e.portals.LatestSpawn()
	if err != nil {
		return err
	}
	if last != nil && now.Sub(*last) < e.spawnInterval() {
		return nil
	}

	quests, err := e.portals.ListQuests()
	if err != nil {
		return err
	}
	if len(quests) == 0 {
		return nil
	}

	// Random order, take the first quest the current population can
	// actually field.
	order := e.rng.Perm(len(quests))
	for _, idx := range order {
		q := &quests[idx]
		ok, err := e.populationSupports(q)
		if err != nil {
			return err
		}
		if ok {
			return e.spawn(ctx, q, now)
		}
	}

	// Nobody can field any quest: insert a skipped record purely to
	// reset the interval timer and stop spawn-storming.
	fallback := &quests[order[0]]
	if _, err := e.portals.Create(&model.Portal{
		QuestID:    fallback.ID,
		Status:     model.PortalSkipped,
		Visibility: model.PortalPublic,
	}); err != nil {
		return err
	}
	e.logger.Info("portal spawn skipped", "reason", "no eligible cohort")
	return nil
}

func (e *Engine) spawnSeasonal(ctx context.Context, now time.Time) (bool, error) {
	h := hijri.FromTime(now)
	seasonal, err := e.portals.ListSeasonalQuests()
	if err != nil {
		return false, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := range seasonal {
		q := &seasonal[i]
		if q.HijriMonth != h.Month {
			continue
		}
		if q.HijriDay != 0 && q.HijriDay != h.Day {
			continue
		}
		n, err := e.portals.CountSpawnedToday(q.ID, dayStart)
		if err != nil {
			return false, err
		}
		if n > 0 {
			continue
		}
		ok, err := e.populationSupports(q)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		return true, e.spawn(ctx, q, now)
	}
	return false, nil
}

func (e *Engine) populationSupports(q *model.PortalQuest) (bool, error) {
	n, err := e.players.CountEligibleForPortal(q.MinAspectLevel)
	if err != nil {
		return false, err
	}
	return n >= q.PartySize, nil
}

func (e *Engine) spawnInterval() time.Duration {
	raw, err := e.config.Get(store.KeyPortalIntervalHrs)
	if err != nil || raw == "" {
		return defaultSpawnInterval
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours <= 0 {
		return defaultSpawnInterval
	}
	return time.Duration(hours * float64(time.Hour))
}

func (e *Engine) spawn(ctx context.Context, q *model.PortalQuest, now time.Time) error {
	p, err := e.portals.Create(&model.Portal{
		QuestID:    q.ID,
		Status:     model.PortalRecruiting,
		Visibility: model.PortalPublic,
	})
	if err != nil {
		return err
	}

	e.logger.Info("portal spawned", "portal_id", p.ID, "quest", q.Name, "rank", q.Rank)
	e.notifier.Broadcast(ctx, notify.EventPortalSpawned,
		fmt.Sprintf("A %s-rank portal has opened", q.Rank),
		fmt.Sprintf("%s — party of %d, %d minutes once it starts. Recruiting now.", q.Name, q.PartySize, q.DurationMinutes),
		map[string]any{"portal_id": p.ID, "quest_id": q.ID})
	return nil
}

// CreatePrivate opens a private portal owned by the player, who is
// enrolled immediately (paying the usual energy cost).
func (e *Engine) CreatePrivate(ctx context.Context, ownerID string, questID int64, now time.Time) (*model.Portal, error) {
	q, err := e.portals.GetQuest(questID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuestNotFound
	}

	p, err := e.portals.Create(&model.Portal{
		QuestID:    questID,
		Status:     model.PortalRecruiting,
		Visibility: model.PortalPrivate,
		OwnerID:    &ownerID,
	})
	if err != nil {
		return nil, err
	}

	if err := e.Join(ctx, ownerID, p.ID, now); err != nil {
		return nil, err
	}
	return e.portals.Get(p.ID)
}

// Join enrolls a player into a recruiting portal, debiting the flat
// energy cost. A public portal starts automatically the instant its party
// fills.
func (e *Engine) Join(ctx context.Context, playerID, portalID string, now time.Time) error {
	p, err := e.portals.Get(portalID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPortalNotFound
	}
	if p.Status != model.PortalRecruiting {
		return ErrNotRecruiting
	}

	existing, err := e.portals.GetParticipant(portalID, playerID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyJoined
	}

	paid, err := e.players.SpendEnergy(playerID, model.PortalEnergyCost)
	if err != nil {
		return err
	}
	if !paid {
		return ErrInsufficientEnergy
	}

	added, err := e.portals.AddParticipant(portalID, playerID, now)
	if err != nil {
		return err
	}
	if !added {
		// Lost a race with ourselves; hand the energy back.
		if rerr := e.players.RestoreEnergy(playerID, model.PortalEnergyCost); rerr != nil {
			e.logger.Error("refund join energy", "player_id", playerID, "error", rerr)
		}
		return ErrAlreadyJoined
	}

	if p.Visibility == model.PortalPublic {
		if err := e.maybeAutoStart(ctx, p, now); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) maybeAutoStart(ctx context.Context, p *model.Portal, now time.Time) error {
	q, err := e.portals.GetQuest(p.QuestID)
	if err != nil {
		return err
	}
	if q == nil {
		return ErrQuestNotFound
	}

	n, err := e.portals.CountParticipants(p.ID)
	if err != nil {
		return err
	}
	if n < q.PartySize {
		return nil
	}

	won, err := e.portals.Transition(p.ID, model.PortalRecruiting, model.PortalActive, now)
	if err != nil {
		return err
	}
	if won {
		e.notifier.Broadcast(ctx, notify.EventPortalStarted,
			"The portal has started",
			fmt.Sprintf("%s is underway. You have %d minutes.", q.Name, q.DurationMinutes),
			map[string]any{"portal_id": p.ID})
	}
	return nil
}

// StartPrivate starts a private portal on the owner's say-so, regardless
// of how full the party is.
func (e *Engine) StartPrivate(ctx context.Context, ownerID, portalID string, now time.Time) error {
	p, err := e.portals.Get(portalID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPortalNotFound
	}
	if p.Visibility != model.PortalPrivate || p.OwnerID == nil || *p.OwnerID != ownerID {
		return ErrNotOwner
	}
	if p.Status != model.PortalRecruiting {
		return ErrNotRecruiting
	}

	won, err := e.portals.Transition(portalID, model.PortalRecruiting, model.PortalActive, now)
	if err != nil {
		return err
	}
	if !won {
		return ErrNotRecruiting
	}

	q, err := e.portals.GetQuest(p.QuestID)
	if err == nil && q != nil {
		e.notifier.Broadcast(ctx, notify.EventPortalStarted,
			"The portal has started",
			fmt.Sprintf("%s is underway. You have %d minutes.", q.Name, q.DurationMinutes),
			map[string]any{"portal_id": p.ID})
	}
	return nil
}

// Complete records one participant's completion and pays their reward.
// When the last participant completes, exactly one caller wins the
// cleared transition and settles the portal.
func (e *Engine) Complete(ctx context.Context, playerID, portalID string, now time.Time) error {
	p, err := e.portals.Get(portalID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrPortalNotFound
	}
	if p.Status != model.PortalActive || p.StartedAt == nil {
		return ErrNotActive
	}

	q, err := e.portals.GetQuest(p.QuestID)
	if err != nil {
		return err
	}
	if q == nil {
		return ErrQuestNotFound
	}

	pp, err := e.portals.GetParticipant(portalID, playerID)
	if err != nil {
		return err
	}
	if pp == nil {
		return ErrNotParticipant
	}
	if pp.CompletedAt != nil {
		return ErrAlreadyCompleted
	}

	if now.Sub(*p.StartedAt) < time.Duration(q.MinDurationMinutes)*time.Minute {
		return ErrTooSoon
	}

	marked, err := e.portals.MarkCompleted(portalID, playerID, now)
	if err != nil {
		return err
	}
	if !marked {
		return ErrAlreadyCompleted
	}

	// Individual reward: quest experience into its aspect plus a coin
	// roll. Experience lands as a delta; aggregates heal right after.
	coins := int64(coinRewardMin + e.rng.Intn(coinRewardMax-coinRewardMin+1))
	if err := e.players.AddAspectXP(playerID, q.Category, q.BaseXP); err != nil {
		return err
	}
	if err := e.players.AddCoins(playerID, coins); err != nil {
		return err
	}
	if _, err := quest.Recalculate(e.players, playerID); err != nil {
		return err
	}

	remaining, err := e.portals.CountIncomplete(portalID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	// The conditional transition makes the clear fire exactly once even
	// if two finishers race.
	won, err := e.portals.Transition(portalID, model.PortalActive, model.PortalCleared, now)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	participants, err := e.portals.ListParticipants(portalID)
	if err != nil {
		return err
	}
	for i := range participants {
		if err := e.players.IncrementPortalCounter(participants[i].PlayerID, true); err != nil {
			e.logger.Error("portal counter", "player_id", participants[i].PlayerID, "error", err)
		}
	}

	e.logger.Info("portal cleared", "portal_id", portalID, "quest", q.Name)
	e.notifier.Broadcast(ctx, notify.EventPortalCleared,
		"Portal cleared",
		fmt.Sprintf("%s has been cleared by the full party.", q.Name),
		map[string]any{"portal_id": portalID})
	return nil
}

// breakPortal closes a portal as broken and, for public portals, applies
// the rank-banded group penalty to every active player in one bulk
// deduction.
func (e *Engine) breakPortal(ctx context.Context, p *model.Portal, q *model.PortalQuest, now time.Time, reason string) {
	won, err := e.portals.Transition(p.ID, p.Status, model.PortalBroken, now)
	if err != nil {
		e.logger.Error("break portal", "portal_id", p.ID, "error", err)
		return
	}
	if !won {
		return
	}

	participants, err := e.portals.ListParticipants(p.ID)
	if err != nil {
		e.logger.Error("list participants", "portal_id", p.ID, "error", err)
	}
	for i := range participants {
		if err := e.players.IncrementPortalCounter(participants[i].PlayerID, false); err != nil {
			e.logger.Error("portal counter", "player_id", participants[i].PlayerID, "error", err)
		}
	}

	if p.Visibility == model.PortalPublic {
		amount := model.GroupPenalty(q.Rank)
		hit, err := e.players.ApplyGroupPenalty(q.Category, amount)
		if err != nil {
			e.logger.Error("group penalty", "portal_id", p.ID, "error", err)
		} else {
			e.logger.Info("group penalty applied", "portal_id", p.ID, "aspect", q.Category, "amount", amount, "players", hit)
		}
		// Heal aggregates for everyone the bulk deduction touched.
		players, err := e.players.List()
		if err != nil {
			e.logger.Error("reload players after penalty", "error", err)
		} else {
			for i := range players {
				if players[i].Status != model.StatusActive {
					continue
				}
				if _, err := quest.Recalculate(e.players, players[i].ID); err != nil {
					e.logger.Error("recalculate after penalty", "player_id", players[i].ID, "error", err)
				}
			}
		}
	}

	e.logger.Info("portal broken", "portal_id", p.ID, "quest", q.Name, "reason", reason)
	e.notifier.Broadcast(ctx, notify.EventPortalBroken,
		"Portal broken",
		fmt.Sprintf("%s broke: %s.", q.Name, reason),
		map[string]any{"portal_id": p.ID})
}
