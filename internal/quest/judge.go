package quest

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/notify"
	"github.com/mfarouk/hunterhall/internal/progression"
	"github.com/mfarouk/hunterhall/internal/store"
)

// Judge runs the end-of-day judgment cycle: it re-derives every player's
// assigned tasks, measures completion against the rank-banded bar, and
// settles the day with a reward, a protected failure, or a penalty.
type Judge struct {
	players   *store.PlayerStore
	subs      *store.SubmissionStore
	buffs     *store.BuffStore
	penalties *store.PenaltyStore
	config    *store.ConfigStore
	notifier  *notify.Service
	logger    *slog.Logger
	rng       *rand.Rand
}

func NewJudge(
	players *store.PlayerStore,
	subs *store.SubmissionStore,
	buffs *store.BuffStore,
	penalties *store.PenaltyStore,
	config *store.ConfigStore,
	notifier *notify.Service,
	logger *slog.Logger,
	rng *rand.Rand,
) *Judge {
	return &Judge{
		players:   players,
		subs:      subs,
		buffs:     buffs,
		penalties: penalties,
		config:    config,
		notifier:  notifier,
		logger:    logger,
		rng:       rng,
	}
}

// requiredRatio is the completion bar per rank: the bar rises with rank,
// not the reward.
func requiredRatio(rank progression.Rank) float64 {
	switch rank {
	case progression.RankE:
		return 0.40
	case progression.RankD:
		return 0.50
	case progression.RankC:
		return 0.65
	case progression.RankB:
		return 0.80
	}
	return 1.0
}

// Base amounts for the three penalty kinds, scaled by how badly the day
// went.
const (
	penaltyXPBase    = 250
	penaltyMoneyBase = 50
	penaltyMoneyMin  = 5
)

// Run judges the given quest day for every player, at most once per day.
// Reports whether the cycle actually ran.
func (j *Judge) Run(ctx context.Context, now time.Time) (bool, error) {
	day := now.Format(DayFormat)

	last, err := j.config.Get(store.KeyLastJudgmentRun)
	if err != nil {
		return false, err
	}
	if last == day {
		return false, nil
	}

	// Stamp the day before settling anyone. Credits are deltas, so a rerun
	// after a mid-cycle crash would pay already-settled players twice; a
	// missed tail is the cheaper failure.
	if err := j.config.Set(store.KeyLastJudgmentRun, day); err != nil {
		return false, err
	}

	players, err := j.players.List()
	if err != nil {
		return false, err
	}

	for i := range players {
		if err := j.judgePlayer(ctx, &players[i], now, day); err != nil {
			// One bad player record must not stall the whole hall.
			j.logger.Error("judgment failed", "player_id", players[i].ID, "error", err)
		}
	}

	j.logger.Info("judgment cycle complete", "day", day, "players", len(players))
	return true, nil
}

func (j *Judge) judgePlayer(ctx context.Context, p *model.Player, now time.Time, day string) error {
	assigned := assignedTasks(p, now)
	if len(assigned) == 0 {
		// No assigned tasks means no judgment at all.
		return nil
	}

	subs, err := j.subs.ListForDay(p.ID, day)
	if err != nil {
		return err
	}

	completed := 0
	earned := make(map[model.Aspect]int64)
	failed := make(map[model.Aspect]bool)
	for id, task := range assigned {
		sub, ok := subs[id]
		if !ok {
			failed[task.Aspect()] = true
			continue
		}
		earned[task.Aspect()] += sub.XPGained
		if sub.Completed {
			completed++
		} else {
			failed[task.Aspect()] = true
		}
	}

	ratio := float64(completed) / float64(len(assigned))
	required := requiredRatio(p.Rank)

	switch {
	case ratio >= required:
		if err := j.creditDay(p, earned, now); err != nil {
			return err
		}
		if err := j.players.UpdateStreak(p.ID, p.StreakDays+1, day); err != nil {
			return err
		}
		j.notifier.Player(ctx, p.ID, notify.EventJudgmentReward,
			"Day cleared",
			fmt.Sprintf("You completed %d of %d tasks. The streak holds at %d days.", completed, len(assigned), p.StreakDays+1),
			map[string]any{"ratio": ratio, "required": required})

	case j.consumeProtection(p.ID, now):
		// Protected failure: the buff is spent, the streak survives, and
		// the day's earnings still count.
		if err := j.creditDay(p, earned, now); err != nil {
			return err
		}
		j.notifier.Player(ctx, p.ID, notify.EventJudgmentProtected,
			"Streak protected",
			fmt.Sprintf("You fell short (%d of %d) but your protection absorbed the failure.", completed, len(assigned)),
			map[string]any{"ratio": ratio, "required": required})

	default:
		if err := j.players.UpdateStreak(p.ID, 0, day); err != nil {
			return err
		}
		detail, err := j.applyPenalty(p, ratio, failed)
		if err != nil {
			return err
		}
		j.notifier.Player(ctx, p.ID, notify.EventJudgmentPenalty,
			"Judgment failed",
			fmt.Sprintf("You completed %d of %d tasks, below your rank's bar. %s", completed, len(assigned), detail),
			map[string]any{"ratio": ratio, "required": required})
	}

	if _, err := Recalculate(j.players, p.ID); err != nil {
		return err
	}
	return nil
}

// creditDay moves the day's earned experience into the aspect columns,
// applying any active experience-multiplier buffs.
func (j *Judge) creditDay(p *model.Player, earned map[model.Aspect]int64, now time.Time) error {
	buffs, err := j.buffs.ListActive(p.ID, now)
	if err != nil {
		return err
	}

	for aspect, xp := range earned {
		if xp == 0 {
			continue
		}
		mult := 1.0
		for i := range buffs {
			b := &buffs[i]
			if b.Kind == model.BuffXPMultiplier && b.AppliesTo(aspect, now) {
				mult *= b.Multiplier
			}
		}
		if err := j.players.AddAspectXP(p.ID, aspect, int64(float64(xp)*mult)); err != nil {
			return err
		}
	}
	return nil
}

// consumeProtection spends one streak-protection buff if the player holds
// an unexpired one.
func (j *Judge) consumeProtection(playerID string, now time.Time) bool {
	buffs, err := j.buffs.ListActive(playerID, now)
	if err != nil {
		j.logger.Error("list buffs", "player_id", playerID, "error", err)
		return false
	}
	for i := range buffs {
		if buffs[i].Kind != model.BuffStreakProtection {
			continue
		}
		ok, err := j.buffs.Consume(buffs[i].ID)
		if err != nil {
			j.logger.Error("consume protection", "player_id", playerID, "error", err)
			return false
		}
		if ok {
			return true
		}
	}
	return false
}

// applyPenalty picks one of three penalty kinds at random, scaled by how
// far the player fell short. Returns a human-readable description for the
// notification.
func (j *Judge) applyPenalty(p *model.Player, ratio float64, failed map[model.Aspect]bool) (string, error) {
	severity := 1 - ratio

	switch j.rng.Intn(3) {
	case 0:
		loss := int64(penaltyXPBase * severity)
		targets := make([]model.Aspect, 0, len(failed))
		for a := range failed {
			targets = append(targets, a)
		}
		if len(targets) == 0 {
			// Nothing specific failed; spread the loss over enabled aspects.
			for _, a := range model.Aspects {
				if p.AspectEnabled(a) {
					targets = append(targets, a)
				}
			}
		}
		if len(targets) == 0 || loss == 0 {
			return "No experience was lost.", nil
		}
		share := loss / int64(len(targets))
		if share == 0 {
			share = 1
		}
		for _, a := range targets {
			if err := j.players.AddAspectXP(p.ID, a, -share); err != nil {
				return "", err
			}
		}
		return fmt.Sprintf("You lost %d experience across %d aspects.", share*int64(len(targets)), len(targets)), nil

	case 1:
		loss := int64(float64(p.BasePenalty) * severity)
		if err := j.players.AddCoins(p.ID, -loss); err != nil {
			return "", err
		}
		return fmt.Sprintf("You lost %d coins.", loss), nil

	default:
		amount := int64(penaltyMoneyBase * severity)
		if amount < penaltyMoneyMin {
			amount = penaltyMoneyMin
		}
		if _, err := j.penalties.Create(&model.Penalty{
			PlayerID: p.ID,
			Amount:   amount,
			Currency: p.CurrencyCode,
			Reason:   "daily judgment failure",
		}); err != nil {
			return "", err
		}
		if err := j.players.AddCurrency(p.ID, amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("A real commitment of %d %s is now pending. Submit proof to clear it.", amount, p.CurrencyCode), nil
	}
}
