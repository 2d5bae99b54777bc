package quest

import (
	"context"
	"log/slog"
	"time"

	"github.com/mfarouk/hunterhall/internal/hijri"
	"github.com/mfarouk/hunterhall/internal/notify"
	"github.com/mfarouk/hunterhall/internal/store"
)

// Launcher announces the daily quest window and the fasting reminders.
// Both are once-per-day, guarded by persisted day stamps so a restart
// never re-announces.
type Launcher struct {
	config   *store.ConfigStore
	buffs    *store.BuffStore
	notifier *notify.Service
	logger   *slog.Logger
}

func NewLauncher(config *store.ConfigStore, buffs *store.BuffStore, notifier *notify.Service, logger *slog.Logger) *Launcher {
	return &Launcher{config: config, buffs: buffs, notifier: notifier, logger: logger}
}

// LaunchDaily opens the day's quests: announces the launch and sweeps
// buffs that expired overnight. Reports whether the launch actually fired.
func (l *Launcher) LaunchDaily(ctx context.Context, now time.Time) (bool, error) {
	day := now.Format(DayFormat)

	last, err := l.config.Get(store.KeyLastQuestLaunch)
	if err != nil {
		return false, err
	}
	if last == day {
		return false, nil
	}

	if n, err := l.buffs.DeleteExpired(now); err != nil {
		l.logger.Error("sweep expired buffs", "error", err)
	} else if n > 0 {
		l.logger.Info("swept expired buffs", "count", n)
	}

	l.notifier.Broadcast(ctx, notify.EventQuestLaunch,
		"Today's quests are live",
		"Your daily tasks are waiting. Judgment comes tonight.",
		map[string]any{"day": day})

	if err := l.config.Set(store.KeyLastQuestLaunch, day); err != nil {
		return false, err
	}
	l.logger.Info("daily quests launched", "day", day)
	return true, nil
}

// FastingReminders announces tomorrow's voluntary fast when the evening
// falls before a white day, a Monday or Thursday, or Ashura. Reports
// whether a reminder went out.
func (l *Launcher) FastingReminders(ctx context.Context, now time.Time) (bool, error) {
	day := now.Format(DayFormat)

	last, err := l.config.Get(store.KeyLastFastingNotice)
	if err != nil {
		return false, err
	}
	if last == day {
		return false, nil
	}

	tomorrow := now.AddDate(0, 0, 1)
	h := hijri.FromTime(tomorrow)

	var body string
	switch {
	case h.IsAshura():
		body = "Tomorrow is Ashura, the tenth of Muharram. Prepare to fast."
	case h.IsWhiteDay():
		body = "Tomorrow is a white day of the Hijri month. Prepare to fast."
	case tomorrow.Weekday() == time.Monday:
		body = "Tomorrow is Monday, a day of the weekly voluntary fast."
	case tomorrow.Weekday() == time.Thursday:
		body = "Tomorrow is Thursday, a day of the weekly voluntary fast."
	default:
		return false, nil
	}

	l.notifier.Broadcast(ctx, notify.EventFastingReminder, "Fasting reminder", body, nil)

	if err := l.config.Set(store.KeyLastFastingNotice, day); err != nil {
		return false, err
	}
	return true, nil
}
