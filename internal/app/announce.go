package app

import (
	"context"
	"time"

	"condor-bot/internal/alerts"

	"go.uber.org/zap"
)

// scheduleAnnounce arms the one-shot morning announcement. If the
// configured time has already passed today, nothing fires.
func (a *App) scheduleAnnounce(ctx context.Context) {
	at := a.cfg.Telegram.AnnounceAt
	if at.IsZero() {
		return
	}
	wait := at.Until(time.Now())
	if wait < 0 {
		a.log.Debug("announcement time already passed", zap.String("at", at.String()))
		return
	}
	go func() {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			a.notify(ctx, alerts.MorningMessage(a.cfg.Strategy, a.cfg.Feed.Index))
		}
	}()
}
