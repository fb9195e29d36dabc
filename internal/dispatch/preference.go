package dispatch

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/nao1215/chatnotify/internal/store"
)

// notificationsEnabled は受信者が通知を受け取るかどうかを返す。
// 設定が明示的に無効の場合だけfalseを返す。設定がない場合や取得に失敗した場合はtrueを返す。
func (d *Dispatcher) notificationsEnabled(ctx context.Context, recipientID string, logger zerolog.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	pref, err := d.store.Preference(ctx, recipientID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return true
	case err != nil:
		logger.Warn().Err(err).Str("step", string(StepCheckingPreference)).
			Msg("通知設定の取得に失敗したため通知有効として続行")
		return true
	default:
		return pref.NotificationsEnabled
	}
}
