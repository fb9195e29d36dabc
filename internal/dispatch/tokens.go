package dispatch

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nao1215/chatnotify/internal/model"
)

// loadTokens は受信者の有効なトークンを取得し、形式の正しいものだけを返す。
// 送信対象がない場合は空のスライスとNoOpの理由を返す。取得失敗も送信対象なしとして扱う。
func (d *Dispatcher) loadTokens(ctx context.Context, recipientID string, logger zerolog.Logger) ([]model.PushToken, string) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	logger = logger.With().Str("step", string(StepLoadingTokens)).Logger()

	tokens, err := d.store.ActivePushTokens(ctx, recipientID)
	if err != nil {
		logger.Warn().Err(err).Msg("プッシュトークンの取得に失敗したため送信をスキップ")
		return nil, ReasonNoPushTokens
	}
	if len(tokens) == 0 {
		return nil, ReasonNoPushTokens
	}

	valid := FilterTokens(tokens, d.cfg.TokenPrefixes)
	if dropped := len(tokens) - len(valid); dropped > 0 {
		logger.Debug().Int("dropped", dropped).Msg("形式の不正なトークンを除外")
	}
	if len(valid) == 0 {
		return nil, ReasonNoValidPushTokens
	}
	return valid, ""
}

// FilterTokens は接頭辞のいずれかに一致するトークンだけを元の順序で返す。
func FilterTokens(tokens []model.PushToken, prefixes []string) []model.PushToken {
	valid := make([]model.PushToken, 0, len(tokens))
	for _, t := range tokens {
		if hasAnyPrefix(t.Token, prefixes) {
			valid = append(valid, t)
		}
	}
	return valid
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
