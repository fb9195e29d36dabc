package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nao1215/chatnotify/internal/model"
	"github.com/nao1215/chatnotify/internal/push"
	"github.com/nao1215/chatnotify/internal/store"
)

// Gateway はメッセージ配列をまとめて送信するプッシュゲートウェイ。
type Gateway interface {
	// Send はメッセージを1回のリクエストで送信し、ゲートウェイのレスポンスを返す。
	// ゲートウェイがバッチを拒否した場合は*push.GatewayErrorを返す。
	Send(ctx context.Context, messages []push.Message) (json.RawMessage, error)
}

// Dispatcher はメッセージ作成イベント1件を受信者へのプッシュ通知に変換して送信する。
// 呼び出し間で可変状態を共有しないため、並行に呼び出してよい。
type Dispatcher struct {
	store   store.Reader
	gateway Gateway
	names   *SenderNameResolver
	cache   NameCache
	cfg     Config
	logger  zerolog.Logger
}

// Option はDispatcherの生成オプション。
type Option func(*Dispatcher)

// WithNameCache は送信者表示名のキャッシュを設定する。
func WithNameCache(c NameCache) Option {
	return func(d *Dispatcher) {
		d.cache = c
	}
}

// WithLogger はロガーを設定する。既定では何も出力しない。
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// New は新しいDispatcherを生成する。cfgの検証に失敗した場合はエラーを返す。
func New(st store.Reader, gw Gateway, cfg Config, opts ...Option) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ディスパッチャの設定が不正: %w", err)
	}

	d := &Dispatcher{
		store:   st,
		gateway: gw,
		cfg:     cfg,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.names = NewSenderNameResolver(st, d.cache, cfg.StoreTimeout, d.logger)
	return d, nil
}

// Dispatch はイベントを処理する。
//
// 送信した場合はStatusSucceeded、送信対象がなかった場合はStatusNoOpの結果を返す。
// 入力不正はmodel.ErrInvalidEvent、会話がない場合はErrConversationNotFound、
// ゲートウェイが拒否した場合は*push.GatewayErrorを返す。
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.NotificationEvent) (*Outcome, error) {
	logger := d.logger.With().
		Str("dispatch_id", uuid.NewString()).
		Str("conversation_id", ev.ConversationID).
		Str("sender_id", ev.SenderID).
		Logger()

	if err := ev.Validate(); err != nil {
		logger.Warn().Err(err).Str("step", string(StepValidating)).Msg("イベントが不正")
		observe("failed", reasonInvalidEvent)
		return nil, err
	}

	recipientID, err := d.resolveRecipient(ctx, ev.ConversationID, ev.SenderID)
	if err != nil {
		reason := reasonStoreError
		if errors.Is(err, ErrConversationNotFound) {
			reason = reasonConversationNotFound
		}
		logger.Error().Err(err).Str("step", string(StepResolvingRecipient)).Msg("受信者を決定できない")
		observe("failed", reason)
		return nil, err
	}
	logger = logger.With().Str("recipient_id", recipientID).Logger()

	if !d.notificationsEnabled(ctx, recipientID, logger) {
		return d.finishNoOp(logger, StepCheckingPreference, ReasonNotificationsDisabled), nil
	}

	tokens, reason := d.loadTokens(ctx, recipientID, logger)
	if reason != "" {
		return d.finishNoOp(logger, StepLoadingTokens, reason), nil
	}

	messages := d.compose(composeInput{
		conversationID: ev.ConversationID,
		senderID:       ev.SenderID,
		senderName:     d.names.Resolve(ctx, ev.SenderID),
		content:        ev.Content,
	}, tokens)

	receipt, err := d.send(ctx, messages)
	if err != nil {
		var gwErr *push.GatewayError
		metricReason := reasonGatewayError
		if errors.As(err, &gwErr) {
			metricReason = reasonGatewayRejected
		}
		logger.Error().Err(err).Str("step", string(StepDispatching)).Int("messages", len(messages)).
			Msg("プッシュ通知の送信に失敗")
		observe("failed", metricReason)
		return nil, err
	}

	messagesSent.Add(float64(len(messages)))
	observe(string(StatusSucceeded), reasonSent)
	logger.Info().Str("step", string(StepDispatching)).Int("sent", len(messages)).Msg("プッシュ通知を送信しました")

	return &Outcome{Status: StatusSucceeded, Sent: len(messages), Receipt: receipt}, nil
}

// send はゲートウェイへの送信をタイムアウト付きで行う。
func (d *Dispatcher) send(ctx context.Context, messages []push.Message) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.GatewayTimeout)
	defer cancel()

	start := time.Now()
	receipt, err := d.gateway.Send(ctx, messages)
	gatewayDuration.Observe(time.Since(start).Seconds())
	return receipt, err
}

// finishNoOp はNoOpの終了を記録して結果を返す。
func (d *Dispatcher) finishNoOp(logger zerolog.Logger, step Step, reason string) *Outcome {
	logger.Info().Str("step", string(step)).Str("reason", reason).Msg("送信対象がないため何もせず終了")
	observe(string(StatusNoOp), noOpMetricReason(reason))
	return noOp(reason)
}
