// Package subscriber はイベントバス（NATS）からメッセージ作成イベントを購読し、
// HTTPトリガーと同じ通知パイプラインを実行する。
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/nao1215/chatnotify/internal/dispatch"
	"github.com/nao1215/chatnotify/internal/model"
	"github.com/nao1215/chatnotify/pkg/event"
)

// defaultHandleTimeout はイベント1件の処理のタイムアウト。
const defaultHandleTimeout = 30 * time.Second

// ErrInvalidPayload はイベントのデータが不正であることを表す。
var ErrInvalidPayload = errors.New("invalid message created payload")

// Dispatcher はイベント1件を処理する通知パイプライン。
type Dispatcher interface {
	Dispatch(ctx context.Context, ev model.NotificationEvent) (*dispatch.Outcome, error)
}

// Subscriber はNATSのサブジェクトを購読してディスパッチを行う。
// 処理に失敗したイベントはログに残すだけで再配信しない。
type Subscriber struct {
	nc         *nats.Conn
	subject    string
	dispatcher Dispatcher
	logger     zerolog.Logger
	timeout    time.Duration
	sub        *nats.Subscription
}

// New は新しいSubscriberを生成する。
func New(nc *nats.Conn, subject string, d Dispatcher, logger zerolog.Logger) *Subscriber {
	return &Subscriber{
		nc:         nc,
		subject:    subject,
		dispatcher: d,
		logger:     logger.With().Str("component", "subscriber").Str("subject", subject).Logger(),
		timeout:    defaultHandleTimeout,
	}
}

// Connect はNATSサーバーに接続する。
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("chatnotify"))
	if err != nil {
		return nil, fmt.Errorf("NATSへの接続に失敗: %w", err)
	}
	return nc, nil
}

// Start は購読を開始する。
func (s *Subscriber) Start() error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Handle(ctx, msg.Data); err != nil {
			s.logger.Error().Err(err).Msg("イベントの処理に失敗")
		}
	})
	if err != nil {
		return fmt.Errorf("サブジェクト %s の購読に失敗: %w", s.subject, err)
	}
	s.sub = sub
	s.logger.Info().Msg("イベントの購読を開始")
	return nil
}

// Stop は購読を解除する。処理中のイベントは完了まで待つ。
func (s *Subscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	if err := s.sub.Drain(); err != nil {
		return fmt.Errorf("購読の解除に失敗: %w", err)
	}
	return nil
}

// Handle はイベント1件をデコードしてディスパッチする。
// MessageCreated以外のイベントは無視する。
func (s *Subscriber) Handle(ctx context.Context, data []byte) error {
	e, err := event.Decode(data)
	if err != nil {
		return err
	}
	if e.EventType != event.TypeMessageCreated {
		s.logger.Debug().Str("event_type", string(e.EventType)).Msg("対象外のイベントを無視")
		return nil
	}

	payload, err := event.DecodeData[event.MessageCreatedData](e)
	if err != nil {
		return err
	}
	if payload.Content == nil {
		return fmt.Errorf("%w: content is required (event_id=%s)", ErrInvalidPayload, e.ID)
	}

	outcome, err := s.dispatcher.Dispatch(ctx, model.NotificationEvent{
		ConversationID: payload.ConversationID,
		SenderID:       payload.SenderID,
		Content:        *payload.Content,
	})
	if err != nil {
		return fmt.Errorf("イベント %s のディスパッチに失敗: %w", e.ID, err)
	}

	s.logger.Debug().Str("event_id", e.ID).Str("status", string(outcome.Status)).Int("sent", outcome.Sent).
		Msg("イベントを処理")
	return nil
}
