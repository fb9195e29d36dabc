package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/chatnotify/internal/store"
)

// resolveRecipient は会話を取得し、送信者ではない参加者を受信者として返す。
// 会話が存在しない場合はErrConversationNotFoundを返す。
func (d *Dispatcher) resolveRecipient(ctx context.Context, conversationID, senderID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	conv, err := d.store.Conversation(ctx, conversationID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrConversationNotFound
	}
	if err != nil {
		return "", fmt.Errorf("会話の取得に失敗: %w", err)
	}
	return conv.OtherParticipant(senderID), nil
}
