package event

import (
	"encoding/json"
	"time"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeMessageCreated はチャットメッセージが作成されたことを表す。
	TypeMessageCreated Type = "MessageCreated"
)

// Event はイベントバス上を流れるイベントの共通エンベロープ。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// MessageCreatedData はMessageCreatedイベントのデータ。
// HTTPトリガーのリクエストボディと同じフィールド名を使う。
type MessageCreatedData struct {
	// ConversationID はメッセージが属する会話のID。
	ConversationID string `json:"conversationId"`
	// SenderID は送信者のユーザーID。
	SenderID string `json:"senderId"`
	// Content はメッセージ本文。空文字列は許容するが欠落は許容しない。
	Content *string `json:"content"`
}
