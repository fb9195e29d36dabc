package model

import (
	"errors"
	"strings"
)

// DeviceType はプッシュトークンを登録した端末の種類を表す。
type DeviceType string

const (
	// DeviceTypeIOS はiOS端末を表す。
	DeviceTypeIOS DeviceType = "ios"
	// DeviceTypeAndroid はAndroid端末を表す。
	DeviceTypeAndroid DeviceType = "android"
	// DeviceTypeOther はその他の端末を表す。
	DeviceTypeOther DeviceType = "other"
)

// NotificationEvent はメッセージ作成イベントを表す。ディスパッチの入力になる。
type NotificationEvent struct {
	// ConversationID はメッセージが属する会話のID。
	ConversationID string
	// SenderID は送信者のユーザーID。
	SenderID string
	// Content はメッセージ本文。空文字列もあり得る。
	Content string
}

// ErrInvalidEvent はイベントの必須項目が欠けていることを表す。
var ErrInvalidEvent = errors.New("invalid notification event")

// Validate はイベントの必須項目を検証する。
func (e NotificationEvent) Validate() error {
	if strings.TrimSpace(e.ConversationID) == "" {
		return errors.Join(ErrInvalidEvent, errors.New("conversationId is required"))
	}
	if strings.TrimSpace(e.SenderID) == "" {
		return errors.Join(ErrInvalidEvent, errors.New("senderId is required"))
	}
	return nil
}

// Conversation は2人のユーザー間の会話を表す。ParticipantAとParticipantBは異なる。
type Conversation struct {
	// ID は会話の一意識別子。
	ID string `db:"id"`
	// ParticipantA は参加者の一方のユーザーID。
	ParticipantA string `db:"participant_a"`
	// ParticipantB は参加者のもう一方のユーザーID。
	ParticipantB string `db:"participant_b"`
}

// OtherParticipant は送信者ではない側の参加者を返す。
// 送信者がどちらの参加者とも一致しない場合はParticipantAを返す。
func (c Conversation) OtherParticipant(senderID string) string {
	if c.ParticipantA == senderID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

// Profile はユーザーのプロフィールを表す。送信者の表示名の算出にのみ使う。
type Profile struct {
	// ID はユーザーID。
	ID string `db:"id"`
	// DisplayName は表示名。未設定の場合はnil。
	DisplayName *string `db:"display_name"`
	// Email はメールアドレス。未設定の場合はnil。
	Email *string `db:"email"`
}

// Preference はユーザーの通知設定を表す。レコードがない場合は通知有効として扱う。
type Preference struct {
	// UserID はユーザーID。
	UserID string `db:"user_id"`
	// NotificationsEnabled はプッシュ通知を受け取るかどうか。
	NotificationsEnabled bool `db:"notifications_enabled"`
}

// PushToken はユーザー端末のプッシュトークンを表す。
type PushToken struct {
	// UserID はトークンの所有者。
	UserID string `db:"user_id"`
	// Token はプッシュゲートウェイに渡す宛先トークン。
	Token string `db:"token"`
	// DeviceType は登録端末の種類。
	DeviceType DeviceType `db:"device_type"`
	// IsActive は有効なトークンかどうか。
	IsActive bool `db:"is_active"`
}
