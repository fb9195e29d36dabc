// Package store は通知ディスパッチャが参照する外部データストアの読み取りインターフェースを定義する。
//
// 実装はSQLite（internal/store/sqlite）とPostgreSQL（internal/store/postgres）がある。
package store

import (
	"context"
	"errors"

	"github.com/nao1215/chatnotify/internal/model"
)

// ErrNotFound は指定されたレコードが存在しないことを表す。
var ErrNotFound = errors.New("store: record not found")

// Reader はディスパッチャが使用する読み取り専用クエリの集合。
type Reader interface {
	// Conversation はIDで会話を取得する。存在しない場合はErrNotFoundを返す。
	Conversation(ctx context.Context, id string) (model.Conversation, error)
	// Profile はユーザーIDでプロフィールを取得する。存在しない場合はErrNotFoundを返す。
	Profile(ctx context.Context, userID string) (model.Profile, error)
	// Preference はユーザーIDで通知設定を取得する。存在しない場合はErrNotFoundを返す。
	Preference(ctx context.Context, userID string) (model.Preference, error)
	// ActivePushTokens はユーザーの有効なプッシュトークンをすべて取得する。
	ActivePushTokens(ctx context.Context, userID string) ([]model.PushToken, error)
}

// Store はクローズ可能なReader。
type Store interface {
	Reader
	Close() error
}
