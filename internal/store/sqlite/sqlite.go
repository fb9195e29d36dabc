// Package sqlite はSQLiteを使ったstore.Storeの実装を提供する。
// 開発環境と単体テストで使用する。
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/nao1215/chatnotify/internal/model"
	"github.com/nao1215/chatnotify/internal/store"
	"github.com/nao1215/chatnotify/pkg/migration"
)

//go:embed migrations/*.sql
var migrations embed.FS

// memoryDSN はインメモリデータベースを表すDSN。
const memoryDSN = ":memory:"

// Store はSQLiteを使ったstore.Storeの実装。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// New はSQLiteデータベースを開き、未適用のマイグレーションを実行する。
// dsnに":memory:"を指定した場合は接続を1本に固定する。
func New(ctx context.Context, dsn string, logger zerolog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if dsn == memoryDSN {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("busy_timeoutの設定に失敗: %w", err)
	}

	if err := migration.Run(ctx, db.DB, migrations, "migrations", logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}

	return &Store{db: db}, nil
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}

// Conversation はIDで会話を取得する。
func (s *Store) Conversation(ctx context.Context, id string) (model.Conversation, error) {
	var c model.Conversation
	err := s.db.GetContext(ctx, &c,
		"SELECT id, participant_a, participant_b FROM conversations WHERE id = ?", id)
	if err != nil {
		return model.Conversation{}, wrapNotFound(err, "会話の取得に失敗")
	}
	return c, nil
}

// Profile はユーザーIDでプロフィールを取得する。
func (s *Store) Profile(ctx context.Context, userID string) (model.Profile, error) {
	var p model.Profile
	err := s.db.GetContext(ctx, &p,
		"SELECT id, display_name, email FROM profiles WHERE id = ?", userID)
	if err != nil {
		return model.Profile{}, wrapNotFound(err, "プロフィールの取得に失敗")
	}
	return p, nil
}

// Preference はユーザーIDで通知設定を取得する。
func (s *Store) Preference(ctx context.Context, userID string) (model.Preference, error) {
	var p model.Preference
	err := s.db.GetContext(ctx, &p,
		"SELECT user_id, notifications_enabled FROM notification_preferences WHERE user_id = ?", userID)
	if err != nil {
		return model.Preference{}, wrapNotFound(err, "通知設定の取得に失敗")
	}
	return p, nil
}

// ActivePushTokens はユーザーの有効なプッシュトークンを登録順に取得する。
func (s *Store) ActivePushTokens(ctx context.Context, userID string) ([]model.PushToken, error) {
	var tokens []model.PushToken
	err := s.db.SelectContext(ctx, &tokens, `
		SELECT user_id, token, device_type, is_active
		FROM push_tokens
		WHERE user_id = ? AND is_active = 1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("プッシュトークンの取得に失敗: %w", err)
	}
	return tokens, nil
}

// wrapNotFound はsql.ErrNoRowsをstore.ErrNotFoundに変換し、それ以外はメッセージを付けて包む。
func wrapNotFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
