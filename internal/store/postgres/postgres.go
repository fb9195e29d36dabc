// Package postgres はPostgreSQLを使ったstore.Storeの実装を提供する。
// 本番環境でアプリケーション本体のデータベースを読み取り専用で参照する。
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nao1215/chatnotify/internal/model"
	"github.com/nao1215/chatnotify/internal/store"
)

// Store はPostgreSQLを使ったstore.Storeの実装。
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New は接続プールを生成し、疎通を確認する。
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("接続プールの生成に失敗: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close は接続プールを閉じる。
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Conversation はIDで会話を取得する。
func (s *Store) Conversation(ctx context.Context, id string) (model.Conversation, error) {
	const q = `SELECT id, participant_a, participant_b FROM conversations WHERE id = $1`

	var c model.Conversation
	if err := s.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.ParticipantA, &c.ParticipantB); err != nil {
		return model.Conversation{}, wrapNotFound(err, "会話の取得に失敗")
	}
	return c, nil
}

// Profile はユーザーIDでプロフィールを取得する。
func (s *Store) Profile(ctx context.Context, userID string) (model.Profile, error) {
	const q = `SELECT id, display_name, email FROM profiles WHERE id = $1`

	var p model.Profile
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&p.ID, &p.DisplayName, &p.Email); err != nil {
		return model.Profile{}, wrapNotFound(err, "プロフィールの取得に失敗")
	}
	return p, nil
}

// Preference はユーザーIDで通知設定を取得する。
func (s *Store) Preference(ctx context.Context, userID string) (model.Preference, error) {
	const q = `SELECT user_id, notifications_enabled FROM notification_preferences WHERE user_id = $1`

	var p model.Preference
	if err := s.pool.QueryRow(ctx, q, userID).Scan(&p.UserID, &p.NotificationsEnabled); err != nil {
		return model.Preference{}, wrapNotFound(err, "通知設定の取得に失敗")
	}
	return p, nil
}

// ActivePushTokens はユーザーの有効なプッシュトークンを取得する。
func (s *Store) ActivePushTokens(ctx context.Context, userID string) ([]model.PushToken, error) {
	const q = `
		SELECT user_id, token, device_type, is_active
		FROM push_tokens
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザー %s のプッシュトークンの取得に失敗: %w", userID, err)
	}

	tokens, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.PushToken, error) {
		var (
			t          model.PushToken
			deviceType string
		)
		if err := row.Scan(&t.UserID, &t.Token, &deviceType, &t.IsActive); err != nil {
			return model.PushToken{}, err
		}
		t.DeviceType = model.DeviceType(deviceType)
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ユーザー %s のプッシュトークンの読み取りに失敗: %w", userID, err)
	}
	return tokens, nil
}

// wrapNotFound はpgx.ErrNoRowsをstore.ErrNotFoundに変換する。
func wrapNotFound(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
