package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nao1215/chatnotify/internal/model"
	"github.com/nao1215/chatnotify/internal/store"
)

// setupTestStore はテスト用のインメモリStoreを生成し、テストデータを投入する。
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.Context(), memoryDSN, zerolog.Nop())
	if err != nil {
		t.Fatalf("Storeの生成に失敗: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	seed := []string{
		`INSERT INTO conversations (id, participant_a, participant_b) VALUES ('c1', 'u1', 'u2')`,
		`INSERT INTO profiles (id, display_name, email) VALUES ('u1', 'Alice', 'alice@example.com')`,
		`INSERT INTO profiles (id, display_name, email) VALUES ('u2', NULL, NULL)`,
		`INSERT INTO notification_preferences (user_id, notifications_enabled) VALUES ('u1', 0)`,
		`INSERT INTO notification_preferences (user_id, notifications_enabled) VALUES ('u2', 1)`,
		`INSERT INTO push_tokens (user_id, token, device_type, is_active) VALUES ('u2', 'ExponentPushToken[aaa]', 'ios', 1)`,
		`INSERT INTO push_tokens (user_id, token, device_type, is_active) VALUES ('u2', 'ExpoPushToken[bbb]', 'android', 1)`,
		`INSERT INTO push_tokens (user_id, token, device_type, is_active) VALUES ('u2', 'ExponentPushToken[old]', 'ios', 0)`,
		`INSERT INTO push_tokens (user_id, token, device_type, is_active) VALUES ('u1', 'ExponentPushToken[u1]', 'other', 1)`,
	}
	for _, q := range seed {
		if _, err := s.db.Exec(q); err != nil {
			t.Fatalf("テストデータの投入に失敗: %v (%s)", err, q)
		}
	}
	return s
}

// TestNew はマイグレーションでテーブルが作成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)

	t.Run("同じ参加者同士の会話は作成できないこと", func(t *testing.T) {
		_, err := s.db.Exec(`INSERT INTO conversations (id, participant_a, participant_b) VALUES ('c2', 'u1', 'u1')`)
		if err == nil {
			t.Fatal("CHECK制約違反がエラーにならなかった")
		}
	})

	t.Run("不明な端末種別は登録できないこと", func(t *testing.T) {
		_, err := s.db.Exec(`INSERT INTO push_tokens (user_id, token, device_type) VALUES ('u3', 'x', 'windows')`)
		if err == nil {
			t.Fatal("CHECK制約違反がエラーにならなかった")
		}
	})
}

// TestStore_Conversation は会話の取得を検証する。
func TestStore_Conversation(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	t.Run("存在する会話を取得できること", func(t *testing.T) {
		got, err := s.Conversation(ctx, "c1")
		if err != nil {
			t.Fatalf("Conversation()でエラーが発生: %v", err)
		}
		want := model.Conversation{ID: "c1", ParticipantA: "u1", ParticipantB: "u2"}
		if got != want {
			t.Errorf("Conversation() = %+v, want %+v", got, want)
		}
	})

	t.Run("存在しない会話はErrNotFoundになること", func(t *testing.T) {
		_, err := s.Conversation(ctx, "missing")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Conversation() error = %v, want ErrNotFound", err)
		}
	})
}

// TestStore_Profile はプロフィールの取得を検証する。
func TestStore_Profile(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	t.Run("表示名とメールアドレスを取得できること", func(t *testing.T) {
		got, err := s.Profile(ctx, "u1")
		if err != nil {
			t.Fatalf("Profile()でエラーが発生: %v", err)
		}
		if got.DisplayName == nil || *got.DisplayName != "Alice" {
			t.Errorf("DisplayName = %v, want Alice", got.DisplayName)
		}
		if got.Email == nil || *got.Email != "alice@example.com" {
			t.Errorf("Email = %v, want alice@example.com", got.Email)
		}
	})

	t.Run("NULLの項目はnilになること", func(t *testing.T) {
		got, err := s.Profile(ctx, "u2")
		if err != nil {
			t.Fatalf("Profile()でエラーが発生: %v", err)
		}
		if got.DisplayName != nil || got.Email != nil {
			t.Errorf("Profile() = %+v, want nil fields", got)
		}
	})

	t.Run("存在しないプロフィールはErrNotFoundになること", func(t *testing.T) {
		if _, err := s.Profile(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Profile() error = %v, want ErrNotFound", err)
		}
	})
}

// TestStore_Preference は通知設定の取得を検証する。
func TestStore_Preference(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		userID  string
		want    bool
		wantErr error
	}{
		{name: "無効の設定を取得できること", userID: "u1", want: false},
		{name: "有効の設定を取得できること", userID: "u2", want: true},
		{name: "設定がない場合はErrNotFoundになること", userID: "u9", wantErr: store.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Preference(ctx, tt.userID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Preference() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Preference()でエラーが発生: %v", err)
			}
			if got.NotificationsEnabled != tt.want {
				t.Errorf("NotificationsEnabled = %v, want %v", got.NotificationsEnabled, tt.want)
			}
		})
	}
}

// TestStore_ActivePushTokens は有効なトークンのみが取得されることを検証する。
func TestStore_ActivePushTokens(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	t.Run("無効なトークンは含まれないこと", func(t *testing.T) {
		got, err := s.ActivePushTokens(ctx, "u2")
		if err != nil {
			t.Fatalf("ActivePushTokens()でエラーが発生: %v", err)
		}
		want := []model.PushToken{
			{UserID: "u2", Token: "ExponentPushToken[aaa]", DeviceType: model.DeviceTypeIOS, IsActive: true},
			{UserID: "u2", Token: "ExpoPushToken[bbb]", DeviceType: model.DeviceTypeAndroid, IsActive: true},
		}
		if len(got) != len(want) {
			t.Fatalf("トークン数 = %d, want %d: %+v", len(got), len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("tokens[%d] = %+v, want %+v", i, got[i], want[i])
			}
		}
	})

	t.Run("トークンがない場合は空になること", func(t *testing.T) {
		got, err := s.ActivePushTokens(ctx, "u9")
		if err != nil {
			t.Fatalf("ActivePushTokens()でエラーが発生: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("トークン数 = %d, want 0", len(got))
		}
	})

	t.Run("キャンセル済みコンテキストではエラーになること", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := s.ActivePushTokens(cctx, "u2"); err == nil {
			t.Fatal("ActivePushTokens()がエラーを返すべきだが、nilが返った")
		}
	})
}
