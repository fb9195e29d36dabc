package dispatch

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nao1215/chatnotify/internal/model"
)

// fallbackSenderName は表示名を決められない場合に使う名前。
const fallbackSenderName = "Someone"

// ProfileReader はプロフィールを取得するストア。
type ProfileReader interface {
	Profile(ctx context.Context, userID string) (model.Profile, error)
}

// NameCache は送信者の表示名のキャッシュ。
type NameCache interface {
	// GetName はキャッシュ済みの表示名を返す。ない場合はfalseを返す。
	GetName(ctx context.Context, userID string) (string, bool, error)
	// SetName は表示名を保存する。
	SetName(ctx context.Context, userID, name string) error
}

// SenderNameResolver は送信者の表示名を決める。失敗することはない。
type SenderNameResolver struct {
	profiles ProfileReader
	cache    NameCache
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewSenderNameResolver は新しいSenderNameResolverを生成する。cacheはnilでもよい。
func NewSenderNameResolver(profiles ProfileReader, cache NameCache, timeout time.Duration, logger zerolog.Logger) *SenderNameResolver {
	return &SenderNameResolver{profiles: profiles, cache: cache, timeout: timeout, logger: logger}
}

// Resolve は送信者の表示名を返す。
// キャッシュとストアのエラーは無視し、プロフィールがなければ"Someone"を返す。
func (r *SenderNameResolver) Resolve(ctx context.Context, senderID string) string {
	if r.cache != nil {
		name, ok, err := r.cache.GetName(ctx, senderID)
		if err != nil {
			r.logger.Debug().Err(err).Str("sender_id", senderID).Msg("表示名キャッシュを参照できない")
		}
		if ok && name != "" {
			return name
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	profile, err := r.profiles.Profile(ctx, senderID)
	if err != nil {
		r.logger.Debug().Err(err).Str("sender_id", senderID).Msg("送信者のプロフィールを取得できない")
		return fallbackSenderName
	}

	name := DisplayName(profile)
	if r.cache != nil && name != fallbackSenderName {
		if err := r.cache.SetName(ctx, senderID, name); err != nil {
			r.logger.Debug().Err(err).Str("sender_id", senderID).Msg("表示名キャッシュに保存できない")
		}
	}
	return name
}

// DisplayName はプロフィールから表示名を決める。
// 表示名、メールアドレスの@より前、"Someone"の順に採用する。
func DisplayName(p model.Profile) string {
	if p.DisplayName != nil {
		if name := strings.TrimSpace(*p.DisplayName); name != "" {
			return name
		}
	}
	if p.Email != nil {
		local, _, _ := strings.Cut(*p.Email, "@")
		if local = strings.TrimSpace(local); local != "" {
			return local
		}
	}
	return fallbackSenderName
}
