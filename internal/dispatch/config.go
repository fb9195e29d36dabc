package dispatch

import (
	"errors"
	"time"
	"unicode/utf8"
)

// Config はディスパッチャの調整値。生成時に渡し、処理中は変更しない。
type Config struct {
	// TokenPrefixes は形式が正しいとみなすプッシュトークンの接頭辞。
	TokenPrefixes []string
	// MaxBodyLength は通知本文の最大文字数（省略記号を含む）。
	MaxBodyLength int
	// Ellipsis は本文を切り詰めたときに末尾に付ける文字列。
	Ellipsis string
	// AppScheme はディープリンクのカスタムスキーム。
	AppScheme string
	// AndroidColor はAndroid通知アイコンの色。
	AndroidColor string
	// StoreTimeout はストアへの1回の問い合わせのタイムアウト。
	StoreTimeout time.Duration
	// GatewayTimeout はゲートウェイへの送信のタイムアウト。
	GatewayTimeout time.Duration
}

// DefaultConfig は既定の調整値を返す。
func DefaultConfig() Config {
	return Config{
		TokenPrefixes:  []string{"ExponentPushToken[", "ExpoPushToken["},
		MaxBodyLength:  100,
		Ellipsis:       "...",
		AppScheme:      "app",
		AndroidColor:   "#4F46E5",
		StoreTimeout:   5 * time.Second,
		GatewayTimeout: 10 * time.Second,
	}
}

// Validate は調整値の整合性を検証する。
func (c Config) Validate() error {
	var errs []error
	if len(c.TokenPrefixes) == 0 {
		errs = append(errs, errors.New("at least one token prefix is required"))
	}
	for _, p := range c.TokenPrefixes {
		if p == "" {
			errs = append(errs, errors.New("token prefix must not be empty"))
			break
		}
	}
	if c.MaxBodyLength <= utf8.RuneCountInString(c.Ellipsis) {
		errs = append(errs, errors.New("max body length must be longer than the ellipsis"))
	}
	if c.AppScheme == "" {
		errs = append(errs, errors.New("app scheme is required"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("store timeout must be positive"))
	}
	if c.GatewayTimeout <= 0 {
		errs = append(errs, errors.New("gateway timeout must be positive"))
	}
	return errors.Join(errs...)
}
