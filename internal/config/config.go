// Package config はサービスの設定を読み込む。
//
// 既定値、CONFIG_FILEで指定したYAMLファイル、環境変数の順に上書きする。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"

	"github.com/nao1215/chatnotify/internal/dispatch"
	"github.com/nao1215/chatnotify/internal/push"
)

// ストアのドライバ名。
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config はサービス全体の設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `yaml:"port"`
	// LogLevel はログレベル（debug, info, warn, error）。
	LogLevel string `yaml:"log_level"`
	// LogFormat はログの出力形式（console, json）。
	LogFormat string `yaml:"log_format"`

	// StoreDriver はストアの実装（sqlite, postgres）。
	StoreDriver string `yaml:"store_driver"`
	// SQLitePath はSQLiteのデータベースファイル。
	SQLitePath string `yaml:"sqlite_path"`
	// DatabaseURL はPostgreSQLの接続文字列。
	DatabaseURL string `yaml:"database_url"`
	// StoreTimeout はストアへの1回の問い合わせのタイムアウト。
	StoreTimeout time.Duration `yaml:"store_timeout"`

	// RedisAddr は送信者名キャッシュのRedisアドレス。空ならキャッシュしない。
	RedisAddr string `yaml:"redis_addr"`
	// NameCacheTTL は送信者名キャッシュの有効期間。
	NameCacheTTL time.Duration `yaml:"name_cache_ttl"`

	// NATSURL はイベントバスのURL。空なら購読しない。
	NATSURL string `yaml:"nats_url"`
	// NATSSubject は購読するサブジェクト。
	NATSSubject string `yaml:"nats_subject"`

	// GatewayURL はプッシュゲートウェイの送信エンドポイント。
	GatewayURL string `yaml:"gateway_url"`
	// GatewayAccessToken はゲートウェイのアクセストークン。空なら送らない。
	GatewayAccessToken string `yaml:"gateway_access_token"`
	// GatewayRatePerSec はゲートウェイへの1秒あたりの最大リクエスト数。0なら制限しない。
	GatewayRatePerSec int `yaml:"gateway_rate_per_sec"`
	// GatewayTimeout はゲートウェイへの送信のタイムアウト。
	GatewayTimeout time.Duration `yaml:"gateway_timeout"`

	// AppScheme はディープリンクのスキーム。
	AppScheme string `yaml:"app_scheme"`
	// TokenPrefixes は有効なプッシュトークンの接頭辞。
	TokenPrefixes []string `yaml:"token_prefixes"`
	// MaxBodyLength は通知本文の最大文字数。
	MaxBodyLength int `yaml:"max_body_length"`

	// JWTSecret はトリガーを認証するサービス間トークンの署名鍵。空なら認証しない。
	JWTSecret string `yaml:"jwt_secret"`
}

// Default は既定の設定を返す。
func Default() Config {
	d := dispatch.DefaultConfig()
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		LogFormat:      "console",
		StoreDriver:    DriverSQLite,
		SQLitePath:     "/data/chatnotify.db",
		StoreTimeout:   d.StoreTimeout,
		NameCacheTTL:   time.Hour,
		NATSSubject:    "chat.message.created",
		GatewayURL:     push.DefaultGatewayURL,
		GatewayTimeout: d.GatewayTimeout,
		AppScheme:      d.AppScheme,
		TokenPrefixes:  d.TokenPrefixes,
		MaxBodyLength:  d.MaxBodyLength,
	}
}

// Load は設定を読み込んで検証する。
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("設定が不正: %w", err)
	}
	return cfg, nil
}

// loadFile はYAMLファイルの値で設定を上書きする。未知のキーはエラーにする。
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("設定ファイル %s の解析に失敗: %w", path, err)
	}
	return nil
}

// applyEnv は環境変数の値で設定を上書きする。
func (c *Config) applyEnv() error {
	c.Port = getEnvOr("PORT", c.Port)
	c.LogLevel = getEnvOr("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOr("LOG_FORMAT", c.LogFormat)
	c.StoreDriver = getEnvOr("STORE_DRIVER", c.StoreDriver)
	c.SQLitePath = getEnvOr("SQLITE_PATH", c.SQLitePath)
	c.DatabaseURL = getEnvOr("DATABASE_URL", c.DatabaseURL)
	c.RedisAddr = getEnvOr("REDIS_ADDR", c.RedisAddr)
	c.NATSURL = getEnvOr("NATS_URL", c.NATSURL)
	c.NATSSubject = getEnvOr("NATS_SUBJECT", c.NATSSubject)
	c.GatewayURL = getEnvOr("GATEWAY_URL", c.GatewayURL)
	c.GatewayAccessToken = getEnvOr("GATEWAY_ACCESS_TOKEN", c.GatewayAccessToken)
	c.AppScheme = getEnvOr("APP_SCHEME", c.AppScheme)
	c.JWTSecret = getEnvOr("JWT_SECRET", c.JWTSecret)

	if v := os.Getenv("TOKEN_PREFIXES"); v != "" {
		c.TokenPrefixes = splitList(v)
	}

	var errs []error
	var err error
	if c.StoreTimeout, err = getDurationOr("STORE_TIMEOUT", c.StoreTimeout); err != nil {
		errs = append(errs, err)
	}
	if c.NameCacheTTL, err = getDurationOr("NAME_CACHE_TTL", c.NameCacheTTL); err != nil {
		errs = append(errs, err)
	}
	if c.GatewayTimeout, err = getDurationOr("GATEWAY_TIMEOUT", c.GatewayTimeout); err != nil {
		errs = append(errs, err)
	}
	if c.GatewayRatePerSec, err = getIntOr("GATEWAY_RATE_PER_SEC", c.GatewayRatePerSec); err != nil {
		errs = append(errs, err)
	}
	if c.MaxBodyLength, err = getIntOr("MAX_BODY_LENGTH", c.MaxBodyLength); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate は設定の整合性を検証する。
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	switch c.StoreDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.GatewayURL == "" {
		errs = append(errs, errors.New("GATEWAY_URL is required"))
	}
	if c.GatewayRatePerSec < 0 {
		errs = append(errs, errors.New("GATEWAY_RATE_PER_SEC must not be negative"))
	}
	if c.NameCacheTTL <= 0 {
		errs = append(errs, errors.New("NAME_CACHE_TTL must be positive"))
	}
	if c.NATSURL != "" && c.NATSSubject == "" {
		errs = append(errs, errors.New("NATS_SUBJECT is required when NATS_URL is set"))
	}
	if err := c.DispatchConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DispatchConfig はディスパッチャの調整値を返す。
func (c Config) DispatchConfig() dispatch.Config {
	d := dispatch.DefaultConfig()
	d.TokenPrefixes = c.TokenPrefixes
	d.MaxBodyLength = c.MaxBodyLength
	d.AppScheme = c.AppScheme
	d.StoreTimeout = c.StoreTimeout
	d.GatewayTimeout = c.GatewayTimeout
	return d
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntOr(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDurationOr(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

// splitList はカンマ区切りの値を分割する。空の要素は捨てる。
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
