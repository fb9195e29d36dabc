package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv は設定に関わる環境変数を空にする。空の値は未設定として扱われる。
func clearEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"CONFIG_FILE", "PORT", "LOG_LEVEL", "LOG_FORMAT", "STORE_DRIVER", "SQLITE_PATH", "DATABASE_URL",
		"STORE_TIMEOUT", "REDIS_ADDR", "NAME_CACHE_TTL", "NATS_URL", "NATS_SUBJECT", "GATEWAY_URL",
		"GATEWAY_ACCESS_TOKEN", "GATEWAY_RATE_PER_SEC", "GATEWAY_TIMEOUT", "APP_SCHEME", "TOKEN_PREFIXES",
		"MAX_BODY_LENGTH", "JWT_SECRET",
	} {
		t.Setenv(key, "")
	}
}

// TestLoad_Defaults は環境変数がない場合に既定値になることを検証する。
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load()でエラーが発生: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != DriverSQLite {
		t.Errorf("Port/StoreDriver = %q/%q", cfg.Port, cfg.StoreDriver)
	}
	if cfg.GatewayURL != "https://exp.host/--/api/v2/push/send" {
		t.Errorf("GatewayURL = %q", cfg.GatewayURL)
	}
	if cfg.StoreTimeout != 5*time.Second || cfg.GatewayTimeout != 10*time.Second {
		t.Errorf("StoreTimeout/GatewayTimeout = %v/%v", cfg.StoreTimeout, cfg.GatewayTimeout)
	}
	if len(cfg.TokenPrefixes) != 2 || cfg.MaxBodyLength != 100 || cfg.AppScheme != "app" {
		t.Errorf("dispatch設定 = %v/%d/%q", cfg.TokenPrefixes, cfg.MaxBodyLength, cfg.AppScheme)
	}
}

// TestLoad_Env は環境変数で上書きできることを検証する。
func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/chat")
	t.Setenv("STORE_TIMEOUT", "2s")
	t.Setenv("GATEWAY_RATE_PER_SEC", "50")
	t.Setenv("TOKEN_PREFIXES", "ExponentPushToken[, , CustomToken[")
	t.Setenv("APP_SCHEME", "myapp")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load()でエラーが発生: %v", err)
	}
	if cfg.Port != "9090" || cfg.StoreDriver != DriverPostgres || cfg.DatabaseURL != "postgres://localhost/chat" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.StoreTimeout != 2*time.Second || cfg.GatewayRatePerSec != 50 {
		t.Errorf("StoreTimeout/GatewayRatePerSec = %v/%d", cfg.StoreTimeout, cfg.GatewayRatePerSec)
	}
	if strings.Join(cfg.TokenPrefixes, "|") != "ExponentPushToken[|CustomToken[" {
		t.Errorf("TokenPrefixes = %v", cfg.TokenPrefixes)
	}

	d := cfg.DispatchConfig()
	if d.AppScheme != "myapp" || d.StoreTimeout != 2*time.Second || d.AndroidColor != "#4F46E5" {
		t.Errorf("DispatchConfig() = %+v", d)
	}
}

// TestLoad_File はYAMLファイルを読み込み、環境変数が優先されることを検証する。
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatnotify.yaml")
	content := `port: "7070"
log_level: debug
gateway_timeout: 3s
max_body_length: 60
token_prefixes:
  - ExpoPushToken[
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("設定ファイルの作成に失敗: %v", err)
	}
	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load()でエラーが発生: %v", err)
	}
	if cfg.Port != "7070" || cfg.GatewayTimeout != 3*time.Second || cfg.MaxBodyLength != 60 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.TokenPrefixes) != 1 || cfg.TokenPrefixes[0] != "ExpoPushToken[" {
		t.Errorf("TokenPrefixes = %v", cfg.TokenPrefixes)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, 環境変数が優先されるべき", cfg.LogLevel)
	}
}

// TestLoad_Errors は不正な設定でエラーになることを検証する。
func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "未知のドライバ", env: map[string]string{"STORE_DRIVER": "mysql"}},
		{name: "postgresでDATABASE_URLなし", env: map[string]string{"STORE_DRIVER": "postgres"}},
		{name: "不正なタイムアウト", env: map[string]string{"GATEWAY_TIMEOUT": "soon"}},
		{name: "不正な整数", env: map[string]string{"MAX_BODY_LENGTH": "lots"}},
		{name: "負のレート", env: map[string]string{"GATEWAY_RATE_PER_SEC": "-1"}},
		{name: "存在しない設定ファイル", env: map[string]string{"CONFIG_FILE": "/nonexistent/chatnotify.yaml"}},
		{name: "未知のキー", file: "unknown_key: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "bad.yaml")
				if err := os.WriteFile(path, []byte(tt.file), 0o600); err != nil {
					t.Fatalf("設定ファイルの作成に失敗: %v", err)
				}
				t.Setenv("CONFIG_FILE", path)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := Load(); err == nil {
				t.Error("Load()がエラーを返すべきだが、nilが返った")
			}
		})
	}
}
