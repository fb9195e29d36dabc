package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestParseLevel はログレベル文字列の解釈を検証する。
func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want zerolog.Level
	}{
		{name: "debugを解釈できること", in: "debug", want: zerolog.DebugLevel},
		{name: "大文字と空白を許容すること", in: "  WARN ", want: zerolog.WarnLevel},
		{name: "warningをwarnとして扱うこと", in: "warning", want: zerolog.WarnLevel},
		{name: "不明な値はデフォルトになること", in: "verbose", want: zerolog.InfoLevel},
		{name: "空文字列はデフォルトになること", in: "", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseLevel(tt.in, zerolog.InfoLevel); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestNew はロガーの出力形式とレベルを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("JSON形式でフィールドが出力されること", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(Config{Level: "info", Format: FormatJSON}, &buf)
		logger.Info().Str("conversation_id", "c1").Msg("テスト")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("ログのパースに失敗: %v, out=%s", err, buf.String())
		}
		if entry["conversation_id"] != "c1" {
			t.Errorf("conversation_id = %v, want c1", entry["conversation_id"])
		}
		if entry["message"] != "テスト" {
			t.Errorf("message = %v, want テスト", entry["message"])
		}
	})

	t.Run("レベル未満のログは出力されないこと", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(Config{Level: "warn", Format: FormatJSON}, &buf)
		logger.Info().Msg("出力されない")

		if buf.Len() != 0 {
			t.Errorf("infoログが出力された: %s", buf.String())
		}
	})

	t.Run("コンソール形式ではkey=value形式になること", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(Config{Level: "debug", Format: FormatConsole}, &buf)
		logger.Debug().Str("step", "dispatching").Msg("console")

		if !strings.Contains(buf.String(), "step=dispatching") {
			t.Errorf("key=value形式ではない: %s", buf.String())
		}
	})
}
