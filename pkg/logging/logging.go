package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// consoleTimeFormat はコンソール出力時のタイムスタンプ形式。
const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Format はログの出力形式を表す。
type Format string

const (
	// FormatConsole は人間向けのkey=value形式。
	FormatConsole Format = "console"
	// FormatJSON は1行1JSONの形式。
	FormatJSON Format = "json"
)

// Config はロガーの設定。
type Config struct {
	// Level はログレベル（trace, debug, info, warn, error）。
	Level string
	// Format は出力形式。
	Format Format
}

// New は設定に従ってzerolog.Loggerを生成する。wがnilの場合は標準出力に書き込む。
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	var out io.Writer = w
	if cfg.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat, NoColor: true}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level, zerolog.InfoLevel)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel は文字列をzerologのレベルに変換する。解釈できない場合はdefを返す。
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return def
	}
}

// Nop は何も出力しないロガーを返す。テストで使用する。
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
