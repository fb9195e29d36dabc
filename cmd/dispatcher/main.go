// メッセージ通知ディスパッチャのエントリポイント。
// チャットメッセージの作成をHTTP（Webhook）またはNATSで受け取り、
// 受信者の端末にプッシュ通知を送る。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nao1215/chatnotify/internal/cache"
	"github.com/nao1215/chatnotify/internal/config"
	"github.com/nao1215/chatnotify/internal/dispatch"
	"github.com/nao1215/chatnotify/internal/push"
	"github.com/nao1215/chatnotify/internal/server"
	"github.com/nao1215/chatnotify/internal/store"
	"github.com/nao1215/chatnotify/internal/store/postgres"
	"github.com/nao1215/chatnotify/internal/store/sqlite"
	"github.com/nao1215/chatnotify/internal/subscriber"
	"github.com/nao1215/chatnotify/pkg/httpclient"
	"github.com/nao1215/chatnotify/pkg/logging"
)

// shutdownTimeout はシャットダウン時に処理中のリクエストを待つ時間。
const shutdownTimeout = 10 * time.Second

func main() {
	// .envがなくてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: logging.Format(cfg.LogFormat),
	}, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("ディスパッチャの実行に失敗")
	}
}

// run は依存を組み立ててサーバーを起動し、シグナルを受けるまで待つ。
func run(cfg config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	opts := []dispatch.Option{dispatch.WithLogger(logger)}
	if cfg.RedisAddr != "" {
		rdb := cache.NewClient(cfg.RedisAddr)
		defer rdb.Close()
		opts = append(opts, dispatch.WithNameCache(cache.NewNameCache(rdb, cfg.NameCacheTTL)))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("送信者名キャッシュを有効化")
	}

	gateway := push.NewClient(cfg.GatewayURL,
		httpclient.WithTimeout(cfg.GatewayTimeout),
		httpclient.WithBearerToken(cfg.GatewayAccessToken),
		httpclient.WithRateLimit(cfg.GatewayRatePerSec),
	)

	d, err := dispatch.New(st, gateway, cfg.DispatchConfig(), opts...)
	if err != nil {
		return err
	}

	if cfg.NATSURL != "" {
		nc, err := subscriber.Connect(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer nc.Close()

		sub := subscriber.New(nc, cfg.NATSSubject, d, logger)
		if err := sub.Start(); err != nil {
			return err
		}
		defer func() {
			if err := sub.Stop(); err != nil {
				logger.Warn().Err(err).Msg("購読の停止に失敗")
			}
		}()
	}

	srvOpts := []server.Option{server.WithLogger(logger)}
	if cfg.JWTSecret != "" {
		srvOpts = append(srvOpts, server.WithJWTSecret(cfg.JWTSecret))
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewServer(d, srvOpts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("ディスパッチャを起動します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("シャットダウンします")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	return nil
}

// openStore は設定されたドライバのストアを開く。
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (store.Store, error) {
	if cfg.StoreDriver == config.DriverPostgres {
		st, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return st, nil
	}

	st, err := sqlite.New(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	return st, nil
}
