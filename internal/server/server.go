// Package server はメッセージ通知トリガーのHTTPサーバーを提供する。
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nao1215/chatnotify/internal/dispatch"
	"github.com/nao1215/chatnotify/internal/model"
	"github.com/nao1215/chatnotify/internal/push"
	"github.com/nao1215/chatnotify/pkg/middleware"
)

// serviceName はヘルスチェックで返すサービス名。
const serviceName = "chatnotify"

// Dispatcher はイベント1件を処理する通知パイプライン。
type Dispatcher interface {
	Dispatch(ctx context.Context, ev model.NotificationEvent) (*dispatch.Outcome, error)
}

// Server は通知トリガーのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// dispatcher は通知パイプライン。
	dispatcher Dispatcher
	// logger はアクセスログとエラーログの出力先。
	logger zerolog.Logger
	// jwtSecret はサービス間トークンの署名鍵。空ならトリガーを認証しない。
	jwtSecret string
}

// Option はServerの生成オプション。
type Option func(*Server)

// WithLogger はロガーを設定する。
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithJWTSecret はトリガーにサービス間トークンの検証を要求する。
func WithJWTSecret(secret string) Option {
	return func(s *Server) {
		s.jwtSecret = secret
	}
}

// NewServer は新しいHTTPサーバーを生成する。
func NewServer(d Dispatcher, opts ...Option) *Server {
	s := &Server{
		dispatcher: d,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.RequestLogger(s.logger))
	router.Use(middleware.Metrics())
	s.router = router
	s.setupRoutes()

	return s
}

// Handler はhttp.Serverに渡すハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はルーティングを設定する。
func (s *Server) setupRoutes() {
	trigger := s.router.Group("")
	if s.jwtSecret != "" {
		trigger.Use(middleware.ServiceAuth(s.jwtSecret))
	}
	{
		// メッセージ作成Webhook（データベースのトリガーから直接呼ばれる）
		trigger.POST("/", s.handleMessageNotification())
		trigger.POST("/api/v1/internal/message-notifications", s.handleMessageNotification())
	}

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

// notificationRequest はメッセージ通知リクエストのJSON構造。
// contentは空文字列を許容するため、欠落と区別できるようポインタで受ける。
type notificationRequest struct {
	// ConversationID はメッセージが属する会話のID。
	ConversationID *string `json:"conversationId" binding:"required"`
	// SenderID は送信者のユーザーID。
	SenderID *string `json:"senderId" binding:"required"`
	// Content はメッセージ本文。
	Content *string `json:"content" binding:"required"`
}

// handleMessageNotification はメッセージ作成イベントを受け取り、受信者にプッシュ通知を送るハンドラ。
func (s *Server) handleMessageNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req notificationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		ev := model.NotificationEvent{
			ConversationID: *req.ConversationID,
			SenderID:       *req.SenderID,
			Content:        *req.Content,
		}
		if err := ev.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		outcome, err := s.dispatcher.Dispatch(c.Request.Context(), ev)
		if err != nil {
			s.writeError(c, err)
			return
		}

		if outcome.Status == dispatch.StatusNoOp {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": outcome.Reason})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "sent": outcome.Sent, "result": outcome.Receipt})
	}
}

// writeError はディスパッチのエラーをHTTPレスポンスに変換する。
func (s *Server) writeError(c *gin.Context, err error) {
	var gwErr *push.GatewayError
	switch {
	case errors.Is(err, model.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
	case errors.Is(err, dispatch.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send push notification", "details": gwErr.Body})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": err.Error()})
	}
}
