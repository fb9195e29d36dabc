package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nao1215/chatnotify/pkg/httpclient"
)

// DefaultGatewayURL はExpo Push APIの送信エンドポイント。
const DefaultGatewayURL = "https://exp.host/--/api/v2/push/send"

// GatewayError はゲートウェイがバッチを受け付けなかったことを表す。
type GatewayError struct {
	// StatusCode はゲートウェイのHTTPステータスコード。
	StatusCode int
	// Body はゲートウェイのレスポンスボディ。
	Body string
}

// Error はerrorインターフェースを実装する。
func (e *GatewayError) Error() string {
	return fmt.Sprintf("push gateway rejected batch: status=%d, body=%s", e.StatusCode, e.Body)
}

// Client はプッシュゲートウェイのクライアント。
type Client struct {
	// http はゲートウェイURLを接続先とするHTTPクライアント。
	http *httpclient.Client
}

// NewClient は新しいゲートウェイクライアントを生成する。
// gatewayURLは送信エンドポイントの完全なURL。
func NewClient(gatewayURL string, opts ...httpclient.Option) *Client {
	return &Client{http: httpclient.New(gatewayURL, opts...)}
}

// Send はメッセージ配列を1回のリクエストで送信し、ゲートウェイのレスポンスをそのまま返す。
// 2xx以外のレスポンスは*GatewayErrorとして返す。
func (c *Client) Send(ctx context.Context, messages []Message) (json.RawMessage, error) {
	var receipt json.RawMessage
	if err := c.http.PostJSON(ctx, "", messages, &receipt); err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return nil, &GatewayError{StatusCode: statusErr.StatusCode, Body: statusErr.Body}
		}
		return nil, fmt.Errorf("プッシュゲートウェイへの送信に失敗: %w", err)
	}
	return receipt, nil
}
