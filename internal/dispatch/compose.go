package dispatch

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/chatnotify/internal/model"
	"github.com/nao1215/chatnotify/internal/push"
)

// 全トークン共通の表示設定。
const (
	defaultSound     = "default"
	defaultPriority  = "high"
	defaultChannelID = "default"
)

// composeInput はメッセージの組み立てに必要な値。
type composeInput struct {
	conversationID string
	senderID       string
	senderName     string
	content        string
}

// compose はトークンごとに1件のメッセージを組み立てる。
// 端末種別に関係なくAndroidとiOSの両方の表示設定を付ける。
func (d *Dispatcher) compose(in composeInput, tokens []model.PushToken) []push.Message {
	body := TruncateBody(in.content, d.cfg.MaxBodyLength, d.cfg.Ellipsis)
	data := push.MessageData{
		Type:           push.MessageTypeNetworking,
		ConversationID: in.conversationID,
		SenderID:       in.senderID,
		SenderName:     in.senderName,
		DeepLink:       DeepLink(d.cfg.AppScheme, in.conversationID, in.senderName),
	}

	messages := make([]push.Message, 0, len(tokens))
	for _, t := range tokens {
		messages = append(messages, push.Message{
			To:        t.Token,
			Title:     in.senderName,
			Body:      body,
			Data:      data,
			Sound:     defaultSound,
			Priority:  defaultPriority,
			ChannelID: defaultChannelID,
			Android: push.AndroidOptions{
				ChannelID: defaultChannelID,
				Sound:     defaultSound,
				Priority:  defaultPriority,
				Color:     d.cfg.AndroidColor,
			},
			IOS: push.IOSOptions{
				Sound:               defaultSound,
				DisplayInForeground: true,
			},
		})
	}
	return messages
}

// TruncateBody は本文がmaxLen文字を超える場合、ellipsisを含めてちょうどmaxLen文字に切り詰める。
// 文字数はUnicodeコードポイント単位で数える。
func TruncateBody(content string, maxLen int, ellipsis string) string {
	if utf8.RuneCountInString(content) <= maxLen {
		return content
	}
	keep := max(maxLen-utf8.RuneCountInString(ellipsis), 0)
	runes := []rune(content)
	return string(runes[:keep]) + ellipsis
}

// DeepLink は会話画面を開くディープリンクを返す。
// 形式: <scheme>://networking/chat/<conversationID>?name=<送信者名>
func DeepLink(scheme, conversationID, senderName string) string {
	return fmt.Sprintf("%s://networking/chat/%s?name=%s",
		scheme, url.PathEscape(conversationID), encodeURIComponent(senderName))
}

// encodeURIComponent はクエリ値をエンコードする。空白は+ではなく%20にする。
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
