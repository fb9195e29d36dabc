package dispatch

import (
	"encoding/json"
	"errors"
)

// Status はディスパッチの終了状態を表す。
type Status string

const (
	// StatusSucceeded は1件以上をゲートウェイが受け付けたことを表す。
	StatusSucceeded Status = "succeeded"
	// StatusNoOp は送信対象がなく、何もせずに正常終了したことを表す。
	StatusNoOp Status = "noop"
)

// NoOpの理由。HTTPレスポンスのmessageにそのまま使う。
const (
	ReasonNotificationsDisabled = "Notifications disabled for recipient"
	ReasonNoPushTokens          = "No push tokens found for recipient"
	ReasonNoValidPushTokens     = "No valid push tokens for recipient"
)

// ErrConversationNotFound はイベントの会話が存在しないことを表す。
var ErrConversationNotFound = errors.New("conversation not found")

// Outcome は成功したディスパッチの結果。
type Outcome struct {
	// Status は終了状態。
	Status Status
	// Sent はゲートウェイに送ったメッセージ数。NoOpの場合は0。
	Sent int
	// Reason はNoOpの理由。
	Reason string
	// Receipt はゲートウェイのレスポンスボディ。
	Receipt json.RawMessage
}

// noOp は理由付きのNoOp結果を返す。
func noOp(reason string) *Outcome {
	return &Outcome{Status: StatusNoOp, Reason: reason}
}

// Step はパイプラインの処理段階を表す。ログとメトリクスのラベルに使う。
type Step string

const (
	StepValidating         Step = "validating"
	StepResolvingRecipient Step = "resolving_recipient"
	StepCheckingPreference Step = "checking_preference"
	StepLoadingTokens      Step = "loading_tokens"
	StepComposing          Step = "composing"
	StepDispatching        Step = "dispatching"
)
