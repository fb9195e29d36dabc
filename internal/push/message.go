package push

// MessageTypeNetworking はチャットメッセージ通知を表すdata.typeの値。
const MessageTypeNetworking = "networking_message"

// Message はプッシュゲートウェイに送る1件の通知。宛先トークンごとに1件作る。
type Message struct {
	// To は宛先のプッシュトークン。
	To string `json:"to"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Body は通知の本文。
	Body string `json:"body"`
	// Data はアプリに渡す構造化データ。
	Data MessageData `json:"data"`
	// Sound は通知音。
	Sound string `json:"sound"`
	// Priority は配信優先度。
	Priority string `json:"priority"`
	// ChannelID はAndroidの通知チャンネル。
	ChannelID string `json:"channelId"`
	// Android はAndroid向けの表示設定。
	Android AndroidOptions `json:"android"`
	// IOS はiOS向けの表示設定。
	IOS IOSOptions `json:"ios"`
}

// MessageData は通知タップ時にアプリが参照するデータ。
type MessageData struct {
	// Type は通知の種類。
	Type string `json:"type"`
	// ConversationID は会話のID。
	ConversationID string `json:"conversationId"`
	// SenderID は送信者のユーザーID。
	SenderID string `json:"senderId"`
	// SenderName は送信者の表示名。
	SenderName string `json:"senderName"`
	// DeepLink はアプリ内の会話画面を開くURI。
	DeepLink string `json:"deepLink"`
}

// AndroidOptions はAndroid向けの表示設定。
type AndroidOptions struct {
	// ChannelID は通知チャンネル。
	ChannelID string `json:"channelId"`
	// Sound は通知音。
	Sound string `json:"sound"`
	// Priority は通知の優先度。
	Priority string `json:"priority"`
	// Color は通知アイコンの色。
	Color string `json:"color"`
}

// IOSOptions はiOS向けの表示設定。
type IOSOptions struct {
	// Sound は通知音。
	Sound string `json:"sound"`
	// DisplayInForeground はアプリ前面表示中も通知を表示するかどうか。
	DisplayInForeground bool `json:"_displayInForeground"`
}
