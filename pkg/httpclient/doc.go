// Package httpclient は外部サービスへのJSON over HTTP通信を行うクライアントを提供する。
//
// プッシュゲートウェイへのバッチ送信で使用する。タイムアウト、送信レート制限、
// Bearerトークン認証、OpenTelemetryによるトレース伝播を共通化する。
package httpclient
