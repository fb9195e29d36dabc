// Package push はプッシュゲートウェイ（Expo Push API）との送受信を扱う。
//
// 送信メッセージのワイヤ形式と、メッセージ配列を1回のPOSTでまとめて送る
// クライアントを提供する。再送は行わない。
package push
