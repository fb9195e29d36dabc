// Package logging はzerologベースの構造化ロガーを生成する。
//
// 全コンポーネントは本パッケージが返すzerolog.Loggerを受け取り、
// dispatch_id や conversation_id などのフィールドを付与してログを出力する。
package logging
