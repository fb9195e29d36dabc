// Package dispatch はメッセージ作成イベントからプッシュ通知を配信するパイプラインを提供する。
//
// 1件のイベントにつき次の順で同期的に処理する。
//
//  1. イベントの検証
//  2. 会話から受信者（送信者ではない参加者）を決定
//  3. 受信者の通知設定を確認（無効なら何もせず成功）
//  4. 受信者の有効なプッシュトークンを取得し、形式の正しいものに絞り込む
//  5. トークンごとに通知メッセージを組み立てる
//  6. プッシュゲートウェイへ1回のリクエストでまとめて送信する
//
// 手順3と4で送信対象がなくなった場合はエラーではなくNoOpの成功として扱う。
// ゲートウェイへの再送は行わない。
package dispatch
