// Package model は通知ディスパッチャが扱うドメインモデルを定義する。
//
// 会話・プロフィール・通知設定・プッシュトークンは外部ストアから読み取るだけで、
// ディスパッチャが更新することはない。
package model
