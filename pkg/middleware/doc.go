// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// サービス間トークンの検証、zerologによるアクセスログ、パニックリカバリ、
// Prometheusメトリクスの記録を含む。
package middleware
