package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// serviceTokenIssuer はサービス間トークンの発行者。
const serviceTokenIssuer = "chatnotify"

// contextKeyCaller は検証済みの呼び出し元をGinコンテキストに格納するキー。
const contextKeyCaller = "caller"

// ServiceClaims はサービス間トークンのクレームを表す。
// メッセージ作成Webhookなど、通知トリガーを呼び出すサービスを識別する。
type ServiceClaims struct {
	jwt.RegisteredClaims
}

// GenerateServiceToken は呼び出し元サービス名をsubjectとするトークンを生成する。
func GenerateServiceToken(secret, caller string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller,
			Issuer:    serviceTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// ServiceAuth はHS256署名のサービス間トークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに呼び出し元（subject）を設定する。
func ServiceAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid bearer token format",
			})
			return
		}

		claims := &ServiceClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(serviceTokenIssuer))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(contextKeyCaller, claims.Subject)
		c.Next()
	}
}

// GetCaller はGinコンテキストから検証済みの呼び出し元を取得する。
// ServiceAuthミドルウェアが適用されていない場合は空文字列を返す。
func GetCaller(c *gin.Context) string {
	caller, _ := c.Get(contextKeyCaller)
	if s, ok := caller.(string); ok {
		return s
	}
	return ""
}
