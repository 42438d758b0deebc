package jwt

import (
	"time"

	"campus-club-system/config"

	"github.com/golang-jwt/jwt"
)

type Payload struct {
	UserID uint `json:"user_id"`
	RoleID int  `json:"role_id"`
}

type Claims struct {
	Payload
	jwt.StandardClaims
}

// CreateToken 签发 HS256 访问令牌
func CreateToken(payload Payload) string {
	cfg := config.Get().JWT
	claims := Claims{
		Payload: payload,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Duration(cfg.AccessExpire) * time.Second).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.AccessSecret))
	if err != nil {
		return ""
	}
	return signed
}

// ParseToken 解析令牌，valid 为 false 时 payload 不可用
func ParseToken(tokenString string) (payload *Claims, valid bool) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.Get().JWT.AccessSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	return claims, true
}
