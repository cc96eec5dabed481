package api

import "github.com/golang-jwt/jwt/v5"

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// MeResponse описывает владельца токена
type MeResponse struct {
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// TokenClaims are the claims of a tasksync bearer token.
// The server verifies the signature; the client only reads them for display.
type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// TokenIssuer is the iss claim of every tasksync token
const TokenIssuer = "tasksync"
