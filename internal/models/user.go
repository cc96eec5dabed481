package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"` // уникальный username
	ID        int64     `json:"id"`
}
