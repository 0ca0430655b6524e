package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Tel          string    `db:"tel" json:"tel"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Avatar       *string   `db:"avatar" json:"avatar"` // Stored file id, nil when no avatar was uploaded
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
