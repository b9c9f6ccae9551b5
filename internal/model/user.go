package model

import (
	"time"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Nickname  string    `db:"nickname" json:"nickname"`
	PinHash   string    `db:"pin_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
