// Package repository defines persistence for users, goals and records.
// The SQL implementations here serve both SQLite and PostgreSQL;
// subpackages provide in-memory and Firestore backends.
package repository

import (
	"github.com/jmoiron/sqlx"
)

// Repositories bundles one backend's repositories.
type Repositories struct {
	Users   UserRepository
	Goals   GoalRepository
	Records RecordRepository
}

func NewSQL(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:   NewUserRepository(db),
		Goals:   NewGoalRepository(db),
		Records: NewRecordRepository(db),
	}
}
