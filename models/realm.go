package models

import (
	"time"
)

// Realm is a topical community posts can belong to.
type Realm struct {
	ID          string    `json:"id" gorm:"primaryKey;size:191"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Description string    `json:"description" gorm:"type:text"`
	CreatorID   string    `json:"creator_id" gorm:"not null;size:191;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RealmJoin struct {
	JoinerID  string    `json:"joiner_id" gorm:"primaryKey;size:191"`
	RealmID   string    `json:"realm_id" gorm:"primaryKey;size:191;index"`
	CreatedAt time.Time `json:"created_at"`
}
