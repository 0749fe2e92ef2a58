package db

import "time"

// Game is one generation of a session: a reset starts a new row under the
// same code. Codes are reused across restarts, so they are not unique here.
type Game struct {
	ID         uint   `gorm:"primaryKey"`
	Code       string `gorm:"size:8;not null;index"`
	Generation uint64 `gorm:"not null"`
	HostID     string `gorm:"size:64;not null"`
	StartedAt  *time.Time
	ClosedAt   *time.Time
	WinnerName string    `gorm:"size:64"`
	DrawnCount int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Players    []Player
	Events     []Event
}
