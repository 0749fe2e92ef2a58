package db

import "time"

type Player struct {
	ID           uint      `gorm:"primaryKey"`
	GameID       uint      `gorm:"index;not null"`
	ConnID       string    `gorm:"size:64;not null"`
	Name         string    `gorm:"size:64;not null"`
	Disqualified bool      `gorm:"not null;default:false"`
	Won          bool      `gorm:"not null;default:false"`
	JoinedAt     time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}
