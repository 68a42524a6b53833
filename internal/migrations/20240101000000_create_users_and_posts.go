package migrations

import (
	"time"

	"gorm.io/gorm"
)

type userV1 struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:50;not null;uniqueIndex"`
	Email        string `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
}

func (userV1) TableName() string { return "users" }

type postV1 struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"size:200;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	UserID    uint   `gorm:"not null;index"`
	User      userV1 `gorm:"constraint:OnDelete:CASCADE"`
}

func (postV1) TableName() string { return "posts" }

func init() {
	Register(&Migration{
		Version: "20240101000000",
		Name:    "create_users_and_posts",
		Up: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&userV1{}, &postV1{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&postV1{}, &userV1{})
		},
	})
}
