package migrations

import "gorm.io/gorm"

type userFlagsV2 struct {
	IsActive bool `gorm:"not null;default:true"`
}

func (userFlagsV2) TableName() string { return "users" }

type postFlagsV2 struct {
	IsPublished bool `gorm:"not null;default:true"`
}

func (postFlagsV2) TableName() string { return "posts" }

func init() {
	Register(&Migration{
		Version: "20240215000000",
		Name:    "add_active_and_published_flags",
		Up: func(tx *gorm.DB) error {
			if err := tx.Migrator().AddColumn(&userFlagsV2{}, "IsActive"); err != nil {
				return err
			}
			return tx.Migrator().AddColumn(&postFlagsV2{}, "IsPublished")
		},
		// Plain ALTER TABLE: sqlite's table-rebuild path would drop and
		// recreate users, cascading into posts.
		Down: func(tx *gorm.DB) error {
			if err := tx.Exec(`ALTER TABLE posts DROP COLUMN is_published`).Error; err != nil {
				return err
			}
			return tx.Exec(`ALTER TABLE users DROP COLUMN is_active`).Error
		},
	})
}
