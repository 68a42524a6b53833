package models

import "time"

// User represents a user in the system
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:50;not null;uniqueIndex"`
	Email        string    `gorm:"size:100;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"` // Never serialized
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
}

// UserView is the public representation of a user
type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	PostCount *int64    `json:"post_count,omitempty"`
}

// View converts the user for a response. The email is only included when
// the owner is looking at their own account.
func (u *User) View(includeEmail bool) UserView {
	v := UserView{
		ID:        u.ID,
		Username:  u.Username,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
	if includeEmail {
		v.Email = u.Email
	}
	return v
}

// WithPostCount returns the view with the author's post count attached
func (v UserView) WithPostCount(n int64) UserView {
	v.PostCount = &n
	return v
}
