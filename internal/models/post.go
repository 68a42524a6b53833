package models

import "time"

// Post is an article owned by exactly one user
type Post struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:200;not null"`
	Content     string    `gorm:"type:text;not null"`
	IsPublished bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
	UserID      uint `gorm:"not null;index"`
	// User is filled by explicit joins only; it is never written through.
	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// PostView is the public representation of a post
type PostView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      uint      `json:"user_id"`
	Author      string    `json:"author,omitempty"`
}

// View converts the post for a response
func (p *Post) View() PostView {
	return PostView{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		IsPublished: p.IsPublished,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		UserID:      p.UserID,
		Author:      p.User.Username,
	}
}

// PostViews converts a page of posts
func PostViews(posts []Post) []PostView {
	views := make([]PostView, 0, len(posts))
	for i := range posts {
		views = append(views, posts[i].View())
	}
	return views
}

// All lists every persisted model, parents before children
func All() []interface{} {
	return []interface{}{&User{}, &Post{}}
}
