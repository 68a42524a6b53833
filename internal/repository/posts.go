package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dan9191/blog-service/internal/models"
)

// PostFilter narrows a post listing. Zero values match everything.
type PostFilter struct {
	UserID        uint
	Query         string
	PublishedOnly bool
}

// CreatePost inserts a post. The author association is never written.
func (r *Repository) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error, "create post")
}

// FindPostByID retrieves a post with its author loaded
func (r *Repository) FindPostByID(ctx context.Context, id uint) (*models.Post, error) {
	post := &models.Post{}
	if err := r.db.WithContext(ctx).Joins("User").First(post, "posts.id = ?", id).Error; err != nil {
		return nil, translate(err, "find post")
	}
	return post, nil
}

// SavePost writes every column of an existing post
func (r *Repository) SavePost(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error, "update post")
}

// DeletePost removes a post by ID
func (r *Repository) DeletePost(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete post")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPosts returns one page of posts, newest first, with authors loaded
func (r *Repository) ListPosts(ctx context.Context, filter PostFilter, page models.PageRequest) ([]models.Post, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count posts")
	}

	var posts []models.Post
	err := r.filtered(ctx, filter).
		Joins("User").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, 0, translate(err, "list posts")
	}
	return posts, total, nil
}

// LatestPosts returns up to limit published posts, newest first
func (r *Repository) LatestPosts(ctx context.Context, limit int) ([]models.Post, error) {
	posts, _, err := r.ListPosts(ctx, PostFilter{PublishedOnly: true}, models.PageRequest{Page: 1, PerPage: limit})
	return posts, err
}

// CountPosts returns the number of posts
func (r *Repository) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count posts")
	}
	return n, nil
}

// CountPostsByUser returns the number of posts written by userID
func (r *Repository) CountPostsByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, translate(err, "count posts")
	}
	return n, nil
}

func (r *Repository) filtered(ctx context.Context, filter PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if filter.UserID != 0 {
		q = q.Where("posts.user_id = ?", filter.UserID)
	}
	if filter.PublishedOnly {
		q = q.Where("posts.is_published = ?", true)
	}
	if filter.Query != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Query)) + "%"
		q = q.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
