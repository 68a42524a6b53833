package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Dan9191/blog-service/internal/apperror"
	"github.com/Dan9191/blog-service/internal/models"
	"github.com/Dan9191/blog-service/internal/repository"
)

const maxTitleLen = 200

// CreatePost publishes a new post owned by userID
func (s *Service) CreatePost(ctx context.Context, userID uint, title, content string) (*models.Post, error) {
	title, content, err := validatePost(title, content)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       title,
		Content:     content,
		IsPublished: true,
		UserID:      userID,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, internal(err)
	}

	created, err := s.repo.FindPostByID(ctx, post.ID)
	if err != nil {
		return nil, internal(err)
	}
	s.log.Infof("Post created by user %d: %d", userID, post.ID)
	return created, nil
}

// GetPost returns a post with its author
func (s *Service) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.repo.FindPostByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("Post not found")
	}
	if err != nil {
		return nil, internal(err)
	}
	return post, nil
}

// UpdatePost replaces the title and content of a post the caller owns
func (s *Service) UpdatePost(ctx context.Context, userID, postID uint, title, content string) (*models.Post, error) {
	title, content, err := validatePost(title, content)
	if err != nil {
		return nil, err
	}

	var post *models.Post
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		post, err = tx.FindPostByID(ctx, postID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Post not found")
		}
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return apperror.Authorization("Unauthorized to update this post")
		}
		post.Title = title
		post.Content = content
		return tx.SavePost(ctx, post)
	})
	if err != nil {
		return nil, internal(err)
	}

	s.log.Infof("Post updated by user %d: %d", userID, postID)
	return post, nil
}

// DeletePost removes a post the caller owns
func (s *Service) DeletePost(ctx context.Context, userID, postID uint) error {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		post, err := tx.FindPostByID(ctx, postID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Post not found")
		}
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return apperror.Authorization("Unauthorized to delete this post")
		}
		return tx.DeletePost(ctx, postID)
	})
	if err != nil {
		return internal(err)
	}

	s.log.Infof("Post deleted by user %d: %d", userID, postID)
	return nil
}

// ListPosts returns a page of posts, newest first
func (s *Service) ListPosts(ctx context.Context, page, perPage int) ([]models.Post, models.Pagination, error) {
	req := s.pageRequest(page, perPage)
	posts, total, err := s.repo.ListPosts(ctx, repository.PostFilter{}, req)
	if err != nil {
		return nil, models.Pagination{}, internal(err)
	}
	return posts, models.NewPagination(req, total), nil
}

// SearchPosts matches query against titles and contents, ignoring case
func (s *Service) SearchPosts(ctx context.Context, query string, page, perPage int) ([]models.Post, models.Pagination, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.Pagination{}, apperror.Validation("Search query is required")
	}

	req := s.pageRequest(page, perPage)
	posts, total, err := s.repo.ListPosts(ctx, repository.PostFilter{Query: query}, req)
	if err != nil {
		return nil, models.Pagination{}, internal(err)
	}
	return posts, models.NewPagination(req, total), nil
}

// LatestPosts returns the newest published posts for the feed
func (s *Service) LatestPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.repo.LatestPosts(ctx, s.config.FeedSize)
	if err != nil {
		return nil, internal(err)
	}
	return posts, nil
}

func validatePost(title, content string) (string, string, error) {
	if title == "" || content == "" {
		return "", "", apperror.Validation("Title and content are required")
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return "", "", apperror.Validation("Title and content cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", "", apperror.Validation("Title must be at most 200 characters long")
	}
	return title, content, nil
}
