package service

import (
	"context"
	"fmt"
)

// Stats are the row counts reported by the health check
type Stats struct {
	Users int64 `json:"users"`
	Posts int64 `json:"posts"`
}

// Health checks the database and counts users and posts
func (s *Service) Health(ctx context.Context) (Stats, error) {
	if err := s.repo.Ping(ctx); err != nil {
		return Stats{}, fmt.Errorf("ping: %w", err)
	}
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return Stats{}, err
	}
	posts, err := s.repo.CountPosts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Users: users, Posts: posts}, nil
}
