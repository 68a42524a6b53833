// Package seed fills an empty blog with sample users and posts.
package seed

import (
	"context"
	"fmt"

	"github.com/Dan9191/blog-service/internal/repository"
	"github.com/Dan9191/blog-service/internal/service"
)

// Password is shared by every sample user
const Password = "password123"

type samplePost struct {
	title, content string
	author         int
}

var sampleUsers = []string{"alice", "bob", "charlie", "diana"}

var samplePosts = []samplePost{
	{"Welcome to the blog", "This is my first post on the new blog service!", 0},
	{"Database Relationships", "Foreign keys and explicit joins make ownership easy to reason about.", 1},
	{"ORM vs Raw SQL", "Object-relational mapping provides a higher level abstraction over raw SQL queries.", 0},
	{"Migrations Tutorial", "Database migrations are essential for managing schema changes in production.", 2},
	{"Query Optimization", "Indexes on foreign keys and sort columns keep listing queries fast.", 1},
	{"Advanced Queries", "Exploring case-insensitive search and pagination over large tables.", 3},
	{"Testing with SQLite", "Best practices for testing applications against a throwaway database.", 2},
	{"Deployment Considerations", "Things to consider when deploying a Go service backed by PostgreSQL.", 3},
}

// Summary reports what Run created
type Summary struct {
	Users int
	Posts int
}

// Run deletes all existing users and posts, then creates the sample data
// through the service so validation and hashing apply as usual.
func Run(ctx context.Context, repo *repository.Repository, svc *service.Service) (Summary, error) {
	if err := repo.DeleteAll(ctx); err != nil {
		return Summary{}, fmt.Errorf("failed to clear existing data: %w", err)
	}

	ids := make([]uint, 0, len(sampleUsers))
	for _, name := range sampleUsers {
		u, err := svc.Register(ctx, name, name+"@example.com", Password)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to create user %s: %w", name, err)
		}
		ids = append(ids, u.ID)
	}

	for _, p := range samplePosts {
		if _, err := svc.CreatePost(ctx, ids[p.author], p.title, p.content); err != nil {
			return Summary{}, fmt.Errorf("failed to create post %q: %w", p.title, err)
		}
	}
	return Summary{Users: len(ids), Posts: len(samplePosts)}, nil
}
