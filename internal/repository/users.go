package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/Dan9191/blog-service/internal/models"
)

// CreateUser inserts a user and fills in its ID and timestamps
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "create user")
}

// FindUserByID retrieves a user by primary key
func (r *Repository) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

// FindUserByUsername retrieves a user by exact username
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findUser(ctx, "username = ?", username)
}

// FindUserByEmail retrieves a user by exact email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *Repository) findUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	if err := r.db.WithContext(ctx).Where(query, arg).First(user).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return user, nil
}

// SaveUser writes every column of an existing user
func (r *Repository) SaveUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error, "update user")
}

// DeleteUser removes a user together with all of their posts
func (r *Repository) DeleteUser(ctx context.Context, id uint) error {
	return r.Transaction(ctx, func(tx *Repository) error {
		if err := tx.db.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return translate(err, "delete user posts")
		}
		res := tx.db.Delete(&models.User{}, id)
		if res.Error != nil {
			return translate(res.Error, "delete user")
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListUsers returns one page of users in registration order and the total count
func (r *Repository) ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int64, error) {
	total, err := r.CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}
	var users []models.User
	err = r.db.WithContext(ctx).
		Order("id ASC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, translate(err, "list users")
	}
	return users, total, nil
}

// CountUsers returns the number of registered users
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count users")
	}
	return n, nil
}
