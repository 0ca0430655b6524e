package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/usedgoods/marketplace/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrDuplicateTel   = errors.New("phone already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	Sellers(ctx context.Context, ids []string) (map[string]*model.Seller, error)
	AvatarPaths(ctx context.Context) ([]string, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, tel, password_hash, avatar, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Tel, user.PasswordHash, user.Avatar, user.CreatedAt)
	if err != nil {
		// Check for unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			if strings.Contains(errStr, "tel") {
				return ErrDuplicateTel
			}
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

// Sellers returns the public seller summary of each user id, keyed by id.
func (r *userRepository) Sellers(ctx context.Context, ids []string) (map[string]*model.Seller, error) {
	sellers := make(map[string]*model.Seller, len(ids))
	if len(ids) == 0 {
		return sellers, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, tel, avatar FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID string `db:"id"`
		model.Seller
	}
	err = r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		seller := row.Seller
		sellers[row.ID] = &seller
	}

	return sellers, nil
}

// AvatarPaths lists every stored file id referenced as a user avatar.
func (r *userRepository) AvatarPaths(ctx context.Context) ([]string, error) {
	var paths []string
	query := `SELECT avatar FROM users WHERE avatar IS NOT NULL ORDER BY avatar`

	err := r.db.SelectContext(ctx, &paths, query)
	if err != nil {
		return nil, err
	}

	return paths, nil
}
