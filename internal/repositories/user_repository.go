package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"leadcrm/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, full_name, password_hash, profile_pic, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (id, email, full_name, password_hash, profile_pic, created_at, updated_at)
		VALUES (:id, :email, :full_name, :password_hash, :profile_pic, :created_at, :updated_at)
	`
	_, err := r.DB.NamedExecContext(ctx, q, user)
	return translate(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	u := &models.User{}
	q := r.DB.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.DB.GetContext(ctx, u, q, id); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	q := r.DB.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	if err := r.DB.GetContext(ctx, u, q, email); err != nil {
		return nil, translate(err)
	}
	return u, nil
}
