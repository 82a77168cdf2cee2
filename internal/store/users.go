package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/safar/storefront-api/internal/database"
	"github.com/safar/storefront-api/internal/models"
)

type CreateUserRequest struct {
	Username *string `json:"username" validate:"required"`
	Email    *string `json:"email" validate:"required"`
}

const userColumns = `id, username, email, created_at`

func CreateUser(ctx context.Context, db *sqlx.DB, req CreateUserRequest) (*models.User, error) {
	if err := requireFields(req, "Username and email are required"); err != nil {
		return nil, err
	}

	user := &models.User{}

	query := `
		INSERT INTO users (username, email, created_at)
		VALUES ($1, $2, NOW())
		RETURNING ` + userColumns

	if err := db.QueryRowxContext(ctx, query, *req.Username, *req.Email).StructScan(user); err != nil {
		return nil, database.NewStorageError("create user", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sqlx.DB, id int64) (*models.User, error) {
	user := &models.User{}

	err := db.GetContext(ctx, user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &database.NotFoundError{Resource: "user", ID: id}
		}
		return nil, database.NewStorageError("get user", err)
	}

	return user, nil
}

func ListUsers(ctx context.Context, db *sqlx.DB) ([]models.User, error) {
	users := []models.User{}

	if err := db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, database.NewStorageError("list users", err)
	}

	return users, nil
}
