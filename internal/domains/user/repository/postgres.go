package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"datahub-backend/internal/domains/user/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT u.id, u.email, u.created_at,
		       p.id, p.user_id, p.orcid, p.affiliation, p.name, p.surname
		FROM users u
		JOIN user_profile p ON p.user_id = u.id
		WHERE u.id = $1
	`

	var u model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.CreatedAt,
		&u.Profile.ID,
		&u.Profile.UserID,
		&u.Profile.ORCID,
		&u.Profile.Affiliation,
		&u.Profile.Name,
		&u.Profile.Surname,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}
