package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"datahub-backend/internal/domains/dataset/model"
)

// =====================================================
// TRACKING RECORDS
// =====================================================

// postgresRecordRepository serves one of the four tracking tables. Table and
// column names come from model.RecordTable constants only.
type postgresRecordRepository struct {
	pool  *pgxpool.Pool
	table model.RecordTable
}

func NewPostgresRecordRepository(pool *pgxpool.Pool, table model.RecordTable) RecordRepository {
	return &postgresRecordRepository{pool: pool, table: table}
}

func (r *postgresRecordRepository) Exists(ctx context.Context, entityID int64, cookie string) (bool, error) {
	query := fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		r.table.Name, r.table.EntityColumn, r.table.CookieColumn,
	)

	var exists bool
	if err := r.pool.QueryRow(ctx, query, entityID, cookie).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s: %w", r.table.Name, err)
	}
	return exists, nil
}

func (r *postgresRecordRepository) Create(ctx context.Context, record *model.TrackingRecord) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, %s, %s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%s, %s) DO NOTHING
		RETURNING id, %s`,
		r.table.Name, r.table.EntityColumn, r.table.CookieColumn,
		r.table.EntityColumn, r.table.CookieColumn,
		r.table.DateColumn,
	)

	err := r.pool.QueryRow(ctx, query, record.UserID, record.EntityID, record.Cookie).Scan(&record.ID, &record.Date)
	if err != nil {
		// DO NOTHING returns no row: another request already stored this token.
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert %s: %w", r.table.Name, err)
	}
	return true, nil
}

func (r *postgresRecordRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.pool, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table.Name))
}

// =====================================================
// DOI MAPPING
// =====================================================
type postgresDOIMappingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDOIMappingRepository(pool *pgxpool.Pool) DOIMappingRepository {
	return &postgresDOIMappingRepository{pool: pool}
}

func (r *postgresDOIMappingRepository) GetByOldDOI(ctx context.Context, oldDOI string) (*model.DOIMapping, error) {
	query := `
		SELECT id, dataset_doi_old, dataset_doi_new
		FROM doi_mapping
		WHERE dataset_doi_old = $1
	`
	m := &model.DOIMapping{}
	err := r.pool.QueryRow(ctx, query, oldDOI).Scan(&m.ID, &m.DatasetDOIOld, &m.DatasetDOINew)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get doi mapping: %w", err)
	}
	return m, nil
}
