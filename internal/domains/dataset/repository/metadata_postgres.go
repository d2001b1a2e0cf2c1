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
// DS META DATA
// =====================================================
type postgresDSMetaDataRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDSMetaDataRepository(pool *pgxpool.Pool) DSMetaDataRepository {
	return &postgresDSMetaDataRepository{pool: pool}
}

func (r *postgresDSMetaDataRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, md *model.DSMetaData) error {
	query := `
		INSERT INTO ds_meta_data (
			deposition_id, title, description, publication_type,
			publication_doi, dataset_doi, tags, dataset_anonymous
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := tx.QueryRow(ctx, query,
		md.DepositionID,
		md.Title,
		md.Description,
		md.PublicationType,
		md.PublicationDOI,
		md.DatasetDOI,
		md.Tags,
		md.DatasetAnonymous,
	).Scan(&md.ID)
	if err != nil {
		return fmt.Errorf("insert ds_meta_data: %w", err)
	}
	return nil
}

func (r *postgresDSMetaDataRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, md *model.DSMetaData) error {
	return r.update(ctx, tx, md)
}

func (r *postgresDSMetaDataRepository) Update(ctx context.Context, md *model.DSMetaData) error {
	return r.update(ctx, r.pool, md)
}

func (r *postgresDSMetaDataRepository) update(ctx context.Context, q queryRower, md *model.DSMetaData) error {
	query := `
		UPDATE ds_meta_data SET
			deposition_id = $2,
			title = $3,
			description = $4,
			publication_type = $5,
			publication_doi = $6,
			dataset_doi = $7,
			tags = $8,
			dataset_anonymous = $9
		WHERE id = $1
		RETURNING id
	`
	var id int64
	err := q.QueryRow(ctx, query,
		md.ID,
		md.DepositionID,
		md.Title,
		md.Description,
		md.PublicationType,
		md.PublicationDOI,
		md.DatasetDOI,
		md.Tags,
		md.DatasetAnonymous,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrDSMetaDataNotFound
		}
		return fmt.Errorf("update ds_meta_data %d: %w", md.ID, err)
	}
	return nil
}

func (r *postgresDSMetaDataRepository) FilterByDOI(ctx context.Context, doi string) (*model.DSMetaData, error) {
	query := `
		SELECT id, deposition_id, title, description, publication_type,
			publication_doi, dataset_doi, tags, dataset_anonymous
		FROM ds_meta_data
		WHERE dataset_doi = $1
		ORDER BY id
		LIMIT 1
	`
	md := &model.DSMetaData{}
	err := r.pool.QueryRow(ctx, query, doi).Scan(
		&md.ID, &md.DepositionID, &md.Title, &md.Description, &md.PublicationType,
		&md.PublicationDOI, &md.DatasetDOI, &md.Tags, &md.DatasetAnonymous,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("filter ds_meta_data by doi: %w", err)
	}
	return md, nil
}

func (r *postgresDSMetaDataRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.pool, `SELECT COUNT(*) FROM ds_meta_data`)
}

// =====================================================
// FM META DATA
// =====================================================
type postgresFMMetaDataRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresFMMetaDataRepository(pool *pgxpool.Pool) FMMetaDataRepository {
	return &postgresFMMetaDataRepository{pool: pool}
}

func (r *postgresFMMetaDataRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, md *model.FMMetaData) error {
	query := `
		INSERT INTO fm_meta_data (
			uvl_filename, title, description, publication_type,
			publication_doi, tags, uvl_version, fm_anonymous
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := tx.QueryRow(ctx, query,
		md.UVLFilename,
		md.Title,
		md.Description,
		md.PublicationType,
		md.PublicationDOI,
		md.Tags,
		md.UVLVersion,
		md.FMAnonymous,
	).Scan(&md.ID)
	if err != nil {
		return fmt.Errorf("insert fm_meta_data: %w", err)
	}
	return nil
}

// =====================================================
// AUTHORS
// =====================================================
type postgresAuthorRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAuthorRepository(pool *pgxpool.Pool) AuthorRepository {
	return &postgresAuthorRepository{pool: pool}
}

func (r *postgresAuthorRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, author *model.Author) error {
	query := `
		INSERT INTO author (name, affiliation, orcid, ds_meta_data_id, fm_meta_data_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := tx.QueryRow(ctx, query,
		author.Name,
		author.Affiliation,
		author.ORCID,
		author.DSMetaDataID,
		author.FMMetaDataID,
	).Scan(&author.ID)
	if err != nil {
		return fmt.Errorf("insert author: %w", err)
	}
	return nil
}

func (r *postgresAuthorRepository) DeleteByDSMetaDataIDWithTx(ctx context.Context, tx pgx.Tx, dsMetaDataID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM author WHERE ds_meta_data_id = $1`, dsMetaDataID); err != nil {
		return fmt.Errorf("delete authors of ds_meta_data %d: %w", dsMetaDataID, err)
	}
	return nil
}

func (r *postgresAuthorRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.pool, `SELECT COUNT(*) FROM author`)
}

// =====================================================
// FEATURE MODELS / FILES
// =====================================================
type postgresFeatureModelRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresFeatureModelRepository(pool *pgxpool.Pool) FeatureModelRepository {
	return &postgresFeatureModelRepository{pool: pool}
}

func (r *postgresFeatureModelRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, fm *model.FeatureModel) error {
	query := `
		INSERT INTO feature_model (data_set_id, fm_meta_data_id)
		VALUES ($1, $2)
		RETURNING id
	`
	if err := tx.QueryRow(ctx, query, fm.DataSetID, fm.FMMetaDataID).Scan(&fm.ID); err != nil {
		return fmt.Errorf("insert feature_model: %w", err)
	}
	return nil
}

func (r *postgresFeatureModelRepository) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.pool, `SELECT COUNT(*) FROM feature_model`)
}

type postgresHubfileRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresHubfileRepository(pool *pgxpool.Pool) HubfileRepository {
	return &postgresHubfileRepository{pool: pool}
}

func (r *postgresHubfileRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, file *model.Hubfile) error {
	query := `
		INSERT INTO file (name, checksum, size, feature_model_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := tx.QueryRow(ctx, query, file.Name, file.Checksum, file.Size, file.FeatureModelID).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *postgresHubfileRepository) GetByID(ctx context.Context, id int64) (*model.HubfileLocation, error) {
	query := `
		SELECT f.id, f.name, f.checksum, f.size, f.feature_model_id, d.id, d.user_id
		FROM file f
		JOIN feature_model fm ON fm.id = f.feature_model_id
		JOIN data_set d ON d.id = fm.data_set_id
		WHERE f.id = $1
	`
	loc := &model.HubfileLocation{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&loc.ID, &loc.Name, &loc.Checksum, &loc.Size, &loc.FeatureModelID,
		&loc.DataSetID, &loc.UserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrHubfileNotFound
		}
		return nil, fmt.Errorf("get file %d: %w", id, err)
	}
	return loc, nil
}
