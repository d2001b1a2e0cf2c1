package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"datahub-backend/internal/domains/dataset/model"
)

const dataSetColumns = `
	d.id, d.user_id, d.ds_meta_data_id, d.created_at,
	m.id, m.deposition_id, m.title, m.description, m.publication_type,
	m.publication_doi, m.dataset_doi, m.tags, m.dataset_anonymous`

// =====================================================
// POSTGRES DATASET REPOSITORY
// =====================================================
type postgresDataSetRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresDataSetRepository(pool *pgxpool.Pool) DataSetRepository {
	return &postgresDataSetRepository{pool: pool}
}

func (r *postgresDataSetRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *postgresDataSetRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Commit(ctx)
}

func (r *postgresDataSetRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	return tx.Rollback(ctx)
}

func (r *postgresDataSetRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, ds *model.DataSet) error {
	query := `
		INSERT INTO data_set (user_id, ds_meta_data_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, query, ds.UserID, ds.DSMetaDataID).Scan(&ds.ID, &ds.CreatedAt); err != nil {
		return fmt.Errorf("insert data_set: %w", err)
	}
	return nil
}

// =====================================================
// FINDERS
// =====================================================

func (r *postgresDataSetRepository) GetByID(ctx context.Context, id int64) (*model.DataSet, error) {
	query := `SELECT ` + dataSetColumns + `
		FROM data_set d
		JOIN ds_meta_data m ON m.id = d.ds_meta_data_id
		WHERE d.id = $1`

	ds, err := scanDataSet(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("get dataset %d: %w", id, err)
	}

	if err := r.loadChildren(ctx, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (r *postgresDataSetRepository) GetByDSMetaDataID(ctx context.Context, dsMetaDataID int64) (*model.DataSet, error) {
	items, err := r.list(ctx, `WHERE d.ds_meta_data_id = $1`, dsMetaDataID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, model.ErrDatasetNotFound
	}
	return &items[0], nil
}

func (r *postgresDataSetRepository) GetSynchronized(ctx context.Context, userID int64) ([]model.DataSet, error) {
	return r.list(ctx, `WHERE d.user_id = $1 AND m.dataset_doi IS NOT NULL ORDER BY d.created_at DESC`, userID)
}

func (r *postgresDataSetRepository) GetUnsynchronized(ctx context.Context, userID int64) ([]model.DataSet, error) {
	return r.list(ctx, `WHERE d.user_id = $1 AND m.dataset_doi IS NULL ORDER BY d.created_at DESC`, userID)
}

func (r *postgresDataSetRepository) GetUnsynchronizedDataset(ctx context.Context, userID, datasetID int64) (*model.DataSet, error) {
	items, err := r.list(ctx, `WHERE d.user_id = $1 AND d.id = $2 AND m.dataset_doi IS NULL`, userID, datasetID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, model.ErrDatasetNotFound
	}
	return &items[0], nil
}

func (r *postgresDataSetRepository) LatestSynchronized(ctx context.Context, limit int) ([]model.DataSet, error) {
	return r.list(ctx, `WHERE m.dataset_doi IS NOT NULL ORDER BY d.created_at DESC LIMIT $1`, limit)
}

func (r *postgresDataSetRepository) ListSynchronized(ctx context.Context) ([]model.DataSet, error) {
	return r.list(ctx, `WHERE m.dataset_doi IS NOT NULL ORDER BY d.id`)
}

func (r *postgresDataSetRepository) CountSynchronized(ctx context.Context) (int64, error) {
	return count(ctx, r.pool, `
		SELECT COUNT(*) FROM data_set d
		JOIN ds_meta_data m ON m.id = d.ds_meta_data_id
		WHERE m.dataset_doi IS NOT NULL`)
}

func (r *postgresDataSetRepository) list(ctx context.Context, where string, args ...interface{}) ([]model.DataSet, error) {
	query := `SELECT ` + dataSetColumns + `
		FROM data_set d
		JOIN ds_meta_data m ON m.id = d.ds_meta_data_id
		` + where

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	datasets := make([]model.DataSet, 0)
	for rows.Next() {
		ds, err := scanDataSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		datasets = append(datasets, *ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	for i := range datasets {
		if err := r.loadChildren(ctx, &datasets[i]); err != nil {
			return nil, err
		}
	}
	return datasets, nil
}

// =====================================================
// AGGREGATE LOADING
// =====================================================

func (r *postgresDataSetRepository) loadChildren(ctx context.Context, ds *model.DataSet) error {
	authors, err := r.authors(ctx, "ds_meta_data_id", ds.DSMetaDataID)
	if err != nil {
		return err
	}
	ds.DSMetaData.Authors = authors

	query := `
		SELECT f.id, f.data_set_id, f.fm_meta_data_id,
			m.id, m.uvl_filename, m.title, m.description, m.publication_type,
			m.publication_doi, m.tags, m.uvl_version, m.fm_anonymous
		FROM feature_model f
		JOIN fm_meta_data m ON m.id = f.fm_meta_data_id
		WHERE f.data_set_id = $1
		ORDER BY f.id`

	rows, err := r.pool.Query(ctx, query, ds.ID)
	if err != nil {
		return fmt.Errorf("list feature models of dataset %d: %w", ds.ID, err)
	}
	defer rows.Close()

	fms := make([]model.FeatureModel, 0)
	for rows.Next() {
		var fm model.FeatureModel
		md := &model.FMMetaData{}
		if err := rows.Scan(
			&fm.ID, &fm.DataSetID, &fm.FMMetaDataID,
			&md.ID, &md.UVLFilename, &md.Title, &md.Description, &md.PublicationType,
			&md.PublicationDOI, &md.Tags, &md.UVLVersion, &md.FMAnonymous,
		); err != nil {
			return fmt.Errorf("scan feature model: %w", err)
		}
		fm.FMMetaData = md
		fms = append(fms, fm)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list feature models: %w", err)
	}
	rows.Close()

	for i := range fms {
		authors, err := r.authors(ctx, "fm_meta_data_id", fms[i].FMMetaDataID)
		if err != nil {
			return err
		}
		fms[i].FMMetaData.Authors = authors

		files, err := r.files(ctx, fms[i].ID)
		if err != nil {
			return err
		}
		fms[i].Files = files
	}

	ds.FeatureModels = fms
	return nil
}

// authors lists the authors of one owner in insertion order.
// column is a trusted constant, never user input.
func (r *postgresDataSetRepository) authors(ctx context.Context, column string, ownerID int64) ([]model.Author, error) {
	query := fmt.Sprintf(`
		SELECT id, name, affiliation, orcid, ds_meta_data_id, fm_meta_data_id
		FROM author
		WHERE %s = $1
		ORDER BY id`, column)

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]model.Author, 0)
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Affiliation, &a.ORCID, &a.DSMetaDataID, &a.FMMetaDataID); err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *postgresDataSetRepository) files(ctx context.Context, featureModelID int64) ([]model.Hubfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, checksum, size, feature_model_id
		FROM file
		WHERE feature_model_id = $1
		ORDER BY id`, featureModelID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	files := make([]model.Hubfile, 0)
	for rows.Next() {
		var f model.Hubfile
		if err := rows.Scan(&f.ID, &f.Name, &f.Checksum, &f.Size, &f.FeatureModelID); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func scanDataSet(row pgx.Row) (*model.DataSet, error) {
	ds := &model.DataSet{}
	md := &model.DSMetaData{}
	if err := row.Scan(
		&ds.ID, &ds.UserID, &ds.DSMetaDataID, &ds.CreatedAt,
		&md.ID, &md.DepositionID, &md.Title, &md.Description, &md.PublicationType,
		&md.PublicationDOI, &md.DatasetDOI, &md.Tags, &md.DatasetAnonymous,
	); err != nil {
		return nil, err
	}
	ds.DSMetaData = md
	return ds, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func count(ctx context.Context, q queryRower, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
