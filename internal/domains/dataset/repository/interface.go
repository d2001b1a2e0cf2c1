package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"datahub-backend/internal/domains/dataset/model"
)

// =====================================================
// DATASET REPOSITORY INTERFACE
// =====================================================
type DataSetRepository interface {
	// Transaction management
	BeginTx(ctx context.Context) (pgx.Tx, error)
	CommitTx(ctx context.Context, tx pgx.Tx) error
	RollbackTx(ctx context.Context, tx pgx.Tx) error

	CreateWithTx(ctx context.Context, tx pgx.Tx, ds *model.DataSet) error

	// GetByID loads the full aggregate: metadata, authors, feature models and files.
	GetByID(ctx context.Context, id int64) (*model.DataSet, error)
	GetByDSMetaDataID(ctx context.Context, dsMetaDataID int64) (*model.DataSet, error)
	GetSynchronized(ctx context.Context, userID int64) ([]model.DataSet, error)
	GetUnsynchronized(ctx context.Context, userID int64) ([]model.DataSet, error)
	GetUnsynchronizedDataset(ctx context.Context, userID, datasetID int64) (*model.DataSet, error)
	LatestSynchronized(ctx context.Context, limit int) ([]model.DataSet, error)
	// ListSynchronized returns every published dataset, drafts excluded.
	ListSynchronized(ctx context.Context) ([]model.DataSet, error)
	CountSynchronized(ctx context.Context) (int64, error)
}

// =====================================================
// METADATA REPOSITORY INTERFACES
// =====================================================
type DSMetaDataRepository interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, md *model.DSMetaData) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, md *model.DSMetaData) error
	Update(ctx context.Context, md *model.DSMetaData) error
	// FilterByDOI returns nil, nil when no metadata carries the DOI.
	FilterByDOI(ctx context.Context, doi string) (*model.DSMetaData, error)
	Count(ctx context.Context) (int64, error)
}

type FMMetaDataRepository interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, md *model.FMMetaData) error
}

type AuthorRepository interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, author *model.Author) error
	DeleteByDSMetaDataIDWithTx(ctx context.Context, tx pgx.Tx, dsMetaDataID int64) error
	Count(ctx context.Context) (int64, error)
}

// =====================================================
// FEATURE MODEL / FILE REPOSITORY INTERFACES
// =====================================================
type FeatureModelRepository interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, fm *model.FeatureModel) error
	Count(ctx context.Context) (int64, error)
}

type HubfileRepository interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, file *model.Hubfile) error
	GetByID(ctx context.Context, id int64) (*model.HubfileLocation, error)
}

// =====================================================
// TRACKING / DOI REPOSITORY INTERFACES
// =====================================================

// RecordRepository stores tracking records of a single table.
type RecordRepository interface {
	Exists(ctx context.Context, entityID int64, cookie string) (bool, error)
	// Create inserts the record unless one already exists for (entity, cookie).
	// created is false when the row was already there.
	Create(ctx context.Context, record *model.TrackingRecord) (created bool, err error)
	Count(ctx context.Context) (int64, error)
}

type DOIMappingRepository interface {
	// GetByOldDOI returns nil, nil when there is no mapping.
	GetByOldDOI(ctx context.Context, oldDOI string) (*model.DOIMapping, error)
}
