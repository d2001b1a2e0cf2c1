package service

import (
	"context"

	"datahub-backend/internal/domains/dataset/model"
	userModel "datahub-backend/internal/domains/user/model"
)

// =====================================================
// DATASET SERVICE INTERFACE
// =====================================================
type DataSetService interface {
	// Workflow
	CreateFromForm(ctx context.Context, form *model.DataSetForm, user *userModel.User) (*model.DataSet, error)
	UpdateFromForm(ctx context.Context, form *model.DataSetForm, user *userModel.User, ds *model.DataSet) (*model.DataSet, error)
	MoveFeatureModels(ctx context.Context, ds *model.DataSet, user *userModel.User) error

	// Export
	ZipDataset(ds *model.DataSet) (string, error)
	ArchiveName(ds *model.DataSet) string
	ExportCatalogue(ctx context.Context) ([]byte, error)

	// Finders
	GetByID(ctx context.Context, id int64) (*model.DataSet, error)
	GetByDSMetaDataID(ctx context.Context, dsMetaDataID int64) (*model.DataSet, error)
	GetSynchronized(ctx context.Context, userID int64) ([]model.DataSet, error)
	GetUnsynchronized(ctx context.Context, userID int64) ([]model.DataSet, error)
	GetUnsynchronizedDataset(ctx context.Context, userID, datasetID int64) (*model.DataSet, error)
	LatestSynchronized(ctx context.Context, limit int) ([]model.DataSet, error)
	GetDatasetDOIURL(ds *model.DataSet) string

	// Statistics
	CountSynchronizedDatasets(ctx context.Context) (int64, error)
	CountFeatureModels(ctx context.Context) (int64, error)
	CountAuthors(ctx context.Context) (int64, error)
	CountDSMetaData(ctx context.Context) (int64, error)
	TotalDatasetDownloads(ctx context.Context) (int64, error)
	TotalDatasetViews(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*model.Stats, error)

	// Response mapping
	ToResponse(ds *model.DataSet) model.DataSetResponse
}

// DSMetaDataService looks metadata up by registry DOI.
type DSMetaDataService interface {
	FilterByDOI(ctx context.Context, doi string) (*model.DSMetaData, error)
	UpdateDSMetaData(ctx context.Context, md *model.DSMetaData) error
}

// DOIMappingService resolves retired DOIs to their replacements.
type DOIMappingService interface {
	GetNewDOI(ctx context.Context, oldDOI string) (string, bool, error)
}

// HubfileService serves single uploaded files.
type HubfileService interface {
	GetByID(ctx context.Context, id int64) (*model.HubfileLocation, error)
	FullPath(file *model.HubfileLocation) string
	FileURL(fileID int64) string
}
