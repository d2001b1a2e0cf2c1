package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/domains/dataset/repository"
	userModel "datahub-backend/internal/domains/user/model"
	"datahub-backend/internal/infrastructure/storage"
	"datahub-backend/internal/shared/utils"
	"datahub-backend/pkg/logger"
)

// Repositories groups the stores the dataset workflow writes to.
type Repositories struct {
	DataSets      repository.DataSetRepository
	DSMetaData    repository.DSMetaDataRepository
	FMMetaData    repository.FMMetaDataRepository
	Authors       repository.AuthorRepository
	FeatureModels repository.FeatureModelRepository
	Hubfiles      repository.HubfileRepository
	Downloads     repository.RecordRepository
	Views         repository.RecordRepository
}

// Options are the environment-derived settings of the service.
type Options struct {
	Domain     string
	Production bool
}

// =====================================================
// DATASET SERVICE IMPLEMENTATION
// =====================================================
type dataSetService struct {
	repos   Repositories
	storage *storage.LocalStorage
	opts    Options
}

func NewDataSetService(repos Repositories, local *storage.LocalStorage, opts Options) DataSetService {
	return &dataSetService{
		repos:   repos,
		storage: local,
		opts:    opts,
	}
}

// =====================================================
// CREATE FROM FORM
// =====================================================

// CreateFromForm writes metadata, authors, the dataset row, feature models and
// their files in one transaction and returns the reloaded aggregate.
func (s *dataSetService) CreateFromForm(ctx context.Context, form *model.DataSetForm, user *userModel.User) (*model.DataSet, error) {
	if form == nil || user == nil {
		return nil, model.NewDataSetError(model.ErrCodeInvalidForm, "form and user are required", nil)
	}

	mainAuthor := mainAuthorOf(user)

	tx, err := s.repos.DataSets.BeginTx(ctx)
	if err != nil {
		logger.Error("Failed to begin dataset transaction", err)
		return nil, err
	}
	defer s.repos.DataSets.RollbackTx(ctx, tx)

	ds, err := s.createWithTx(ctx, tx, form, user, mainAuthor)
	if err != nil {
		logger.ErrorWithFields("Exception creating dataset from form", err, map[string]interface{}{
			"user_id": user.ID,
			"title":   form.Title,
		})
		return nil, err
	}

	if err := s.repos.DataSets.CommitTx(ctx, tx); err != nil {
		logger.ErrorWithFields("Failed to commit dataset", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("Dataset created", map[string]interface{}{
		"dataset_id":     ds.ID,
		"user_id":        user.ID,
		"feature_models": len(form.FeatureModels),
	})

	return s.repos.DataSets.GetByID(ctx, ds.ID)
}

func (s *dataSetService) createWithTx(
	ctx context.Context,
	tx pgx.Tx,
	form *model.DataSetForm,
	user *userModel.User,
	mainAuthor model.Author,
) (*model.DataSet, error) {
	md := form.DSMetaData()
	if err := s.repos.DSMetaData.CreateWithTx(ctx, tx, &md); err != nil {
		return nil, err
	}

	authors := resolveAuthors(form.Anonymous, form.GetAnonymousAuthors(), form.GetAuthors(), mainAuthor)
	if err := s.attachDatasetAuthors(ctx, tx, md.ID, authors); err != nil {
		return nil, err
	}

	ds := &model.DataSet{
		UserID:       user.ID,
		DSMetaDataID: md.ID,
	}
	if err := s.repos.DataSets.CreateWithTx(ctx, tx, ds); err != nil {
		return nil, err
	}

	tempDir := s.storage.TempDir(user.ID)
	for _, entry := range form.FeatureModels {
		fmMD := entry.FMMetaData()
		if err := s.repos.FMMetaData.CreateWithTx(ctx, tx, &fmMD); err != nil {
			return nil, err
		}

		fmAuthors := resolveAuthors(entry.Anonymous, entry.GetAnonymousAuthors(), entry.GetAuthors(), mainAuthor)
		for i := range fmAuthors {
			fmAuthors[i].FMMetaDataID = &fmMD.ID
			if err := s.repos.Authors.CreateWithTx(ctx, tx, &fmAuthors[i]); err != nil {
				return nil, err
			}
		}

		fm := &model.FeatureModel{
			DataSetID:    ds.ID,
			FMMetaDataID: fmMD.ID,
		}
		if err := s.repos.FeatureModels.CreateWithTx(ctx, tx, fm); err != nil {
			return nil, err
		}

		name, err := utils.SafeFilename(fmMD.UVLFilename)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidFilename, err)
		}
		checksum, size, err := utils.CalculateChecksumAndSize(filepath.Join(tempDir, name))
		if err != nil {
			return nil, err
		}

		file := &model.Hubfile{
			Name:           name,
			Checksum:       checksum,
			Size:           size,
			FeatureModelID: fm.ID,
		}
		if err := s.repos.Hubfiles.CreateWithTx(ctx, tx, file); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// =====================================================
// UPDATE FROM FORM
// =====================================================

// UpdateFromForm overwrites the dataset metadata and replaces its author list.
// Feature models are left untouched.
func (s *dataSetService) UpdateFromForm(
	ctx context.Context,
	form *model.DataSetForm,
	user *userModel.User,
	ds *model.DataSet,
) (*model.DataSet, error) {
	if form == nil || user == nil || ds == nil || ds.DSMetaData == nil {
		return nil, model.NewDataSetError(model.ErrCodeInvalidForm, "form, user and dataset are required", nil)
	}

	mainAuthor := mainAuthorOf(user)

	tx, err := s.repos.DataSets.BeginTx(ctx)
	if err != nil {
		logger.Error("Failed to begin dataset transaction", err)
		return nil, err
	}
	defer s.repos.DataSets.RollbackTx(ctx, tx)

	if err := s.updateWithTx(ctx, tx, form, ds, mainAuthor); err != nil {
		logger.ErrorWithFields("Exception updating dataset from form", err, map[string]interface{}{
			"dataset_id": ds.ID,
			"user_id":    user.ID,
		})
		return nil, err
	}

	if err := s.repos.DataSets.CommitTx(ctx, tx); err != nil {
		logger.ErrorWithFields("Failed to commit dataset update", err, map[string]interface{}{
			"dataset_id": ds.ID,
		})
		return nil, err
	}

	return s.repos.DataSets.GetByID(ctx, ds.ID)
}

func (s *dataSetService) updateWithTx(
	ctx context.Context,
	tx pgx.Tx,
	form *model.DataSetForm,
	ds *model.DataSet,
	mainAuthor model.Author,
) error {
	md := form.DSMetaData()
	md.ID = ds.DSMetaData.ID
	md.DepositionID = ds.DSMetaData.DepositionID
	if md.DatasetDOI == nil {
		md.DatasetDOI = ds.DSMetaData.DatasetDOI
	}

	if err := s.repos.DSMetaData.UpdateWithTx(ctx, tx, &md); err != nil {
		return err
	}

	if err := s.repos.Authors.DeleteByDSMetaDataIDWithTx(ctx, tx, md.ID); err != nil {
		return err
	}

	authors := resolveAuthors(form.Anonymous, form.GetAnonymousAuthors(), form.GetAuthors(), mainAuthor)
	return s.attachDatasetAuthors(ctx, tx, md.ID, authors)
}

func (s *dataSetService) attachDatasetAuthors(ctx context.Context, tx pgx.Tx, dsMetaDataID int64, authors []model.Author) error {
	if len(authors) == 0 {
		return model.ErrNoAuthors
	}
	for i := range authors {
		authors[i].DSMetaDataID = &dsMetaDataID
		if err := s.repos.Authors.CreateWithTx(ctx, tx, &authors[i]); err != nil {
			return err
		}
	}
	return nil
}

// =====================================================
// FILE RELOCATION
// =====================================================

// MoveFeatureModels moves each feature model's file from the user's temp
// folder into the dataset folder. It runs after the aggregate is committed.
func (s *dataSetService) MoveFeatureModels(ctx context.Context, ds *model.DataSet, user *userModel.User) error {
	src := s.storage.TempDir(user.ID)
	dst := s.storage.DatasetDir(user.ID, ds.ID)

	for _, fm := range ds.FeatureModels {
		if fm.FMMetaData == nil {
			continue
		}
		name, err := utils.SafeFilename(fm.FMMetaData.UVLFilename)
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrInvalidFilename, err)
		}
		if err := s.storage.MoveFile(filepath.Join(src, name), dst); err != nil {
			logger.ErrorWithFields("Failed to move feature model file", err, map[string]interface{}{
				"dataset_id": ds.ID,
				"file":       name,
			})
			return err
		}
	}
	return nil
}

// =====================================================
// EXPORT
// =====================================================

func (s *dataSetService) ArchiveName(ds *model.DataSet) string {
	return fmt.Sprintf("dataset_%d.zip", ds.ID)
}

// ZipDataset archives the dataset folder into a fresh temp directory and
// returns that directory. The caller removes it.
func (s *dataSetService) ZipDataset(ds *model.DataSet) (string, error) {
	tempDir, err := os.MkdirTemp("", storage.ExportDirPrefix)
	if err != nil {
		return "", model.NewDataSetError(model.ErrCodeExportFailed, "failed to create temp dir", err)
	}

	archive := filepath.Join(tempDir, s.ArchiveName(ds))
	root := fmt.Sprintf("dataset_%d", ds.ID)

	if err := s.storage.ZipDirectory(s.storage.DatasetDir(ds.UserID, ds.ID), archive, root); err != nil {
		_ = os.RemoveAll(tempDir)
		logger.ErrorWithFields("Failed to export dataset", err, map[string]interface{}{
			"dataset_id": ds.ID,
		})
		return "", model.NewDataSetError(model.ErrCodeExportFailed, "failed to write archive", err)
	}
	return tempDir, nil
}

// =====================================================
// FINDERS
// =====================================================

func (s *dataSetService) GetByID(ctx context.Context, id int64) (*model.DataSet, error) {
	return s.repos.DataSets.GetByID(ctx, id)
}

func (s *dataSetService) GetByDSMetaDataID(ctx context.Context, dsMetaDataID int64) (*model.DataSet, error) {
	return s.repos.DataSets.GetByDSMetaDataID(ctx, dsMetaDataID)
}

func (s *dataSetService) GetSynchronized(ctx context.Context, userID int64) ([]model.DataSet, error) {
	return s.repos.DataSets.GetSynchronized(ctx, userID)
}

func (s *dataSetService) GetUnsynchronized(ctx context.Context, userID int64) ([]model.DataSet, error) {
	return s.repos.DataSets.GetUnsynchronized(ctx, userID)
}

func (s *dataSetService) GetUnsynchronizedDataset(ctx context.Context, userID, datasetID int64) (*model.DataSet, error) {
	return s.repos.DataSets.GetUnsynchronizedDataset(ctx, userID, datasetID)
}

func (s *dataSetService) LatestSynchronized(ctx context.Context, limit int) ([]model.DataSet, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repos.DataSets.LatestSynchronized(ctx, limit)
}

// GetDatasetDOIURL is http://{domain}/doi/{dataset_doi}, or "" for drafts.
func (s *dataSetService) GetDatasetDOIURL(ds *model.DataSet) string {
	if !ds.IsSynchronized() {
		return ""
	}
	return fmt.Sprintf("http://%s/doi/%s", s.opts.Domain, *ds.DSMetaData.DatasetDOI)
}

// =====================================================
// STATISTICS
// =====================================================

func (s *dataSetService) CountSynchronizedDatasets(ctx context.Context) (int64, error) {
	return s.repos.DataSets.CountSynchronized(ctx)
}

func (s *dataSetService) CountFeatureModels(ctx context.Context) (int64, error) {
	return s.repos.FeatureModels.Count(ctx)
}

func (s *dataSetService) CountAuthors(ctx context.Context) (int64, error) {
	return s.repos.Authors.Count(ctx)
}

func (s *dataSetService) CountDSMetaData(ctx context.Context) (int64, error) {
	return s.repos.DSMetaData.Count(ctx)
}

func (s *dataSetService) TotalDatasetDownloads(ctx context.Context) (int64, error) {
	return s.repos.Downloads.Count(ctx)
}

func (s *dataSetService) TotalDatasetViews(ctx context.Context) (int64, error) {
	return s.repos.Views.Count(ctx)
}

func (s *dataSetService) Stats(ctx context.Context) (*model.Stats, error) {
	stats := &model.Stats{}
	counters := []struct {
		dst *int64
		fn  func(context.Context) (int64, error)
	}{
		{&stats.SynchronizedDatasets, s.CountSynchronizedDatasets},
		{&stats.FeatureModels, s.CountFeatureModels},
		{&stats.Authors, s.CountAuthors},
		{&stats.DSMetaData, s.CountDSMetaData},
		{&stats.DatasetDownloads, s.TotalDatasetDownloads},
		{&stats.DatasetViews, s.TotalDatasetViews},
	}
	for _, c := range counters {
		n, err := c.fn(ctx)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}
	return stats, nil
}

// =====================================================
// HELPERS
// =====================================================

// mainAuthorOf derives the default author from the submitter's profile.
func mainAuthorOf(user *userModel.User) model.Author {
	return model.Author{
		Name:        user.Profile.DisplayName(),
		Affiliation: copyString(user.Profile.Affiliation),
		ORCID:       copyString(user.Profile.ORCID),
	}
}

// resolveAuthors picks the author list of one metadata owner: the anonymous
// list when anonymous, else the explicit list, else the main author alone.
func resolveAuthors(anonymous bool, anonymousAuthors, explicit []model.Author, mainAuthor model.Author) []model.Author {
	switch {
	case anonymous:
		return anonymousAuthors
	case len(explicit) > 0:
		return explicit
	default:
		return []model.Author{mainAuthor}
	}
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// IsNotFound reports whether err is one of the dataset lookup misses.
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrDatasetNotFound) ||
		errors.Is(err, model.ErrHubfileNotFound) ||
		errors.Is(err, model.ErrDSMetaDataNotFound)
}
