package service

import (
	"context"
	"path/filepath"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/domains/dataset/repository"
	"datahub-backend/internal/infrastructure/storage"
	"datahub-backend/internal/shared/utils"
)

type hubfileService struct {
	repo    repository.HubfileRepository
	storage *storage.LocalStorage
	opts    Options
}

func NewHubfileService(repo repository.HubfileRepository, local *storage.LocalStorage, opts Options) HubfileService {
	return &hubfileService{repo: repo, storage: local, opts: opts}
}

func (s *hubfileService) GetByID(ctx context.Context, id int64) (*model.HubfileLocation, error) {
	return s.repo.GetByID(ctx, id)
}

// FullPath is {WORKING_DIR}/uploads/user_{u}/dataset_{d}/{name}.
func (s *hubfileService) FullPath(file *model.HubfileLocation) string {
	return filepath.Join(s.storage.DatasetDir(file.UserID, file.DataSetID), file.Name)
}

func (s *hubfileService) FileURL(fileID int64) string {
	return utils.FileURL(s.opts.Domain, s.opts.Production, fileID)
}
