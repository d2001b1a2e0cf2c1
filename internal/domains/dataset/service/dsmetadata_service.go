package service

import (
	"context"

	"datahub-backend/internal/domains/dataset/model"
	"datahub-backend/internal/domains/dataset/repository"
)

type dsMetaDataService struct {
	repo repository.DSMetaDataRepository
}

func NewDSMetaDataService(repo repository.DSMetaDataRepository) DSMetaDataService {
	return &dsMetaDataService{repo: repo}
}

// FilterByDOI returns nil, nil when no dataset carries doi.
func (s *dsMetaDataService) FilterByDOI(ctx context.Context, doi string) (*model.DSMetaData, error) {
	return s.repo.FilterByDOI(ctx, doi)
}

func (s *dsMetaDataService) UpdateDSMetaData(ctx context.Context, md *model.DSMetaData) error {
	return s.repo.Update(ctx, md)
}
