package service

import (
	"context"
	"fmt"
	"time"

	"datahub-backend/internal/domains/dataset/repository"
	"datahub-backend/pkg/cache"
	"datahub-backend/pkg/logger"
)

const (
	doiMappingTTL = time.Hour
	// Misses expire quickly so a newly added mapping takes effect promptly.
	doiMissTTL = time.Minute
)

type cachedDOI struct {
	NewDOI string `json:"new_doi"`
	Found  bool   `json:"found"`
}

type doiMappingService struct {
	repo  repository.DOIMappingRepository
	cache cache.Cache
}

func NewDOIMappingService(repo repository.DOIMappingRepository, c cache.Cache) DOIMappingService {
	if c == nil {
		c = cache.Noop{}
	}
	return &doiMappingService{repo: repo, cache: c}
}

// GetNewDOI returns the replacement for oldDOI. found is false when no mapping
// exists. Misses are cached for doiMissTTL only.
func (s *doiMappingService) GetNewDOI(ctx context.Context, oldDOI string) (string, bool, error) {
	key := fmt.Sprintf("doi_mapping:%s", oldDOI)

	var cached cachedDOI
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("DOI mapping cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if hit {
		return cached.NewDOI, cached.Found, nil
	}

	mapping, err := s.repo.GetByOldDOI(ctx, oldDOI)
	if err != nil {
		return "", false, err
	}

	cached, ttl := cachedDOI{}, doiMissTTL
	if mapping != nil {
		cached, ttl = cachedDOI{NewDOI: mapping.DatasetDOINew, Found: true}, doiMappingTTL
	}
	if err := s.cache.Set(ctx, key, cached, ttl); err != nil {
		logger.Warn("DOI mapping cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return cached.NewDOI, cached.Found, nil
}
