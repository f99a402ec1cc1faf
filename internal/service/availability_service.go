package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
)

type availabilityReader interface {
	Availability(ctx context.Context, sectionID int64) (*models.SectionAvailability, error)
}

// AvailabilityService serves seat counts for sections through the cache.
type AvailabilityService struct {
	repo   availabilityReader
	cache  *CacheService
	logger *zap.Logger
}

// NewAvailabilityService constructs the service. cache may be nil.
func NewAvailabilityService(repo availabilityReader, cache *CacheService, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, cache: cache, logger: logger}
}

func availabilityKey(sectionID int64) string {
	return fmt.Sprintf("availability:section:%d", sectionID)
}

// Get returns capacity, registered, waitlisted and available seat counts.
func (s *AvailabilityService) Get(ctx context.Context, sectionID int64) (*models.SectionAvailability, error) {
	key := availabilityKey(sectionID)
	var cached models.SectionAvailability
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	availability, err := s.repo.Availability(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	_ = s.cache.Set(ctx, key, availability, 0)
	return availability, nil
}

// InvalidateSection drops the cached counts of a section after a write.
func (s *AvailabilityService) InvalidateSection(ctx context.Context, sectionID int64) {
	if err := s.cache.Delete(ctx, availabilityKey(sectionID)); err != nil {
		s.logger.Warn("failed to invalidate availability", zap.Int64("section_id", sectionID), zap.Error(err))
	}
}
