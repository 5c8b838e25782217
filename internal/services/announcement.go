package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"conferencecentral/internal/domain"
)

const announcementPrefix = "Last chance to attend! The following conferences are nearly sold out:"

type announcementService struct {
	confRepo domain.ConferenceRepository
	cache    domain.AnnouncementCache
	logger   *slog.Logger
}

// NewAnnouncementService creates the derived announcement maintainer.
func NewAnnouncementService(
	confRepo domain.ConferenceRepository,
	cache domain.AnnouncementCache,
	logger *slog.Logger,
) domain.AnnouncementService {
	return &announcementService{
		confRepo: confRepo,
		cache:    cache,
		logger:   logger,
	}
}

// Recompute derives the cache content from current inventory state. The
// scan runs outside any transaction and may lag writes by up to one
// recompute interval.
func (s *announcementService) Recompute(ctx context.Context) (string, error) {
	confs, err := s.confRepo.ListNearlySoldOut(ctx, domain.NearlySoldOutThreshold)
	if err != nil {
		return "", fmt.Errorf("list nearly sold out conferences: %w", err)
	}

	if len(confs) == 0 {
		// Absence of the key, not an empty string, is the
		// "no announcement" state.
		s.cache.Delete(domain.AnnouncementKey)
		return "", nil
	}

	names := make([]string, 0, len(confs))
	for _, c := range confs {
		names = append(names, c.Name)
	}
	announcement := announcementPrefix + " " + strings.Join(names, ", ")
	s.cache.Set(domain.AnnouncementKey, announcement)
	s.logger.DebugContext(ctx, "announcement recomputed", "conferences", len(confs))
	return announcement, nil
}

func (s *announcementService) Fetch(ctx context.Context) string {
	announcement, ok := s.cache.Get(domain.AnnouncementKey)
	if !ok {
		return ""
	}
	return announcement
}
