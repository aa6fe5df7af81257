package searchlog

import (
	"context"
	"log/slog"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// Service records nearby lookups and serves them back for the admin views.
// A Service without a repository accepts and discards events.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Enabled() bool {
	return s.repo != nil
}

func (s *Service) RecordSearch(ctx context.Context, event types.SearchEvent) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Insert(ctx, event)
}

// Recent clamps limit to [1, 500], defaulting to 50.
func (s *Service) Recent(ctx context.Context, limit int) ([]types.SearchEvent, error) {
	if s.repo == nil {
		return []types.SearchEvent{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}
	return s.repo.Recent(ctx, limit)
}

func (s *Service) Summary(ctx context.Context) ([]types.CategorySearchCount, error) {
	if s.repo == nil {
		return []types.CategorySearchCount{}, nil
	}
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []types.CategorySearchCount{}
	}
	return counts, nil
}
