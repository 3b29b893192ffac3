package application

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/domains/plants/ports"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Service orchestrates catalogue use cases.
type Service struct {
	repo   ports.Repository
	index  ports.SearchIndex
	logger *slog.Logger
}

type Option func(*Service)

// WithSearchIndex enables full-text search; without it search falls back to
// a substring scan of the repository.
func WithSearchIndex(index ports.SearchIndex) Option {
	return func(s *Service) {
		s.index = index
	}
}

// WithLogger reports best-effort index failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AddPlant validates and persists a listing, then indexes it. Indexing
// failures do not fail the call; the listing is already committed.
func (s *Service) AddPlant(ctx context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if plant == nil {
		return nil, errors.New("plant is nil")
	}
	candidate, err := domain.NewPlant(plant.Name, plant.Category, plant.Description, plant.Image, plant.Price, plant.Quantity, plant.Seller)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, candidate)
	if err != nil {
		return nil, mapError(err)
	}
	if s.index != nil {
		if err := s.index.Index(ctx, saved); err != nil {
			s.logger.WarnContext(ctx, "failed to index plant", slog.String("plant.id", saved.ID), slog.String("error", err.Error()))
		}
	}
	return saved, nil
}

func (s *Service) GetPlant(ctx context.Context, id string) (*domain.Plant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPlants(ctx context.Context) ([]*domain.Plant, error) {
	return s.repo.List(ctx)
}

// SearchPlants ranks via the index when configured and hydrates each hit from
// the repository, dropping hits deleted since indexing.
func (s *Service) SearchPlants(ctx context.Context, query string, limit int) ([]*domain.Plant, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if s.index != nil {
		ids, err := s.index.Search(ctx, query, limit)
		if err == nil {
			return s.hydrate(ctx, ids)
		}
		s.logger.WarnContext(ctx, "plant search index unavailable, scanning repository", slog.String("error", err.Error()))
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Plant, 0, limit)
	for _, p := range all {
		if p.Matches(query) {
			result = append(result, p)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (s *Service) CountPlants(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) hydrate(ctx context.Context, ids []string) ([]*domain.Plant, error) {
	result := make([]*domain.Plant, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

var _ ports.Service = (*Service)(nil)
