package catalog

import (
	"context"
	"errors"
	"strings"

	"copyprocloud/internal/domain"
)

var (
	ErrNotFound   = errors.New("service not found")
	ErrValidation = errors.New("validation failed")
)

type serviceRepo interface {
	ListActive(ctx context.Context) ([]domain.CatalogService, error)
	GetBySlug(ctx context.Context, slug string) (*domain.CatalogService, error)
	Upsert(ctx context.Context, s *domain.CatalogService) error
}

// Service exposes the copywriting-service catalog: the public list the
// order form builds its dropdown from, plus admin upsert.
type Service struct {
	services serviceRepo
}

func NewService(services serviceRepo) *Service {
	return &Service{services: services}
}

func (s *Service) ListActive(ctx context.Context) ([]domain.CatalogService, error) {
	return s.services.ListActive(ctx)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.CatalogService, error) {
	svc, err := s.services.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, ErrNotFound
	}
	return svc, nil
}

func (s *Service) Upsert(ctx context.Context, svc *domain.CatalogService) error {
	svc.Slug = strings.TrimSpace(svc.Slug)
	if svc.Slug == "" || strings.TrimSpace(svc.Name) == "" || svc.MinPrice <= 0 {
		return ErrValidation
	}
	if svc.MinDeliveryDays < 0 || svc.MaxDeliveryDays < svc.MinDeliveryDays {
		return ErrValidation
	}
	return s.services.Upsert(ctx, svc)
}
