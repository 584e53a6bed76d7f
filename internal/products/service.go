package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurokira/storefront-backend/pkg/db/models"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
)

type repository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListBySlugs(ctx context.Context, slugs []string) ([]models.Product, error)
	List(ctx context.Context, category string) ([]models.Product, error)
}

// Service exposes catalog reads.
type Service interface {
	GetBySlug(ctx context.Context, slug string) (ProductDTO, error)
	ListBySlugs(ctx context.Context, slugs []string) ([]ProductDTO, error)
	List(ctx context.Context, category string) ([]ProductDTO, error)
	Snapshot(ctx context.Context, slug string) (*models.Product, error)
}

type service struct {
	repo repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (ProductDTO, error) {
	row, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return ProductDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if row == nil {
		return ProductDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return ToDTO(*row), nil
}

// ListBySlugs hydrates the requested slugs, preserving the caller's order and
// silently skipping slugs that no longer resolve.
func (s *service) ListBySlugs(ctx context.Context, slugs []string) ([]ProductDTO, error) {
	rows, err := s.repo.ListBySlugs(ctx, slugs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	bySlug := make(map[string]models.Product, len(rows))
	for _, row := range rows {
		bySlug[row.Slug] = row
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, slug := range slugs {
		if row, ok := bySlug[strings.TrimSpace(slug)]; ok {
			out = append(out, ToDTO(row))
		}
	}
	return out, nil
}

func (s *service) List(ctx context.Context, category string) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToDTO(row))
	}
	return out, nil
}

// Snapshot returns the raw catalog row for the cart to capture at add time.
func (s *service) Snapshot(ctx context.Context, slug string) (*models.Product, error) {
	row, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return row, nil
}
