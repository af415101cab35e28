package services

import (
	"context"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
)

type CatalogService struct {
	Repo repository.TaxonomyRepository
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo repository.TaxonomyRepository) *CatalogService {
	return &CatalogService{Repo: repo}
}

// GetTaxonomy возвращает справочник каталога.
func (s *CatalogService) GetTaxonomy(ctx context.Context, taxonomy repository.Taxonomy) ([]models.TaxonomyItem, error) {
	return s.Repo.GetTaxonomy(ctx, taxonomy)
}
