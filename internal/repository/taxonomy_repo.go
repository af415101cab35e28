package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/sisterly-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Taxonomy - справочник каталога.
type Taxonomy string

const (
	Brands    Taxonomy = "brands"
	Colors    Taxonomy = "colors"
	Materials Taxonomy = "materials"
)

// TaxonomyRepository - интерфейс для чтения справочников.
type TaxonomyRepository interface {
	GetTaxonomy(ctx context.Context, taxonomy Taxonomy) ([]models.TaxonomyItem, error)
}

// PostgresTaxonomyRepository - реализация TaxonomyRepository для базы данных.
type PostgresTaxonomyRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresTaxonomyRepository создает новый экземпляр PostgresTaxonomyRepository.
func NewPostgresTaxonomyRepository(db *pgxpool.Pool) *PostgresTaxonomyRepository {
	return &PostgresTaxonomyRepository{DB: db}
}

// GetTaxonomy возвращает элементы справочника по алфавиту.
func (r *PostgresTaxonomyRepository) GetTaxonomy(ctx context.Context, taxonomy Taxonomy) ([]models.TaxonomyItem, error) {
	switch taxonomy {
	case Brands, Colors, Materials:
	default:
		return nil, fmt.Errorf("unknown taxonomy: %s", taxonomy)
	}

	rows, err := r.DB.Query(ctx, `SELECT id, name FROM `+string(taxonomy)+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.TaxonomyItem, 0)
	for rows.Next() {
		var item models.TaxonomyItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
