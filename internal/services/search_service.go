package services

import (
	"context"
	"strings"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"github.com/go-playground/validator/v10"
)

type SearchService struct {
	Products repository.ProductRepository
	Users    repository.UserRepository
	Validate *validator.Validate
}

// NewSearchService создает новый экземпляр SearchService.
func NewSearchService(products repository.ProductRepository, users repository.UserRepository) *SearchService {
	return &SearchService{Products: products, Users: users, Validate: NewValidator()}
}

// SearchProducts ищет опубликованные товары по бренду, цвету, материалу и модели.
func (s *SearchService) SearchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if err := utils.ValidateStruct(s.Validate, filter); err != nil {
		return nil, err
	}
	if filter.Limit == 0 {
		filter.Limit = defaultSearchLimit
	}
	return s.Products.SearchProducts(ctx, filter)
}

// SearchUsers ищет пользователей по имени и фамилии; без критериев результат пуст.
func (s *SearchService) SearchUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if err := utils.ValidateStruct(s.Validate, filter); err != nil {
		return nil, err
	}
	if strings.TrimSpace(filter.FirstName) == "" && strings.TrimSpace(filter.LastName) == "" {
		return []models.User{}, nil
	}
	if filter.Limit == 0 {
		filter.Limit = defaultSearchLimit
	}
	return s.Users.SearchUsers(ctx, filter)
}
