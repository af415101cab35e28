package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/utils"
)

type FavoriteService struct {
	Repo     repository.FavoriteRepository
	Products repository.ProductRepository
	Notifier Notifier
}

// NewFavoriteService создает новый экземпляр FavoriteService.
func NewFavoriteService(repo repository.FavoriteRepository, products repository.ProductRepository, notifier Notifier) *FavoriteService {
	return &FavoriteService{Repo: repo, Products: products, Notifier: notifier}
}

// ListFavorites возвращает избранные товары пользователя.
func (s *FavoriteService) ListFavorites(ctx context.Context, actor models.Actor, limitStr, offsetStr string) ([]models.Product, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Repo.GetFavorites(ctx, actor.UserID, limit, offset)
}

// AddFavorite добавляет товар в избранное и уведомляет владельца.
// Разрешено для опубликованного товара или для собственного товара пользователя.
func (s *FavoriteService) AddFavorite(ctx context.Context, actor models.Actor, productId string) error {
	product, err := s.Products.GetProductById(ctx, productId)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return models.NewNotFoundError("product not found")
	}
	if product.Status != models.AcceptedProduct && product.OwnerID != actor.UserID {
		return models.NewStateError("product is not listed")
	}

	if err = s.Repo.AddFavorite(ctx, actor.UserID, productId); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return models.NewConflictError("product already in favorites")
		}
		return err
	}

	if product.OwnerID != actor.UserID {
		s.Notifier.Notify([]string{product.OwnerID}, titleFavorite, bodyFavorite)
	}
	return nil
}

// RemoveFavorite убирает товар из избранного.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, actor models.Actor, productId string) error {
	removed, err := s.Repo.RemoveFavorite(ctx, actor.UserID, productId)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewNotFoundError("product is not in favorites")
	}
	return nil
}
