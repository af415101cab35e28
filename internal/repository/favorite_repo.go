package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/sisterly-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoriteRepository - интерфейс для работы с избранным.
type FavoriteRepository interface {
	GetFavorites(ctx context.Context, userId string, limit, offset int) ([]models.Product, error)
	AddFavorite(ctx context.Context, userId, productId string) error
	RemoveFavorite(ctx context.Context, userId, productId string) (bool, error)
}

// PostgresFavoriteRepository - реализация FavoriteRepository для базы данных.
type PostgresFavoriteRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresFavoriteRepository создает новый экземпляр PostgresFavoriteRepository.
func NewPostgresFavoriteRepository(db *pgxpool.Pool) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{DB: db}
}

// GetFavorites возвращает избранные товары пользователя.
func (r *PostgresFavoriteRepository) GetFavorites(ctx context.Context, userId string, limit, offset int) ([]models.Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.owner_id, p.media_id, p.model, p.brand_id, p.color_id, p.material_id, p.conditions, p.year, p.size,
			p.description, p.price_retail, p.price_offer, p.status, p.delivery_type, p.delivery_kit_id, p.kit_payed,
			p.version, p.created_at, p.updated_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// AddFavorite добавляет товар в избранное; повтор возвращает ErrAlreadyExists.
func (r *PostgresFavoriteRepository) AddFavorite(ctx context.Context, userId, productId string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO favorites (user_id, product_id, created_at)
		VALUES ($1, $2, now())`, userId, productId)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", mapError(err))
	}
	return nil
}

// RemoveFavorite удаляет товар из избранного и сообщает, был ли он там.
func (r *PostgresFavoriteRepository) RemoveFavorite(ctx context.Context, userId, productId string) (bool, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`, userId, productId)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
