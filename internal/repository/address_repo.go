package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const addressColumns = `id, user_id, name, address1, address2, country, province, city, zip, note, is_default, created_at, updated_at`

// AddressRepository - интерфейс для работы с адресами пользователей.
type AddressRepository interface {
	CreateAddress(ctx context.Context, address models.Address) (*models.Address, error)
	GetAddresses(ctx context.Context, userId string) ([]models.Address, error)
	GetAddressById(ctx context.Context, addressId string) (*models.Address, error)
	UpdateAddress(ctx context.Context, address models.Address) (*models.Address, error)
}

// PostgresAddressRepository - реализация AddressRepository для базы данных.
type PostgresAddressRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresAddressRepository создает новый экземпляр PostgresAddressRepository.
func NewPostgresAddressRepository(db *pgxpool.Pool) *PostgresAddressRepository {
	return &PostgresAddressRepository{DB: db}
}

func scanAddress(row pgx.Row) (*models.Address, error) {
	var a models.Address
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.Address1,
		&a.Address2,
		&a.Country,
		&a.Province,
		&a.City,
		&a.Zip,
		&a.Note,
		&a.Default,
		&a.CreatedAt,
		&a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAddress сохраняет адрес; адрес по умолчанию у пользователя только один.
func (r *PostgresAddressRepository) CreateAddress(ctx context.Context, address models.Address) (*models.Address, error) {
	now := time.Now().UTC()
	address.ID = uuid.New().String()
	address.CreatedAt = now
	address.UpdatedAt = now

	err := inTx(ctx, r.DB, func(tx pgx.Tx) error {
		if address.Default {
			if err := clearDefaultAddress(ctx, tx, address.UserID); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO addresses (`+addressColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			address.ID,
			address.UserID,
			address.Name,
			address.Address1,
			address.Address2,
			address.Country,
			address.Province,
			address.City,
			address.Zip,
			address.Note,
			address.Default,
			address.CreatedAt,
			address.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert address: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// GetAddresses возвращает адреса пользователя.
func (r *PostgresAddressRepository) GetAddresses(ctx context.Context, userId string) ([]models.Address, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+addressColumns+` FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, name`, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addresses := make([]models.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *a)
	}
	return addresses, rows.Err()
}

// GetAddressById возвращает адрес или nil.
func (r *PostgresAddressRepository) GetAddressById(ctx context.Context, addressId string) (*models.Address, error) {
	if _, err := uuid.Parse(addressId); err != nil {
		return nil, nil
	}
	a, err := scanAddress(r.DB.QueryRow(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1`, addressId))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	return a, nil
}

// UpdateAddress сохраняет изменения адреса.
func (r *PostgresAddressRepository) UpdateAddress(ctx context.Context, address models.Address) (*models.Address, error) {
	var updated *models.Address
	err := inTx(ctx, r.DB, func(tx pgx.Tx) error {
		if address.Default {
			if err := clearDefaultAddress(ctx, tx, address.UserID); err != nil {
				return err
			}
		}
		var err error
		updated, err = scanAddress(tx.QueryRow(ctx, `
			UPDATE addresses SET
				name = $1, address1 = $2, address2 = $3, country = $4, province = $5,
				city = $6, zip = $7, note = $8, is_default = $9, updated_at = now()
			WHERE id = $10
			RETURNING `+addressColumns,
			address.Name,
			address.Address1,
			address.Address2,
			address.Country,
			address.Province,
			address.City,
			address.Zip,
			address.Note,
			address.Default,
			address.ID))
		if err != nil {
			return fmt.Errorf("failed to update address: %w", mapError(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func clearDefaultAddress(ctx context.Context, tx pgx.Tx, userId string) error {
	_, err := tx.Exec(ctx, `UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default`, userId)
	if err != nil {
		return fmt.Errorf("failed to reset default address: %w", err)
	}
	return nil
}
