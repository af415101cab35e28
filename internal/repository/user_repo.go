package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/senyabanana/sisterly-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// UserRepository - интерфейс для работы с пользователями и их устройствами.
type UserRepository interface {
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	SearchUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	GetPlayerIds(ctx context.Context, userIds []string) ([]string, error)
	RegisterDevice(ctx context.Context, userId string, deviceReq models.DeviceRequest) error
}

// PostgresUserRepository - реализация UserRepository для базы данных.
type PostgresUserRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresUserRepository создает новый экземпляр PostgresUserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// GetUserById возвращает пользователя или nil.
func (r *PostgresUserRepository) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	if _, err := uuid.Parse(userId); err != nil {
		return nil, nil
	}
	var u models.User
	err := r.DB.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, is_admin, is_active, created_at
		FROM users WHERE id = $1`, userId).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.IsAdmin,
		&u.IsActive,
		&u.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// SearchUsers ищет активных пользователей по имени и фамилии.
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	query := `SELECT id, first_name, last_name, email, is_admin, is_active, created_at FROM users`
	filters := []string{"is_active"}
	var args []interface{}
	argIndex := 1

	if firstName := strings.TrimSpace(filter.FirstName); firstName != "" {
		filters = append(filters, fmt.Sprintf("first_name ILIKE $%d", argIndex))
		args = append(args, "%"+escapeLike(firstName)+"%")
		argIndex++
	}
	if lastName := strings.TrimSpace(filter.LastName); lastName != "" {
		filters = append(filters, fmt.Sprintf("last_name ILIKE $%d", argIndex))
		args = append(args, "%"+escapeLike(lastName)+"%")
		argIndex++
	}

	query += " WHERE " + strings.Join(filters, " AND ")
	query += fmt.Sprintf(" ORDER BY last_name, first_name LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Start)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetPlayerIds возвращает идентификаторы устройств пользователей для push-уведомлений.
func (r *PostgresUserRepository) GetPlayerIds(ctx context.Context, userIds []string) ([]string, error) {
	if len(userIds) == 0 {
		return nil, nil
	}
	rows, err := r.DB.Query(ctx, `SELECT DISTINCT player_id FROM devices WHERE user_id = ANY($1)`, pq.Array(userIds))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playerIds []string
	for rows.Next() {
		var playerId string
		if err := rows.Scan(&playerId); err != nil {
			return nil, err
		}
		playerIds = append(playerIds, playerId)
	}
	return playerIds, rows.Err()
}

// RegisterDevice сохраняет устройство пользователя, повторная регистрация обновляет socket id.
func (r *PostgresUserRepository) RegisterDevice(ctx context.Context, userId string, deviceReq models.DeviceRequest) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO devices (user_id, player_id, socket_id, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, player_id) DO UPDATE SET socket_id = EXCLUDED.socket_id, updated_at = now()`,
		userId, deviceReq.PlayerID, deviceReq.SocketID)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}
