package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/sisterly-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// mediaTables сопоставляет тип файла с таблицей.
var mediaTables = map[models.MediaKind]string{
	models.ImageMedia: "images",
	models.VideoMedia: "videos",
}

// MediaRepository - интерфейс для работы с медиафайлами.
type MediaRepository interface {
	CreateMedia(ctx context.Context, userId string) (*models.Media, error)
	GetMedia(ctx context.Context, mediaId string) (*models.Media, error)
	GetMediaContent(ctx context.Context, mediaId string) (*models.MediaContent, error)
	AddMediaFile(ctx context.Context, kind models.MediaKind, mediaId string, fileReq models.MediaFileRequest) (*models.MediaFile, error)
	GetMediaFile(ctx context.Context, kind models.MediaKind, fileId string) (*models.MediaFile, error)
	DeactivateMediaFile(ctx context.Context, kind models.MediaKind, fileId string) error
}

// PostgresMediaRepository - реализация MediaRepository для базы данных.
type PostgresMediaRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresMediaRepository создает новый экземпляр PostgresMediaRepository.
func NewPostgresMediaRepository(db *pgxpool.Pool) *PostgresMediaRepository {
	return &PostgresMediaRepository{DB: db}
}

// CreateMedia создает пустой контейнер медиа.
func (r *PostgresMediaRepository) CreateMedia(ctx context.Context, userId string) (*models.Media, error) {
	media := models.Media{
		ID:        uuid.New().String(),
		UserID:    userId,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.DB.Exec(ctx, `INSERT INTO media (id, user_id, created_at) VALUES ($1, $2, $3)`,
		media.ID, media.UserID, media.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert media: %w", err)
	}
	return &media, nil
}

// GetMedia возвращает контейнер медиа или nil.
func (r *PostgresMediaRepository) GetMedia(ctx context.Context, mediaId string) (*models.Media, error) {
	if _, err := uuid.Parse(mediaId); err != nil {
		return nil, nil
	}
	var media models.Media
	err := r.DB.QueryRow(ctx, `SELECT id, user_id, created_at FROM media WHERE id = $1`, mediaId).Scan(
		&media.ID,
		&media.UserID,
		&media.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	return &media, nil
}

// GetMediaContent возвращает активные изображения и видео контейнера.
func (r *PostgresMediaRepository) GetMediaContent(ctx context.Context, mediaId string) (*models.MediaContent, error) {
	images, err := r.getActiveFiles(ctx, models.ImageMedia, mediaId)
	if err != nil {
		return nil, err
	}
	videos, err := r.getActiveFiles(ctx, models.VideoMedia, mediaId)
	if err != nil {
		return nil, err
	}
	return &models.MediaContent{Images: images, Videos: videos}, nil
}

func (r *PostgresMediaRepository) getActiveFiles(ctx context.Context, kind models.MediaKind, mediaId string) ([]models.MediaFile, error) {
	table, ok := mediaTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown media kind: %s", kind)
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, media_id, url, display_order, is_active, created_at
		FROM `+table+`
		WHERE media_id = $1 AND is_active
		ORDER BY display_order, created_at`, mediaId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]models.MediaFile, 0)
	for rows.Next() {
		var f models.MediaFile
		if err := rows.Scan(&f.ID, &f.MediaID, &f.URL, &f.Order, &f.Active, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// AddMediaFile регистрирует ссылку на загруженный файл.
func (r *PostgresMediaRepository) AddMediaFile(ctx context.Context, kind models.MediaKind, mediaId string, fileReq models.MediaFileRequest) (*models.MediaFile, error) {
	return insertMediaFile(ctx, r.DB, kind, mediaId, fileReq)
}

func insertMediaFile(ctx context.Context, q querier, kind models.MediaKind, mediaId string, fileReq models.MediaFileRequest) (*models.MediaFile, error) {
	table, ok := mediaTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown media kind: %s", kind)
	}
	file := models.MediaFile{
		ID:        uuid.New().String(),
		MediaID:   mediaId,
		URL:       fileReq.URL,
		Order:     fileReq.Order,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	_, err := q.Exec(ctx, `
		INSERT INTO `+table+` (id, media_id, url, display_order, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		file.ID, file.MediaID, file.URL, file.Order, file.Active, file.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", kind, err)
	}
	return &file, nil
}

// GetMediaFile возвращает файл или nil.
func (r *PostgresMediaRepository) GetMediaFile(ctx context.Context, kind models.MediaKind, fileId string) (*models.MediaFile, error) {
	table, ok := mediaTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown media kind: %s", kind)
	}
	if _, err := uuid.Parse(fileId); err != nil {
		return nil, nil
	}
	var f models.MediaFile
	err := r.DB.QueryRow(ctx, `
		SELECT id, media_id, url, display_order, is_active, created_at
		FROM `+table+` WHERE id = $1`, fileId).Scan(&f.ID, &f.MediaID, &f.URL, &f.Order, &f.Active, &f.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", kind, err)
	}
	return &f, nil
}

// DeactivateMediaFile скрывает файл, не удаляя его.
func (r *PostgresMediaRepository) DeactivateMediaFile(ctx context.Context, kind models.MediaKind, fileId string) error {
	table, ok := mediaTables[kind]
	if !ok {
		return fmt.Errorf("unknown media kind: %s", kind)
	}
	_, err := r.DB.Exec(ctx, `UPDATE `+table+` SET is_active = false WHERE id = $1`, fileId)
	if err != nil {
		return fmt.Errorf("failed to deactivate %s: %w", kind, err)
	}
	return nil
}
