package services

import (
	"context"
	"fmt"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"github.com/go-playground/validator/v10"
)

type MediaService struct {
	Repo     repository.MediaRepository
	Validate *validator.Validate
}

// NewMediaService создает новый экземпляр MediaService.
func NewMediaService(repo repository.MediaRepository) *MediaService {
	return &MediaService{Repo: repo, Validate: NewValidator()}
}

// CreateMedia создает контейнер для файлов товара.
func (s *MediaService) CreateMedia(ctx context.Context, actor models.Actor) (*models.Media, error) {
	return s.Repo.CreateMedia(ctx, actor.UserID)
}

// GetMediaContent возвращает активные файлы контейнера.
func (s *MediaService) GetMediaContent(ctx context.Context, mediaId string) (*models.MediaContent, error) {
	media, err := s.Repo.GetMedia(ctx, mediaId)
	if err != nil {
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	if media == nil {
		return nil, models.NewNotFoundError("media not found")
	}
	return s.Repo.GetMediaContent(ctx, mediaId)
}

func (s *MediaService) ownedMedia(ctx context.Context, actor models.Actor, mediaId string) (*models.Media, error) {
	media, err := s.Repo.GetMedia(ctx, mediaId)
	if err != nil {
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	if media == nil {
		return nil, models.NewNotFoundError("media not found")
	}
	if media.UserID != actor.UserID {
		return nil, models.NewPermissionError("media belongs to another user")
	}
	return media, nil
}

// AddMediaFile регистрирует ссылку на изображение или видео.
func (s *MediaService) AddMediaFile(ctx context.Context, actor models.Actor, kind models.MediaKind, mediaId string, fileReq models.MediaFileRequest) (*models.MediaFile, error) {
	if err := utils.ValidateStruct(s.Validate, fileReq); err != nil {
		return nil, err
	}
	if _, err := s.ownedMedia(ctx, actor, mediaId); err != nil {
		return nil, err
	}
	return s.Repo.AddMediaFile(ctx, kind, mediaId, fileReq)
}

// DeactivateMediaFile скрывает изображение или видео.
func (s *MediaService) DeactivateMediaFile(ctx context.Context, actor models.Actor, kind models.MediaKind, fileId string) error {
	file, err := s.Repo.GetMediaFile(ctx, kind, fileId)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", kind, err)
	}
	if file == nil {
		return models.NewNotFoundError(fmt.Sprintf("%s not found", kind))
	}
	if _, err = s.ownedMedia(ctx, actor, file.MediaID); err != nil {
		return err
	}
	return s.Repo.DeactivateMediaFile(ctx, kind, fileId)
}
