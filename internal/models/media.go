package models

import "time"

// MediaKind - тип медиафайла.
type MediaKind string

const (
	ImageMedia MediaKind = "image"
	VideoMedia MediaKind = "video"
)

// Media - контейнер медиафайлов пользователя.
type Media struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// MediaFile - ссылка на файл в объектном хранилище.
type MediaFile struct {
	ID        string    `json:"id"`
	MediaID   string    `json:"-"`
	URL       string    `json:"url"`
	Order     int       `json:"order"`
	Active    bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// MediaContent - активные изображения и видео контейнера.
type MediaContent struct {
	Images []MediaFile `json:"images"`
	Videos []MediaFile `json:"videos"`
}

// MediaFileRequest представляет регистрацию ссылки на загруженный файл.
type MediaFileRequest struct {
	URL   string `json:"url" validate:"required,url,max=500"`
	Order int    `json:"order" validate:"min=0"`
}

// TaxonomyItem - элемент справочника (бренд, цвет, материал).
type TaxonomyItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
