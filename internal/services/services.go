package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
)

// Тексты push-уведомлений.
const (
	titleNewOffer       = "New offer"
	bodyNewOffer        = "You received an offer for one of your bags"
	titleOfferResult    = "Offer result"
	bodyOfferAccepted   = "Your offer has been accepted"
	bodyOfferRejected   = "Your offer has been rejected"
	titleValidation     = "Validation result"
	bodyProductAccepted = "Your product has been accepted"
	bodyProductRejected = "Your product has not been accepted, for more details see the app"
	titleFavorite       = "Product added to favorites"
	bodyFavorite        = "One of your products has been added to favorites"
)

const defaultSearchLimit = 5

// Notifier отправляет уведомления пользователям без ожидания доставки.
type Notifier interface {
	Notify(recipients []string, title, body string)
}

// AvailabilityCache кэширует свободные дни товара по месяцам.
// Get возвращает поколение товара; Set с устаревшим поколением ничего не пишет.
type AvailabilityCache interface {
	Get(ctx context.Context, productId string, year int, month time.Month) ([]int, int64, bool, error)
	Set(ctx context.Context, productId string, generation int64, year int, month time.Month, days []int) (bool, error)
	Invalidate(ctx context.Context, productId string) error
}

// NewValidator создает валидатор запросов.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
