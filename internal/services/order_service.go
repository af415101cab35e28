package services

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/sisterly-service/internal/booking"
	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// allowedOrderTransitions - допустимые переходы состояний заказа.
var allowedOrderTransitions = map[models.OrderState][]models.OrderState{
	models.WaitingForAcceptanceOrder: {models.WaitingForPaymentOrder, models.RejectedOrder},
	models.WaitingForPaymentOrder:    {models.InTransitOrder},
	models.InTransitOrder:            {models.BorrowedOrder},
	models.BorrowedOrder:             {models.InReturnToLenderOrder},
	models.InReturnToLenderOrder:     {},
	models.RejectedOrder:             {},
}

type OrderService struct {
	Repo     repository.OrderRepository
	Products repository.ProductRepository
	Cache    AvailabilityCache
	Notifier Notifier
	Logger   *zap.Logger
	Validate *validator.Validate
	MinYear  int
	Now      func() time.Time
}

// NewOrderService создает новый экземпляр OrderService.
func NewOrderService(repo repository.OrderRepository, products repository.ProductRepository, cache AvailabilityCache,
	notifier Notifier, logger *zap.Logger, minYear int) *OrderService {
	return &OrderService{
		Repo:     repo,
		Products: products,
		Cache:    cache,
		Notifier: notifier,
		Logger:   logger,
		Validate: NewValidator(),
		MinYear:  minYear,
		Now:      time.Now,
	}
}

// IsSubmissionValid сообщает, свободна ли дата начала от подтвержденных заказов.
func (s *OrderService) IsSubmissionValid(ctx context.Context, productId string, start time.Time) (bool, error) {
	busy, err := s.Repo.HasConfirmedOrderAt(ctx, productId, start)
	if err != nil {
		return false, fmt.Errorf("failed to check submission: %w", err)
	}
	return !busy, nil
}

// SubmitOffer создает предложение аренды и уведомляет владельца.
func (s *OrderService) SubmitOffer(ctx context.Context, actor models.Actor, productId string, offerReq models.OfferRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(s.Validate, offerReq); err != nil {
		return nil, err
	}
	period, err := booking.ParseDateRange(offerReq.DateStart, offerReq.DateEnd)
	if err != nil {
		return nil, models.NewValidationError("invalid date format, expected YYYY-MM-DD")
	}
	if !period.Valid() {
		return nil, models.NewValidationError("dateEnd must not be before dateStart")
	}
	deliveryMode, err := models.ParseDeliveryType(offerReq.DeliveryMode)
	if err != nil {
		return nil, err
	}
	if !deliveryMode.IsOfferMode() {
		return nil, models.NewValidationError("deliveryMode must be 1 (pickup) or 2 (shipping)")
	}
	if offerReq.Price.IsNegative() {
		return nil, models.NewValidationError("price must not be negative")
	}

	valid, err := s.IsSubmissionValid(ctx, productId, period.Start)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, models.NewConflictError("the product is already booked on the requested start date")
	}

	var created *models.Order
	var ownerId string
	err = s.Repo.InTx(ctx, func(tx repository.OrderTx) error {
		product, err := tx.GetProductForUpdate(ctx, productId)
		if err != nil {
			return err
		}
		if product == nil {
			return models.NewNotFoundError("product not found")
		}
		if product.Status != models.AcceptedProduct {
			return models.NewStateError(fmt.Sprintf("product is not available for rent, status: %s", product.Status))
		}
		if product.OwnerID == actor.UserID {
			return models.NewPermissionError("you cannot rent your own product")
		}

		busy, err := tx.HasConfirmedOrderAt(ctx, productId, period.Start)
		if err != nil {
			return err
		}
		if busy {
			return models.NewConflictError("the product is already booked on the requested start date")
		}

		price := offerReq.Price
		if price.IsZero() {
			price = product.PriceOffer
		}

		created, err = tx.CreateOrder(ctx, models.Order{
			ProductID:    productId,
			UserID:       actor.UserID,
			Price:        price,
			DateStart:    period.Start,
			DateEnd:      period.End,
			DeliveryMode: deliveryMode,
		})
		ownerId = product.OwnerID
		return err
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Notify([]string{ownerId}, titleNewOffer, bodyNewOffer)
	return created, nil
}

// ListOffers возвращает ожидающие решения предложения по товару владельца.
func (s *OrderService) ListOffers(ctx context.Context, actor models.Actor, productId, limitStr, offsetStr string) ([]models.Order, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	product, err := s.Products.GetProductById(ctx, productId)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, models.NewNotFoundError("product not found")
	}
	if product.OwnerID != actor.UserID {
		return nil, models.NewPermissionError("only the owner can view offers for this product")
	}
	return s.Repo.GetProductOffers(ctx, productId, models.WaitingForAcceptanceOrder, limit, offset)
}

// RespondOffer принимает или отклоняет предложение.
// При принятии удаляет остальные ожидающие предложения с пересекающимися датами.
func (s *OrderService) RespondOffer(ctx context.Context, actor models.Actor, productId, orderId string, response models.OfferResponse) (*models.OfferDecision, error) {
	if err := utils.ValidateStruct(s.Validate, response); err != nil {
		return nil, err
	}
	accept := *response.Accept

	var decision models.OfferDecision
	err := s.Repo.InTx(ctx, func(tx repository.OrderTx) error {
		product, err := tx.GetProductForUpdate(ctx, productId)
		if err != nil {
			return err
		}
		if product == nil {
			return models.NewNotFoundError("product not found")
		}
		if product.OwnerID != actor.UserID {
			return models.NewPermissionError("only the owner can respond to offers")
		}

		order, err := tx.GetOrderForUpdate(ctx, orderId)
		if err != nil {
			return err
		}
		if order == nil || order.ProductID != productId {
			return models.NewNotFoundError("order not found")
		}

		next := models.RejectedOrder
		if accept {
			next = models.WaitingForPaymentOrder
		}
		if !utils.Contains(allowedOrderTransitions[order.State], next) {
			return models.NewStateError("order already decided")
		}

		if !accept {
			if err = tx.DeleteOrders(ctx, []string{order.ID}); err != nil {
				return err
			}
			order.State = models.RejectedOrder
			decision = models.OfferDecision{Order: *order, Accepted: false, Cancelled: []models.Order{}}
			return nil
		}

		period := booking.NewDateRange(order.DateStart, order.DateEnd)
		busy, err := tx.HasConfirmedOrderWithin(ctx, productId, period)
		if err != nil {
			return err
		}
		if busy {
			return models.NewConflictError("the requested dates overlap an accepted order")
		}

		accepted, err := tx.UpdateOrderState(ctx, order.ID, next)
		if err != nil {
			return err
		}
		cancelled, err := tx.GetPendingOverlapping(ctx, productId, order.ID, period)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(cancelled))
		for _, o := range cancelled {
			ids = append(ids, o.ID)
		}
		if err = tx.DeleteOrders(ctx, ids); err != nil {
			return err
		}

		decision = models.OfferDecision{Order: *accepted, Accepted: true, Cancelled: cancelled}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !decision.Accepted {
		s.Notifier.Notify([]string{decision.Order.UserID}, titleOfferResult, bodyOfferRejected)
		return &decision, nil
	}

	s.invalidateAvailability(ctx, productId)
	if len(decision.Cancelled) > 0 {
		requesters := make([]string, 0, len(decision.Cancelled))
		for _, o := range decision.Cancelled {
			requesters = append(requesters, o.UserID)
		}
		s.Notifier.Notify(requesters, titleOfferResult, bodyOfferRejected)
	}
	s.Notifier.Notify([]string{decision.Order.UserID}, titleOfferResult, bodyOfferAccepted)
	return &decision, nil
}

// GetAvailability возвращает свободные дни товара в месяце.
// Если month или year не переданы, берутся текущие месяц и год.
func (s *OrderService) GetAvailability(ctx context.Context, actor models.Actor, productId string, month, year *int) (*models.Availability, error) {
	now := s.Now().UTC()
	m, y := int(now.Month()), now.Year()
	if month != nil {
		m = *month
	}
	if year != nil {
		y = *year
	}
	if m < 1 || m > 12 {
		return nil, models.NewValidationError("month must be between 1 and 12")
	}
	if y < s.MinYear {
		return nil, models.NewValidationError(fmt.Sprintf("year must be %d or later", s.MinYear))
	}

	product, err := s.Products.GetProductById(ctx, productId)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !visibleTo(product, actor) {
		return nil, models.NewNotFoundError("product not found")
	}

	calendarMonth := time.Month(m)
	var generation int64
	cacheUsable := s.Cache != nil
	if cacheUsable {
		days, gen, ok, err := s.Cache.Get(ctx, productId, y, calendarMonth)
		switch {
		case err != nil:
			cacheUsable = false
			s.Logger.Warn("availability cache read failed", zap.String("productId", productId), zap.Error(err))
		case ok:
			return &models.Availability{Month: m, Year: y, AvailableDays: days}, nil
		default:
			generation = gen
		}
	}

	orders, err := s.Repo.GetConfirmedOrders(ctx, productId, booking.Month(y, calendarMonth))
	if err != nil {
		return nil, fmt.Errorf("failed to get confirmed orders: %w", err)
	}
	booked := make([]booking.DateRange, 0, len(orders))
	for _, o := range orders {
		booked = append(booked, booking.NewDateRange(o.DateStart, o.DateEnd))
	}
	days := booking.AvailableDays(y, calendarMonth, booked)

	if cacheUsable {
		stored, err := s.Cache.Set(ctx, productId, generation, y, calendarMonth, days)
		if err != nil {
			s.Logger.Warn("availability cache write failed", zap.String("productId", productId), zap.Error(err))
		} else if !stored {
			s.Logger.Debug("availability changed during read, cache write skipped", zap.String("productId", productId))
		}
	}
	return &models.Availability{Month: m, Year: y, AvailableDays: days}, nil
}

// Cart возвращает принятые заказы пользователя, ожидающие оплаты.
func (s *OrderService) Cart(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	return s.Repo.GetUserOrders(ctx, actor.UserID, []models.OrderState{models.WaitingForPaymentOrder})
}

// Checkout продолжает или отменяет принятый заказ. Оплата не поддерживается.
func (s *OrderService) Checkout(ctx context.Context, actor models.Actor, orderId string, checkoutReq models.CheckoutRequest) error {
	if err := utils.ValidateStruct(s.Validate, checkoutReq); err != nil {
		return err
	}

	var productId string
	err := s.Repo.InTx(ctx, func(tx repository.OrderTx) error {
		order, err := tx.GetOrderForUpdate(ctx, orderId)
		if err != nil {
			return err
		}
		if order == nil {
			return models.NewNotFoundError("order not found")
		}
		if order.UserID != actor.UserID {
			return models.NewPermissionError("only the requester can check out this order")
		}
		if order.State != models.WaitingForPaymentOrder {
			return models.NewStateError("order is not waiting for payment")
		}
		if *checkoutReq.Proceed {
			return models.NewNotImplementedError("payment processing is not available")
		}
		productId = order.ProductID
		return tx.DeleteOrders(ctx, []string{order.ID})
	})
	if err != nil {
		return err
	}

	s.invalidateAvailability(ctx, productId)
	return nil
}

func (s *OrderService) invalidateAvailability(ctx context.Context, productId string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, productId); err != nil {
		s.Logger.Warn("availability cache invalidation failed", zap.String("productId", productId), zap.Error(err))
	}
}
