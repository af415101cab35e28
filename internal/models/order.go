package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderState - состояние заказа (предложения аренды).
type OrderState int16

const (
	WaitingForAcceptanceOrder OrderState = 1 // Предложение ждет решения владельца
	WaitingForPaymentOrder    OrderState = 2 // Предложение принято, ждет оплаты
	InTransitOrder            OrderState = 3 // Сумка в пути к арендатору
	BorrowedOrder             OrderState = 4 // Сумка у арендатора
	InReturnToLenderOrder     OrderState = 5 // Сумка возвращается владельцу
	RejectedOrder             OrderState = 6 // Предложение отклонено
)

var orderStateLabels = map[OrderState]string{
	WaitingForAcceptanceOrder: "WAITING_FOR_ACCEPTANCE",
	WaitingForPaymentOrder:    "WAITING_FOR_PAYMENT",
	InTransitOrder:            "IN_TRANSIT",
	BorrowedOrder:             "BORROWED",
	InReturnToLenderOrder:     "IN_RETURN_TO_LENDER",
	RejectedOrder:             "REJECTED",
}

// ConfirmedOrderStates - состояния, в которых заказ занимает даты в календаре товара.
var ConfirmedOrderStates = []OrderState{
	WaitingForPaymentOrder,
	InTransitOrder,
	BorrowedOrder,
	InReturnToLenderOrder,
}

// ParseOrderState проверяет код состояния заказа.
func ParseOrderState(code int) (OrderState, error) {
	state := OrderState(code)
	if _, ok := orderStateLabels[state]; !ok {
		return 0, NewValidationError(fmt.Sprintf("unknown order state: %d", code))
	}
	return state, nil
}

// IsConfirmed сообщает, блокирует ли заказ свой диапазон дат.
func (s OrderState) IsConfirmed() bool {
	for _, confirmed := range ConfirmedOrderStates {
		if s == confirmed {
			return true
		}
	}
	return false
}

func (s OrderState) String() string {
	if label, ok := orderStateLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("OrderState(%d)", int16(s))
}

func (s OrderState) MarshalText() ([]byte, error) {
	label, ok := orderStateLabels[s]
	if !ok {
		return nil, fmt.Errorf("unknown order state: %d", int16(s))
	}
	return []byte(label), nil
}

func (s *OrderState) UnmarshalText(text []byte) error {
	for state, label := range orderStateLabels {
		if label == string(text) {
			*s = state
			return nil
		}
	}
	return NewValidationError(fmt.Sprintf("unknown order state: %s", text))
}

func (s OrderState) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderState) Scan(src any) error {
	code, err := scanCode(src)
	if err != nil {
		return err
	}
	state, err := ParseOrderState(code)
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// OrderStateCodes переводит состояния в коды для параметров запросов.
func OrderStateCodes(states []OrderState) []int64 {
	codes := make([]int64, 0, len(states))
	for _, state := range states {
		codes = append(codes, int64(state))
	}
	return codes
}

// Order представляет модель предложения аренды сумки.
type Order struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	UserID         string          `json:"userId"`
	State          OrderState      `json:"state"`
	Price          decimal.Decimal `json:"price"`
	DateStart      time.Time       `json:"dateStart"`
	DateEnd        time.Time       `json:"dateEnd"`
	DateBeginOrder *time.Time      `json:"dateBeginOrder,omitempty"`
	DateEndOrder   *time.Time      `json:"dateEndOrder,omitempty"`
	DeliveryMode   DeliveryType    `json:"deliveryMode"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// OfferRequest представляет структуру запроса для отправки предложения аренды.
type OfferRequest struct {
	DateStart    string          `json:"dateStart" validate:"required,datetime=2006-01-02"`
	DateEnd      string          `json:"dateEnd" validate:"required,datetime=2006-01-02"`
	DeliveryMode int             `json:"deliveryMode" validate:"required"`
	Price        decimal.Decimal `json:"price"`
}

// OfferResponse представляет решение владельца по предложению.
type OfferResponse struct {
	Accept *bool `json:"accept" validate:"required"`
}

// OfferDecision - результат ответа владельца на предложение.
type OfferDecision struct {
	Order     Order   `json:"order"`
	Accepted  bool    `json:"accepted"`
	Cancelled []Order `json:"cancelled"`
}

// CheckoutRequest представляет действие с принятым заказом в корзине.
type CheckoutRequest struct {
	Proceed *bool `json:"proceed" validate:"required"`
}

// Availability - свободные дни товара в месяце.
type Availability struct {
	Month         int   `json:"month"`
	Year          int   `json:"year"`
	AvailableDays []int `json:"availableDays"`
}
