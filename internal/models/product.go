package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type (
	ProductStatus int16 // Статус модерации товара
	DeliveryType  int16 // Способ передачи сумки
)

const (
	PreparationProduct ProductStatus = 1 // Товар готовится владельцем
	UnderReviewProduct ProductStatus = 2 // Товар на модерации
	RejectedProduct    ProductStatus = 3 // Товар отклонен модератором
	AcceptedProduct    ProductStatus = 4 // Товар принят и опубликован
	BorrowedProduct    ProductStatus = 5 // Товар сдан в аренду

	PickupDelivery           DeliveryType = 1  // Самовывоз
	ShippingDelivery         DeliveryType = 2  // Доставка
	PickupOrShippingDelivery DeliveryType = 12 // Самовывоз или доставка
)

var productStatusLabels = map[ProductStatus]string{
	PreparationProduct: "PREPARATION",
	UnderReviewProduct: "UNDER_REVIEW",
	RejectedProduct:    "REJECTED",
	AcceptedProduct:    "ACCEPTED",
	BorrowedProduct:    "BORROWED",
}

var deliveryTypeLabels = map[DeliveryType]string{
	PickupDelivery:           "PICKUP",
	ShippingDelivery:         "SHIPPING",
	PickupOrShippingDelivery: "PICKUP_OR_SHIPPING",
}

// ParseProductStatus проверяет код статуса товара.
func ParseProductStatus(code int) (ProductStatus, error) {
	status := ProductStatus(code)
	if _, ok := productStatusLabels[status]; !ok {
		return 0, NewValidationError(fmt.Sprintf("unknown product status: %d", code))
	}
	return status, nil
}

func (s ProductStatus) String() string {
	if label, ok := productStatusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("ProductStatus(%d)", int16(s))
}

func (s ProductStatus) MarshalText() ([]byte, error) {
	label, ok := productStatusLabels[s]
	if !ok {
		return nil, fmt.Errorf("unknown product status: %d", int16(s))
	}
	return []byte(label), nil
}

func (s *ProductStatus) UnmarshalText(text []byte) error {
	for status, label := range productStatusLabels {
		if label == string(text) {
			*s = status
			return nil
		}
	}
	return NewValidationError(fmt.Sprintf("unknown product status: %s", text))
}

func (s ProductStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ProductStatus) Scan(src any) error {
	code, err := scanCode(src)
	if err != nil {
		return err
	}
	status, err := ParseProductStatus(code)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// ParseDeliveryType проверяет код способа передачи.
func ParseDeliveryType(code int) (DeliveryType, error) {
	deliveryType := DeliveryType(code)
	if _, ok := deliveryTypeLabels[deliveryType]; !ok {
		return 0, NewValidationError(fmt.Sprintf("unknown delivery type: %d", code))
	}
	return deliveryType, nil
}

func (d DeliveryType) String() string {
	if label, ok := deliveryTypeLabels[d]; ok {
		return label
	}
	return fmt.Sprintf("DeliveryType(%d)", int16(d))
}

// IsOfferMode сообщает, можно ли выбрать этот способ в предложении аренды.
func (d DeliveryType) IsOfferMode() bool {
	return d == PickupDelivery || d == ShippingDelivery
}

func (d DeliveryType) Value() (driver.Value, error) {
	return int64(d), nil
}

func (d *DeliveryType) Scan(src any) error {
	code, err := scanCode(src)
	if err != nil {
		return err
	}
	deliveryType, err := ParseDeliveryType(code)
	if err != nil {
		return err
	}
	*d = deliveryType
	return nil
}

func scanCode(src any) (int, error) {
	switch v := src.(type) {
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case int16:
		return int(v), nil
	default:
		return 0, fmt.Errorf("unsupported code type %T", src)
	}
}

// Product представляет модель сумки, выставленной владельцем.
type Product struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"ownerId"`
	MediaID       *string         `json:"mediaId,omitempty"`
	Model         string          `json:"model"`
	BrandID       string          `json:"brandId"`
	ColorID       string          `json:"colorId"`
	MaterialID    string          `json:"materialId"`
	Conditions    int             `json:"conditions"`
	Year          int             `json:"year"`
	Size          int             `json:"size"`
	Description   string          `json:"description"`
	PriceRetail   decimal.Decimal `json:"priceRetail"`
	PriceOffer    decimal.Decimal `json:"priceOffer"`
	Status        ProductStatus   `json:"status"`
	DeliveryType  DeliveryType    `json:"deliveryType"`
	DeliveryKitID string          `json:"deliveryKitId"`
	KitPayed      bool            `json:"kitPayed"`
	Version       int32           `json:"version"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Media         *MediaContent   `json:"media,omitempty"`
}

// ProductRequest представляет структуру запроса для создания или изменения товара.
type ProductRequest struct {
	Model         string          `json:"model" validate:"required,max=100"`
	MediaID       string          `json:"mediaId" validate:"required,uuid"`
	BrandID       string          `json:"brandId" validate:"required,uuid"`
	ColorID       string          `json:"colorId" validate:"required,uuid"`
	MaterialID    string          `json:"materialId" validate:"required,uuid"`
	Conditions    int             `json:"conditions" validate:"required,min=1,max=5"`
	Year          int             `json:"year" validate:"required,min=1,max=10"`
	Size          int             `json:"size" validate:"required,min=1,max=5"`
	Description   string          `json:"description" validate:"max=2000"`
	PriceRetail   decimal.Decimal `json:"priceRetail"`
	PriceOffer    decimal.Decimal `json:"priceOffer"`
	DeliveryType  int             `json:"deliveryType" validate:"required,oneof=1 2 12"`
	DeliveryKitID string          `json:"deliveryKitId" validate:"required,uuid"`
}

// ReviewSubmission представляет запрос на отправку товара на модерацию.
type ReviewSubmission struct {
	VideoURL string `json:"videoUrl" validate:"required,url,max=500"`
	Order    int    `json:"order" validate:"min=0"`
}

// ProductFilter описывает параметры поиска товаров.
type ProductFilter struct {
	BrandIDs    []string `json:"brandIds" validate:"omitempty,dive,uuid"`
	ColorIDs    []string `json:"colorIds" validate:"omitempty,dive,uuid"`
	MaterialIDs []string `json:"materialIds" validate:"omitempty,dive,uuid"`
	Model       string   `json:"model" validate:"max=100"`
	Start       int      `json:"start" validate:"min=0"`
	Limit       int      `json:"limit" validate:"min=0,max=50"`
}
