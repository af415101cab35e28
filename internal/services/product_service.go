package services

import (
	"context"
	"fmt"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"github.com/go-playground/validator/v10"
)

// allowedProductTransitions - допустимые переходы статусов модерации товара.
var allowedProductTransitions = map[models.ProductStatus][]models.ProductStatus{
	models.PreparationProduct: {models.UnderReviewProduct},
	models.UnderReviewProduct: {models.AcceptedProduct, models.RejectedProduct},
	models.RejectedProduct:    {models.PreparationProduct},
	models.AcceptedProduct:    {models.BorrowedProduct},
	models.BorrowedProduct:    {models.AcceptedProduct},
}

// ownerVisibleStatuses - статусы товаров, которые владелец видит в своем списке.
var ownerVisibleStatuses = []models.ProductStatus{
	models.PreparationProduct,
	models.UnderReviewProduct,
	models.RejectedProduct,
	models.AcceptedProduct,
}

type ProductService struct {
	Repo     repository.ProductRepository
	Media    repository.MediaRepository
	Validate *validator.Validate
}

// NewProductService создает новый экземпляр ProductService.
func NewProductService(repo repository.ProductRepository, media repository.MediaRepository) *ProductService {
	return &ProductService{Repo: repo, Media: media, Validate: NewValidator()}
}

func (s *ProductService) validateProductRequest(ctx context.Context, actor models.Actor, productReq models.ProductRequest) (models.DeliveryType, error) {
	if err := utils.ValidateStruct(s.Validate, productReq); err != nil {
		return 0, err
	}
	if !productReq.PriceRetail.IsPositive() || !productReq.PriceOffer.IsPositive() {
		return 0, models.NewValidationError("priceRetail and priceOffer must be positive")
	}
	deliveryType, err := models.ParseDeliveryType(productReq.DeliveryType)
	if err != nil {
		return 0, err
	}

	ok, err := s.Repo.CheckProductReferences(ctx, actor.UserID, productReq)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, models.NewValidationError("one or more of media, brand, color, material, address does not exist")
	}
	return deliveryType, nil
}

func applyProductRequest(product *models.Product, productReq models.ProductRequest, deliveryType models.DeliveryType) {
	mediaId := productReq.MediaID
	product.MediaID = &mediaId
	product.Model = productReq.Model
	product.BrandID = productReq.BrandID
	product.ColorID = productReq.ColorID
	product.MaterialID = productReq.MaterialID
	product.Conditions = productReq.Conditions
	product.Year = productReq.Year
	product.Size = productReq.Size
	product.Description = productReq.Description
	product.PriceRetail = productReq.PriceRetail
	product.PriceOffer = productReq.PriceOffer
	product.DeliveryType = deliveryType
	product.DeliveryKitID = productReq.DeliveryKitID
}

// CreateProduct создает товар в статусе PREPARATION.
func (s *ProductService) CreateProduct(ctx context.Context, actor models.Actor, productReq models.ProductRequest) (*models.Product, error) {
	deliveryType, err := s.validateProductRequest(ctx, actor, productReq)
	if err != nil {
		return nil, err
	}

	product := models.Product{OwnerID: actor.UserID}
	applyProductRequest(&product, productReq, deliveryType)
	return s.Repo.CreateProduct(ctx, product)
}

// visibleTo сообщает, может ли пользователь видеть товар.
// Неопубликованный товар видят только владелец и администраторы.
func visibleTo(product *models.Product, actor models.Actor) bool {
	listed := product.Status == models.AcceptedProduct || product.Status == models.BorrowedProduct
	return listed || product.OwnerID == actor.UserID || actor.Admin
}

// GetProduct возвращает товар с активными медиафайлами.
func (s *ProductService) GetProduct(ctx context.Context, actor models.Actor, productId string) (*models.Product, error) {
	product, err := s.Repo.GetProductById(ctx, productId)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, models.NewNotFoundError("product not found")
	}
	if !visibleTo(product, actor) {
		return nil, models.NewNotFoundError("product not found")
	}

	if product.MediaID != nil {
		content, err := s.Media.GetMediaContent(ctx, *product.MediaID)
		if err != nil {
			return nil, fmt.Errorf("failed to get product media: %w", err)
		}
		product.Media = content
	}
	return product, nil
}

// EditProduct меняет товар владельца. Отклоненный товар возвращается в подготовку.
func (s *ProductService) EditProduct(ctx context.Context, actor models.Actor, productId string, productReq models.ProductRequest) (*models.Product, error) {
	deliveryType, err := s.validateProductRequest(ctx, actor, productReq)
	if err != nil {
		return nil, err
	}

	var updated *models.Product
	err = s.Repo.InTx(ctx, func(tx repository.ProductTx) error {
		product, err := tx.GetProductForUpdate(ctx, productId)
		if err != nil {
			return err
		}
		if product == nil {
			return models.NewNotFoundError("product not found")
		}
		if product.OwnerID != actor.UserID {
			return models.NewPermissionError("only the owner can edit this product")
		}

		switch product.Status {
		case models.PreparationProduct:
		case models.RejectedProduct:
			if !utils.Contains(allowedProductTransitions[product.Status], models.PreparationProduct) {
				return models.NewStateError("invalid product status transition")
			}
			product.Status = models.PreparationProduct
		case models.UnderReviewProduct:
			return models.NewPermissionError("product is under review and cannot be edited")
		default:
			return models.NewPermissionError("listed product cannot be edited")
		}

		applyProductRequest(product, productReq, deliveryType)
		updated, err = tx.UpdateProduct(ctx, *product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListProducts возвращает ленту опубликованных товаров.
func (s *ProductService) ListProducts(ctx context.Context, limitStr, offsetStr string) ([]models.Product, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Repo.GetProducts(ctx, models.AcceptedProduct, limit, offset)
}

// MyProducts возвращает товары текущего пользователя.
func (s *ProductService) MyProducts(ctx context.Context, actor models.Actor, limitStr, offsetStr string) ([]models.Product, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Repo.GetOwnerProducts(ctx, actor.UserID, ownerVisibleStatuses, limit, offset)
}

// SubmitForReview прикрепляет проверочное видео и отправляет товар на модерацию.
func (s *ProductService) SubmitForReview(ctx context.Context, actor models.Actor, productId string, submission models.ReviewSubmission) (*models.Product, error) {
	if err := utils.ValidateStruct(s.Validate, submission); err != nil {
		return nil, err
	}

	var submitted *models.Product
	err := s.Repo.InTx(ctx, func(tx repository.ProductTx) error {
		product, err := tx.GetProductForUpdate(ctx, productId)
		if err != nil {
			return err
		}
		if product == nil {
			return models.NewNotFoundError("product not found")
		}
		if product.OwnerID != actor.UserID {
			return models.NewPermissionError("only the owner can submit this product")
		}
		if product.Status == models.UnderReviewProduct {
			return models.NewStateError("product already under review")
		}
		if !utils.Contains(allowedProductTransitions[product.Status], models.UnderReviewProduct) {
			return models.NewStateError(fmt.Sprintf("product cannot be submitted in status %s", product.Status))
		}
		if product.MediaID == nil {
			return models.NewValidationError("product has no media")
		}

		if _, err = tx.AddMediaFile(ctx, models.VideoMedia, *product.MediaID, models.MediaFileRequest{
			URL:   submission.VideoURL,
			Order: submission.Order,
		}); err != nil {
			return err
		}
		if err = tx.SetProductStatus(ctx, product.ID, models.UnderReviewProduct); err != nil {
			return err
		}
		product.Status = models.UnderReviewProduct
		submitted = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

// ProductIssues возвращает записи модерации товара владельцу или администратору.
func (s *ProductService) ProductIssues(ctx context.Context, actor models.Actor, productId string) ([]models.Issue, error) {
	product, err := s.Repo.GetProductById(ctx, productId)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, models.NewNotFoundError("product not found")
	}
	if product.OwnerID != actor.UserID && !actor.Admin {
		return nil, models.NewPermissionError("only the owner can view issues of this product")
	}
	return s.Repo.GetProductIssues(ctx, productId)
}
