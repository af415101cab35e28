package services

import (
	"context"
	"strings"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"github.com/go-playground/validator/v10"
)

type ModerationService struct {
	Repo     repository.ProductRepository
	Notifier Notifier
	Validate *validator.Validate
}

// NewModerationService создает новый экземпляр ModerationService.
func NewModerationService(repo repository.ProductRepository, notifier Notifier) *ModerationService {
	return &ModerationService{Repo: repo, Notifier: notifier, Validate: NewValidator()}
}

func requireAdmin(actor models.Actor) error {
	if !actor.Admin || !actor.Active {
		return models.NewPermissionError("only active administrators can moderate products")
	}
	return nil
}

// ListUnderReview возвращает очередь товаров на модерации.
func (s *ModerationService) ListUnderReview(ctx context.Context, actor models.Actor, limitStr, offsetStr string) ([]models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.Repo.GetProducts(ctx, models.UnderReviewProduct, limit, offset)
}

// ReviewProduct публикует или отклоняет товар.
// Отклонение добавляет замечание в открытую запись модерации, создавая ее при необходимости;
// публикация закрывает открытую запись.
func (s *ModerationService) ReviewProduct(ctx context.Context, actor models.Actor, productId string, decision models.ReviewDecision) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(s.Validate, decision); err != nil {
		return nil, err
	}
	valid := *decision.Valid
	note := strings.TrimSpace(decision.Note)
	if !valid && note == "" {
		return nil, models.NewValidationError("note is required when rejecting a product")
	}

	next := models.RejectedProduct
	if valid {
		next = models.AcceptedProduct
	}

	var reviewed *models.Product
	err := s.Repo.InTx(ctx, func(tx repository.ProductTx) error {
		product, err := tx.GetProductForUpdate(ctx, productId)
		if err != nil {
			return err
		}
		if product == nil {
			return models.NewNotFoundError("product not found")
		}
		if product.Status != models.UnderReviewProduct || !utils.Contains(allowedProductTransitions[product.Status], next) {
			return models.NewStateError("product already verified")
		}

		issue, err := tx.GetOpenIssue(ctx, productId)
		if err != nil {
			return err
		}
		if valid {
			if issue != nil {
				if err = tx.CloseIssue(ctx, issue.ID); err != nil {
					return err
				}
			}
		} else {
			if issue == nil {
				if issue, err = tx.CreateIssue(ctx, productId); err != nil {
					return err
				}
			}
			if _, err = tx.AddIssueMessage(ctx, issue.ID, note); err != nil {
				return err
			}
		}

		if err = tx.SetProductStatus(ctx, productId, next); err != nil {
			return err
		}
		product.Status = next
		reviewed = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	body := bodyProductRejected
	if valid {
		body = bodyProductAccepted
	}
	s.Notifier.Notify([]string{reviewed.OwnerID}, titleValidation, body)
	return reviewed, nil
}
