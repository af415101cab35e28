package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/sisterly-service/internal/models"
	"github.com/senyabanana/sisterly-service/internal/repository"
	"github.com/senyabanana/sisterly-service/internal/utils"

	"github.com/go-playground/validator/v10"
)

type UserService struct {
	Users     repository.UserRepository
	Addresses repository.AddressRepository
	Products  repository.ProductRepository
	Validate  *validator.Validate
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users repository.UserRepository, addresses repository.AddressRepository, products repository.ProductRepository) *UserService {
	return &UserService{Users: users, Addresses: addresses, Products: products, Validate: NewValidator()}
}

// UserProducts возвращает опубликованные товары пользователя.
func (s *UserService) UserProducts(ctx context.Context, userId, limitStr, offsetStr string) ([]models.Product, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	user, err := s.Users.GetUserById(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, models.NewNotFoundError("user not found")
	}
	return s.Products.GetOwnerProducts(ctx, userId, []models.ProductStatus{models.AcceptedProduct}, limit, offset)
}

// RegisterDevice сохраняет устройство для push-уведомлений.
func (s *UserService) RegisterDevice(ctx context.Context, actor models.Actor, deviceReq models.DeviceRequest) error {
	if err := utils.ValidateStruct(s.Validate, deviceReq); err != nil {
		return err
	}
	return s.Users.RegisterDevice(ctx, actor.UserID, deviceReq)
}

func addressFromRequest(addressReq models.AddressRequest) models.Address {
	return models.Address{
		Name:     addressReq.Name,
		Address1: addressReq.Address1,
		Address2: addressReq.Address2,
		Country:  addressReq.Country,
		Province: addressReq.Province,
		City:     addressReq.City,
		Zip:      addressReq.Zip,
		Note:     addressReq.Note,
		Default:  addressReq.Default,
	}
}

// CreateAddress создает адрес пользователя.
func (s *UserService) CreateAddress(ctx context.Context, actor models.Actor, addressReq models.AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(s.Validate, addressReq); err != nil {
		return nil, err
	}
	address := addressFromRequest(addressReq)
	address.UserID = actor.UserID

	created, err := s.Addresses.CreateAddress(ctx, address)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, models.NewConflictError("address with this name already exists")
		}
		return nil, err
	}
	return created, nil
}

// ListAddresses возвращает адреса пользователя.
func (s *UserService) ListAddresses(ctx context.Context, actor models.Actor) ([]models.Address, error) {
	return s.Addresses.GetAddresses(ctx, actor.UserID)
}

// GetAddress возвращает адрес, принадлежащий пользователю.
func (s *UserService) GetAddress(ctx context.Context, actor models.Actor, addressId string) (*models.Address, error) {
	address, err := s.Addresses.GetAddressById(ctx, addressId)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil || address.UserID != actor.UserID {
		return nil, models.NewNotFoundError("address not found")
	}
	return address, nil
}

// UpdateAddress меняет адрес пользователя.
func (s *UserService) UpdateAddress(ctx context.Context, actor models.Actor, addressId string, addressReq models.AddressRequest) (*models.Address, error) {
	if err := utils.ValidateStruct(s.Validate, addressReq); err != nil {
		return nil, err
	}
	current, err := s.GetAddress(ctx, actor, addressId)
	if err != nil {
		return nil, err
	}

	address := addressFromRequest(addressReq)
	address.ID = current.ID
	address.UserID = current.UserID

	updated, err := s.Addresses.UpdateAddress(ctx, address)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, models.NewConflictError("address with this name already exists")
		}
		return nil, err
	}
	return updated, nil
}
