package models

import "time"

// Actor - аутентифицированный пользователь, выполняющий запрос.
type Actor struct {
	UserID string
	Admin  bool
	Active bool
}

// User представляет пользователя, заведенного провайдером идентификации.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"-"`
	IsActive  bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserFilter описывает параметры поиска пользователей.
type UserFilter struct {
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
	Start     int    `json:"start" validate:"min=0"`
	Limit     int    `json:"limit" validate:"min=0,max=50"`
}

// DeviceRequest представляет регистрацию устройства для push-уведомлений.
type DeviceRequest struct {
	PlayerID string `json:"playerId" validate:"required,max=50"`
	SocketID string `json:"socketId" validate:"max=20"`
}

// Address представляет адрес пользователя для доставки комплекта.
type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Address1  string    `json:"address1"`
	Address2  string    `json:"address2,omitempty"`
	Country   string    `json:"country"`
	Province  string    `json:"province"`
	City      string    `json:"city"`
	Zip       string    `json:"zip"`
	Note      string    `json:"note,omitempty"`
	Default   bool      `json:"default"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddressRequest представляет структуру запроса для создания или изменения адреса.
type AddressRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Address1 string `json:"address1" validate:"required,max=100"`
	Address2 string `json:"address2" validate:"max=100"`
	Country  string `json:"country" validate:"required,iso3166_1_alpha2"`
	Province string `json:"province" validate:"required,max=100"`
	City     string `json:"city" validate:"required,max=100"`
	Zip      string `json:"zip" validate:"required,max=100"`
	Note     string `json:"note" validate:"max=500"`
	Default  bool   `json:"default"`
}
