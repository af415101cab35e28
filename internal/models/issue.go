package models

import "time"

// Issue представляет запись модерации по отклоненному товару.
type Issue struct {
	ID        string         `json:"id"`
	ProductID string         `json:"productId"`
	Open      bool           `json:"open"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Messages  []IssueMessage `json:"messages"`
}

// IssueMessage представляет замечание модератора.
type IssueMessage struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"-"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewDecision представляет решение администратора по товару.
type ReviewDecision struct {
	Valid *bool  `json:"valid" validate:"required"`
	Note  string `json:"note" validate:"max=1000"`
}
