package model

import "time"

// Vacancy represents an internship vacancy published by a company.
type Vacancy struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Review is a user-written review of a company, linked to the reviewing user.
type Review struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CompanyName string    `json:"companyName"`
	Rating      int       `json:"rating"` // 1..5
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
}
