package models

import "time"

// CarouselSlide represents a slide of the home page carousel
type CarouselSlide struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Icon            string    `json:"icon"`
	BackgroundColor string    `json:"backgroundColor"`
	Order           int       `json:"order"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CreateCarouselSlideRequest represents a request to create a carousel slide.
// Order is a pointer so that a missing value can be told apart from zero.
type CreateCarouselSlideRequest struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	Icon            string `json:"icon"`
	BackgroundColor string `json:"backgroundColor"`
	Order           *int   `json:"order"`
}
