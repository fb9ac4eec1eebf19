package models

import "time"

// News represents a news article
type News struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Excerpt   string    `json:"excerpt"`
	Category  string    `json:"category"`
	ImageURL  *string   `json:"imageUrl"` // nil when the article has no image
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateNewsRequest represents a request to create a news article
type CreateNewsRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Excerpt  string  `json:"excerpt"`
	Category string  `json:"category"`
	ImageURL *string `json:"imageUrl,omitempty"`
}
