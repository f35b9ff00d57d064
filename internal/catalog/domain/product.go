package domain

import "time"

// Product is a read-only projection of the admin panel's catalog. This
// service never creates or mutates products.
type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Media        []string  `json:"media"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	PriceCents   int64     `json:"price_cents"`
	ExpenseCents int64     `json:"expense_cents"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summary is the denormalized display shape joined onto reservations and
// wishlists.
type Summary struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Media      []string `json:"media"`
	Category   string   `json:"category"`
	PriceCents int64    `json:"price_cents"`
}

func (p Product) Summary() Summary {
	return Summary{
		ID:         p.ID,
		Title:      p.Title,
		Media:      p.Media,
		Category:   p.Category,
		PriceCents: p.PriceCents,
	}
}
