package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxProductNameLength = 255
	MaxDescriptionLength = 1000
)

var (
	MinPrice = decimal.RequireFromString("0.01")
	MaxPrice = decimal.RequireFromString("999999.99")
)

var AllowedCategories = []string{
	"Electronics",
	"Clothing",
	"Home & Kitchen",
	"Books",
	"Toys",
	"Sports",
	"Beauty",
	"Health",
	"Automotive",
	"Others",
}

type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ProductInput carries every writable product field. Updates replace all of
// them, so a missing description clears the stored one.
type ProductInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
}

func (in ProductInput) Validate() ValidationErrors {
	errs := ValidationErrors{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		errs.Add("name", "name is required")
	case utf8.RuneCountInString(in.Name) > MaxProductNameLength:
		errs.Add("name", fmt.Sprintf("name must be at most %d characters", MaxProductNameLength))
	}

	if in.Description != nil && utf8.RuneCountInString(*in.Description) > MaxDescriptionLength {
		errs.Add("description", fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}

	if in.Price.LessThan(MinPrice) || in.Price.GreaterThan(MaxPrice) {
		errs.Add("price", fmt.Sprintf("price must be between %s and %s", MinPrice.StringFixed(2), MaxPrice.StringFixed(2)))
	}

	if !IsAllowedCategory(in.Category) {
		errs.Add("category", fmt.Sprintf("category must be one of: %s", strings.Join(AllowedCategories, ", ")))
	}

	return errs
}

// ApplyTo overwrites the writable fields of p.
func (in ProductInput) ApplyTo(p *Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Category = in.Category
}

func IsAllowedCategory(category string) bool {
	for _, c := range AllowedCategories {
		if c == category {
			return true
		}
	}
	return false
}
