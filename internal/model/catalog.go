package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the top level of the catalog hierarchy.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Subcategory belongs to exactly one category.
type Subcategory struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CategoryID  uuid.UUID `json:"categoryId" db:"category_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Product is a sellable item. Stock is only ever changed by the stock ledger.
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	SubcategoryID uuid.UUID       `json:"subcategoryId" db:"subcategory_id"`
	CategoryID    uuid.UUID       `json:"categoryId" db:"category_id"`
	Name          string          `json:"name" db:"name"`
	Description   *string         `json:"description,omitempty" db:"description"`
	Image         *string         `json:"image,omitempty" db:"image"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Stock         int             `json:"stock" db:"stock"`
	Active        bool            `json:"active" db:"active"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreateCategoryRequest represents the request payload for creating a category.
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// UpdateCategoryRequest carries a partial category update. Nil fields are left unchanged.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateSubcategoryRequest represents the request payload for creating a subcategory.
type CreateSubcategoryRequest struct {
	CategoryID  uuid.UUID `json:"categoryId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

// CreateProductRequest represents the request payload for creating a product.
type CreateProductRequest struct {
	SubcategoryID uuid.UUID       `json:"subcategoryId"`
	CategoryID    uuid.UUID       `json:"categoryId"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Image         *string         `json:"image,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
}

// ActivationResult reports how many rows a SetActive call changed.
type ActivationResult struct {
	Active                bool `json:"active"`
	SubcategoriesAffected int  `json:"subcategoriesAffected"`
	ProductsAffected      int  `json:"productsAffected"`
}

// HierarchyCounts is the read-only toggling impact of a category or subcategory.
type HierarchyCounts struct {
	Subcategories int `json:"subcategories"`
	Products      int `json:"products"`
}

// SetActiveRequest represents the request payload for toggling a category or subcategory.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// UpdatePriceRequest represents the request payload for changing a product price.
type UpdatePriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}
