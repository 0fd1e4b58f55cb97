package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/media"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// catalogService implements CatalogService.
type catalogService struct {
	store           repository.Store
	categoryRepo    repository.CategoryRepository
	subcategoryRepo repository.SubcategoryRepository
	productRepo     repository.ProductRepository
	media           media.Remover
	now             func() time.Time
	logger          zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	store repository.Store,
	categoryRepo repository.CategoryRepository,
	subcategoryRepo repository.SubcategoryRepository,
	productRepo repository.ProductRepository,
	remover media.Remover,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		store:           store,
		categoryRepo:    categoryRepo,
		subcategoryRepo: subcategoryRepo,
		productRepo:     productRepo,
		media:           remover,
		now:             time.Now,
		logger:          logger.With().Str("service", "catalog").Logger(),
	}
}

func (s *catalogService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if req == nil {
		return nil, model.MissingField("name")
	}
	name, err := categoryName(req.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	category := &model.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: req.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		return s.categoryRepo.Create(ctx, tx, category)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID.String()).
		Str("name", category.Name).
		Msg("category created")

	return category, nil
}

func categoryName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", model.MissingField("name")
	}
	if n := len([]rune(name)); n < 2 || n > 100 {
		return "", model.InvalidField("name must be between 2 and 100 characters")
	}
	return name, nil
}

// UpdateCategory renames a category and/or replaces its description. The
// active flag is only changed through SetCategoryActive.
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error) {
	if req == nil {
		req = &model.UpdateCategoryRequest{}
	}
	var name string
	if req.Name != nil {
		var err error
		if name, err = categoryName(*req.Name); err != nil {
			return nil, err
		}
	}

	var category *model.Category
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		var err error
		category, err = s.categoryRepo.GetLocked(ctx, tx, id, repository.LockUpdate)
		if err != nil {
			return err
		}
		if category == nil {
			return model.NotFound("category", id)
		}

		if req.Name != nil {
			category.Name = name
		}
		if req.Description != nil {
			category.Description = req.Description
		}
		category.UpdatedAt = s.now()
		return s.categoryRepo.Update(ctx, tx, category)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category_id", id.String()).
		Str("name", category.Name).
		Msg("category updated")

	return category, nil
}

func (s *catalogService) CreateSubcategory(ctx context.Context, req *model.CreateSubcategoryRequest) (*model.Subcategory, error) {
	if req == nil {
		return nil, model.MissingField("name")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.MissingField("name")
	}

	now := s.now()
	subcategory := &model.Subcategory{
		ID:          uuid.New(),
		CategoryID:  req.CategoryID,
		Name:        name,
		Description: req.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		category, err := s.categoryRepo.GetLocked(ctx, tx, req.CategoryID, repository.LockShare)
		if err != nil {
			return err
		}
		if category == nil {
			return model.NotFound("category", req.CategoryID)
		}
		if !category.Active {
			return fmt.Errorf("category %s: %w", req.CategoryID, model.ErrInactiveParent)
		}
		return s.subcategoryRepo.Create(ctx, tx, subcategory)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("subcategory_id", subcategory.ID.String()).
		Str("category_id", subcategory.CategoryID.String()).
		Msg("subcategory created")

	return subcategory, nil
}

// CreateProduct validates the request, then checks the parents and inserts
// the product in one transaction.
func (s *catalogService) CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if err := s.validateProductRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	product := &model.Product{
		ID:            uuid.New(),
		SubcategoryID: req.SubcategoryID,
		CategoryID:    req.CategoryID,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Image:         req.Image,
		Price:         req.Price.Round(2),
		Stock:         req.Stock,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		if err := s.ValidateCreateProduct(ctx, tx, req.SubcategoryID, req.CategoryID); err != nil {
			return err
		}
		return s.productRepo.Create(ctx, tx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("subcategory_id", product.SubcategoryID.String()).
		Int("stock", product.Stock).
		Msg("product created")

	return product, nil
}

func (s *catalogService) validateProductRequest(req *model.CreateProductRequest) error {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return model.MissingField("name")
	}
	if req.SubcategoryID == uuid.Nil {
		return model.MissingField("subcategoryId")
	}
	if req.CategoryID == uuid.Nil {
		return model.MissingField("categoryId")
	}
	if req.Price.IsNegative() {
		s.logger.Warn().Str("price", req.Price.String()).Msg("negative price")
		return model.InvalidField("price must not be negative")
	}
	if req.Stock < 0 {
		s.logger.Warn().Int("stock", req.Stock).Msg("negative stock")
		return fmt.Errorf("stock %d: %w", req.Stock, model.ErrInvalidQuantity)
	}
	if req.Image != nil && *req.Image != "" {
		ext := strings.ToLower(filepath.Ext(*req.Image))
		if !allowedImageExtensions[ext] {
			return model.InvalidField("image must be a jpg, jpeg, png or gif file")
		}
	}
	return nil
}

// ValidateCreateProduct share-locks the category and then the subcategory.
func (s *catalogService) ValidateCreateProduct(ctx context.Context, tx pgx.Tx, subcategoryID, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.GetLocked(ctx, tx, categoryID, repository.LockShare)
	if err != nil {
		return err
	}
	subcategory, err := s.subcategoryRepo.GetLocked(ctx, tx, subcategoryID, repository.LockShare)
	if err != nil {
		return err
	}

	if category == nil {
		return model.NotFound("category", categoryID)
	}
	if subcategory == nil {
		return model.NotFound("subcategory", subcategoryID)
	}
	if !category.Active {
		return fmt.Errorf("category %s: %w", categoryID, model.ErrInactiveParent)
	}
	if !subcategory.Active {
		return fmt.Errorf("subcategory %s: %w", subcategoryID, model.ErrInactiveParent)
	}
	if subcategory.CategoryID != categoryID {
		s.logger.Warn().
			Str("subcategory_id", subcategoryID.String()).
			Str("category_id", categoryID.String()).
			Str("actual_category_id", subcategory.CategoryID.String()).
			Msg("subcategory belongs to another category")
		return model.ErrHierarchyMismatch
	}

	return nil
}

// SetCategoryActive toggles a category. Only deactivation cascades.
func (s *catalogService) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) (*model.ActivationResult, error) {
	result := &model.ActivationResult{Active: active}

	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		category, err := s.categoryRepo.GetLocked(ctx, tx, id, repository.LockUpdate)
		if err != nil {
			return err
		}
		if category == nil {
			return model.NotFound("category", id)
		}

		if _, err := s.categoryRepo.SetActive(ctx, tx, id, active); err != nil {
			return err
		}
		if active {
			return nil
		}

		if result.SubcategoriesAffected, err = s.subcategoryRepo.DeactivateByCategory(ctx, tx, id); err != nil {
			return err
		}
		result.ProductsAffected, err = s.productRepo.DeactivateByCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category_id", id.String()).
		Bool("active", active).
		Int("subcategories_affected", result.SubcategoriesAffected).
		Int("products_affected", result.ProductsAffected).
		Msg("category activation changed")

	return result, nil
}

// SetSubcategoryActive toggles a subcategory. Only deactivation cascades.
func (s *catalogService) SetSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) (*model.ActivationResult, error) {
	result := &model.ActivationResult{Active: active}

	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		subcategory, err := s.subcategoryRepo.GetLocked(ctx, tx, id, repository.LockUpdate)
		if err != nil {
			return err
		}
		if subcategory == nil {
			return model.NotFound("subcategory", id)
		}

		if _, err := s.subcategoryRepo.SetActive(ctx, tx, id, active); err != nil {
			return err
		}
		if active {
			return nil
		}

		result.ProductsAffected, err = s.productRepo.DeactivateBySubcategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("subcategory_id", id.String()).
		Bool("active", active).
		Int("products_affected", result.ProductsAffected).
		Msg("subcategory activation changed")

	return result, nil
}

// SetProductActive toggles one product. The parents are share-locked in the
// same order as HierarchyState takes them, and a product under an inactive
// parent cannot be activated.
func (s *catalogService) SetProductActive(ctx context.Context, id uuid.UUID, active bool) (*model.Product, error) {
	var product *model.Product
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		state, err := s.productRepo.HierarchyState(ctx, tx, id)
		if err != nil {
			return err
		}
		if state == nil {
			return model.NotFound("product", id)
		}

		product, err = s.productRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return model.NotFound("product", id)
		}
		if active && !state.ParentsActive() {
			return fmt.Errorf("product %s: %w", id, model.ErrInactiveParent)
		}

		changed, err := s.productRepo.SetActive(ctx, tx, id, active)
		if err != nil {
			return err
		}
		product.Active = active
		if changed {
			product.UpdatedAt = s.now()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Bool("active", active).
		Msg("product activation changed")

	return product, nil
}

// UpdateProductPrice changes the live price. Cart and order snapshots keep
// the price they were taken at.
func (s *catalogService) UpdateProductPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*model.Product, error) {
	if price.IsNegative() {
		return nil, model.InvalidField("price must not be negative")
	}

	var product *model.Product
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		var err error
		product, err = s.productRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return model.NotFound("product", id)
		}
		product.Price = price.Round(2)
		product.UpdatedAt = s.now()
		return s.productRepo.UpdatePrice(ctx, tx, id, product.Price)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", id.String()).
		Str("price", product.Price.StringFixed(2)).
		Msg("product price updated")

	return product, nil
}

// DeleteProduct removes a product and then its image.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	var image *string
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		product, err := s.productRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return model.NotFound("product", id)
		}
		image = product.Image
		_, err = s.productRepo.Delete(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}

	if image != nil && *image != "" {
		s.deleteImages(ctx, []string{*image})
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

// DeleteCategory removes a category with everything under it and then the
// images of the removed products.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	var images []string
	err := withTx(ctx, s.store, s.logger, func(tx pgx.Tx) error {
		category, err := s.categoryRepo.GetLocked(ctx, tx, id, repository.LockUpdate)
		if err != nil {
			return err
		}
		if category == nil {
			return model.NotFound("category", id)
		}

		if images, err = s.productRepo.ImagesByCategory(ctx, tx, id); err != nil {
			return err
		}

		_, err = s.categoryRepo.Delete(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.deleteImages(ctx, images)

	s.logger.Info().
		Str("category_id", id.String()).
		Int("images", len(images)).
		Msg("category deleted")

	return nil
}

// deleteImages runs after commit; the rows are already gone so failures are
// only logged.
func (s *catalogService) deleteImages(ctx context.Context, images []string) {
	if s.media == nil {
		return
	}
	for _, image := range images {
		if _, err := s.media.DeleteFile(ctx, image); err != nil {
			s.logger.Warn().Err(err).Str("image", image).Msg("failed to delete product image")
		}
	}
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to get category")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.NotFound("category", id)
	}
	return category, nil
}

func (s *catalogService) GetSubcategory(ctx context.Context, id uuid.UUID) (*model.Subcategory, error) {
	subcategory, err := s.subcategoryRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("subcategory_id", id.String()).Msg("failed to get subcategory")
		return nil, fmt.Errorf("failed to get subcategory: %w", err)
	}
	if subcategory == nil {
		return nil, model.NotFound("subcategory", id)
	}
	return subcategory, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.NotFound("product", id)
	}
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) CountSubcategories(ctx context.Context, categoryID uuid.UUID) (int, error) {
	return s.categoryRepo.CountSubcategories(ctx, categoryID)
}

func (s *catalogService) CountCategoryProducts(ctx context.Context, categoryID uuid.UUID) (int, error) {
	return s.categoryRepo.CountProducts(ctx, categoryID)
}

func (s *catalogService) CountSubcategoryProducts(ctx context.Context, subcategoryID uuid.UUID) (int, error) {
	return s.subcategoryRepo.CountProducts(ctx, subcategoryID)
}
