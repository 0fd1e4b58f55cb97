package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	store           *MockStore
	categoryRepo    *MockCategoryRepository
	subcategoryRepo *MockSubcategoryRepository
	productRepo     *MockProductRepository
	remover         *MockRemover
	service         CatalogService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		store:           new(MockStore),
		categoryRepo:    new(MockCategoryRepository),
		subcategoryRepo: new(MockSubcategoryRepository),
		productRepo:     new(MockProductRepository),
		remover:         new(MockRemover),
	}
	f.service = NewCatalogService(f.store, f.categoryRepo, f.subcategoryRepo, f.productRepo, f.remover, zerolog.Nop())
	return f
}

func (f *catalogFixture) assertExpectations(t *testing.T) {
	f.store.AssertExpectations(t)
	f.categoryRepo.AssertExpectations(t)
	f.subcategoryRepo.AssertExpectations(t)
	f.productRepo.AssertExpectations(t)
	f.remover.AssertExpectations(t)
}

func TestCatalogService_SetCategoryActive_DeactivationCascades(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	f := newCatalogFixture()
	tx := beginTx(ctx, f.store, true)

	f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockUpdate).
		Return(&model.Category{ID: categoryID, Active: true}, nil)
	f.categoryRepo.On("SetActive", ctx, tx, categoryID, false).Return(true, nil)
	f.subcategoryRepo.On("DeactivateByCategory", ctx, tx, categoryID).Return(2, nil)
	f.productRepo.On("DeactivateByCategory", ctx, tx, categoryID).Return(5, nil)

	result, err := f.service.SetCategoryActive(ctx, categoryID, false)

	require.NoError(t, err)
	assert.False(t, result.Active)
	assert.Equal(t, 2, result.SubcategoriesAffected)
	assert.Equal(t, 5, result.ProductsAffected)
	f.assertExpectations(t)
}

func TestCatalogService_SetCategoryActive_ActivationDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	f := newCatalogFixture()
	tx := beginTx(ctx, f.store, true)

	f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockUpdate).
		Return(&model.Category{ID: categoryID, Active: false}, nil)
	f.categoryRepo.On("SetActive", ctx, tx, categoryID, true).Return(true, nil)

	result, err := f.service.SetCategoryActive(ctx, categoryID, true)

	require.NoError(t, err)
	assert.True(t, result.Active)
	assert.Zero(t, result.SubcategoriesAffected)
	assert.Zero(t, result.ProductsAffected)
	f.subcategoryRepo.AssertNotCalled(t, "DeactivateByCategory", mock.Anything, mock.Anything, mock.Anything)
	f.productRepo.AssertNotCalled(t, "DeactivateByCategory", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestCatalogService_SetCategoryActive_Failures(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	t.Run("Missing category", func(t *testing.T) {
		f := newCatalogFixture()
		tx := beginTx(ctx, f.store, false)
		f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockUpdate).Return(nil, nil)

		_, err := f.service.SetCategoryActive(ctx, categoryID, false)

		assert.ErrorIs(t, err, model.ErrNotFound)
		f.assertExpectations(t)
	})

	t.Run("Cascade failure aborts everything", func(t *testing.T) {
		f := newCatalogFixture()
		tx := beginTx(ctx, f.store, false)
		f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockUpdate).
			Return(&model.Category{ID: categoryID, Active: true}, nil)
		f.categoryRepo.On("SetActive", ctx, tx, categoryID, false).Return(true, nil)
		f.subcategoryRepo.On("DeactivateByCategory", ctx, tx, categoryID).Return(2, nil)
		f.productRepo.On("DeactivateByCategory", ctx, tx, categoryID).
			Return(0, model.StoreUnavailable(errors.New("deadlock detected")))

		result, err := f.service.SetCategoryActive(ctx, categoryID, false)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, model.IsRetryable(err))
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.committed)
		f.assertExpectations(t)
	})
}

func TestCatalogService_SetSubcategoryActive(t *testing.T) {
	ctx := context.Background()
	subcategoryID := uuid.New()

	t.Run("Deactivation cascades to products", func(t *testing.T) {
		f := newCatalogFixture()
		tx := beginTx(ctx, f.store, true)
		f.subcategoryRepo.On("GetLocked", ctx, tx, subcategoryID, repository.LockUpdate).
			Return(&model.Subcategory{ID: subcategoryID, Active: true}, nil)
		f.subcategoryRepo.On("SetActive", ctx, tx, subcategoryID, false).Return(true, nil)
		f.productRepo.On("DeactivateBySubcategory", ctx, tx, subcategoryID).Return(3, nil)

		result, err := f.service.SetSubcategoryActive(ctx, subcategoryID, false)

		require.NoError(t, err)
		assert.Equal(t, 3, result.ProductsAffected)
		f.assertExpectations(t)
	})

	t.Run("Activation leaves products alone", func(t *testing.T) {
		f := newCatalogFixture()
		tx := beginTx(ctx, f.store, true)
		f.subcategoryRepo.On("GetLocked", ctx, tx, subcategoryID, repository.LockUpdate).
			Return(&model.Subcategory{ID: subcategoryID, Active: false}, nil)
		f.subcategoryRepo.On("SetActive", ctx, tx, subcategoryID, true).Return(true, nil)

		result, err := f.service.SetSubcategoryActive(ctx, subcategoryID, true)

		require.NoError(t, err)
		assert.Zero(t, result.ProductsAffected)
		f.productRepo.AssertNotCalled(t, "DeactivateBySubcategory", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCatalogService_ValidateCreateProduct(t *testing.T) {
	ctx := context.Background()
	categoryID, otherCategoryID, subcategoryID := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name        string
		category    *model.Category
		subcategory *model.Subcategory
		expectedErr error
	}{
		{
			name:        "Valid hierarchy",
			category:    &model.Category{ID: categoryID, Active: true},
			subcategory: &model.Subcategory{ID: subcategoryID, CategoryID: categoryID, Active: true},
		},
		{
			name:        "Missing category",
			category:    nil,
			subcategory: &model.Subcategory{ID: subcategoryID, CategoryID: categoryID, Active: true},
			expectedErr: model.ErrNotFound,
		},
		{
			name:        "Missing subcategory",
			category:    &model.Category{ID: categoryID, Active: true},
			subcategory: nil,
			expectedErr: model.ErrNotFound,
		},
		{
			name:        "Inactive category",
			category:    &model.Category{ID: categoryID, Active: false},
			subcategory: &model.Subcategory{ID: subcategoryID, CategoryID: categoryID, Active: true},
			expectedErr: model.ErrInactiveParent,
		},
		{
			name:        "Inactive subcategory",
			category:    &model.Category{ID: categoryID, Active: true},
			subcategory: &model.Subcategory{ID: subcategoryID, CategoryID: categoryID, Active: false},
			expectedErr: model.ErrInactiveParent,
		},
		{
			name:        "Subcategory under another category",
			category:    &model.Category{ID: categoryID, Active: true},
			subcategory: &model.Subcategory{ID: subcategoryID, CategoryID: otherCategoryID, Active: true},
			expectedErr: model.ErrHierarchyMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			tx := new(MockTx)

			f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockShare).Return(tt.category, nil)
			f.subcategoryRepo.On("GetLocked", ctx, tx, subcategoryID, repository.LockShare).Return(tt.subcategory, nil)

			err := f.service.ValidateCreateProduct(ctx, tx, subcategoryID, categoryID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			f.assertExpectations(t)
		})
	}
}

func TestCatalogService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	categoryID, subcategoryID := uuid.New(), uuid.New()
	image := "shoe.png"

	req := &model.CreateProductRequest{
		SubcategoryID: subcategoryID,
		CategoryID:    categoryID,
		Name:          "  Running Shoe ",
		Image:         &image,
		Price:         decimal.RequireFromString("49.99"),
		Stock:         12,
	}

	f := newCatalogFixture()
	tx := beginTx(ctx, f.store, true)

	f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockShare).
		Return(&model.Category{ID: categoryID, Active: true}, nil)
	f.subcategoryRepo.On("GetLocked", ctx, tx, subcategoryID, repository.LockShare).
		Return(&model.Subcategory{ID: subcategoryID, CategoryID: categoryID, Active: true}, nil)
	f.productRepo.On("Create", ctx, tx, mock.MatchedBy(func(p *model.Product) bool {
		return p.Name == "Running Shoe" && p.Stock == 12 && p.Active && p.CategoryID == categoryID
	})).Return(nil)

	product, err := f.service.CreateProduct(ctx, req)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, "49.99", product.Price.StringFixed(2))
	f.assertExpectations(t)
}

func TestCatalogService_CreateProduct_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	gif, exe := "banner.GIF", "payload.exe"

	valid := func() *model.CreateProductRequest {
		return &model.CreateProductRequest{
			SubcategoryID: uuid.New(),
			CategoryID:    uuid.New(),
			Name:          "Hat",
			Price:         decimal.RequireFromString("5.00"),
			Stock:         1,
		}
	}

	tests := []struct {
		name        string
		mutate      func(r *model.CreateProductRequest)
		expectedErr error
	}{
		{name: "Missing name", mutate: func(r *model.CreateProductRequest) { r.Name = " " }, expectedErr: model.ErrMissingField},
		{name: "Missing subcategory", mutate: func(r *model.CreateProductRequest) { r.SubcategoryID = uuid.Nil }, expectedErr: model.ErrMissingField},
		{name: "Negative price", mutate: func(r *model.CreateProductRequest) { r.Price = decimal.RequireFromString("-1") }, expectedErr: model.ErrInvalidField},
		{name: "Negative stock", mutate: func(r *model.CreateProductRequest) { r.Stock = -3 }, expectedErr: model.ErrInvalidQuantity},
		{name: "Bad image extension", mutate: func(r *model.CreateProductRequest) { r.Image = &exe }, expectedErr: model.ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			req := valid()
			tt.mutate(req)

			_, err := f.service.CreateProduct(ctx, req)

			assert.ErrorIs(t, err, tt.expectedErr)
			f.store.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}

	t.Run("Upper-case extension accepted", func(t *testing.T) {
		f := newCatalogFixture()
		req := valid()
		req.Image = &gif
		assert.NoError(t, f.service.(*catalogService).validateProductRequest(req))
	})
}

func TestCatalogService_CreateSubcategory(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	tests := []struct {
		name        string
		category    *model.Category
		expectedErr error
	}{
		{name: "Active parent", category: &model.Category{ID: categoryID, Active: true}},
		{name: "Inactive parent", category: &model.Category{ID: categoryID, Active: false}, expectedErr: model.ErrInactiveParent},
		{name: "Missing parent", category: nil, expectedErr: model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			tx := beginTx(ctx, f.store, tt.expectedErr == nil)

			f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockShare).Return(tt.category, nil)
			if tt.expectedErr == nil {
				f.subcategoryRepo.On("Create", ctx, tx, mock.AnythingOfType("*model.Subcategory")).Return(nil)
			}

			sub, err := f.service.CreateSubcategory(ctx, &model.CreateSubcategoryRequest{CategoryID: categoryID, Name: "Boots"})

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, sub)
			} else {
				require.NoError(t, err)
				assert.Equal(t, categoryID, sub.CategoryID)
				assert.True(t, sub.Active)
			}
			f.assertExpectations(t)
		})
	}
}

func TestCatalogService_CreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newCatalogFixture()
		tx := beginTx(ctx, f.store, true)
		f.categoryRepo.On("Create", ctx, tx, mock.AnythingOfType("*model.Category")).Return(nil)

		category, err := f.service.CreateCategory(ctx, &model.CreateCategoryRequest{Name: "Shoes"})

		require.NoError(t, err)
		assert.Equal(t, "Shoes", category.Name)
		assert.True(t, category.Active)
	})

	t.Run("Duplicate name", func(t *testing.T) {
		f := newCatalogFixture()
		tx := beginTx(ctx, f.store, false)
		f.categoryRepo.On("Create", ctx, tx, mock.AnythingOfType("*model.Category")).Return(model.ErrDuplicateName)

		_, err := f.service.CreateCategory(ctx, &model.CreateCategoryRequest{Name: "Shoes"})

		assert.ErrorIs(t, err, model.ErrDuplicateName)
	})

	t.Run("Name too short", func(t *testing.T) {
		f := newCatalogFixture()

		_, err := f.service.CreateCategory(ctx, &model.CreateCategoryRequest{Name: "S"})

		assert.ErrorIs(t, err, model.ErrInvalidField)
		f.store.AssertNotCalled(t, "BeginTx", mock.Anything)
	})
}

func TestCatalogService_DeleteProduct_RemovesImageAfterCommit(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	image := "shoe.png"

	f := newCatalogFixture()
	tx := beginTx(ctx, f.store, true)

	product := testProduct(productID, 1, true)
	product.Image = &image
	f.productRepo.On("GetForUpdate", ctx, tx, productID).Return(product, nil)
	f.productRepo.On("Delete", ctx, tx, productID).Return(true, nil)
	f.remover.On("DeleteFile", ctx, "shoe.png").Return(false, errors.New("disk error"))

	require.NoError(t, f.service.DeleteProduct(ctx, productID))
	f.assertExpectations(t)
}

func TestCatalogService_DeleteProduct_InUse(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	f := newCatalogFixture()
	tx := beginTx(ctx, f.store, false)

	f.productRepo.On("GetForUpdate", ctx, tx, productID).Return(testProduct(productID, 1, true), nil)
	f.productRepo.On("Delete", ctx, tx, productID).Return(false, model.ErrProductInUse)

	err := f.service.DeleteProduct(ctx, productID)

	assert.ErrorIs(t, err, model.ErrProductInUse)
	f.remover.AssertNotCalled(t, "DeleteFile", mock.Anything, mock.Anything)
}

func TestCatalogService_DeleteCategory(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	f := newCatalogFixture()
	tx := beginTx(ctx, f.store, true)

	f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockUpdate).
		Return(&model.Category{ID: categoryID, Active: true}, nil)
	f.productRepo.On("ImagesByCategory", ctx, tx, categoryID).Return([]string{"a.png", "b.jpg"}, nil)
	f.categoryRepo.On("Delete", ctx, tx, categoryID).Return(true, nil)
	f.remover.On("DeleteFile", ctx, "a.png").Return(true, nil)
	f.remover.On("DeleteFile", ctx, "b.jpg").Return(true, nil)

	require.NoError(t, f.service.DeleteCategory(ctx, categoryID))
	f.assertExpectations(t)
}

func TestCatalogService_UpdateProductPrice(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newCatalogFixture()
		tx := beginTx(ctx, f.store, true)
		f.productRepo.On("GetForUpdate", ctx, tx, productID).Return(testProduct(productID, 1, true), nil)
		f.productRepo.On("UpdatePrice", ctx, tx, productID, mock.MatchedBy(func(p decimal.Decimal) bool {
			return p.Equal(decimal.RequireFromString("15.25"))
		})).Return(nil)

		product, err := f.service.UpdateProductPrice(ctx, productID, decimal.RequireFromString("15.25"))

		require.NoError(t, err)
		assert.Equal(t, "15.25", product.Price.StringFixed(2))
	})

	t.Run("Negative price", func(t *testing.T) {
		f := newCatalogFixture()

		_, err := f.service.UpdateProductPrice(ctx, productID, decimal.RequireFromString("-0.01"))

		assert.ErrorIs(t, err, model.ErrInvalidField)
		assert.NotErrorIs(t, err, model.ErrInvalidQuantity)
		assert.Contains(t, err.Error(), "price must not be negative")
		f.store.AssertNotCalled(t, "BeginTx", mock.Anything)
	})
}

func TestCatalogService_SetProductActive(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()
	inactiveSubcategory := &repository.HierarchyState{ProductActive: false, SubcategoryActive: false, CategoryActive: true}
	inactiveCategory := &repository.HierarchyState{ProductActive: false, SubcategoryActive: true, CategoryActive: false}

	tests := []struct {
		name        string
		active      bool
		state       *repository.HierarchyState
		product     *model.Product
		setActive   bool
		expectedErr error
	}{
		{name: "Activate under active parents", active: true, state: allActive, product: testProduct(productID, 3, false), setActive: true},
		{name: "Deactivate", active: false, state: allActive, product: testProduct(productID, 3, true), setActive: true},
		{name: "Deactivate under inactive parent", active: false, state: inactiveCategory, product: testProduct(productID, 3, true), setActive: true},
		{name: "Activate under inactive subcategory", active: true, state: inactiveSubcategory, product: testProduct(productID, 3, false), expectedErr: model.ErrInactiveParent},
		{name: "Activate under inactive category", active: true, state: inactiveCategory, product: testProduct(productID, 3, false), expectedErr: model.ErrInactiveParent},
		{name: "Missing product", active: true, state: nil, expectedErr: model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			tx := beginTx(ctx, f.store, tt.expectedErr == nil)

			var calls []string
			f.productRepo.On("HierarchyState", ctx, tx, productID).
				Run(func(mock.Arguments) { calls = append(calls, "parents") }).
				Return(tt.state, nil)
			if tt.state != nil {
				f.productRepo.On("GetForUpdate", ctx, tx, productID).
					Run(func(mock.Arguments) { calls = append(calls, "product") }).
					Return(tt.product, nil)
			}
			if tt.setActive {
				f.productRepo.On("SetActive", ctx, tx, productID, tt.active).Return(true, nil)
			}

			product, err := f.service.SetProductActive(ctx, productID, tt.active)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, product)
				assert.True(t, tx.rolledBack)
				f.productRepo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.active, product.Active)
				assert.Equal(t, []string{"parents", "product"}, calls)
				assert.True(t, tx.committed)
			}
			f.assertExpectations(t)
		})
	}
}

func TestCatalogService_UpdateCategory(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()
	oldDescription := "old"
	newDescription := "Footwear of all kinds"
	str := func(s string) *string { return &s }

	existing := func() *model.Category {
		return &model.Category{ID: categoryID, Name: "Shoes", Description: &oldDescription, Active: false}
	}

	tests := []struct {
		name            string
		req             *model.UpdateCategoryRequest
		updateErr       error
		wantName        string
		wantDescription string
		expectedErr     error
	}{
		{name: "Rename", req: &model.UpdateCategoryRequest{Name: str("  Boots ")}, wantName: "Boots", wantDescription: oldDescription},
		{name: "Description only", req: &model.UpdateCategoryRequest{Description: &newDescription}, wantName: "Shoes", wantDescription: newDescription},
		{name: "Duplicate name", req: &model.UpdateCategoryRequest{Name: str("Hats")}, updateErr: model.ErrDuplicateName, expectedErr: model.ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			tx := beginTx(ctx, f.store, tt.expectedErr == nil)
			f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockUpdate).Return(existing(), nil)
			f.categoryRepo.On("Update", ctx, tx, mock.AnythingOfType("*model.Category")).Return(tt.updateErr)

			category, err := f.service.UpdateCategory(ctx, categoryID, tt.req)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, category)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, category.Name)
				require.NotNil(t, category.Description)
				assert.Equal(t, tt.wantDescription, *category.Description)
				assert.False(t, category.Active)
			}
			f.assertExpectations(t)
		})
	}

	t.Run("Missing category", func(t *testing.T) {
		f := newCatalogFixture()
		tx := beginTx(ctx, f.store, false)
		f.categoryRepo.On("GetLocked", ctx, tx, categoryID, repository.LockUpdate).Return(nil, nil)

		_, err := f.service.UpdateCategory(ctx, categoryID, &model.UpdateCategoryRequest{Name: str("Boots")})

		assert.ErrorIs(t, err, model.ErrNotFound)
		f.categoryRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid name rejected before the transaction", func(t *testing.T) {
		f := newCatalogFixture()

		_, err := f.service.UpdateCategory(ctx, categoryID, &model.UpdateCategoryRequest{Name: str("  ")})

		assert.ErrorIs(t, err, model.ErrMissingField)
		f.store.AssertNotCalled(t, "BeginTx", mock.Anything)
	})
}

func TestCatalogService_Counts(t *testing.T) {
	ctx := context.Background()
	categoryID, subcategoryID := uuid.New(), uuid.New()

	f := newCatalogFixture()
	f.categoryRepo.On("CountSubcategories", ctx, categoryID).Return(3, nil)
	f.categoryRepo.On("CountProducts", ctx, categoryID).Return(9, nil)
	f.subcategoryRepo.On("CountProducts", ctx, subcategoryID).Return(4, nil)

	subs, err := f.service.CountSubcategories(ctx, categoryID)
	require.NoError(t, err)
	assert.Equal(t, 3, subs)

	products, err := f.service.CountCategoryProducts(ctx, categoryID)
	require.NoError(t, err)
	assert.Equal(t, 9, products)

	products, err = f.service.CountSubcategoryProducts(ctx, subcategoryID)
	require.NoError(t, err)
	assert.Equal(t, 4, products)

	f.store.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestCatalogService_GetProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	f := newCatalogFixture()
	f.productRepo.On("GetByID", ctx, productID).Return(nil, nil)

	_, err := f.service.GetProduct(ctx, productID)

	assert.ErrorIs(t, err, model.ErrNotFound)
}
