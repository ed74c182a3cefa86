package categories

import "context"

// MockCategoryService drives the handler tests. Each operation delegates to
// the corresponding func field when set.
type MockCategoryService struct {
	CreateFn func(ctx context.Context, name, userID string) (*Category, error)
	ListFn   func(ctx context.Context, userID string) ([]Category, error)
	UpdateFn func(ctx context.Context, categoryID int, name, userID string) (*Category, error)
	DeleteFn func(ctx context.Context, categoryID int, userID string) error
}

func (m *MockCategoryService) Create(ctx context.Context, name, userID string) (*Category, error) {
	return m.CreateFn(ctx, name, userID)
}

func (m *MockCategoryService) List(ctx context.Context, userID string) ([]Category, error) {
	return m.ListFn(ctx, userID)
}

func (m *MockCategoryService) Update(ctx context.Context, categoryID int, name, userID string) (*Category, error) {
	return m.UpdateFn(ctx, categoryID, name, userID)
}

func (m *MockCategoryService) Delete(ctx context.Context, categoryID int, userID string) error {
	return m.DeleteFn(ctx, categoryID, userID)
}

func (m *MockCategoryService) EnsureDefaults(ctx context.Context) error {
	return nil
}
