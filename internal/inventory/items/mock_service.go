package items

import "context"

// MockItemService drives the handler tests.
type MockItemService struct {
	CreateFn func(ctx context.Context, params CreateParams, userID string) (*Item, error)
}

func (m *MockItemService) Create(ctx context.Context, params CreateParams, userID string) (*Item, error) {
	return m.CreateFn(ctx, params, userID)
}
