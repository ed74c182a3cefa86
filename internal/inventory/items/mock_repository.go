package items

import (
	"context"
	"database/sql"

	"github.com/renkoyama/InventoryManager/internal/inventory/categories"
)

type MockTx struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTx) Commit() error {
	t.Committed = true
	return nil
}

func (t *MockTx) Rollback() error {
	t.RolledBack = true
	return nil
}

// MockItemRepository is an in-memory Repository used by the service tests.
// LastTx holds the most recent transaction handed out.
type MockItemRepository struct {
	Items  []Item
	Err    error
	LastTx Tx
	nextID int
}

func (m *MockItemRepository) BeginTransaction(ctx context.Context) (Tx, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.LastTx = &MockTx{}
	return m.LastTx, nil
}

func (m *MockItemRepository) FindActiveByCategory(ctx context.Context, categoryID int) ([]Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []Item
	for _, item := range m.Items {
		if !item.Deleted && item.CategoryID == categoryID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MockItemRepository) ExistsActiveByCategory(ctx context.Context, categoryID int) (bool, error) {
	active, err := m.FindActiveByCategory(ctx, categoryID)
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}

func (m *MockItemRepository) ExistsActiveByCategoryWithTx(ctx context.Context, tx Tx, categoryID int) (bool, error) {
	return m.ExistsActiveByCategory(ctx, categoryID)
}

func (m *MockItemRepository) ActiveItemNames(ctx context.Context, categoryID int) ([]string, error) {
	active, err := m.FindActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, item := range active {
		names = append(names, item.Name)
	}
	return names, nil
}

func (m *MockItemRepository) ActiveItemNamesWithTx(ctx context.Context, tx Tx, categoryID int) ([]string, error) {
	return m.ActiveItemNames(ctx, categoryID)
}

func (m *MockItemRepository) FindByCategoryAndOwner(ctx context.Context, categoryID int, userID string) ([]Item, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []Item
	for _, item := range m.Items {
		if !item.Deleted && item.CategoryID == categoryID && item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *MockItemRepository) FindByCategoryAndOwnerWithTx(ctx context.Context, tx Tx, categoryID int, userID string) ([]Item, error) {
	return m.FindByCategoryAndOwner(ctx, categoryID, userID)
}

func (m *MockItemRepository) CreateWithTx(ctx context.Context, tx Tx, item *Item) error {
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Items {
		if existing.ID > m.nextID {
			m.nextID = existing.ID
		}
	}
	m.nextID++
	item.ID = m.nextID
	m.Items = append(m.Items, *item)
	return nil
}

// MockCategoryLookup resolves categories from a fixed list, answering
// sql.ErrNoRows for unknown ids the way the real store does. LookupTx records
// the transaction the read ran on.
type MockCategoryLookup struct {
	Categories []categories.Category
	Err        error
	LookupTx   Tx
}

func (m *MockCategoryLookup) FindByIDWithTx(ctx context.Context, tx Tx, id int) (*categories.Category, error) {
	m.LookupTx = tx
	if m.Err != nil {
		return nil, m.Err
	}
	for _, category := range m.Categories {
		if category.ID == id {
			found := category
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}
