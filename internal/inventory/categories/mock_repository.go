package categories

import (
	"context"
	"database/sql"
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

// MockCategoryRepository is an in-memory Repository used by the service tests.
// When Err is set every method fails with it. LastTx holds the most recent
// transaction handed out, and NameLookupTx the one the seeding read ran on.
type MockCategoryRepository struct {
	Categories   []Category
	Err          error
	LastTx       Tx
	NameLookupTx Tx
	nextID       int
}

func (m *MockCategoryRepository) BeginTransaction(ctx context.Context) (Tx, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.LastTx = &MockTx{}
	return m.LastTx, nil
}

func (m *MockCategoryRepository) visible(userID string) []Category {
	var out []Category
	for _, category := range m.Categories {
		if category.Deleted {
			continue
		}
		if category.UserID == userID || category.UserID == SystemUserID {
			out = append(out, category)
		}
	}
	return out
}

func (m *MockCategoryRepository) FindVisible(ctx context.Context, userID string) ([]Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.visible(userID), nil
}

func (m *MockCategoryRepository) FindVisibleWithTx(ctx context.Context, tx Tx, userID string) ([]Category, error) {
	return m.FindVisible(ctx, userID)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id int) (*Category, error) {
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

func (m *MockCategoryRepository) FindByIDWithTx(ctx context.Context, tx Tx, id int) (*Category, error) {
	return m.FindByID(ctx, id)
}

func (m *MockCategoryRepository) FindByNameAndOwner(ctx context.Context, name, userID string) (*Category, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, category := range m.Categories {
		if !category.Deleted && category.Name == name && category.UserID == userID {
			found := category
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockCategoryRepository) FindByNameAndOwnerWithTx(ctx context.Context, tx Tx, name, userID string) (*Category, error) {
	m.NameLookupTx = tx
	return m.FindByNameAndOwner(ctx, name, userID)
}

func (m *MockCategoryRepository) CountOwned(ctx context.Context, userID string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, category := range m.Categories {
		if !category.Deleted && category.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockCategoryRepository) CreateWithTx(ctx context.Context, tx Tx, category *Category) error {
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Categories {
		if existing.ID > m.nextID {
			m.nextID = existing.ID
		}
	}
	m.nextID++
	category.ID = m.nextID
	m.Categories = append(m.Categories, *category)
	return nil
}

func (m *MockCategoryRepository) UpdateWithTx(ctx context.Context, tx Tx, category *Category) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	for i := range m.Categories {
		if m.Categories[i].ID == category.ID {
			m.Categories[i] = *category
			return 1, nil
		}
	}
	return 0, nil
}

// MockItemLookup answers the delete-time referential guard from a fixed map
// of category id to active item names. GuardTx records the transaction the
// guard reads ran on.
type MockItemLookup struct {
	NamesByCategory map[int][]string
	Err             error
	GuardTx         Tx
}

func (m *MockItemLookup) ExistsActiveByCategoryWithTx(ctx context.Context, tx Tx, categoryID int) (bool, error) {
	m.GuardTx = tx
	if m.Err != nil {
		return false, m.Err
	}
	return len(m.NamesByCategory[categoryID]) > 0, nil
}

func (m *MockItemLookup) ActiveItemNamesWithTx(ctx context.Context, tx Tx, categoryID int) ([]string, error) {
	m.GuardTx = tx
	if m.Err != nil {
		return nil, m.Err
	}
	return m.NamesByCategory[categoryID], nil
}
