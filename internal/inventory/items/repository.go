package items

import (
	"context"
	"database/sql"
	"time"

	database "github.com/renkoyama/InventoryManager/internal/db"
)

type Item struct {
	ID         int
	CategoryID int
	UserID     string
	Name       string
	Quantity   int
	Amount     *int
	Place      *string
	Deleted    bool
	Created    time.Time
}

// Tx aliases the shared transaction handle, so tests can substitute an
// in-memory repository and the category lifecycle can run its delete guard
// reads on its own transaction.
type Tx = database.Tx

type Repository interface {
	BeginTransaction(ctx context.Context) (Tx, error)
	FindActiveByCategory(ctx context.Context, categoryID int) ([]Item, error)
	ExistsActiveByCategory(ctx context.Context, categoryID int) (bool, error)
	ExistsActiveByCategoryWithTx(ctx context.Context, tx Tx, categoryID int) (bool, error)
	ActiveItemNames(ctx context.Context, categoryID int) ([]string, error)
	ActiveItemNamesWithTx(ctx context.Context, tx Tx, categoryID int) ([]string, error)
	FindByCategoryAndOwner(ctx context.Context, categoryID int, userID string) ([]Item, error)
	FindByCategoryAndOwnerWithTx(ctx context.Context, tx Tx, categoryID int, userID string) ([]Item, error)
	CreateWithTx(ctx context.Context, tx Tx, item *Item) error
}

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) Repository {
	return &itemRepository{db: db}
}

func (r *itemRepository) BeginTransaction(ctx context.Context) (Tx, error) {
	return r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func sqlTx(tx Tx) *sql.Tx {
	return tx.(*sql.Tx)
}

func (r *itemRepository) FindActiveByCategory(ctx context.Context, categoryID int) ([]Item, error) {
	query := `
        SELECT id, category_id, user_id, name, quantity, amount, place, deleted, created
        FROM items
        WHERE category_id = $1
        AND deleted = false`

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

const existsActiveByCategoryQuery = `
        SELECT EXISTS(
            SELECT 1 FROM items
            WHERE category_id = $1
            AND deleted = false
        )`

func (r *itemRepository) ExistsActiveByCategory(ctx context.Context, categoryID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, existsActiveByCategoryQuery, categoryID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ExistsActiveByCategoryWithTx runs the delete guard's existence check on the
// caller's transaction so the check and the delete share one snapshot.
func (r *itemRepository) ExistsActiveByCategoryWithTx(ctx context.Context, tx Tx, categoryID int) (bool, error) {
	var exists bool
	err := sqlTx(tx).QueryRowContext(ctx, existsActiveByCategoryQuery, categoryID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

const activeItemNamesQuery = `
        SELECT name
        FROM items
        WHERE category_id = $1
        AND deleted = false`

// ActiveItemNames feeds the category delete guard, which reports blocking
// items back to the user by name.
func (r *itemRepository) ActiveItemNames(ctx context.Context, categoryID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, activeItemNamesQuery, categoryID)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

func (r *itemRepository) ActiveItemNamesWithTx(ctx context.Context, tx Tx, categoryID int) ([]string, error) {
	rows, err := sqlTx(tx).QueryContext(ctx, activeItemNamesQuery, categoryID)
	if err != nil {
		return nil, err
	}
	return scanNames(rows)
}

func scanNames(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

const findByCategoryAndOwnerQuery = `
        SELECT id, category_id, user_id, name, quantity, amount, place, deleted, created
        FROM items
        WHERE category_id = $1
        AND user_id = $2
        AND deleted = false`

func (r *itemRepository) FindByCategoryAndOwner(ctx context.Context, categoryID int, userID string) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, findByCategoryAndOwnerQuery, categoryID, userID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func (r *itemRepository) FindByCategoryAndOwnerWithTx(ctx context.Context, tx Tx, categoryID int, userID string) ([]Item, error) {
	rows, err := sqlTx(tx).QueryContext(ctx, findByCategoryAndOwnerQuery, categoryID, userID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

func (r *itemRepository) CreateWithTx(ctx context.Context, tx Tx, item *Item) error {
	query := `
        INSERT INTO items (category_id, user_id, name, quantity, amount, place, deleted, created)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id`

	return sqlTx(tx).QueryRowContext(ctx, query,
		item.CategoryID, item.UserID, item.Name, item.Quantity, item.Amount, item.Place, item.Deleted, item.Created).
		Scan(&item.ID)
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.UserID, &item.Name,
			&item.Quantity, &item.Amount, &item.Place, &item.Deleted, &item.Created); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
