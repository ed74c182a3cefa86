package categories

import (
	"context"
	"database/sql"

	database "github.com/renkoyama/InventoryManager/internal/db"
)

// SystemUserID owns the default categories that are visible to every user but
// cannot be changed or deleted by anyone.
const SystemUserID = "system"

type Category struct {
	ID      int
	UserID  string
	Name    string
	Deleted bool
}

// Tx aliases the shared transaction handle. Keeping it an interface lets
// service tests run against an in-memory repository, and the shared
// definition lets the item store run its guard reads on a category
// transaction.
type Tx = database.Tx

type Repository interface {
	BeginTransaction(ctx context.Context) (Tx, error)
	FindVisible(ctx context.Context, userID string) ([]Category, error)
	FindVisibleWithTx(ctx context.Context, tx Tx, userID string) ([]Category, error)
	FindByID(ctx context.Context, id int) (*Category, error)
	FindByIDWithTx(ctx context.Context, tx Tx, id int) (*Category, error)
	FindByNameAndOwner(ctx context.Context, name, userID string) (*Category, error)
	FindByNameAndOwnerWithTx(ctx context.Context, tx Tx, name, userID string) (*Category, error)
	CountOwned(ctx context.Context, userID string) (int, error)
	CreateWithTx(ctx context.Context, tx Tx, category *Category) error
	UpdateWithTx(ctx context.Context, tx Tx, category *Category) (int64, error)
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) Repository {
	return &categoryRepository{db: db}
}

// Lifecycle writes run under serializable isolation so a duplicate or quota
// check and the write it guards cannot interleave with a concurrent create.
func (r *categoryRepository) BeginTransaction(ctx context.Context) (Tx, error) {
	return r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func sqlTx(tx Tx) *sql.Tx {
	return tx.(*sql.Tx)
}

const findVisibleQuery = `
        SELECT id, user_id, name, deleted
        FROM categories
        WHERE user_id IN ($1, $2)
        AND deleted = false`

func (r *categoryRepository) FindVisible(ctx context.Context, userID string) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, findVisibleQuery, userID, SystemUserID)
	if err != nil {
		return nil, err
	}
	return scanCategories(rows)
}

func (r *categoryRepository) FindVisibleWithTx(ctx context.Context, tx Tx, userID string) ([]Category, error) {
	rows, err := sqlTx(tx).QueryContext(ctx, findVisibleQuery, userID, SystemUserID)
	if err != nil {
		return nil, err
	}
	return scanCategories(rows)
}

func scanCategories(rows *sql.Rows) ([]Category, error) {
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.Deleted); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

const findByIDQuery = `
        SELECT id, user_id, name, deleted
        FROM categories
        WHERE id = $1`

func (r *categoryRepository) FindByID(ctx context.Context, id int) (*Category, error) {
	var category Category
	err := r.db.QueryRowContext(ctx, findByIDQuery, id).
		Scan(&category.ID, &category.UserID, &category.Name, &category.Deleted)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByIDWithTx(ctx context.Context, tx Tx, id int) (*Category, error) {
	var category Category
	err := sqlTx(tx).QueryRowContext(ctx, findByIDQuery, id).
		Scan(&category.ID, &category.UserID, &category.Name, &category.Deleted)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

const findByNameAndOwnerQuery = `
        SELECT id, user_id, name, deleted
        FROM categories
        WHERE name = $1
        AND user_id = $2
        AND deleted = false`

func (r *categoryRepository) FindByNameAndOwner(ctx context.Context, name, userID string) (*Category, error) {
	var category Category
	err := r.db.QueryRowContext(ctx, findByNameAndOwnerQuery, name, userID).
		Scan(&category.ID, &category.UserID, &category.Name, &category.Deleted)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByNameAndOwnerWithTx is the seeding path's idempotence read. It runs on
// the seeding transaction so the read and the insert share one snapshot.
func (r *categoryRepository) FindByNameAndOwnerWithTx(ctx context.Context, tx Tx, name, userID string) (*Category, error) {
	var category Category
	err := sqlTx(tx).QueryRowContext(ctx, findByNameAndOwnerQuery, name, userID).
		Scan(&category.ID, &category.UserID, &category.Name, &category.Deleted)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) CountOwned(ctx context.Context, userID string) (int, error) {
	query := `
        SELECT COUNT(1)
        FROM categories
        WHERE user_id = $1
        AND deleted = false`

	var count int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *categoryRepository) CreateWithTx(ctx context.Context, tx Tx, category *Category) error {
	query := `
        INSERT INTO categories (user_id, name, deleted)
        VALUES ($1, $2, $3)
        RETURNING id`

	return sqlTx(tx).QueryRowContext(ctx, query, category.UserID, category.Name, category.Deleted).
		Scan(&category.ID)
}

func (r *categoryRepository) UpdateWithTx(ctx context.Context, tx Tx, category *Category) (int64, error) {
	query := `
        UPDATE categories
        SET name = $1, deleted = $2
        WHERE id = $3`

	result, err := sqlTx(tx).ExecContext(ctx, query, category.Name, category.Deleted, category.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
