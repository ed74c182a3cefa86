package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/renkoyama/InventoryManager/internal/inventory/categories"
)

const maxNameLength = 50

var (
	ErrNameRequired = errors.New("item name is required")
	ErrNameTooLong  = errors.New("item name must be 50 characters or fewer")
	// ErrCategoryNotFound also covers categories the caller cannot see, so a
	// refused create does not leak that another user's category exists.
	ErrCategoryNotFound = errors.New("category not found")
	ErrNameDuplicate    = errors.New("item with this name already exists in the category")
	ErrInvalidQuantity  = errors.New("quantity must be zero or greater")
	ErrRepository       = errors.New("item data access failed")
)

// CategoryLookup resolves the category an item is being created in. The read
// takes the creation transaction so a concurrent category delete cannot slip
// between the liveness check and the insert.
type CategoryLookup interface {
	FindByIDWithTx(ctx context.Context, tx Tx, id int) (*categories.Category, error)
}

// CreateParams carries the item creation input. Quantity defaults to 0 when
// nil; Amount and Place are free-form optional attributes.
type CreateParams struct {
	CategoryID int
	Name       string
	Quantity   *int
	Amount     *int
	Place      *string
}

type Service interface {
	Create(ctx context.Context, params CreateParams, userID string) (*Item, error)
}

type service struct {
	repo       Repository
	categories CategoryLookup
}

func NewItemService(repo Repository, categories CategoryLookup) Service {
	return &service{repo: repo, categories: categories}
}

func (s *service) Create(ctx context.Context, params CreateParams, userID string) (item *Item, err error) {
	if err = validateName(params.Name); err != nil {
		return nil, err
	}

	quantity := 0
	if params.Quantity != nil {
		quantity = *params.Quantity
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return nil, repositoryError(err)
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else if commitErr := tx.Commit(); commitErr != nil {
			item = nil
			err = repositoryError(commitErr)
		}
	}()

	category, lookupErr := s.categories.FindByIDWithTx(ctx, tx, params.CategoryID)
	if lookupErr != nil {
		if errors.Is(lookupErr, sql.ErrNoRows) {
			err = ErrCategoryNotFound
			return nil, err
		}
		err = repositoryError(lookupErr)
		return nil, err
	}
	if category.Deleted {
		err = ErrCategoryNotFound
		return nil, err
	}
	if category.UserID != userID && category.UserID != categories.SystemUserID {
		err = ErrCategoryNotFound
		return nil, err
	}

	existing, listErr := s.repo.FindByCategoryAndOwnerWithTx(ctx, tx, params.CategoryID, userID)
	if listErr != nil {
		err = repositoryError(listErr)
		return nil, err
	}
	for _, other := range existing {
		if other.Name == params.Name {
			err = ErrNameDuplicate
			return nil, err
		}
	}

	item = &Item{
		CategoryID: params.CategoryID,
		UserID:     userID,
		Name:       params.Name,
		Quantity:   quantity,
		Amount:     params.Amount,
		Place:      params.Place,
		Deleted:    false,
		Created:    time.Now(),
	}
	if createErr := s.repo.CreateWithTx(ctx, tx, item); createErr != nil {
		err = repositoryError(createErr)
		return nil, err
	}
	return item, nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(trimmed) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func repositoryError(err error) error {
	return fmt.Errorf("%w: %w", ErrRepository, err)
}

func safeRollback(tx Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Printf("Error during transaction rollback: %v", err)
	}
}
