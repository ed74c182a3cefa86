package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ItemLookup is the narrow view of the item store the category lifecycle
// needs: delete-time referential guards against orphaning items. Both reads
// take the delete transaction so the guard and the delete it protects share
// one snapshot.
type ItemLookup interface {
	ExistsActiveByCategoryWithTx(ctx context.Context, tx Tx, categoryID int) (bool, error)
	ActiveItemNamesWithTx(ctx context.Context, tx Tx, categoryID int) ([]string, error)
}

type Service interface {
	Create(ctx context.Context, name, userID string) (*Category, error)
	List(ctx context.Context, userID string) ([]Category, error)
	Update(ctx context.Context, categoryID int, name, userID string) (*Category, error)
	Delete(ctx context.Context, categoryID int, userID string) error
	EnsureDefaults(ctx context.Context) error
}

type service struct {
	repo           Repository
	items          ItemLookup
	maxCustomLimit int
}

func NewCategoryService(repo Repository, items ItemLookup, maxCustomLimit int) Service {
	return &service{
		repo:           repo,
		items:          items,
		maxCustomLimit: maxCustomLimit,
	}
}

// defaultCategoryNames are seeded for the system user at startup.
var defaultCategoryNames = []string{
	"キッチン",
	"バスルーム",
	"洗面所・脱衣所",
	"トイレ",
	"リビング・ダイニング",
	"寝室",
	"玄関",
	"収納・クローゼット",
	"掃除用品",
	"備蓄・防災",
}

func (s *service) Create(ctx context.Context, name, userID string) (category *Category, err error) {
	if err = validateName(name); err != nil {
		return nil, err
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
			category = nil
			err = repositoryError(commitErr)
		}
	}()

	visible, lookupErr := s.repo.FindVisibleWithTx(ctx, tx, userID)
	if lookupErr != nil {
		err = repositoryError(lookupErr)
		return nil, err
	}

	if err = checkNameAvailable(name, 0, visible); err != nil {
		return nil, err
	}
	if err = checkQuota(userID, visible, s.maxCustomLimit); err != nil {
		return nil, err
	}

	category = &Category{UserID: userID, Name: name, Deleted: false}
	if createErr := s.repo.CreateWithTx(ctx, tx, category); createErr != nil {
		err = repositoryError(createErr)
		return nil, err
	}
	return category, nil
}

// List returns the user's visible categories sorted in Japanese dictionary
// order. The ordering is deterministic for a given input and part of the
// service contract, not left to the presentation layer.
func (s *service) List(ctx context.Context, userID string) ([]Category, error) {
	visible, err := s.repo.FindVisible(ctx, userID)
	if err != nil {
		return nil, repositoryError(err)
	}

	collator := collate.New(language.Japanese)
	sort.SliceStable(visible, func(i, j int) bool {
		return collator.CompareString(visible[i].Name, visible[j].Name) < 0
	})
	return visible, nil
}

func (s *service) Update(ctx context.Context, categoryID int, name, userID string) (category *Category, err error) {
	if err = validateName(name); err != nil {
		return nil, err
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
			category = nil
			err = repositoryError(commitErr)
		}
	}()

	visible, lookupErr := s.repo.FindVisibleWithTx(ctx, tx, userID)
	if lookupErr != nil {
		err = repositoryError(lookupErr)
		return nil, err
	}

	if err = checkNameAvailable(name, categoryID, visible); err != nil {
		return nil, err
	}

	target := findByID(visible, categoryID)
	if target == nil {
		err = ErrNotFound
		return nil, err
	}
	if err = checkOwnership(target, userID); err != nil {
		return nil, err
	}

	target.Name = name
	affected, updateErr := s.repo.UpdateWithTx(ctx, tx, target)
	if updateErr != nil {
		err = repositoryError(updateErr)
		return nil, err
	}
	if affected == 0 {
		err = ErrNotFound
		return nil, err
	}
	return target, nil
}

func (s *service) Delete(ctx context.Context, categoryID int, userID string) (err error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return repositoryError(err)
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = repositoryError(commitErr)
		}
	}()

	target, lookupErr := s.repo.FindByIDWithTx(ctx, tx, categoryID)
	if lookupErr != nil {
		if errors.Is(lookupErr, sql.ErrNoRows) {
			err = ErrNotFound
			return err
		}
		err = repositoryError(lookupErr)
		return err
	}
	// An already deleted category is reported the same as an absent one.
	if target.Deleted {
		err = ErrNotFound
		return err
	}

	if err = checkOwnership(target, userID); err != nil {
		return err
	}

	exists, existsErr := s.items.ExistsActiveByCategoryWithTx(ctx, tx, categoryID)
	if existsErr != nil {
		err = repositoryError(existsErr)
		return err
	}
	if exists {
		names, namesErr := s.items.ActiveItemNamesWithTx(ctx, tx, categoryID)
		if namesErr != nil {
			err = repositoryError(namesErr)
			return err
		}
		if err = checkDeletable(names); err != nil {
			return err
		}
	}

	target.Deleted = true
	affected, updateErr := s.repo.UpdateWithTx(ctx, tx, target)
	if updateErr != nil {
		err = repositoryError(updateErr)
		return err
	}
	if affected == 0 {
		err = ErrNotFound
		return err
	}
	return nil
}

// EnsureDefaults seeds the system default categories. It runs on every
// startup and never duplicates a name already present for the system user.
func (s *service) EnsureDefaults(ctx context.Context) error {
	if err := s.seedDefaults(ctx); err != nil {
		return err
	}
	if count, err := s.repo.CountOwned(ctx, SystemUserID); err == nil {
		log.Printf("Default categories ready (%d present)", count)
	}
	return nil
}

func (s *service) seedDefaults(ctx context.Context) (err error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return repositoryError(err)
	}
	defer func() {
		if p := recover(); p != nil {
			safeRollback(tx)
			panic(p)
		} else if err != nil {
			safeRollback(tx)
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = repositoryError(commitErr)
		}
	}()

	for _, name := range defaultCategoryNames {
		if nameErr := validateName(name); nameErr != nil {
			err = nameErr
			return err
		}

		_, findErr := s.repo.FindByNameAndOwnerWithTx(ctx, tx, name, SystemUserID)
		if findErr == nil {
			continue
		}
		if !errors.Is(findErr, sql.ErrNoRows) {
			err = repositoryError(findErr)
			return err
		}

		category := &Category{UserID: SystemUserID, Name: name, Deleted: false}
		if createErr := s.repo.CreateWithTx(ctx, tx, category); createErr != nil {
			err = repositoryError(createErr)
			return err
		}
	}
	return nil
}

func findByID(visible []Category, categoryID int) *Category {
	for i := range visible {
		if visible[i].ID == categoryID {
			return &visible[i]
		}
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
