package categories

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 50

var (
	ErrNameRequired    = errors.New("category name is required")
	ErrNameTooLong     = errors.New("category name must be 50 characters or fewer")
	ErrNameDuplicate   = errors.New("category with this name already exists")
	ErrLimitExceeded   = errors.New("custom category limit reached")
	ErrNotFound        = errors.New("category not found")
	ErrForbidden       = errors.New("forbidden: user does not own this category")
	ErrDefaultCategory = errors.New("forbidden: default categories cannot be modified")
	ErrRepository      = errors.New("category data access failed")
)

// NotEmptyError is returned when a delete is blocked by items that still
// reference the category. It carries the blocking item names so the caller
// can tell the user what to remove first.
type NotEmptyError struct {
	ItemNames []string
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("category still contains items: %s", strings.Join(e.ItemNames, ", "))
}

// validateName guards blank and over-length names. The HTTP boundary rejects
// these before the service runs, but the seeding path has no boundary in
// front of it, so the check is repeated here. Half-width and full-width
// spaces both count as whitespace.
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

// checkNameAvailable reports ErrNameDuplicate if any visible category other
// than excludeID already carries the name. Comparison is a case-sensitive
// exact match. excludeID is 0 on creation, where nothing is excluded.
func checkNameAvailable(name string, excludeID int, visible []Category) error {
	for _, category := range visible {
		if excludeID != 0 && category.ID == excludeID {
			continue
		}
		if !category.Deleted && category.Name == name {
			return ErrNameDuplicate
		}
	}
	return nil
}

// checkQuota counts the categories the user owns within the visible set.
// System defaults never count against anyone's quota.
func checkQuota(userID string, visible []Category, limit int) error {
	owned := 0
	for _, category := range visible {
		if category.UserID == userID {
			owned++
		}
	}
	if owned >= limit {
		return ErrLimitExceeded
	}
	return nil
}

// checkOwnership refuses mutation of categories the user does not own. The
// default-category check runs first: a system category is a more specific
// reason for refusal than a plain owner mismatch.
func checkOwnership(category *Category, userID string) error {
	if category.UserID == SystemUserID {
		return ErrDefaultCategory
	}
	if category.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// checkDeletable blocks deletion while non-deleted items still reference the
// category.
func checkDeletable(itemNames []string) error {
	if len(itemNames) > 0 {
		return &NotEmptyError{ItemNames: itemNames}
	}
	return nil
}
