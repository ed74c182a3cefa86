package categories

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, validateName("キッチン"))
	assert.NoError(t, validateName(strings.Repeat("あ", 50)))

	assert.ErrorIs(t, validateName(""), ErrNameRequired)
	assert.ErrorIs(t, validateName("   "), ErrNameRequired)
	// full-width spaces count as whitespace too
	assert.ErrorIs(t, validateName("　　"), ErrNameRequired)
	assert.ErrorIs(t, validateName(strings.Repeat("あ", 51)), ErrNameTooLong)
}

func TestCheckNameAvailable(t *testing.T) {
	visible := []Category{
		{ID: 1, UserID: SystemUserID, Name: "キッチン"},
		{ID: 2, UserID: "user1", Name: "ガレージ"},
	}

	assert.NoError(t, checkNameAvailable("物置", 0, visible))
	assert.ErrorIs(t, checkNameAvailable("キッチン", 0, visible), ErrNameDuplicate)
	assert.ErrorIs(t, checkNameAvailable("ガレージ", 0, visible), ErrNameDuplicate)

	// comparison is case-sensitive exact match
	assert.NoError(t, checkNameAvailable("きっちん", 0, visible))

	// renaming a category to its current name excludes itself
	assert.NoError(t, checkNameAvailable("ガレージ", 2, visible))
	assert.ErrorIs(t, checkNameAvailable("ガレージ", 1, visible), ErrNameDuplicate)
}

func TestCheckQuota(t *testing.T) {
	visible := []Category{
		{ID: 1, UserID: SystemUserID, Name: "キッチン"},
	}
	for i := 0; i < 49; i++ {
		visible = append(visible, Category{ID: 10 + i, UserID: "user1", Name: "c"})
	}

	// 49 owned, limit 50: one slot left; system categories never count
	assert.NoError(t, checkQuota("user1", visible, 50))

	visible = append(visible, Category{ID: 99, UserID: "user1", Name: "c50"})
	assert.ErrorIs(t, checkQuota("user1", visible, 50), ErrLimitExceeded)

	assert.NoError(t, checkQuota("user2", visible, 50))
}

func TestCheckOwnership(t *testing.T) {
	assert.NoError(t, checkOwnership(&Category{UserID: "user1"}, "user1"))
	assert.ErrorIs(t, checkOwnership(&Category{UserID: "user2"}, "user1"), ErrForbidden)

	// the default-category refusal wins over the owner mismatch
	assert.ErrorIs(t, checkOwnership(&Category{UserID: SystemUserID}, "user1"), ErrDefaultCategory)
}

func TestCheckDeletable(t *testing.T) {
	assert.NoError(t, checkDeletable(nil))

	err := checkDeletable([]string{"醤油", "味噌"})
	var notEmpty *NotEmptyError
	assert.True(t, errors.As(err, &notEmpty))
	assert.Equal(t, []string{"醤油", "味噌"}, notEmpty.ItemNames)
	assert.Contains(t, notEmpty.Error(), "醤油")
}
