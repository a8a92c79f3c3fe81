package loans

import (
	"context"

	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type inventoryLedger struct{}

// NewInventory returns the copies-available ledger backed by conditional
// single-row updates.
func NewInventory() Inventory {
	return inventoryLedger{}
}

// Reserve takes one copy off the shelf. The guard in the WHERE clause is the
// whole concurrency story: two racing checkouts of the last copy both run the
// statement, but only one matches a row, so the counter never goes negative.
func (inventoryLedger) Reserve(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory reserve")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET copies_available = copies_available - 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND copies_available >= 1
	`, bookID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve copy")
	}
	if res.RowsAffected == 0 {
		return resolveReserveFailure(ctx, tx, bookID)
	}
	return nil
}

// Release puts one copy back. A release that would push the counter past
// total_copies means the ledger and the loan rows disagree, which is a data
// integrity error, not something to absorb silently.
func (inventoryLedger) Release(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET copies_available = copies_available + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND copies_available < total_copies
	`, bookID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release copy")
	}
	if res.RowsAffected == 0 {
		return resolveReleaseFailure(ctx, tx, bookID)
	}
	return nil
}

// resolveReserveFailure distinguishes a missing book from an exhausted one.
func resolveReserveFailure(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	var count int64
	if err := tx.WithContext(ctx).Table("books").Where("id = ?", bookID).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inspect book")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "no copies available")
}

// resolveReleaseFailure distinguishes a missing book from a shelf already at
// its owned capacity.
func resolveReleaseFailure(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	var count int64
	if err := tx.WithContext(ctx).Table("books").Where("id = ?", bookID).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inspect book")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "shelf already at full capacity")
}
