package repository

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork runs fn against repositories bound to a single database
// transaction. The administrative mutation cascade depends on this: a
// concurrent validator must never observe the new vendor state while an old
// session is still reported live.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(vendors VendorRepository, sessions SessionRepository) error) error
}

type gormUnitOfWork struct {
	db            *gorm.DB
	protectedCode string
}

func NewUnitOfWork(db *gorm.DB, protectedCode string) UnitOfWork {
	return &gormUnitOfWork{db: db, protectedCode: protectedCode}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(vendors VendorRepository, sessions SessionRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewVendorRepository(tx, u.protectedCode), NewSessionRepository(tx))
	})
}
