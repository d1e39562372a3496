// Package repository persists the domain models through GORM.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// translate maps GORM's not-found and duplicate-key errors onto domain
// sentinels. A nil sentinel leaves that case untouched.
func translate(err, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	default:
		return err
	}
}
