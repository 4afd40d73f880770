package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/thinkforge-api/internal/domain"
	"github.com/phrazzld/thinkforge-api/internal/store"
)

// storeFailure wraps a persistence error as a domain.ErrStore. Validation
// errors from the store keep their kind.
func storeFailure(op string, err error) error {
	if errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}

// pathFailure is storeFailure for path mutations, mapping a missing path to
// domain.ErrPathNotFound.
func pathFailure(op string, err error) error {
	if errors.Is(err, store.ErrPathNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrPathNotFound, err)
	}
	return storeFailure(op, err)
}
