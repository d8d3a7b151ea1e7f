package service

import (
	"errors"

	"rentmarket-backend/internal/domain"
)

var ErrInvalidCredentials = &domain.Error{Kind: domain.KindValidation, Message: "invalid email or password"}

// storageError passes domain errors through and hides everything else
// behind a dependency failure.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.NewDependencyError("storage is unavailable, try again later", err)
}

// lookupError names the missing entity when err is a not-found.
func lookupError(err error, what string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFoundError(what)
	}
	return storageError(err)
}
