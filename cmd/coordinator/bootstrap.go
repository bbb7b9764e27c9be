package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"

	"messenger-lab/auth"
	"messenger-lab/domain"
	"messenger-lab/errors"
	"messenger-lab/internal"
	"messenger-lab/repositories"
)

// ensureOwnerAccount creates the owner account on first run, with
// credentials fixed by configuration. Subsequent runs leave the
// existing record untouched, including any profile edits made since.
func ensureOwnerAccount(logger *slog.Logger, accounts repositories.IAccountRepository,
	config internal.Config) error {
	_, err := accounts.FindByUsername(config.OwnerUsername)
	if err == nil {
		logger.Info("Owner account already exists")
		return nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return err
	}

	logger.Info("Owner account not found, creating one", "username", config.OwnerUsername)
	hash, err := auth.HashPassword(config.OwnerPassword)
	if err != nil {
		return fmt.Errorf("owner password hashing failed: %w", err)
	}

	_, err = accounts.InsertUnique(domain.Account{
		Username:     config.OwnerUsername,
		PasswordHash: hash,
		DisplayName:  "Application Owner",
		Bio:          "The primary administrator of this application.",
		Role:         domain.RoleOwner,
	})
	if err != nil {
		return err
	}
	logger.Info("Owner account created successfully")
	return nil
}
