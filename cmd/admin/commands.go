package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bulkwala/internal/domain/users"
	"bulkwala/internal/store"
)

type adminAccount struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

type bootstrapResult struct {
	User     *users.User
	Replaced int64
}

// txRunner runs fn inside one transaction.
type txRunner func(ctx context.Context, fn func(users.Store) error) error

// bootstrapAdmin replaces any account using admin.Email with a verified admin.
// Delete and insert share one transaction.
func bootstrapAdmin(ctx context.Context, withTx txRunner, admin adminAccount) (bootstrapResult, error) {
	if admin.Email == "" || admin.Password == "" {
		return bootstrapResult{}, errMissingFlag
	}

	user := &users.User{
		Name:       admin.Name,
		Email:      admin.Email,
		Phone:      admin.Phone,
		Role:       users.RoleAdmin,
		IsVerified: true,
	}
	if err := user.Password.Set(admin.Password); err != nil {
		return bootstrapResult{}, fmt.Errorf("hash password: %w", err)
	}

	var replaced int64
	err := withTx(ctx, func(s users.Store) error {
		n, err := s.DeleteByEmail(ctx, admin.Email)
		if err != nil {
			return err
		}
		replaced = n
		return s.Create(ctx, user, "", time.Time{})
	})
	if err != nil {
		return bootstrapResult{}, err
	}
	return bootstrapResult{User: user, Replaced: replaced}, nil
}

type passwordReport struct {
	Email           string
	Role            users.Role
	Verified        bool
	PasswordCorrect bool
}

func (r passwordReport) String() string {
	return fmt.Sprintf("user: %s\nrole: %s\nverified: %t\npassword correct: %t",
		r.Email, r.Role, r.Verified, r.PasswordCorrect)
}

func checkPassword(ctx context.Context, s users.Store, email, password string) (passwordReport, error) {
	if email == "" || password == "" {
		return passwordReport{}, errMissingFlag
	}

	user, err := s.GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return passwordReport{}, fmt.Errorf("admin user %s not found", email)
	}
	if err != nil {
		return passwordReport{}, err
	}

	return passwordReport{
		Email:           user.Email,
		Role:            user.Role,
		Verified:        user.IsVerified,
		PasswordCorrect: user.Password.Compare(password) == nil,
	}, nil
}
