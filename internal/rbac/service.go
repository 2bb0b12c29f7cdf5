// Package rbac administers roles, permissions, menus and users.
//
// Every multi-step mutation runs inside one store transaction: either all
// rows change or none do. Integrity rules that users must be told about
// (a role still assigned, a permission still granted, a menu with children)
// are checked inside the same transaction and reported with counts.
package rbac

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/db/store"
)

// Service implements the administration operations.
type Service struct {
	store    *store.Store
	validate *validator.Validate
}

// NewService creates a Service on s.
func NewService(s *store.Store) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	return &Service{store: s, validate: v}
}

// check validates in and turns violations into one apperror.Validation error.
func (s *Service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}

	return apperror.Wrap(apperror.Validation, err, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "email":
		return fe.Field() + " must be a valid email address"
	default:
		return fe.Field() + " is invalid"
	}
}

// notFound maps store.ErrNotFound to an apperror.NotFound error about what.
func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFoundf("%s not found", what)
	}

	return err
}

// conflictOnDuplicate maps store.ErrDuplicate to an apperror.Conflict error.
func conflictOnDuplicate(err error, msg string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return apperror.Wrap(apperror.Conflict, err, msg)
	}

	return err
}

// unique returns ids without duplicates and zeros, keeping the first occurrence.
func unique[T comparable](ids []T) []T {
	var zero T

	seen := make(map[T]struct{}, len(ids))
	out := make([]T, 0, len(ids))

	for _, id := range ids {
		if id == zero {
			continue
		}

		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}

	return out
}
