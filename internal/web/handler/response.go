package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/auth"
	"github.com/diveerp/diveerp/internal/db/store"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	// Permission names the missing permission of a 403 reply.
	Permission string `json:"permission,omitempty"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// OK replies 200 with data.
func OK(c *fiber.Ctx, data any) error {
	return c.JSON(Response{Success: true, Data: data})
}

// Done replies 200 with a message and optional data.
func Done(c *fiber.Ctx, msg string, data any) error {
	return c.JSON(Response{Success: true, Message: msg, Data: data})
}

// Created replies 201 with a message and the new entity.
func Created(c *fiber.Ctx, msg string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Message: msg, Data: data})
}

// Paged replies 200 with one page of items.
func Paged(c *fiber.Ctx, items any, total int64, page store.Page) error {
	page = page.Normalize()

	pages := int((total + int64(page.Size) - 1) / int64(page.Size))

	return c.JSON(Response{
		Success: true,
		Data:    items,
		Pagination: &Pagination{
			Total:      total,
			Page:       page.Number,
			PageSize:   page.Size,
			TotalPages: pages,
		},
	})
}

// PageQuery reads page and pageSize from the query string.
func PageQuery(c *fiber.Ctx) store.Page {
	return store.Page{
		Number: c.QueryInt(QueryPage, 1),
		Size:   c.QueryInt(QueryPageSize, store.DefaultPageSize),
	}.Normalize()
}

// ID parses the :id route parameter.
func ID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Invalidf("Invalid id")
	}

	return uint(id), nil
}

// QueryID parses an optional numeric query parameter. Absent yields nil.
func QueryID(c *fiber.Ctx, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil //nolint:nilnil
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, apperror.Invalidf("Invalid %s", key)
	}

	v := uint(id)

	return &v, nil
}

// Bind decodes the JSON body into out.
func Bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}

		return apperror.Wrap(apperror.Validation, err, "Invalid request body")
	}

	return nil
}

// Identity returns the caller resolved by auth.Authenticated.
func Identity(c *fiber.Ctx) (*auth.Identity, error) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		return nil, apperror.Unauthenticated("No authentication token provided")
	}

	return id, nil
}

// ErrorHandler translates errors into the JSON envelope with the matching status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(Response{Message: fiberErr.Message})
	}

	kind := apperror.KindOf(err)

	switch {
	case errors.Is(err, context.Canceled):
		log.Debug().Err(err).Str("path", c.Path()).Msg("request canceled")
	case kind == apperror.Internal, kind == apperror.Unavailable:
		log.Error().Err(err).Str("path", c.Path()).Str("kind", kind.String()).Msg("request failed")
	default:
		log.Debug().Err(err).Str("path", c.Path()).Str("kind", kind.String()).Msg("request rejected")
	}

	return c.Status(kind.Status()).JSON(Response{
		Message:    apperror.MessageOf(err),
		Permission: apperror.PermissionOf(err),
	})
}
