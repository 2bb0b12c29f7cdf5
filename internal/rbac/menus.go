package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/diveerp/diveerp/internal/apperror"
	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
	"github.com/diveerp/diveerp/internal/web/navigation"
)

// ParentRef is a parent_id in an update body. Set is false when the field
// was absent; null or 0 moves the menu to the root.
type ParentRef struct {
	Set bool
	ID  *uint
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ParentRef) UnmarshalJSON(b []byte) error {
	p.Set = true
	p.ID = nil

	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var id uint
	if err := json.Unmarshal(b, &id); err != nil {
		return apperror.Wrap(apperror.Validation, err, "parent_id must be a menu id or null")
	}

	if id != 0 {
		p.ID = &id
	}

	return nil
}

// CreateMenuInput creates a menu node.
type CreateMenuInput struct {
	ParentID   *uint           `json:"parent_id"`
	Name       string          `json:"name"       validate:"required,max=100"`
	Path       string          `json:"path"       validate:"max=200"`
	Component  string          `json:"component"  validate:"max=200"`
	Icon       string          `json:"icon"       validate:"max=50"`
	Order      int             `json:"order"`
	Visible    *bool           `json:"visible"`
	Permission *string         `json:"permission" validate:"omitempty,max=100"`
	Meta       json.RawMessage `json:"meta"`
}

// UpdateMenuInput changes the given fields of a menu node.
type UpdateMenuInput struct {
	ParentID   ParentRef       `json:"parent_id"`
	Name       *string         `json:"name"       validate:"omitempty,min=1,max=100"`
	Path       *string         `json:"path"       validate:"omitempty,max=200"`
	Component  *string         `json:"component"  validate:"omitempty,max=200"`
	Icon       *string         `json:"icon"       validate:"omitempty,max=50"`
	Order      *int            `json:"order"`
	Visible    *bool           `json:"visible"`
	Permission *string         `json:"permission" validate:"omitempty,max=100"`
	Meta       json.RawMessage `json:"meta"`
}

// MenuDetail is a menu with its direct relatives and trail from the root.
type MenuDetail struct {
	models.Menu
	Parent      *models.Menu                `json:"parent"`
	Children    []models.Menu               `json:"children"`
	Breadcrumbs []navigation.BreadcrumbItem `json:"breadcrumbs"`
}

// GetMenu returns the menu with its parent, children and breadcrumbs.
func (s *Service) GetMenu(ctx context.Context, id uint) (*MenuDetail, error) {
	m, err := s.store.FindMenuByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Menu")
	}

	detail := &MenuDetail{Menu: *m}

	if m.ParentID != nil {
		parent, err := s.store.FindMenuByID(ctx, *m.ParentID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err //nolint:wrapcheck
		}

		detail.Parent = parent
	}

	if detail.Children, err = s.store.MenuChildren(ctx, id); err != nil {
		return nil, err //nolint:wrapcheck
	}

	all, err := s.store.ListMenus(ctx, false)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	detail.Breadcrumbs = navigation.NewForest(all, nil).Breadcrumbs(id)

	return detail, nil
}

// CreateMenu inserts a menu below an existing parent or at the root.
func (s *Service) CreateMenu(ctx context.Context, in CreateMenuInput) (*models.Menu, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	m := &models.Menu{
		Name:       in.Name,
		Path:       in.Path,
		Component:  in.Component,
		Icon:       in.Icon,
		Order:      in.Order,
		Visible:    in.Visible == nil || *in.Visible,
		Permission: normalizePermission(in.Permission),
		Meta:       meta(in.Meta),
	}

	if in.ParentID != nil && *in.ParentID != 0 {
		m.ParentID = in.ParentID
	}

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if m.ParentID != nil {
			if _, err := tx.FindMenuByID(ctx, *m.ParentID); err != nil {
				return notFound(err, "Parent menu")
			}
		}

		return tx.CreateMenu(ctx, m)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return m, nil
}

// UpdateMenu applies in to menu id. Re-parenting is rejected when the new
// parent is the menu itself or one of its descendants.
func (s *Service) UpdateMenu(ctx context.Context, id uint, in UpdateMenuInput) (*models.Menu, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var m *models.Menu

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		var err error

		m, err = tx.FindMenuByID(ctx, id)
		if err != nil {
			return notFound(err, "Menu")
		}

		if in.ParentID.Set {
			if err := checkParent(ctx, tx, id, in.ParentID.ID); err != nil {
				return err
			}

			m.ParentID = in.ParentID.ID
		}

		if in.Name != nil {
			m.Name = *in.Name
		}

		if in.Path != nil {
			m.Path = *in.Path
		}

		if in.Component != nil {
			m.Component = *in.Component
		}

		if in.Icon != nil {
			m.Icon = *in.Icon
		}

		if in.Order != nil {
			m.Order = *in.Order
		}

		if in.Visible != nil {
			m.Visible = *in.Visible
		}

		if in.Permission != nil {
			m.Permission = normalizePermission(in.Permission)
		}

		if in.Meta != nil {
			m.Meta = meta(in.Meta)
		}

		return tx.SaveMenu(ctx, m)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return m, nil
}

// DeleteMenu removes a menu without children.
func (s *Service) DeleteMenu(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(tx *store.Store) error { //nolint:wrapcheck
		if _, err := tx.FindMenuByID(ctx, id); err != nil {
			return notFound(err, "Menu")
		}

		children, err := tx.CountMenuChildren(ctx, id)
		if err != nil {
			return err
		}

		if children > 0 {
			return apperror.Conflictf("Cannot delete menu: %d sub-menu(s) exist", children)
		}

		return tx.DeleteMenu(ctx, id)
	})
}

func checkParent(ctx context.Context, tx *store.Store, id uint, parent *uint) error {
	if parent == nil {
		return nil
	}

	if *parent == id {
		return apperror.Conflictf("Cannot set itself as parent")
	}

	parents, err := tx.MenuParents(ctx)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if _, ok := parents[*parent]; !ok {
		return apperror.NotFoundf("Parent menu not found")
	}

	seen := map[uint]bool{}

	for cur := parents[*parent]; cur != nil && !seen[*cur]; cur = parents[*cur] {
		if *cur == id {
			return apperror.Conflictf("Cannot move a menu below its own descendant")
		}

		seen[*cur] = true
	}

	return nil
}

func normalizePermission(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}

	return p
}

func meta(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	return string(raw)
}
