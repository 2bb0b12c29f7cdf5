package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/diveerp/diveerp/internal/db/models"
	"github.com/diveerp/diveerp/internal/db/store"
)

// SeedReport counts the rows a seed run created.
type SeedReport struct {
	Permissions int
	Roles       int
	Users       int
	Menus       int
	Skipped     bool
}

// Seed installs the permission catalogue, the default roles with their
// grants, the default accounts and the menu tree. Existing rows are kept,
// role grants are reset to the catalogue. Without force a database that
// already has users is left untouched.
func Seed(ctx context.Context, st *store.Store, force bool) (SeedReport, error) {
	var report SeedReport

	if !force {
		n, err := st.CountUsers(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to count users: %w", err)
		}

		if n > 0 {
			report.Skipped = true

			return report, nil
		}
	}

	err := st.Transaction(ctx, func(tx *store.Store) error {
		perms, err := seedPermissions(ctx, tx, &report)
		if err != nil {
			return err
		}

		roles, err := seedRoles(ctx, tx, perms, &report)
		if err != nil {
			return err
		}

		if err := seedUsers(ctx, tx, roles, &report); err != nil {
			return err
		}

		return seedMenus(ctx, tx, &report)
	})
	if err != nil {
		return SeedReport{}, fmt.Errorf("failed to seed database: %w", err)
	}

	log.Info().
		Int("permissions", report.Permissions).
		Int("roles", report.Roles).
		Int("users", report.Users).
		Int("menus", report.Menus).
		Msg("database seeded")

	if report.Users > 0 {
		log.Warn().Msg("default accounts were created with well-known passwords, change them")
	}

	return report, nil
}

func seedPermissions(ctx context.Context, tx *store.Store, report *SeedReport) (map[string]uint, error) {
	catalogue := permissionCatalogue()

	codes := make([]string, 0, len(catalogue))
	for _, p := range catalogue {
		codes = append(codes, p.code)
	}

	existing, err := tx.FindPermissionsByCodes(ctx, codes)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	ids := make(map[string]uint, len(catalogue))
	for _, p := range existing {
		ids[p.Code] = p.ID
	}

	for _, p := range catalogue {
		if _, ok := ids[p.code]; ok {
			continue
		}

		perm := &models.Permission{
			Name:        p.name,
			Code:        p.code,
			Resource:    p.resource,
			Action:      p.action,
			Description: p.description,
		}
		if err := tx.CreatePermission(ctx, perm); err != nil {
			return nil, fmt.Errorf("permission %s: %w", p.code, err)
		}

		ids[p.code] = perm.ID
		report.Permissions++
	}

	return ids, nil
}

func seedRoles(ctx context.Context, tx *store.Store, perms map[string]uint, report *SeedReport) (map[string]uint, error) {
	ids := make(map[string]uint)

	for _, r := range roleCatalogue() {
		role, err := tx.FindRoleByName(ctx, r.name)

		switch {
		case errors.Is(err, store.ErrNotFound):
			role = &models.Role{
				Name:        r.name,
				NameCN:      r.nameCN,
				Description: r.description,
				Status:      models.StatusActive,
				IsSystem:    r.system,
			}
			if err := tx.CreateRole(ctx, role); err != nil {
				return nil, fmt.Errorf("role %s: %w", r.name, err)
			}

			report.Roles++
		case err != nil:
			return nil, err //nolint:wrapcheck
		}

		grants := make([]uint, 0, len(r.codes))
		for _, code := range r.codes {
			grants = append(grants, perms[code])
		}

		if err := store.RoleHasPermission.Replace(ctx, tx, role.ID, grants); err != nil {
			return nil, fmt.Errorf("role %s grants: %w", r.name, err)
		}

		ids[r.name] = role.ID
	}

	return ids, nil
}

func seedUsers(ctx context.Context, tx *store.Store, roles map[string]uint, report *SeedReport) error {
	for _, u := range userCatalogue() {
		_, err := tx.FindUserByUsername(ctx, u.username)
		if err == nil {
			continue
		}

		if !errors.Is(err, store.ErrNotFound) {
			return err //nolint:wrapcheck
		}

		hash, err := models.HashPassword(u.password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := &models.User{
			Username: u.username,
			Password: hash,
			Name:     u.name,
			Role:     u.legacyRole,
			Email:    u.email,
			Status:   models.StatusActive,
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("user %s: %w", u.username, err)
		}

		assigned := make([]uint, 0, len(u.roles))
		for _, name := range u.roles {
			assigned = append(assigned, roles[name])
		}

		if err := store.UserHasRole.Add(ctx, tx, user.ID, assigned); err != nil {
			return fmt.Errorf("user %s roles: %w", u.username, err)
		}

		report.Users++
	}

	return nil
}

func seedMenus(ctx context.Context, tx *store.Store, report *SeedReport) error {
	all, err := tx.ListMenus(ctx, false)
	if err != nil {
		return err //nolint:wrapcheck
	}

	byPath := make(map[string]uint, len(all))
	for _, m := range all {
		byPath[m.Path] = m.ID
	}

	var create func(seeds []menuSeed, parent *uint) error

	create = func(seeds []menuSeed, parent *uint) error {
		for _, s := range seeds {
			id, ok := byPath[s.path]
			if !ok {
				m := &models.Menu{
					ParentID:  parent,
					Name:      s.name,
					Path:      s.path,
					Component: s.component,
					Icon:      s.icon,
					Order:     s.order,
					Visible:   true,
				}

				if s.permission != "" {
					m.Permission = &s.permission
				}

				if err := tx.CreateMenu(ctx, m); err != nil {
					return fmt.Errorf("menu %s: %w", s.path, err)
				}

				id = m.ID
				byPath[s.path] = id
				report.Menus++
			}

			if err := create(s.children, &id); err != nil {
				return err
			}
		}

		return nil
	}

	return create(menuCatalogue(), nil)
}
