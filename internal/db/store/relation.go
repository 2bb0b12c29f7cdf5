package store

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"github.com/diveerp/diveerp/internal/db/models"
)

// Relation is a many-to-many membership kept in the join table of J.
// Owners hold members: a role holds permissions, a user holds roles.
type Relation[J any] struct {
	ownerColumn  string
	memberColumn string
	row          func(owner, member uint) J
	pair         func(row J) (owner, member uint)
}

// RoleHasPermission relates roles to their permissions.
var RoleHasPermission = Relation[models.RolePermission]{ //nolint:gochecknoglobals
	ownerColumn:  "role_id",
	memberColumn: "permission_id",
	row: func(owner, member uint) models.RolePermission {
		return models.RolePermission{RoleID: owner, PermissionID: member}
	},
	pair: func(row models.RolePermission) (uint, uint) {
		return row.RoleID, row.PermissionID
	},
}

// UserHasRole relates users to their roles.
var UserHasRole = Relation[models.UserRole]{ //nolint:gochecknoglobals
	ownerColumn:  "user_id",
	memberColumn: "role_id",
	row: func(owner, member uint) models.UserRole {
		return models.UserRole{UserID: owner, RoleID: member}
	},
	pair: func(row models.UserRole) (uint, uint) {
		return row.UserID, row.RoleID
	},
}

// Replace makes members the complete member set of owner.
// Old rows are deleted and the new ones inserted in one transaction, so no
// partial assignment is ever visible.
func (r Relation[J]) Replace(ctx context.Context, s *Store, owner uint, members []uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if err := r.RemoveOwner(ctx, tx, owner); err != nil {
			return err
		}

		return r.Add(ctx, tx, owner, members)
	})
}

// Add inserts the given members of owner. Duplicates in members are ignored.
func (r Relation[J]) Add(ctx context.Context, s *Store, owner uint, members []uint) error {
	ids := slices.Clone(members)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	if len(ids) == 0 {
		return nil
	}

	rows := make([]J, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, r.row(owner, id))
	}

	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Create(&rows).Error
	})
}

// Members returns the member ids of owner in ascending order.
func (r Relation[J]) Members(ctx context.Context, s *Store, owner uint) ([]uint, error) {
	var (
		zero J
		ids  []uint
	)

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Model(&zero).
			Where(r.ownerColumn+" = ?", owner).
			Order(r.memberColumn).
			Pluck(r.memberColumn, &ids).Error
	})

	return ids, err
}

// CountOwners returns how many owners hold member.
func (r Relation[J]) CountOwners(ctx context.Context, s *Store, member uint) (int64, error) {
	var (
		zero  J
		count int64
	)

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Model(&zero).Where(r.memberColumn+" = ?", member).Count(&count).Error
	})

	return count, err
}

// OwnerCounts returns how many owners hold each of the given members in one
// grouped query. Members held by nobody are absent from the map.
func (r Relation[J]) OwnerCounts(ctx context.Context, s *Store, members []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(members))

	if len(members) == 0 {
		return counts, nil
	}

	var (
		zero J
		rows []struct {
			Member uint
			Owners int64
		}
	)

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Model(&zero).
			Select(r.memberColumn+" AS member, COUNT(*) AS owners").
			Where(r.memberColumn+" IN ?", members).
			Group(r.memberColumn).
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.Member] = row.Owners
	}

	return counts, nil
}

// RemoveOwner deletes all rows of owner.
func (r Relation[J]) RemoveOwner(ctx context.Context, s *Store, owner uint) error {
	var zero J

	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Where(r.ownerColumn+" = ?", owner).Delete(&zero).Error
	})
}

// RemoveMember deletes all rows referencing member.
func (r Relation[J]) RemoveMember(ctx context.Context, s *Store, member uint) error {
	var zero J

	return s.mutate(ctx, func(db *gorm.DB) error {
		return db.Where(r.memberColumn+" = ?", member).Delete(&zero).Error
	})
}

// memberIndex returns the member ids of each of the given owners.
func (r Relation[J]) memberIndex(ctx context.Context, s *Store, owners []uint) (map[uint][]uint, error) {
	index := make(map[uint][]uint, len(owners))

	if len(owners) == 0 {
		return index, nil
	}

	var rows []J

	err := s.call(ctx, func(db *gorm.DB) error {
		return db.Where(r.ownerColumn+" IN ?", owners).
			Order(r.ownerColumn).
			Order(r.memberColumn).
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		owner, member := r.pair(row)
		index[owner] = append(index[owner], member)
	}

	return index, nil
}
