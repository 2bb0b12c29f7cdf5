package models

import "time"

// Menu is a navigation node. ParentID references another menu, nil marks a root.
type Menu struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ParentID  *uint  `gorm:"index" json:"parent_id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Path      string `gorm:"size:200" json:"path"`
	Component string `gorm:"size:200" json:"component"`
	Icon      string `gorm:"size:50" json:"icon"`
	Order     int    `gorm:"column:sort_order;not null;index" json:"order"`
	Visible   bool   `gorm:"not null;index" json:"visible"`
	// Permission is the code required to see the node, nil or empty means public.
	Permission *string `gorm:"size:100" json:"permission"`
	// Meta is an opaque JSON document for the frontend.
	Meta      string    `gorm:"type:text" json:"meta,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for the Menu model.
func (Menu) TableName() string {
	return "menus"
}

// RequiredPermission returns the permission code guarding the node or "".
func (m *Menu) RequiredPermission() string {
	if m.Permission == nil {
		return ""
	}

	return *m.Permission
}
