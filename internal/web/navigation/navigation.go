// Package navigation builds the menu tree from the flat menu table.
//
// Menus are filtered first and linked second: a node is only reachable
// through its kept parent. A node that fails the filter therefore hides its
// whole subtree, even children that would pass on their own.
package navigation

import (
	"cmp"
	"slices"

	"github.com/diveerp/diveerp/internal/db/models"
)

// Filter decides whether a menu is kept.
type Filter func(m *models.Menu) bool

// AllowAll keeps every menu.
func AllowAll(*models.Menu) bool { return true }

// PermissionFilter keeps public menus and menus whose permission allows accepts.
func PermissionFilter(allows func(code string) bool) Filter {
	return func(m *models.Menu) bool {
		code := m.RequiredPermission()
		return code == "" || allows(code)
	}
}

// Node is a menu with its children, the admin representation.
// Children is always present, empty for leaves.
type Node struct {
	models.Menu
	Children []Node `json:"children"`
}

// Item is the trimmed end user representation. Children is omitted for leaves.
type Item struct {
	Name       string  `json:"name"`
	Path       string  `json:"path"`
	Component  string  `json:"component"`
	Icon       string  `json:"icon"`
	Order      int     `json:"order"`
	Visible    bool    `json:"visible"`
	Permission *string `json:"permission"`
	Children   []Item  `json:"children,omitempty"`
}

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Forest is an arena of kept menus plus a parent to children index.
type Forest struct {
	nodes    []models.Menu
	pos      map[uint]int
	children map[uint][]int
	roots    []int
}

// NewForest filters menus with keep and indexes the rest. The input is not modified.
func NewForest(menus []models.Menu, keep Filter) *Forest {
	if keep == nil {
		keep = AllowAll
	}

	f := &Forest{
		nodes:    make([]models.Menu, 0, len(menus)),
		pos:      make(map[uint]int, len(menus)),
		children: make(map[uint][]int),
	}

	for i := range menus {
		if keep(&menus[i]) {
			f.nodes = append(f.nodes, menus[i])
		}
	}

	slices.SortStableFunc(f.nodes, func(a, b models.Menu) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})

	for i := range f.nodes {
		m := &f.nodes[i]
		f.pos[m.ID] = i

		if m.ParentID == nil {
			f.roots = append(f.roots, i)
		} else {
			f.children[*m.ParentID] = append(f.children[*m.ParentID], i)
		}
	}

	return f
}

// Nodes returns the full tree.
func (f *Forest) Nodes() []Node {
	return build(f, func(m *models.Menu, children []Node) Node {
		if children == nil {
			children = []Node{}
		}

		return Node{Menu: *m, Children: children}
	})
}

// Items returns the trimmed tree.
func (f *Forest) Items() []Item {
	return build(f, func(m *models.Menu, children []Item) Item {
		return Item{
			Name:       m.Name,
			Path:       m.Path,
			Component:  m.Component,
			Icon:       m.Icon,
			Order:      m.Order,
			Visible:    m.Visible,
			Permission: m.Permission,
			Children:   children,
		}
	})
}

// Len returns the number of nodes reachable from the roots.
func (f *Forest) Len() int {
	return len(reachable(f))
}

// Ancestors returns the parent chain of id, nearest first. The walk stops at
// a root, at a parent outside the forest or when it would revisit a node.
func (f *Forest) Ancestors(id uint) []uint {
	var out []uint

	seen := map[uint]bool{id: true}

	for {
		i, ok := f.pos[id]
		if !ok || f.nodes[i].ParentID == nil {
			return out
		}

		id = *f.nodes[i].ParentID
		if seen[id] {
			return out
		}

		seen[id] = true
		out = append(out, id)
	}
}

// Breadcrumbs returns the trail from the root down to id, id being active.
func (f *Forest) Breadcrumbs(id uint) []BreadcrumbItem {
	i, ok := f.pos[id]
	if !ok {
		return []BreadcrumbItem{}
	}

	ancestors := f.Ancestors(id)
	out := make([]BreadcrumbItem, 0, len(ancestors)+1)

	for k := len(ancestors) - 1; k >= 0; k-- {
		if j, ok := f.pos[ancestors[k]]; ok {
			out = append(out, BreadcrumbItem{Title: f.nodes[j].Name, URL: f.nodes[j].Path})
		}
	}

	return append(out, BreadcrumbItem{Title: f.nodes[i].Name, URL: f.nodes[i].Path, Active: true})
}

// build assembles the tree bottom-up from the roots. Each arena position is
// emitted at most once, so malformed parent links cannot loop.
func build[T any](f *Forest, mk func(m *models.Menu, children []T) T) []T {
	visited := make([]bool, len(f.nodes))

	var walk func(positions []int) []T

	walk = func(positions []int) []T {
		var out []T

		for _, i := range positions {
			if visited[i] {
				continue
			}

			visited[i] = true
			m := &f.nodes[i]
			out = append(out, mk(m, walk(f.children[m.ID])))
		}

		return out
	}

	out := walk(f.roots)
	if out == nil {
		out = []T{}
	}

	return out
}

func reachable(f *Forest) []int {
	visited := make([]bool, len(f.nodes))
	stack := slices.Clone(f.roots)
	out := make([]int, 0, len(f.nodes))

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[i] {
			continue
		}

		visited[i] = true
		out = append(out, i)
		stack = append(stack, f.children[f.nodes[i].ID]...)
	}

	return out
}
