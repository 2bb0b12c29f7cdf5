package handler

import "errors"

const (
	// APIPath is the prefix of every JSON route.
	APIPath = "/api"

	// RouterRootPath is the root path inside a route group.
	RouterRootPath = "/"

	// RouterIDPath is the path of a single entity inside a route group.
	RouterIDPath = "/:id"

	// QueryPage is the query parameter name for the current page index.
	QueryPage = "page"
	// QueryPageSize is the query parameter name for the page size.
	QueryPageSize = "pageSize"
	// QuerySearch is the query parameter name for the search term.
	QuerySearch = "search"
	// QueryStatus is the query parameter name for a status filter.
	QueryStatus = "status"
)

// ErrNilDeps is returned by Init if the app or a dependency is missing.
var ErrNilDeps = errors.New("app or handler dependencies are nil")
