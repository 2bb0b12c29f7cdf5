// Package auth provides authentication and authorization for the dive shop backend.
//
// # Permission model
//
// Users hold any number of roles, roles hold any number of permissions. A
// user's effective permissions are the union of the permission codes of all
// of its roles. The wildcard code "*:*:*" grants everything.
//
// # Request flow
//
// The Guard authenticates a bearer token, loads the user and resolves its
// permission set (stage A). Handlers then call Authorize with the code they
// require (stage B). Both stages run on every request, a revoked permission
// is therefore effective on the very next request. The optional
// CachedResolver keeps that property by keying its entries on the store's
// generation counter.
//
// # Administrators
//
// IsAdministrator is a coarse legacy predicate composed of AdminCheck
// strategies. It is kept apart from Authorize so the deprecated single role
// field can be dropped later without touching fine grained checks.
//
// Example usage:
//
//	guard := auth.NewGuard(tokens, auth.NewResolver(st))
//
//	api.Get("/students",
//	    auth.Authenticated(guard),
//	    auth.RequirePermission(guard, auth.PermStudentRead),
//	    handler,
//	)
package auth
