// Package main provides the entry point of diveerp, the administration
// backend of a dive shop ERP. It serves a JSON API built on Fiber that
// authenticates staff with bearer tokens, resolves their permissions from
// role assignments stored through gorm, and returns navigation menus
// trimmed to what each user may see.
package main
