// Package tables registers the finance tables served by the grid.
// Import it for its side effect: each file registers its tables in init.
package tables
