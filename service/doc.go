// Package service implements inventory, store and employee record management
// on top of the repositories, the query engine and the listing caches.
//
// Store and employee listings are served from caches that are never
// invalidated by the write methods in this package.
package service
