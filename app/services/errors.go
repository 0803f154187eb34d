package services

import "errors"

// Domain errors surfaced to the HTTP layer. Everything else wrapping up out
// of the service is an internal failure.
var (
	// ErrProductNotFound is returned when the requested product does not
	// exist in the primary store.
	ErrProductNotFound = errors.New("product not found")

	// ErrCategoryNotFound is returned when a write references a category id
	// that does not resolve.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrNotOwner is returned when the acting user is not the seller who
	// created the product. Ownership is strict identity equality; roles do
	// not override it.
	ErrNotOwner = errors.New("not the product owner")

	// ErrBlobStoreNotReady is returned when an upload arrives while no blob
	// backend is configured. The request fails immediately instead of
	// waiting on a connection that will never appear.
	ErrBlobStoreNotReady = errors.New("blob store not ready")
)
