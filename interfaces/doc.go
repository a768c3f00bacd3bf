// Package interfaces defines the core types and backend contracts of the mods
// catalog, separating them from their implementations.
//
// # Catalog Types
//
//   - Mod: a catalog entry as stored and returned by the API
//   - ModInput: the fields accepted when creating an entry
//   - ModPatch: a partial update carrying only the keys present in a request
//   - ModID: an opaque identifier that accepts both JSON strings and numbers
//
// # Backend Interfaces
//
// CatalogStore: Persists catalog entries. Implementations exist for the hosted
// REST endpoint, a direct PostgreSQL connection and an in-process map.
//
// BlobSigner: Issues one-shot signed upload URLs for object paths and derives
// their public download URLs.
//
// BackendLocation: Parses the URI strings used to select a backend.
//
// # Errors
//
// Backends wrap ErrModNotFound, ErrBackendUnavailable, ErrNotConfigured and
// ErrInvalidLocationURI so callers can classify failures with errors.Is.
package interfaces
