package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrModNotFound is returned when an update targets an id that matches no row.
	ErrModNotFound = errors.New("mod not found: the result contains 0 rows")

	// ErrBackendUnavailable is returned when a backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a backend location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")

	// ErrNotConfigured is returned when a backend needs settings that were not provided.
	ErrNotConfigured = errors.New("backend not configured")
)

// CatalogStore holds the mods catalog.
type CatalogStore interface {
	// ListMods returns every entry, newest first by creation time.
	ListMods(ctx context.Context) ([]Mod, error)

	// CreateMod inserts one entry and returns the stored row.
	CreateMod(ctx context.Context, in ModInput) (Mod, error)

	// UpdateMod applies patch to the single entry with the given id and
	// returns the updated row. It returns ErrModNotFound when no row matches.
	UpdateMod(ctx context.Context, id ModID, patch ModPatch) (Mod, error)

	// DeleteMod removes the entry with the given id. A missing row is not an error.
	DeleteMod(ctx context.Context, id ModID) error

	// Available checks if backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// BlobSigner issues time-limited signed upload URLs for object storage.
type BlobSigner interface {
	// CreateSignedUploadURL signs a single upload of objectPath.
	CreateSignedUploadURL(ctx context.Context, objectPath string) (SignedUpload, error)

	// PublicURL returns where objectPath is readable once uploaded.
	PublicURL(objectPath string) string

	// Name returns identifier for logging.
	Name() string
}

// BackendLocation represents URI for a catalog or blob backend.
type BackendLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	User   *url.Userinfo
}

// NewBackendLocation parses a backend URI.
func NewBackendLocation(uri string) (BackendLocation, error) {
	parsed, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return BackendLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}
	if parsed.Scheme == "" {
		return BackendLocation{}, fmt.Errorf("%w: missing scheme in %q", ErrInvalidLocationURI, uri)
	}

	return BackendLocation{
		Raw:    uri,
		Scheme: strings.ToLower(parsed.Scheme),
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		User:   parsed.User,
	}, nil
}

// String returns the original URI string.
func (loc BackendLocation) String() string {
	return loc.Raw
}

// GetParam returns a query parameter value.
func (loc BackendLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc BackendLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}
