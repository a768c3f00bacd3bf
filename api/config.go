package api

import "strings"

const (
	// DefaultTable is the catalog table queried by the handlers.
	DefaultTable = "mods"

	// DefaultBucket is the storage bucket uploads are signed for.
	DefaultBucket = "mods"
)

// ServiceConfig is built once at process start and injected into the
// backend factory and handlers. Nothing reads the environment after that.
type ServiceConfig struct {
	// SupabaseURL is the hosted project base URL, e.g. https://xyz.supabase.co
	SupabaseURL string

	// ServiceRoleKey authenticates the backend against the hosted project.
	ServiceRoleKey string

	// AdminKey is the bearer secret required by mutating endpoints.
	AdminKey string

	// Table and Bucket default to "mods".
	Table  string
	Bucket string
}

// SupabaseConfigured reports whether both hosted-project settings are present.
func (c ServiceConfig) SupabaseConfigured() bool {
	return strings.TrimSpace(c.SupabaseURL) != "" && strings.TrimSpace(c.ServiceRoleKey) != ""
}

// WithDefaults fills in table and bucket names and strips a trailing slash from the URL.
func (c ServiceConfig) WithDefaults() ServiceConfig {
	c.SupabaseURL = strings.TrimRight(strings.TrimSpace(c.SupabaseURL), "/")
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	return c
}
