package api

import (
	"github.com/glazedv3/mods-backend/interfaces"
)

// Error codes carried in the "error" field of every failure response.
const (
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeMissingID          = "missing_id"
	ErrCodeMissingFileName    = "missing_file_name"
	ErrCodeMissingFields      = "missing_fields"
	ErrCodeBadJSON            = "bad_json"
	ErrCodeBodyTooLarge       = "body_too_large"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
	ErrCodeDBError            = "db_error"
	ErrCodeSignError          = "sign_error"
	ErrCodeServerError        = "server_error"
	ErrCodeMissingSupabaseEnv = "missing_supabase_env"
	ErrCodeNotFound           = "not_found"
)

// MissingSupabaseDetails accompanies server_error when no catalog is configured.
const MissingSupabaseDetails = "Missing SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ListResponse is returned by GET /mods.
type ListResponse struct {
	Items []interfaces.Mod `json:"items"`
}

// ItemResponse is returned by create and update.
type ItemResponse struct {
	Item interfaces.Mod `json:"item"`
}

// OKResponse is returned by delete.
type OKResponse struct {
	OK bool `json:"ok"`
}

// UploadSignResponse is returned by POST /upload-sign.
type UploadSignResponse struct {
	Path      string `json:"path"`
	SignedURL string `json:"signed_url"`
	Token     string `json:"token"`
	PublicURL string `json:"public_url"`
}

// UploadSignRequest is the body accepted by POST /upload-sign.
type UploadSignRequest struct {
	FileName string `json:"file_name"`
}
