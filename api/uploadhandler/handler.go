package uploadhandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/glazedv3/mods-backend/api"
	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/go-chi/chi/v5"
)

// Handler issues signed upload URLs. A nil signer means storage is not
// configured; authorized requests then answer 500 missing_supabase_env.
type Handler struct {
	signer interfaces.BlobSigner
	gate   api.AdminGate
	now    func() time.Time
	log    *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock replaces the clock used to prefix object paths.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
func NewHandler(signer interfaces.BlobSigner, gate api.AdminGate, log *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		signer: signer,
		gate:   gate,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts the upload-sign endpoint and its legacy /api path.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/upload-sign", h.HandleUploadSign)
	r.HandleFunc("/api/upload-sign", h.HandleUploadSign)
}

// HandleUploadSign processes POST {"file_name": "..."} from an admin and
// answers with a one-shot upload ticket:
//
//	{"path": "<unix-millis>_<sanitized name>", "signed_url", "token", "public_url"}
func (h *Handler) HandleUploadSign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.WriteMethodNotAllowed(w, http.MethodPost)
		return
	}
	if !h.gate.Require(w, r) {
		return
	}
	if h.signer == nil {
		api.WriteError(w, http.StatusInternalServerError, api.ErrCodeMissingSupabaseEnv)
		return
	}

	payload, err := api.DecodePayload(w, r)
	if err != nil {
		api.WritePayloadError(w, err)
		return
	}

	fileName := payload.Text("file_name")
	if fileName == "" {
		api.WriteError(w, http.StatusBadRequest, api.ErrCodeMissingFileName)
		return
	}

	objectPath := ObjectPath(h.now(), fileName)

	signed, err := h.signer.CreateSignedUploadURL(r.Context(), objectPath)
	if err != nil {
		h.log.Error("Failed to sign upload",
			slog.String("signer", h.signer.Name()),
			slog.String("path", objectPath),
			"err", err)
		api.WriteErrorDetails(w, http.StatusInternalServerError, api.ErrCodeSignError, err.Error())
		return
	}

	h.log.Info("Signed upload", slog.String("path", objectPath))
	api.WriteJSON(w, http.StatusOK, api.UploadSignResponse{
		Path:      objectPath,
		SignedURL: signed.SignedURL,
		Token:     signed.Token,
		PublicURL: h.signer.PublicURL(objectPath),
	})
}

// ObjectPath returns "<unix millis of t>_<Sanitize(fileName)>".
func ObjectPath(t time.Time, fileName string) string {
	return strconv.FormatInt(t.UnixMilli(), 10) + "_" + Sanitize(fileName)
}

// Sanitize replaces every character outside [A-Za-z0-9._-] with '_'.
// Replacement is per UTF-16 code unit, so characters outside the Basic
// Multilingual Plane become "__".
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case isSafe(r):
			b.WriteRune(r)
		case r > 0xFFFF:
			b.WriteString("__")
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isSafe(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '.' || r == '_' || r == '-'
}
