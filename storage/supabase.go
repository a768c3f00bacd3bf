package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/supabase-community/postgrest-go"
)

// PostgREST reports "JSON object requested, multiple (or no) rows returned"
// with this code when a single-object request matches zero rows.
const postgrestNoRowsCode = "PGRST116"

// SupabaseError is an error reported by a Supabase REST or Storage endpoint.
// Status is only known for Storage responses.
type SupabaseError struct {
	Status  int
	Code    string
	Message string
}

func (e *SupabaseError) Error() string {
	return e.Message
}

// Unwrap maps the zero-row single-object error onto ErrModNotFound.
func (e *SupabaseError) Unwrap() error {
	if e.Code == postgrestNoRowsCode {
		return interfaces.ErrModNotFound
	}
	return nil
}

const defaultSupabaseTimeout = 30 * time.Second

// supabaseClient talks to the storage API of one hosted project with the
// service credential.
type supabaseClient struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

func newSupabaseClient(baseURL, key string, httpClient *http.Client) supabaseClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultSupabaseTimeout}
	}
	return supabaseClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		key:        key,
		httpClient: httpClient,
	}
}

func (c supabaseClient) do(ctx context.Context, method, endpoint string, body any, header http.Header) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, parseSupabaseError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

func parseSupabaseError(status int, body []byte) error {
	var payload struct {
		Code    any    `json:"code"`
		Error   string `json:"error"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	_ = json.Unmarshal(body, &payload)

	e := &SupabaseError{Status: status, Message: payload.Message}
	if code, ok := payload.Code.(string); ok {
		e.Code = code
	}
	if e.Message == "" {
		e.Message = payload.Msg
	}
	if e.Message == "" {
		e.Message = payload.Error
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// SupabaseCatalog keeps the catalog in a hosted table reached through the
// PostgREST endpoint at <base>/rest/v1.
type SupabaseCatalog struct {
	rest    *postgrest.Client
	baseURL string
	table   string
	timeout time.Duration
	log     *slog.Logger
}

// NewSupabaseCatalog returns a catalog bound to table on the project at baseURL.
// Requests go through the transport of httpClient when one is given and are
// bounded by its timeout.
func NewSupabaseCatalog(baseURL, serviceKey, table string, httpClient *http.Client, log *slog.Logger) (*SupabaseCatalog, error) {
	if baseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("%w: supabase url and service key are required", interfaces.ErrNotConfigured)
	}
	if table == "" {
		return nil, fmt.Errorf("%w: table name is required", interfaces.ErrNotConfigured)
	}

	baseURL = strings.TrimSuffix(baseURL, "/")
	rest, err := postgrest.NewClientWithError(baseURL+"/rest/v1", "", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid supabase url: %v", interfaces.ErrInvalidLocationURI, err)
	}
	rest.SetApiKey(serviceKey).SetAuthToken(serviceKey)

	timeout := defaultSupabaseTimeout
	if httpClient != nil {
		rest.Transport.Parent = httpClient.Transport
		if httpClient.Timeout > 0 {
			timeout = httpClient.Timeout
		}
	}

	return &SupabaseCatalog{
		rest:    rest,
		baseURL: baseURL,
		table:   table,
		timeout: timeout,
		log:     log,
	}, nil
}

// restErrorPattern matches the "(code) message" errors of the REST client.
var restErrorPattern = regexp.MustCompile(`(?s)^\(([^)]*)\) (.*)$`)

// restError classifies an error returned by the REST client.
func restError(err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if m := restErrorPattern.FindStringSubmatch(err.Error()); m != nil {
		return &SupabaseError{Code: m[1], Message: m[2]}
	}
	return err
}

func (c *SupabaseCatalog) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// ListMods selects every row ordered by created_at descending.
func (c *SupabaseCatalog) ListMods(ctx context.Context) ([]interfaces.Mod, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var mods []interfaces.Mod
	_, err := c.rest.From(c.table).
		Select("*", "", false).
		Order(interfaces.FieldCreatedAt, &postgrest.OrderOpts{Ascending: false, NullsFirst: true}).
		ExecuteToWithContext(ctx, &mods)
	if err != nil {
		return nil, restError(err)
	}
	if mods == nil {
		mods = []interfaces.Mod{}
	}
	return mods, nil
}

// CreateMod inserts a row and returns the stored representation.
func (c *SupabaseCatalog) CreateMod(ctx context.Context, in interfaces.ModInput) (interfaces.Mod, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if in.Launchers == nil {
		in.Launchers = []string{}
	}
	var mod interfaces.Mod
	_, err := c.rest.From(c.table).
		Insert(in, false, "", "representation", "").
		Single().
		ExecuteToWithContext(ctx, &mod)
	if err != nil {
		return interfaces.Mod{}, restError(err)
	}
	return mod, nil
}

// UpdateMod patches the row with the given id. A zero-row match is reported
// by PostgREST and surfaces as an error that wraps ErrModNotFound.
func (c *SupabaseCatalog) UpdateMod(ctx context.Context, id interfaces.ModID, patch interfaces.ModPatch) (interfaces.Mod, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body := map[string]any(patch)
	if body == nil {
		body = map[string]any{}
	}
	var mod interfaces.Mod
	_, err := c.rest.From(c.table).
		Update(body, "representation", "").
		Eq(interfaces.FieldID, id.String()).
		Single().
		ExecuteToWithContext(ctx, &mod)
	if err != nil {
		return interfaces.Mod{}, restError(err)
	}
	return mod, nil
}

// DeleteMod deletes by filter; a filter matching nothing succeeds.
func (c *SupabaseCatalog) DeleteMod(ctx context.Context, id interfaces.ModID) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, _, err := c.rest.From(c.table).
		Delete("minimal", "").
		Eq(interfaces.FieldID, id.String()).
		ExecuteWithContext(ctx)
	return restError(err)
}

// Available issues a zero-row select against the table.
func (c *SupabaseCatalog) Available(ctx context.Context) bool {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, _, err := c.rest.From(c.table).
		Select(interfaces.FieldID, "", false).
		Limit(0, "").
		ExecuteWithContext(ctx)
	if err != nil {
		c.log.Warn("Supabase catalog unavailable", slog.String("table", c.table), "err", restError(err))
		return false
	}
	return true
}

// Name returns a unique identifier for this backend.
func (c *SupabaseCatalog) Name() string {
	return "supabase-" + c.table
}

// LocationURI returns the URI that identifies this backend.
func (c *SupabaseCatalog) LocationURI() string {
	return c.baseURL + "/rest/v1/" + c.table
}

// SupabaseStorage signs uploads into a hosted storage bucket.
type SupabaseStorage struct {
	client supabaseClient
	bucket string
	log    *slog.Logger
}

// NewSupabaseStorage returns a signer for bucket on the project at baseURL.
func NewSupabaseStorage(baseURL, serviceKey, bucket string, httpClient *http.Client, log *slog.Logger) (*SupabaseStorage, error) {
	if baseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("%w: supabase url and service key are required", interfaces.ErrNotConfigured)
	}
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket name is required", interfaces.ErrNotConfigured)
	}
	return &SupabaseStorage{
		client: newSupabaseClient(baseURL, serviceKey, httpClient),
		bucket: bucket,
		log:    log,
	}, nil
}

// CreateSignedUploadURL asks the storage service for a signed upload URL.
// The service answers with a path relative to <base>/storage/v1 that carries
// the upload token as its "token" query parameter.
func (s *SupabaseStorage) CreateSignedUploadURL(ctx context.Context, objectPath string) (interfaces.SignedUpload, error) {
	endpoint := "/storage/v1/object/upload/sign/" + url.PathEscape(s.bucket) + "/" + escapeObjectPath(objectPath)
	body, err := s.client.do(ctx, http.MethodPost, endpoint, map[string]any{}, nil)
	if err != nil {
		return interfaces.SignedUpload{}, err
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return interfaces.SignedUpload{}, fmt.Errorf("failed to decode signed upload response: %w", err)
	}
	if resp.URL == "" {
		return interfaces.SignedUpload{}, errors.New("storage returned an empty signed url")
	}

	signed, err := url.Parse(s.client.baseURL + "/storage/v1" + resp.URL)
	if err != nil {
		return interfaces.SignedUpload{}, fmt.Errorf("invalid signed url: %w", err)
	}

	s.log.Debug("Signed upload", slog.String("bucket", s.bucket), slog.String("path", objectPath))
	return interfaces.SignedUpload{
		SignedURL: signed.String(),
		Token:     signed.Query().Get("token"),
	}, nil
}

// PublicURL returns the public object URL for objectPath.
func (s *SupabaseStorage) PublicURL(objectPath string) string {
	return s.client.baseURL + "/storage/v1/object/public/" + s.bucket + "/" + encodeURIComponent(objectPath)
}

// Name returns a unique identifier for this backend.
func (s *SupabaseStorage) Name() string {
	return "supabase-storage-" + s.bucket
}

func escapeObjectPath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

var uriComponentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func encodeURIComponent(s string) string {
	return uriComponentReplacer.Replace(url.QueryEscape(s))
}
