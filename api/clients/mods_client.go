package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/glazedv3/mods-backend/api"
	"github.com/glazedv3/mods-backend/interfaces"
)

// APIError is a non-2xx answer from the mods API.
type APIError struct {
	Status  int
	Code    string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (%d)", e.Code, e.Status)
}

// ModsClient provides methods for interacting with the mods API.
// Mutating calls send the admin key as a bearer token.
type ModsClient struct {
	baseURL    string
	adminKey   string
	httpClient *http.Client
}

// NewModsClient creates a new client.
//
// Parameters:
//   - baseURL: The base URL of the API (e.g., "http://localhost:8080")
//   - adminKey: The admin bearer secret; may be empty for read-only use
//   - timeout: Request timeout duration (optional, default 30 seconds)
func NewModsClient(baseURL, adminKey string, timeout ...time.Duration) *ModsClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &ModsClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		adminKey: adminKey,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// ListMods returns the catalog, newest first.
func (c *ModsClient) ListMods(ctx context.Context) ([]interfaces.Mod, error) {
	var resp api.ListResponse
	if err := c.do(ctx, http.MethodGet, "/mods", nil, false, &resp); err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	return resp.Items, nil
}

// CreateMod adds an entry.
func (c *ModsClient) CreateMod(ctx context.Context, in interfaces.ModInput) (interfaces.Mod, error) {
	var resp api.ItemResponse
	if err := c.do(ctx, http.MethodPost, "/mods", in, true, &resp); err != nil {
		return interfaces.Mod{}, fmt.Errorf("create request failed: %w", err)
	}
	return resp.Item, nil
}

// UpdateMod sends only the fields present in patch.
func (c *ModsClient) UpdateMod(ctx context.Context, id interfaces.ModID, patch interfaces.ModPatch) (interfaces.Mod, error) {
	if patch == nil {
		patch = interfaces.ModPatch{}
	}
	var resp api.ItemResponse
	if err := c.do(ctx, http.MethodPatch, "/mods?id="+url.QueryEscape(id.String()), patch, true, &resp); err != nil {
		return interfaces.Mod{}, fmt.Errorf("update request failed: %w", err)
	}
	return resp.Item, nil
}

// DeleteMod removes an entry. Deleting an unknown id succeeds.
func (c *ModsClient) DeleteMod(ctx context.Context, id interfaces.ModID) error {
	var resp api.OKResponse
	if err := c.do(ctx, http.MethodDelete, "/mods?id="+url.QueryEscape(id.String()), nil, true, &resp); err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	return nil
}

// SignUpload requests a signed upload ticket for fileName.
func (c *ModsClient) SignUpload(ctx context.Context, fileName string) (api.UploadSignResponse, error) {
	var resp api.UploadSignResponse
	if err := c.do(ctx, http.MethodPost, "/upload-sign", api.UploadSignRequest{FileName: fileName}, true, &resp); err != nil {
		return api.UploadSignResponse{}, fmt.Errorf("upload-sign request failed: %w", err)
	}
	return resp, nil
}

// UploadFile PUTs data to a signed URL obtained from SignUpload.
func (c *ModsClient) UploadFile(ctx context.Context, signedURL, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signedURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed with code %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *ModsClient) do(ctx context.Context, method, path string, body any, admin bool, out any) error {
	var reqBody io.Reader
	if body != nil {
		reqJSON, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(respBody))
		}
		return &APIError{Status: resp.StatusCode, Code: apiErr.Error, Details: apiErr.Details}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
