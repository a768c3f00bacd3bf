package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/hashicorp/vault/api"
)

// VaultScheme prefixes configuration values that live in Vault.
const VaultScheme = "vault://"

// VaultSecretResolver reads configuration secrets from a Vault KV v2 mount.
// References look like vault://<mount>/<path>#<field>.
type VaultSecretResolver struct {
	client *api.Client
	log    *slog.Logger
}

// NewVaultSecretResolver creates a token-authenticated Vault client.
func NewVaultSecretResolver(address, token string, log *slog.Logger) (*VaultSecretResolver, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.HttpClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	return &VaultSecretResolver{client: client, log: log}, nil
}

// IsVaultReference reports whether value should be resolved through Vault.
func IsVaultReference(value string) bool {
	return strings.HasPrefix(value, VaultScheme)
}

// ParseVaultReference splits vault://mount/path#field.
func ParseVaultReference(ref string) (mount, dataPath, field string, err error) {
	if !IsVaultReference(ref) {
		return "", "", "", fmt.Errorf("%w: %q is not a vault reference", interfaces.ErrInvalidLocationURI, ref)
	}
	rest, field, ok := strings.Cut(strings.TrimPrefix(ref, VaultScheme), "#")
	if !ok || field == "" {
		return "", "", "", fmt.Errorf("%w: missing #field in %q", interfaces.ErrInvalidLocationURI, ref)
	}
	mount, dataPath, ok = strings.Cut(rest, "/")
	dataPath = strings.Trim(dataPath, "/")
	if !ok || mount == "" || dataPath == "" {
		return "", "", "", fmt.Errorf("%w: expected vault://mount/path#field, got %q", interfaces.ErrInvalidLocationURI, ref)
	}
	return mount, dataPath, field, nil
}

// Resolve returns value unchanged unless it is a vault reference, in which
// case the referenced field is read from Vault.
func (r *VaultSecretResolver) Resolve(ctx context.Context, value string) (string, error) {
	if !IsVaultReference(value) {
		return value, nil
	}

	mount, dataPath, field, err := ParseVaultReference(value)
	if err != nil {
		return "", err
	}

	// Vault KV v2 path structure
	path := fmt.Sprintf("%s/data/%s", mount, dataPath)

	secret, err := r.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		r.log.Error("Failed to read from Vault", slog.String("path", path), "err", err)
		return "", fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault secret %s not found", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("invalid data format in Vault response for %s", path)
	}
	content, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("field %q not found in Vault secret %s", field, path)
	}

	r.log.Info("Resolved secret from Vault", slog.String("path", path), slog.String("field", field))
	return content, nil
}

// ResolveSecrets resolves every vault reference among values in place.
// A nil resolver is an error only when a reference is actually present.
func ResolveSecrets(ctx context.Context, r *VaultSecretResolver, values ...*string) error {
	for _, v := range values {
		if v == nil || !IsVaultReference(*v) {
			continue
		}
		if r == nil {
			return fmt.Errorf("%w: vault address is required to resolve %q", interfaces.ErrNotConfigured, *v)
		}
		resolved, err := r.Resolve(ctx, *v)
		if err != nil {
			return err
		}
		*v = resolved
	}
	return nil
}
