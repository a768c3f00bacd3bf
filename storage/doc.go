// Package storage provides the catalog and blob backends behind the mods
// handlers.
//
// Catalog backends implement interfaces.CatalogStore:
//
//   - SupabaseCatalog talks to a hosted table through its PostgREST endpoint
//   - PostgresCatalog queries the same table directly through a pgx pool
//   - MemoryCatalog keeps rows in process memory for development and tests
//
// Blob backends implement interfaces.BlobSigner:
//
//   - SupabaseStorage asks hosted storage for a signed upload URL
//   - S3Signer presigns PUT requests against S3 or a compatible service
//
// # Backend URI Format
//
// Backends are selected by URI through BackendFactory:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Catalog URIs:
//
//   - supabase://                         (project from the service configuration)
//   - https://xyz.supabase.co?table=mods  (explicit project base URL)
//   - postgres://user:pass@db:5432/app?sslmode=disable&table=mods
//   - memory://
//
// Blob URIs:
//
//   - supabase://?bucket=mods
//   - s3://KEY:SECRET@bucket/uploads?region=eu-west-1&endpoint=http://minio:9000&public=https://cdn.example.com
//
// # Secrets
//
// Configuration values of the form vault://<mount>/<path>#<field> are read
// from a Vault KV v2 mount by VaultSecretResolver at startup:
//
//	resolver, err := storage.NewVaultSecretResolver(addr, token, logger)
//	err = storage.ResolveSecrets(ctx, resolver, &cfg.ServiceRoleKey, &cfg.AdminKey)
package storage
