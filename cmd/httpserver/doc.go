// Package main (cmd/httpserver) runs the mods catalog API server.
//
// The server exposes the catalog (GET/POST /mods, PATCH/DELETE /mods?id=)
// and signed upload issuance (POST /upload-sign), plus health, drain and
// metrics endpoints. Configuration comes from flags with environment
// fallbacks; secrets may be given as vault://<mount>/<path>#<field> and are
// resolved from Vault KV v2 at startup.
//
// The server starts even when the hosted project is not configured. Catalog
// requests then answer 500 server_error and upload signing answers 500
// missing_supabase_env.
//
// Example usage against a hosted project:
//
//	SUPABASE_URL=https://xyz.supabase.co \
//	SUPABASE_SERVICE_ROLE_KEY=... \
//	ADMIN_KEY=... \
//	    mods-server --listen-addr=0.0.0.0:8080
//
// Example usage with a direct database connection and S3 uploads:
//
//	mods-server --catalog='postgres://app:pw@db:5432/app?sslmode=disable' \
//	    --blob='s3://AKID:SECRET@mods/uploads?region=eu-west-1&public=https://cdn.example.com' \
//	    --admin-key=vault://secret/mods#admin_key --vault-addr=https://vault:8200
//
// Local development without external services:
//
//	mods-server --catalog=memory:// --admin-key=dev
package main
