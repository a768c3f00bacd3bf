// Package uploadhandler issues signed upload URLs for mod files.
//
// POST /upload-sign (alias /api/upload-sign) takes {"file_name": "..."} from
// an admin, derives a unique object path from the current time and the
// sanitized file name, and asks the blob signer for a one-shot upload URL.
// The client then uploads directly to storage and records public_url in the
// catalog.
package uploadhandler
