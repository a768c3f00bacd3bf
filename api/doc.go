/*
Package api holds what the mods catalog handlers share with each other and
with clients.

This package is organized into:

1. api - response writer, admin gate, payload coercion, wire types
2. modshandler - collection (list/create) and item (patch/delete) handlers
3. uploadhandler - signed upload URL issuance
4. clients - Go client for the HTTP surface

# Responses

Every response is JSON with Content-Type "application/json; charset=utf-8".
Failures always take the shape

	{"error": "<code>", "details": "<optional upstream message>"}

with codes unauthorized (401), missing_id, missing_file_name, missing_fields,
bad_json (400), body_too_large (413), method_not_allowed (405), db_error,
sign_error, server_error and missing_supabase_env (500).

# Admin gate

Mutating operations require "Authorization: Bearer <admin key>". An empty
admin key rejects every request.

# Payload coercion

Request bodies are decoded into a Payload and read through Text, Bool and
Strings, which coerce loosely: absent and falsy values become "" or false,
numbers and booleans are stringified, arrays are comma-joined and objects
become "[object Object]". Text trims surrounding whitespace.
*/
package api
