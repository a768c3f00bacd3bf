// Package modshandler serves the mods catalog over HTTP.
//
// Routes:
//   - GET  /mods            list every entry, newest first (public)
//   - POST /mods            create an entry (admin)
//   - PATCH /mods?id=X      update the listed fields of entry X (admin)
//   - DELETE /mods?id=X     delete entry X (admin)
//   - PATCH|DELETE /mods/{id} same as above; ?id= wins when both are given
//   - /api/mods, /api/mods-id  function-style aliases of the collection and item routes
//
// Each request performs at most one catalog call. Catalog failures are
// reported as 500 {"error":"db_error","details":<message>}.
package modshandler
