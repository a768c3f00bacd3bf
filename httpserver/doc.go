/*
Package httpserver runs the mods catalog HTTP API.

The server mounts every API handler passed to New on a chi router and adds:

  - request logging through the flashbots httplogger slog middleware
  - Prometheus request metrics, served on a separate metrics address
  - panic recovery into {"error":"server_error","details":...}
  - gzip response compression for clients that accept it
  - a JSON 404 for unknown paths
  - health endpoints: /livez, /readyz, /drain, /undrain
  - optional pprof under /debug

# Draining

GET /drain marks the server not ready so that load balancers stop routing to
it before shutdown; /undrain reverts that. /readyz reports 503 while draining
and, when a ReadyCheck is configured, while the catalog backend is
unreachable.

# Usage

	srv, err := httpserver.New(&httpserver.HTTPServerConfig{
	    ListenAddr:  ":8080",
	    MetricsAddr: ":8090",
	    Log:         logger,
	}, modsHandler, uploadHandler)
	srv.RunInBackground()
	defer srv.Shutdown()
*/
package httpserver
