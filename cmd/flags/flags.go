package flags

import (
	"log/slog"
	"time"

	"github.com/glazedv3/mods-backend/api"
	"github.com/glazedv3/mods-backend/common"
	"github.com/glazedv3/mods-backend/httpserver"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *httpserver.HTTPServerConfig {
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

// ServiceConfig collects the hosted-project settings. Values may still be
// vault:// references at this point.
func ServiceConfig(cCtx *cli.Context) api.ServiceConfig {
	return api.ServiceConfig{
		SupabaseURL:    cCtx.String(SupabaseURLFlag.Name),
		ServiceRoleKey: cCtx.String(ServiceRoleKeyFlag.Name),
		AdminKey:       cCtx.String(AdminKeyFlag.Name),
		Table:          cCtx.String(TableFlag.Name),
		Bucket:         cCtx.String(BucketFlag.Name),
	}.WithDefaults()
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for API",
	EnvVars: []string{"LISTEN_ADDR"},
}

var SupabaseURLFlag = &cli.StringFlag{
	Name:    "supabase-url",
	Usage:   "hosted project base URL, e.g. https://xyz.supabase.co",
	EnvVars: []string{"SUPABASE_URL"},
}
var ServiceRoleKeyFlag = &cli.StringFlag{
	Name:    "supabase-service-role-key",
	Usage:   "service role key for the hosted project (or vault://mount/path#field)",
	EnvVars: []string{"SUPABASE_SERVICE_ROLE_KEY"},
}
var AdminKeyFlag = &cli.StringFlag{
	Name:    "admin-key",
	Usage:   "bearer secret required by mutating endpoints (or vault://mount/path#field)",
	EnvVars: []string{"ADMIN_KEY"},
}
var CatalogFlag = &cli.StringFlag{
	Name:    "catalog",
	Value:   "supabase://",
	Usage:   "catalog backend URI: supabase://, https://<project>, postgres://..., memory://",
	EnvVars: []string{"MODS_CATALOG"},
}
var BlobFlag = &cli.StringFlag{
	Name:    "blob",
	Value:   "supabase://",
	Usage:   "blob backend URI: supabase://, https://<project>, s3://[KEY:SECRET@]bucket/prefix?region=...",
	EnvVars: []string{"MODS_BLOB"},
}
var TableFlag = &cli.StringFlag{
	Name:  "table",
	Value: api.DefaultTable,
	Usage: "catalog table name",
}
var BucketFlag = &cli.StringFlag{
	Name:  "bucket",
	Value: api.DefaultBucket,
	Usage: "storage bucket for uploads",
}
var VaultAddrFlag = &cli.StringFlag{
	Name:    "vault-addr",
	Usage:   "Vault address used to resolve vault:// configuration values",
	EnvVars: []string{"VAULT_ADDR"},
}
var VaultTokenFlag = &cli.StringFlag{
	Name:    "vault-token",
	Usage:   "Vault token",
	EnvVars: []string{"VAULT_TOKEN"},
}

var ServiceFlags = []cli.Flag{
	SupabaseURLFlag,
	ServiceRoleKeyFlag,
	AdminKeyFlag,
	CatalogFlag,
	BlobFlag,
	TableFlag,
	BucketFlag,
	VaultAddrFlag,
	VaultTokenFlag,
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
