package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/glazedv3/mods-backend/api"
	"github.com/glazedv3/mods-backend/api/modshandler"
	"github.com/glazedv3/mods-backend/api/uploadhandler"
	"github.com/glazedv3/mods-backend/cmd/flags"
	"github.com/glazedv3/mods-backend/httpserver"
	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/glazedv3/mods-backend/storage"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Values from a local .env never override the real environment
	_ = godotenv.Load()

	appFlags := []cli.Flag{flags.ListenAddrFlag, flags.LogServiceFlagFn("mods-backend")}
	appFlags = append(appFlags, flags.ServiceFlags...)
	appFlags = append(appFlags, flags.CommonFlags...)

	app := &cli.App{
		Name:  "mods-server",
		Usage: "Serve the mods catalog API",
		Flags: appFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			ctx := cCtx.Context

			cfg := flags.ServiceConfig(cCtx)

			// Resolve vault:// references before anything reads the secrets
			var resolver *storage.VaultSecretResolver
			if vaultAddr := cCtx.String(flags.VaultAddrFlag.Name); vaultAddr != "" {
				var err error
				resolver, err = storage.NewVaultSecretResolver(vaultAddr, cCtx.String(flags.VaultTokenFlag.Name), logger)
				if err != nil {
					logger.Error("Failed to create Vault client", "err", err)
					return err
				}
			}
			if err := storage.ResolveSecrets(ctx, resolver, &cfg.SupabaseURL, &cfg.ServiceRoleKey, &cfg.AdminKey); err != nil {
				logger.Error("Failed to resolve secrets", "err", err)
				return err
			}
			cfg = cfg.WithDefaults()

			if cfg.AdminKey == "" {
				logger.Warn("No admin key configured, every mutating request will be rejected")
			}

			factory := storage.NewBackendFactory(logger, cfg)

			// Missing hosted-project settings do not stop the server; the
			// handlers answer 500 until it is configured.
			var catalog interfaces.CatalogStore
			catalogURI := cCtx.String(flags.CatalogFlag.Name)
			store, err := factory.CatalogStoreFor(ctx, catalogURI)
			switch {
			case errors.Is(err, interfaces.ErrNotConfigured):
				logger.Warn("Catalog backend not configured", "uri", catalogURI, "err", err)
			case err != nil:
				logger.Error("Failed to create catalog backend", "uri", catalogURI, "err", err)
				return err
			default:
				catalog = store
				logger.Info("Catalog backend ready", "name", catalog.Name(), "location", catalog.LocationURI())
			}
			if closer, ok := catalog.(interface{ Close() }); ok {
				defer closer.Close()
			}

			var signer interfaces.BlobSigner
			blobURI := cCtx.String(flags.BlobFlag.Name)
			blob, err := factory.BlobSignerFor(blobURI)
			switch {
			case errors.Is(err, interfaces.ErrNotConfigured):
				logger.Warn("Blob backend not configured", "uri", blobURI, "err", err)
			case err != nil:
				logger.Error("Failed to create blob backend", "uri", blobURI, "err", err)
				return err
			default:
				signer = blob
				logger.Info("Blob backend ready", "name", signer.Name())
			}

			gate := api.NewAdminGate(cfg.AdminKey)
			serverCfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))
			if catalog != nil {
				serverCfg.ReadyCheck = catalog.Available
			}

			server, err := httpserver.New(serverCfg,
				modshandler.NewHandler(catalog, gate, logger),
				uploadhandler.NewHandler(signer, gate, logger),
			)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
