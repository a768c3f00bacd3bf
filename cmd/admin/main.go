package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/glazedv3/mods-backend/api/clients"
	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var flagAPIAddr *cli.StringFlag = &cli.StringFlag{
	Name:    "api-addr",
	Value:   "http://127.0.0.1:8080",
	Usage:   "Mods API address to request",
	EnvVars: []string{"MODS_API_ADDR"},
}
var flagAdminKey *cli.StringFlag = &cli.StringFlag{
	Name:    "admin-key",
	Usage:   "Admin bearer secret",
	EnvVars: []string{"ADMIN_KEY"},
}
var flagID *cli.StringFlag = &cli.StringFlag{
	Name:     "id",
	Usage:    "Mod id",
	Required: true,
}
var flagName *cli.StringFlag = &cli.StringFlag{
	Name:  "name",
	Usage: "Display name",
}
var flagDescription *cli.StringFlag = &cli.StringFlag{
	Name:  "description",
	Usage: "Free-text description",
}
var flagMinecraftVersion *cli.StringFlag = &cli.StringFlag{
	Name:  "minecraft-version",
	Usage: "Target game version, e.g. 1.21.1",
}
var flagFabricRequired *cli.BoolFlag = &cli.BoolFlag{
	Name:  "fabric-required",
	Usage: "Whether the mod needs the Fabric loader",
}
var flagLaunchers *cli.StringSliceFlag = &cli.StringSliceFlag{
	Name:  "launchers",
	Usage: "Compatible launchers (comma separated)",
}
var flagFileName *cli.StringFlag = &cli.StringFlag{
	Name:  "file-name",
	Usage: "Original file name of the mod binary",
}
var flagFileURL *cli.StringFlag = &cli.StringFlag{
	Name:  "file-url",
	Usage: "Public download URL of the mod binary",
}
var flagFile *cli.StringFlag = &cli.StringFlag{
	Name:     "file",
	Usage:    "Path of the file to upload",
	Required: true,
}

var modFieldFlags = []cli.Flag{
	flagName,
	flagDescription,
	flagMinecraftVersion,
	flagFabricRequired,
	flagLaunchers,
	flagFileName,
	flagFileURL,
}

func newClient(cCtx *cli.Context) *clients.ModsClient {
	return clients.NewModsClient(cCtx.String(flagAPIAddr.Name), cCtx.String(flagAdminKey.Name))
}

func modInput(cCtx *cli.Context) interfaces.ModInput {
	return interfaces.ModInput{
		Name:             cCtx.String(flagName.Name),
		Description:      cCtx.String(flagDescription.Name),
		MinecraftVersion: cCtx.String(flagMinecraftVersion.Name),
		FabricRequired:   cCtx.Bool(flagFabricRequired.Name),
		Launchers:        cCtx.StringSlice(flagLaunchers.Name),
		FileName:         cCtx.String(flagFileName.Name),
		FileURL:          cCtx.String(flagFileURL.Name),
	}
}

// modPatch carries only the flags given on the command line.
func modPatch(cCtx *cli.Context) interfaces.ModPatch {
	patch := interfaces.ModPatch{}
	for name, field := range map[string]string{
		flagName.Name:             interfaces.FieldName,
		flagDescription.Name:      interfaces.FieldDescription,
		flagMinecraftVersion.Name: interfaces.FieldMinecraftVersion,
		flagFileName.Name:         interfaces.FieldFileName,
		flagFileURL.Name:          interfaces.FieldFileURL,
	} {
		if cCtx.IsSet(name) {
			patch[field] = cCtx.String(name)
		}
	}
	if cCtx.IsSet(flagFabricRequired.Name) {
		patch[interfaces.FieldFabricRequired] = cCtx.Bool(flagFabricRequired.Name)
	}
	if cCtx.IsSet(flagLaunchers.Name) {
		patch[interfaces.FieldLaunchers] = cCtx.StringSlice(flagLaunchers.Name)
	}
	return patch
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	// Values from a local .env never override the real environment
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "mods-admin",
		Usage: "Manage the mods catalog",
		Flags: []cli.Flag{
			flagAPIAddr,
			flagAdminKey,
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List catalog entries, newest first",
				Action: func(cCtx *cli.Context) error {
					mods, err := newClient(cCtx).ListMods(cCtx.Context)
					if err != nil {
						return err
					}
					return printJSON(mods)
				},
			},
			{
				Name:  "create",
				Usage: "Create a catalog entry",
				Flags: modFieldFlags,
				Action: func(cCtx *cli.Context) error {
					mod, err := newClient(cCtx).CreateMod(cCtx.Context, modInput(cCtx))
					if err != nil {
						return err
					}
					return printJSON(mod)
				},
			},
			{
				Name:  "update",
				Usage: "Update the given fields of a catalog entry",
				Flags: append([]cli.Flag{flagID}, modFieldFlags...),
				Action: func(cCtx *cli.Context) error {
					id := interfaces.ModID(cCtx.String(flagID.Name))
					mod, err := newClient(cCtx).UpdateMod(cCtx.Context, id, modPatch(cCtx))
					if err != nil {
						return err
					}
					return printJSON(mod)
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a catalog entry",
				Flags: []cli.Flag{flagID},
				Action: func(cCtx *cli.Context) error {
					id := interfaces.ModID(cCtx.String(flagID.Name))
					if err := newClient(cCtx).DeleteMod(cCtx.Context, id); err != nil {
						return err
					}
					fmt.Println("deleted", id)
					return nil
				},
			},
			{
				Name:  "sign",
				Usage: "Request a signed upload URL for a file name",
				Flags: []cli.Flag{flagFileName},
				Action: func(cCtx *cli.Context) error {
					ticket, err := newClient(cCtx).SignUpload(cCtx.Context, cCtx.String(flagFileName.Name))
					if err != nil {
						return err
					}
					return printJSON(ticket)
				},
			},
			{
				Name:        "publish",
				Usage:       "Upload a file and create a catalog entry pointing at it",
				Description: "Signs an upload for the file, PUTs the bytes to the signed URL and creates the entry with the returned public URL.",
				Flags:       append([]cli.Flag{flagFile}, modFieldFlags...),
				Action: func(cCtx *cli.Context) error {
					client := newClient(cCtx)
					path := cCtx.String(flagFile.Name)

					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}

					fileName := filepath.Base(path)
					ticket, err := client.SignUpload(cCtx.Context, fileName)
					if err != nil {
						return fmt.Errorf("failed to sign upload: %w", err)
					}

					if err := client.UploadFile(cCtx.Context, ticket.SignedURL, http.DetectContentType(data), data); err != nil {
						return fmt.Errorf("failed to upload %s: %w", ticket.Path, err)
					}

					in := modInput(cCtx)
					if in.FileName == "" {
						in.FileName = fileName
					}
					in.FileURL = ticket.PublicURL

					mod, err := client.CreateMod(cCtx.Context, in)
					if err != nil {
						return err
					}
					return printJSON(mod)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
