/*
Package clients provides a Go client for the mods catalog API.

ModsClient wraps every endpoint:

- ListMods - GET /mods
- CreateMod - POST /mods (admin)
- UpdateMod - PATCH /mods?id= (admin)
- DeleteMod - DELETE /mods?id= (admin)
- SignUpload - POST /upload-sign (admin)
- UploadFile - PUT the file to the signed URL returned by SignUpload

Failures reported by the API are returned as *APIError carrying the HTTP
status, the error code and the optional details:

	client := clients.NewModsClient("http://localhost:8080", adminKey)
	_, err := client.CreateMod(ctx, interfaces.ModInput{Name: "x"})
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "missing_fields" {
	    // ...
	}
*/
package clients
