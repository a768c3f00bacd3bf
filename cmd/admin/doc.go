// Package main (cmd/admin) implements the command-line client for managing
// the mods catalog.
//
// Commands:
//
//	list     - Print every catalog entry, newest first
//	create   - Create an entry from --name, --minecraft-version, --file-name, --file-url and friends
//	update   - Change only the fields given on the command line of entry --id
//	delete   - Delete entry --id
//	sign     - Request a signed upload URL for --file-name
//	publish  - Upload --file through a signed URL and create an entry for it
//
// Every command except list sends the admin key as a bearer token. The key is
// taken from --admin-key or the ADMIN_KEY environment variable.
//
// Example:
//
//	mods-admin --api-addr=http://127.0.0.1:8080 publish \
//	    --file=./lithium-0.13.jar --name=Lithium --minecraft-version=1.21.1 \
//	    --fabric-required --launchers=fabric,prism
package main
