package interfaces

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Column names of the mods catalog. They double as JSON field names.
const (
	FieldID               = "id"
	FieldName             = "name"
	FieldDescription      = "description"
	FieldMinecraftVersion = "minecraft_version"
	FieldFabricRequired   = "fabric_required"
	FieldLaunchers        = "launchers"
	FieldFileName         = "file_name"
	FieldFileURL          = "file_url"
	FieldCreatedAt        = "created_at"
)

// MutableModFields lists the columns a client may set, in column order.
var MutableModFields = []string{
	FieldName,
	FieldDescription,
	FieldMinecraftVersion,
	FieldFabricRequired,
	FieldLaunchers,
	FieldFileName,
	FieldFileURL,
}

// IsMutableModField reports whether field may appear in a ModPatch.
func IsMutableModField(field string) bool {
	for _, f := range MutableModFields {
		if f == field {
			return true
		}
	}
	return false
}

// ModID identifies a catalog entry. Hosted catalogs key rows either by
// bigint or by uuid, so the JSON form is accepted as a string or a number
// and always written back as a string.
type ModID string

// UnmarshalJSON accepts `"abc"`, `42` and `null`.
func (id *ModID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ModID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid mod id %s: %w", string(data), err)
	}
	*id = ModID(n.String())
	return nil
}

// String returns the raw identifier.
func (id ModID) String() string {
	return string(id)
}

// Timestamp is a store-assigned time. A value decoded from JSON is written
// back byte for byte, so a hosted row keeps its offset form and precision and
// a null stays null. Values built with NewTimestamp encode as RFC 3339, and
// the zero value encodes as null.
type Timestamp struct {
	time.Time
	raw string
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// timestampLayouts are tried after RFC 3339 for columns without a zone.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// MarshalJSON returns the decoded text when there is one.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.raw != "" {
		return []byte(ts.raw), nil
	}
	if ts.Time.IsZero() {
		return []byte("null"), nil
	}
	return ts.Time.MarshalJSON()
}

// UnmarshalJSON keeps the text as received. A string that is not a known
// timestamp form is kept as well and leaves Time zero.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{raw: "null"}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}

	*ts = Timestamp{raw: string(data)}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return nil
}

// Mod is one catalog record as stored by the Catalog Store.
type Mod struct {
	ID               ModID     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	MinecraftVersion string    `json:"minecraft_version"`
	FabricRequired   bool      `json:"fabric_required"`
	Launchers        []string  `json:"launchers"`
	FileName         string    `json:"file_name"`
	FileURL          string    `json:"file_url"`
	CreatedAt        Timestamp `json:"created_at"`
}

// MarshalJSON writes launchers as [] rather than null.
func (m Mod) MarshalJSON() ([]byte, error) {
	type plain Mod
	p := plain(m)
	if p.Launchers == nil {
		p.Launchers = []string{}
	}
	return json.Marshal(p)
}

// ModInput carries the coerced fields of a new catalog entry. The store
// assigns ID and CreatedAt.
type ModInput struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	MinecraftVersion string   `json:"minecraft_version"`
	FabricRequired   bool     `json:"fabric_required"`
	Launchers        []string `json:"launchers"`
	FileName         string   `json:"file_name"`
	FileURL          string   `json:"file_url"`
}

// MissingRequired reports whether any field required at creation is empty.
func (in ModInput) MissingRequired() bool {
	return in.Name == "" || in.MinecraftVersion == "" || in.FileName == "" || in.FileURL == ""
}

// ModPatch is a partial update keyed by column name. Values are already
// coerced: string for text columns, bool for fabric_required and []string
// for launchers. Columns absent from the map are left untouched.
type ModPatch map[string]any

// Apply copies the patched columns onto m.
func (p ModPatch) Apply(m *Mod) {
	for field, value := range p {
		switch field {
		case FieldName:
			m.Name, _ = value.(string)
		case FieldDescription:
			m.Description, _ = value.(string)
		case FieldMinecraftVersion:
			m.MinecraftVersion, _ = value.(string)
		case FieldFabricRequired:
			m.FabricRequired, _ = value.(bool)
		case FieldLaunchers:
			launchers, _ := value.([]string)
			m.Launchers = append([]string{}, launchers...)
		case FieldFileName:
			m.FileName, _ = value.(string)
		case FieldFileURL:
			m.FileURL, _ = value.(string)
		}
	}
}

// SignedUpload is what the Blob Store hands back for a signed upload.
type SignedUpload struct {
	// SignedURL accepts a single upload of the object until it expires.
	SignedURL string

	// Token is the opaque upload token embedded in SignedURL.
	Token string
}
