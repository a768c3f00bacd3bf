package interfaces

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected ModID
	}{
		{`"3f2a"`, "3f2a"},
		{`42`, "42"},
		{`null`, ""},
		{` 7 `, "7"},
	}
	for _, tt := range tests {
		var id ModID
		require.NoError(t, json.Unmarshal([]byte(tt.input), &id), tt.input)
		assert.Equal(t, tt.expected, id, tt.input)
	}

	var id ModID
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &id))
}

func TestMod_JSON(t *testing.T) {
	mod := Mod{
		ID:        "7",
		Name:      "Sodium",
		CreatedAt: NewTimestamp(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
	}

	data, err := json.Marshal(mod)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "7", raw["id"])
	assert.Equal(t, []any{}, raw["launchers"])
	assert.Equal(t, "2024-05-01T10:00:00Z", raw["created_at"])
	assert.Equal(t, false, raw["fabric_required"])

	var decoded Mod
	require.NoError(t, json.Unmarshal([]byte(`{"id":12,"name":"X","launchers":["a"]}`), &decoded))
	assert.Equal(t, ModID("12"), decoded.ID)
	assert.Equal(t, []string{"a"}, decoded.Launchers)
}

func TestTimestamp_JSONPassthrough(t *testing.T) {
	tests := []struct {
		input string
		year  int
	}{
		{`"2024-05-01T10:00:00.123456+00:00"`, 2024},
		{`"2023-11-30T23:59:59.5+02:00"`, 2023},
		{`"2024-05-01T10:00:00.123456"`, 2024},
		{`null`, 1},
	}
	for _, tt := range tests {
		var mod Mod
		require.NoError(t, json.Unmarshal([]byte(`{"id":"1","created_at":`+tt.input+`}`), &mod), tt.input)
		assert.Equal(t, tt.year, mod.CreatedAt.Year(), tt.input)

		data, err := json.Marshal(mod)
		require.NoError(t, err)
		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &raw))
		assert.Equal(t, tt.input, string(raw["created_at"]), tt.input)
	}
}

func TestTimestamp_ZeroIsNull(t *testing.T) {
	data, err := json.Marshal(Mod{ID: "1"})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "null", string(raw["created_at"]))

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
}

func TestModInput_MissingRequired(t *testing.T) {
	full := ModInput{Name: "n", MinecraftVersion: "1.21", FileName: "f", FileURL: "u"}
	assert.False(t, full.MissingRequired())

	for _, blank := range []func(*ModInput){
		func(in *ModInput) { in.Name = "" },
		func(in *ModInput) { in.MinecraftVersion = "" },
		func(in *ModInput) { in.FileName = "" },
		func(in *ModInput) { in.FileURL = "" },
	} {
		in := full
		blank(&in)
		assert.True(t, in.MissingRequired())
	}

	optional := full
	optional.Description = ""
	optional.Launchers = nil
	assert.False(t, optional.MissingRequired())
}

func TestModPatch_Apply(t *testing.T) {
	mod := Mod{
		ID:               "1",
		Name:             "old",
		Description:      "desc",
		MinecraftVersion: "1.20",
		FabricRequired:   true,
		Launchers:        []string{"fabric"},
		FileName:         "f",
		FileURL:          "u",
	}

	ModPatch{
		FieldName:           "new",
		FieldFabricRequired: false,
		FieldLaunchers:      []string{},
		FieldID:             "hijack",
	}.Apply(&mod)

	assert.Equal(t, ModID("1"), mod.ID)
	assert.Equal(t, "new", mod.Name)
	assert.Equal(t, "desc", mod.Description)
	assert.False(t, mod.FabricRequired)
	assert.Equal(t, []string{}, mod.Launchers)
	assert.Equal(t, "1.20", mod.MinecraftVersion)
}

func TestIsMutableModField(t *testing.T) {
	for _, f := range MutableModFields {
		assert.True(t, IsMutableModField(f))
	}
	assert.False(t, IsMutableModField(FieldID))
	assert.False(t, IsMutableModField(FieldCreatedAt))
}

func TestNewBackendLocation(t *testing.T) {
	loc, err := NewBackendLocation("S3://AK:SK@bucket/prefix?region=eu-west-1&public=1")
	require.NoError(t, err)
	assert.Equal(t, "s3", loc.Scheme)
	assert.Equal(t, "bucket", loc.Host)
	assert.Equal(t, "/prefix", loc.Path)
	assert.Equal(t, "eu-west-1", loc.GetParam("region"))
	assert.True(t, loc.GetParamBool("public"))
	assert.Equal(t, "AK", loc.User.Username())

	_, err = NewBackendLocation("no-scheme")
	assert.ErrorIs(t, err, ErrInvalidLocationURI)
}
