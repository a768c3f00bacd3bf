package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/glazedv3/mods-backend/interfaces"
)

// MaxBodySize is the maximum allowed request body size (1MB).
const MaxBodySize = 1024 * 1024

var (
	// ErrBadJSON is returned when the body is not a single usable JSON value.
	ErrBadJSON = errors.New("request body is not a JSON object")

	// ErrBodyTooLarge is returned when the body exceeds MaxBodySize.
	ErrBodyTooLarge = errors.New("request body too large")
)

// Payload is a decoded JSON object body. Numbers are kept as json.Number.
// Field accessors follow loose scripting-language coercion so that clients
// sending `1`, `"yes"` or `null` get the same result they always did.
type Payload map[string]any

// DecodePayload reads the whole body (at most MaxBodySize bytes) and decodes
// it with ParsePayload. An empty body decodes as {}.
func DecodePayload(w http.ResponseWriter, r *http.Request) (Payload, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	return ParsePayload(body)
}

// DecodePatchPayload is DecodePayload with the ParsePatchPayload rules.
func DecodePatchPayload(w http.ResponseWriter, r *http.Request) (Payload, error) {
	body, err := readBody(w, r)
	if err != nil {
		return nil, err
	}
	return ParsePatchPayload(body)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, ErrBodyTooLarge
		}
		return nil, ErrBadJSON
	}
	return body, nil
}

// ParsePayload decodes body as a single JSON value. Objects keep their keys,
// arrays and scalars carry no fields and decode as {}, null is rejected.
func ParsePayload(body []byte) (Payload, error) {
	p, _, err := parseValue(body)
	return p, err
}

// ParsePatchPayload is ParsePayload but also rejects scalars, whose keys
// cannot be tested for presence. Arrays still decode as {}.
func ParsePatchPayload(body []byte) (Payload, error) {
	p, scalar, err := parseValue(body)
	if err != nil {
		return nil, err
	}
	if scalar {
		return nil, ErrBadJSON
	}
	return p, nil
}

func parseValue(body []byte) (p Payload, scalar bool, err error) {
	if len(body) == 0 {
		return Payload{}, false, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, false, ErrBadJSON
	}
	// trailing data
	if _, err := decoder.Token(); err != io.EOF {
		return nil, false, ErrBadJSON
	}

	switch t := v.(type) {
	case nil:
		return nil, false, ErrBadJSON
	case map[string]any:
		return Payload(t), false, nil
	case []any:
		return Payload{}, false, nil
	default:
		return Payload{}, true, nil
	}
}

// WritePayloadError maps a DecodePayload error onto the response.
func WritePayloadError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge)
		return
	}
	WriteError(w, http.StatusBadRequest, ErrCodeBadJSON)
}

// Has reports whether key is present, even with a null value.
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Text coerces p[key] to a trimmed string. Absent and falsy values give "".
func (p Payload) Text(key string) string {
	v := p[key]
	if !truthy(v) {
		return ""
	}
	return trimJS(stringify(v))
}

// Bool coerces p[key] by truthiness. Absent gives false.
func (p Payload) Bool(key string) bool {
	return truthy(p[key])
}

// Strings stringifies every element when p[key] is an array and returns an
// empty slice otherwise. Elements are not trimmed.
func (p Payload) Strings(key string) []string {
	arr, ok := p[key].([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		out = append(out, stringify(el))
	}
	return out
}

// ModInput coerces the payload into a new catalog entry.
func (p Payload) ModInput() interfaces.ModInput {
	return interfaces.ModInput{
		Name:             p.Text(interfaces.FieldName),
		Description:      p.Text(interfaces.FieldDescription),
		MinecraftVersion: p.Text(interfaces.FieldMinecraftVersion),
		FabricRequired:   p.Bool(interfaces.FieldFabricRequired),
		Launchers:        p.Strings(interfaces.FieldLaunchers),
		FileName:         p.Text(interfaces.FieldFileName),
		FileURL:          p.Text(interfaces.FieldFileURL),
	}
}

// ModPatch coerces only the mutable fields present in the payload.
func (p Payload) ModPatch() interfaces.ModPatch {
	patch := interfaces.ModPatch{}
	for _, field := range interfaces.MutableModFields {
		if !p.Has(field) {
			continue
		}
		switch field {
		case interfaces.FieldFabricRequired:
			patch[field] = p.Bool(field)
		case interfaces.FieldLaunchers:
			patch[field] = p.Strings(field)
		default:
			patch[field] = p.Text(field)
		}
	}
	return patch
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			// out of float range, still a non-zero literal
			return true
		}
		return f != 0 && !math.IsNaN(f)
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		// arrays and objects
		return true
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return formatNumber(f)
	case float64:
		return formatNumber(t)
	case []any:
		parts := make([]string, len(t))
		for i, el := range t {
			if el == nil {
				continue
			}
			parts[i] = stringify(el)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	default:
		return ""
	}
}

// formatNumber renders f the way a scripting runtime prints a double:
// plain decimals in [1e-6, 1e21), exponent form outside.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// trimJS strips the whitespace and line terminator set of String.prototype.trim:
// Zs, TAB, VT, FF, BOM, LF, CR, LS and PS. U+0085 is kept.
func trimJS(s string) string {
	return strings.TrimFunc(s, isJSSpace)
}

func isJSSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
