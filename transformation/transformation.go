// Package transformation encodes declarative asset transformations
// into their URL form: slash-separated pipeline steps, each a
// comma-separated list of short tokens.
package transformation

import (
	"encoding/base64"
	"sort"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
)

// Transformation is a single pipeline step keyed by the long option
// names (width, crop, overlay, ...).  Keys starting with "$" define
// user variables.
type Transformation map[string]interface{}

// Variable is one entry of the ordered variables block, emitted
// before all other tokens in insertion order.
type Variable struct {
	Name  string
	Value interface{}
}

// simpleParams maps options with no sub-encoding to their URL prefixes
var simpleParams = map[string]string{
	"width":             "w",
	"height":            "h",
	"crop":              "c",
	"quality":           "q",
	"gravity":           "g",
	"prefix":            "p",
	"x":                 "x",
	"y":                 "y",
	"default_image":     "d",
	"opacity":           "o",
	"fetch_format":      "f",
	"page":              "pg",
	"density":           "dn",
	"delay":             "dl",
	"color_space":       "cs",
	"streaming_profile": "sp",
	"keyframe_interval": "ki",
	"video_codec":       "vc",
	"audio_codec":       "ac",
	"bit_rate":          "br",
	"audio_frequency":   "af",
	"video_sampling":    "vs",
	"start_offset":      "so",
	"end_offset":        "eo",
	"duration":          "du",
	"dpr":               "dpr",
	"aspect_ratio":      "ar",
	"fps":               "fps",
	"zoom":              "z",
}

// expressionParams lists the options whose values may contain
// arithmetic or conditional expressions
var expressionParams = map[string]bool{
	"width":        true,
	"height":       true,
	"x":            true,
	"y":            true,
	"angle":        true,
	"radius":       true,
	"aspect_ratio": true,
	"dpr":          true,
	"opacity":      true,
	"quality":      true,
	"effect":       true,
	"zoom":         true,
	"start_offset": true,
	"end_offset":   true,
	"duration":     true,
}

// Encode serialises a transformation into its URL form.
//
// It accepts nil (empty result), a raw string (passed through), a
// single step as a Transformation or plain map, or a slice of any of
// those, which encodes as a chained pipeline joined with "/".
func Encode(t interface{}) (string, error) {
	switch v := t.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case Transformation:
		return encodeSingle(v)
	case map[string]interface{}:
		return encodeSingle(v)
	case []Transformation:
		parts := make([]interface{}, len(v))
		for i := range v {
			parts[i] = v[i]
		}
		return encodeChain(parts)
	case []map[string]interface{}:
		parts := make([]interface{}, len(v))
		for i := range v {
			parts[i] = v[i]
		}
		return encodeChain(parts)
	case []interface{}:
		return encodeChain(v)
	}
	return "", api.NewErrorf(api.InvalidTransformation, "unsupported transformation type %T", t)
}

func encodeChain(steps []interface{}) (string, error) {
	encoded := make([]string, 0, len(steps))
	for _, step := range steps {
		s, err := Encode(step)
		if err != nil {
			return "", err
		}
		if s != "" {
			encoded = append(encoded, s)
		}
	}
	return strings.Join(encoded, "/"), nil
}

func encodeSingle(t map[string]interface{}) (string, error) {
	opts := make(map[string]interface{}, len(t))
	for k, v := range t {
		if v != nil {
			opts[k] = v
		}
	}
	pop := func(key string) (interface{}, bool) {
		v, ok := opts[key]
		delete(opts, key)
		return v, ok
	}

	if size, ok := pop("size"); ok {
		if w, h, found := strings.Cut(api.ToString(size), "x"); found {
			opts["width"], opts["height"] = w, h
		}
	}

	var tokens []string
	add := func(prefix, value string) {
		if value != "" {
			tokens = append(tokens, prefix+"_"+value)
		}
	}

	// a transformation value is either a named transformation (or a
	// dot-joined list of names) or a nested pipeline to chain before
	// this step
	var chain []string
	if base, ok := pop("transformation"); ok {
		named, sub, err := encodeBase(base)
		if err != nil {
			return "", err
		}
		add("t", named)
		chain = sub
	}

	if v, ok := pop("background"); ok {
		add("b", colorValue(api.ToString(v)))
	}
	if v, ok := pop("color"); ok {
		add("co", colorValue(api.ToString(v)))
	}
	if v, ok := pop("border"); ok {
		add("bo", borderValue(v))
	}
	if v, ok := pop("effect"); ok {
		add("e", NormalizeExpression(effectValue(v)))
	}
	if v, ok := pop("flags"); ok {
		add("fl", joinValues(v, "."))
	}
	if v, ok := pop("angle"); ok {
		add("a", NormalizeExpression(joinValues(v, ".")))
	}
	if v, ok := pop("radius"); ok {
		r, err := radiusValue(v)
		if err != nil {
			return "", err
		}
		add("r", r)
	}
	if v, ok := pop("overlay"); ok {
		l, err := encodeLayer(v, "overlay")
		if err != nil {
			return "", err
		}
		add("l", l)
	}
	if v, ok := pop("underlay"); ok {
		l, err := encodeLayer(v, "underlay")
		if err != nil {
			return "", err
		}
		add("u", l)
	}
	if v, ok := pop("custom_function"); ok {
		fn, err := customFunctionValue(v)
		if err != nil {
			return "", err
		}
		add("fn", fn)
	}

	// the condition leads the step, then user variable definitions in
	// insertion order, then everything else sorted
	var ordered []string
	if v, ok := pop("if"); ok {
		if cond := NormalizeExpression(api.ToString(v)); cond != "" {
			ordered = append(ordered, "if_"+cond)
		}
	}
	if v, ok := pop("variables"); ok {
		vars, err := variablesBlock(v)
		if err != nil {
			return "", err
		}
		ordered = append(ordered, vars...)
	}

	rawValue, _ := pop("raw_transformation")
	raw := api.ToString(rawValue)

	for key, value := range opts {
		if strings.HasPrefix(key, "$") {
			add(key, NormalizeExpression(api.ToString(value)))
			continue
		}
		prefix, ok := simpleParams[key]
		if !ok {
			continue
		}
		s := api.ToString(value)
		if expressionParams[key] {
			s = NormalizeExpression(s)
		}
		add(prefix, s)
	}

	sort.Strings(tokens)
	tokens = append(ordered, tokens...)
	step := strings.Join(tokens, ",")
	if raw != "" {
		if step == "" {
			step = raw
		} else {
			step += "," + raw
		}
	}

	if step != "" {
		chain = append(chain, step)
	}
	return strings.Join(chain, "/"), nil
}

// encodeBase splits the "transformation" option into a named
// transformation reference and a chain of nested pipeline steps.
// Plain strings name saved transformations and join with "."; any
// map in the list switches the whole value to nested-pipeline mode.
func encodeBase(base interface{}) (named string, chain []string, err error) {
	list, ok := base.([]interface{})
	if !ok {
		list = []interface{}{base}
	}
	nested := false
	for _, e := range list {
		switch e.(type) {
		case Transformation, map[string]interface{}:
			nested = true
		}
	}
	if !nested {
		names := make([]string, 0, len(list))
		for _, e := range list {
			if s := api.ToString(e); s != "" {
				names = append(names, s)
			}
		}
		return strings.Join(names, "."), nil, nil
	}
	for _, e := range list {
		s, err := Encode(e)
		if err != nil {
			return "", nil, err
		}
		if s != "" {
			chain = append(chain, s)
		}
	}
	return "", chain, nil
}

// colorValue turns "#RRGGBB[AA]" into "rgb:RRGGBB[AA]"
func colorValue(s string) string {
	return strings.Replace(s, "#", "rgb:", 1)
}

// borderValue encodes {width, color} as "Npx_solid_color", defaults
// width 2, color black
func borderValue(v interface{}) string {
	m, ok := toMap(v)
	if !ok {
		return api.ToString(v)
	}
	width := "2"
	if w, ok := m["width"]; ok {
		width = api.ToString(w)
	}
	color := "black"
	if c, ok := m["color"]; ok {
		color = colorValue(api.ToString(c))
	}
	return width + "px_solid_" + color
}

// effectValue joins an effect given as [name, level] or a single-entry
// map with ":"
func effectValue(v interface{}) string {
	switch e := v.(type) {
	case []interface{}:
		parts := make([]string, len(e))
		for i, p := range e {
			parts[i] = api.ToString(p)
		}
		return strings.Join(parts, ":")
	case []string:
		return strings.Join(e, ":")
	}
	if m, ok := toMap(v); ok {
		for k, value := range m {
			return k + ":" + api.ToString(value)
		}
		return ""
	}
	return api.ToString(v)
}

// radiusValue joins 1 to 4 corner components with ":"
func radiusValue(v interface{}) (string, error) {
	var parts []string
	switch r := v.(type) {
	case []interface{}:
		for _, p := range r {
			parts = append(parts, NormalizeExpression(api.ToString(p)))
		}
	case []string:
		for _, p := range r {
			parts = append(parts, NormalizeExpression(p))
		}
	default:
		s := NormalizeExpression(api.ToString(v))
		if s == "" {
			return "", api.NewError(api.InvalidTransformation, "radius must have between 1 and 4 values")
		}
		return s, nil
	}
	if len(parts) < 1 || len(parts) > 4 {
		return "", api.NewError(api.InvalidTransformation, "radius must have between 1 and 4 values")
	}
	return strings.Join(parts, ":"), nil
}

// customFunctionValue encodes {function_type, source} as
// "wasm:source" or "remote:base64url(source)"
func customFunctionValue(v interface{}) (string, error) {
	m, ok := toMap(v)
	if !ok {
		return api.ToString(v), nil
	}
	fnType := api.ToString(m["function_type"])
	source := api.ToString(m["source"])
	switch fnType {
	case "wasm":
		return "wasm:" + source, nil
	case "remote":
		return "remote:" + base64.RawURLEncoding.EncodeToString([]byte(source)), nil
	}
	return "", api.NewErrorf(api.InvalidTransformation, "unsupported custom function type %q", fnType)
}

func variablesBlock(v interface{}) ([]string, error) {
	vars, ok := v.([]Variable)
	if !ok {
		return nil, api.NewErrorf(api.InvalidTransformation, "variables must be a []transformation.Variable, got %T", v)
	}
	block := make([]string, 0, len(vars))
	for _, entry := range vars {
		name := entry.Name
		if !strings.HasPrefix(name, "$") {
			name = "$" + name
		}
		block = append(block, name+"_"+NormalizeExpression(api.ToString(entry.Value)))
	}
	return block, nil
}

// joinValues joins a scalar or slice value with sep
func joinValues(v interface{}, sep string) string {
	switch list := v.(type) {
	case []interface{}:
		parts := make([]string, len(list))
		for i, p := range list {
			parts[i] = api.ToString(p)
		}
		return strings.Join(parts, sep)
	case []string:
		return strings.Join(list, sep)
	}
	return api.ToString(v)
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case Transformation:
		return m, true
	}
	return nil, false
}
