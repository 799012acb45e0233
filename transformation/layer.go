package transformation

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
)

// varPattern matches user variable references embedded in overlay
// text, which must survive escaping verbatim
var varPattern = regexp.MustCompile(`\$\([a-zA-Z]\w+\)`)

// encodeLayer serialises an overlay or underlay.
//
// A plain string passes through, except for the "fetch:url" shorthand
// which base64url-encodes the URL.  A map is assembled from
// resource_type, type, public_id, format, url and the text options:
// text layers need a font (or a prebuilt text_style) and double-escape
// reserved characters in the text, fetch layers carry the encoded
// remote URL, everything else needs a public_id.
func encodeLayer(layer interface{}, param string) (string, error) {
	if s, ok := layer.(string); ok {
		if strings.HasPrefix(s, "fetch:") {
			return "fetch:" + encodeFetchURL(strings.TrimPrefix(s, "fetch:")), nil
		}
		return s, nil
	}
	m, ok := toMap(layer)
	if !ok {
		return api.ToString(layer), nil
	}

	resourceType := api.ToString(m["resource_type"])
	if resourceType == "" {
		resourceType = "image"
	}
	layerType := api.ToString(m["type"])
	publicID := api.ToString(m["public_id"])
	format := api.ToString(m["format"])
	text := api.ToString(m["text"])
	fetchURL := api.ToString(m["url"])

	if text != "" && resourceType == "image" {
		resourceType = "text"
	}
	isFetch := fetchURL != ""
	if isFetch && resourceType == "image" {
		resourceType = "fetch"
	}
	if publicID != "" && format != "" {
		publicID += "." + format
	}
	if publicID == "" && !isFetch && resourceType != "text" && resourceType != "fetch" {
		return "", api.NewErrorf(api.InvalidTransformation, "must supply public_id for non-text %s", param)
	}

	var components []string
	if resourceType != "image" {
		components = append(components, resourceType)
	}
	if layerType != "" && layerType != "upload" {
		components = append(components, layerType)
	}

	switch {
	case isFetch:
		if resourceType != "fetch" {
			components = append(components, "fetch")
		}
		components = append(components, encodeFetchURL(fetchURL))
	case resourceType == "text", resourceType == "subtitles":
		if publicID == "" && text == "" {
			return "", api.NewErrorf(api.InvalidTransformation, "must supply either text or public_id in %s", param)
		}
		style, err := textStyle(m, param)
		if err != nil {
			return "", err
		}
		if style != "" {
			components = append(components, style)
		}
		if publicID != "" {
			components = append(components, strings.ReplaceAll(publicID, "/", ":"))
		}
		if text != "" {
			components = append(components, escapeText(text))
		}
	default:
		components = append(components, strings.ReplaceAll(publicID, "/", ":"))
	}
	return strings.Join(components, ":"), nil
}

// textStyle builds the "font_size_keywords" style component, or uses
// a caller-supplied text_style verbatim
func textStyle(m map[string]interface{}, param string) (string, error) {
	if style := api.ToString(m["text_style"]); style != "" {
		return style, nil
	}

	var keywords []string
	for _, opt := range []struct{ key, absent string }{
		{"font_weight", "normal"},
		{"font_style", "normal"},
		{"text_decoration", "none"},
		{"text_align", ""},
		{"stroke", "none"},
	} {
		if v := api.ToString(m[opt.key]); v != "" && v != opt.absent {
			keywords = append(keywords, v)
		}
	}
	if v := api.ToString(m["letter_spacing"]); v != "" {
		keywords = append(keywords, "letter_spacing_"+v)
	}
	if v := api.ToString(m["line_spacing"]); v != "" {
		keywords = append(keywords, "line_spacing_"+v)
	}

	fontFamily := api.ToString(m["font_family"])
	fontSize := api.ToString(m["font_size"])
	if fontFamily == "" && fontSize == "" && len(keywords) == 0 {
		return "", nil
	}
	if fontFamily == "" {
		return "", api.NewErrorf(api.InvalidTransformation, "must supply font_family for text in %s", param)
	}
	if fontSize == "" {
		return "", api.NewErrorf(api.InvalidTransformation, "must supply font_size for text in %s", param)
	}
	return strings.Join(append([]string{fontFamily, fontSize}, keywords...), "_"), nil
}

// escapeText percent-encodes overlay text, double-encoding "," and
// "/" so they survive the CDN's own decode pass.  Embedded $(var)
// references stay verbatim.
func escapeText(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range varPattern.FindAllStringIndex(text, -1) {
		b.WriteString(escapeTextPart(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(escapeTextPart(text[last:]))
	return b.String()
}

var textEscaper = strings.NewReplacer(",", "%2C", "/", "%2F")

func escapeTextPart(s string) string {
	return api.SmartEscape(textEscaper.Replace(s))
}

// encodeFetchURL base64url-encodes a remote URL without padding
func encodeFetchURL(url string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(url))
}
