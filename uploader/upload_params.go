package uploader

import (
	"sort"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/transformation"
)

// Eager requests one derived version to be generated at upload time
type Eager struct {
	Transformation interface{}
	Format         string
}

// UploadParams are the recognised upload options.  FreeForm entries
// are merged last and win over the typed fields, which keeps newer
// server options usable before they grow a field here.
type UploadParams struct {
	PublicID                string
	Folder                  string
	ResourceType            string // path segment, not a wire parameter
	Type                    string
	Format                  string
	UploadPreset            string
	NotificationURL         string
	EagerNotificationURL    string
	Proxy                   string
	Moderation              string
	AccessMode              string
	Callback                string
	AutoTagging             interface{}
	Categorization          string
	Detection               string
	OCR                     string
	AllowedFormats          []string
	Tags                    []string
	Context                 map[string]interface{}
	Metadata                map[string]interface{}
	FaceCoordinates         interface{}
	CustomCoordinates       interface{}
	Transformation          interface{}
	Eager                   []Eager
	ResponsiveBreakpoints   interface{}
	AccessControl           interface{}
	Headers                 map[string]string
	Backup                  bool
	Faces                   bool
	QualityAnalysis         bool
	ImageMetadata           bool
	Phash                   bool
	Exif                    bool
	Colors                  bool
	UseFilename             bool
	UniqueFilename          *bool
	DiscardOriginalFilename bool
	EagerAsync              bool
	Invalidate              bool
	Overwrite               *bool
	ReturnDeleteToken       bool
	Async                   bool

	FreeForm map[string]interface{}
}

// buildParams flattens the typed options into the wire parameter map
func (p *UploadParams) buildParams() (map[string]interface{}, error) {
	if p == nil {
		p = &UploadParams{}
	}
	params := map[string]interface{}{
		"public_id":              p.PublicID,
		"folder":                 p.Folder,
		"type":                   p.Type,
		"format":                 p.Format,
		"upload_preset":          p.UploadPreset,
		"notification_url":       p.NotificationURL,
		"eager_notification_url": p.EagerNotificationURL,
		"proxy":                  p.Proxy,
		"moderation":             p.Moderation,
		"access_mode":            p.AccessMode,
		"callback":               p.Callback,
		"categorization":         p.Categorization,
		"detection":              p.Detection,
		"ocr":                    p.OCR,
	}
	if p.AutoTagging != nil {
		params["auto_tagging"] = p.AutoTagging
	}
	if len(p.AllowedFormats) > 0 {
		params["allowed_formats"] = strings.Join(p.AllowedFormats, ",")
	}
	if len(p.Tags) > 0 {
		params["tags"] = strings.Join(p.Tags, ",")
	}
	if len(p.Context) > 0 {
		encoded, err := api.EncodeMap(p.Context)
		if err != nil {
			return nil, err
		}
		params["context"] = encoded
	}
	if len(p.Metadata) > 0 {
		encoded, err := api.EncodeMap(p.Metadata)
		if err != nil {
			return nil, err
		}
		params["metadata"] = encoded
	}
	if p.FaceCoordinates != nil {
		params["face_coordinates"] = api.EncodeDoubleArray(p.FaceCoordinates)
	}
	if p.CustomCoordinates != nil {
		params["custom_coordinates"] = api.EncodeDoubleArray(p.CustomCoordinates)
	}
	if p.Transformation != nil {
		encoded, err := transformation.Encode(p.Transformation)
		if err != nil {
			return nil, err
		}
		params["transformation"] = encoded
	}
	if len(p.Eager) > 0 {
		encoded, err := buildEager(p.Eager)
		if err != nil {
			return nil, err
		}
		params["eager"] = encoded
	}
	if p.ResponsiveBreakpoints != nil {
		body, err := api.JSONBody(asList(p.ResponsiveBreakpoints))
		if err != nil {
			warnf("dropping unencodable responsive_breakpoints: %v", err)
		} else {
			params["responsive_breakpoints"] = string(body)
		}
	}
	if p.AccessControl != nil {
		body, err := api.JSONBody(asList(p.AccessControl))
		if err != nil {
			return nil, err
		}
		params["access_control"] = string(body)
	}
	if len(p.Headers) > 0 {
		params["headers"] = buildCustomHeaders(p.Headers)
	}

	setBool := func(key string, set bool) {
		if set {
			params[key] = true
		}
	}
	setBool("backup", p.Backup)
	setBool("faces", p.Faces)
	setBool("quality_analysis", p.QualityAnalysis)
	setBool("image_metadata", p.ImageMetadata)
	setBool("phash", p.Phash)
	setBool("exif", p.Exif)
	setBool("colors", p.Colors)
	setBool("use_filename", p.UseFilename)
	setBool("discard_original_filename", p.DiscardOriginalFilename)
	setBool("eager_async", p.EagerAsync)
	setBool("invalidate", p.Invalidate)
	setBool("return_delete_token", p.ReturnDeleteToken)
	setBool("async", p.Async)
	if p.UniqueFilename != nil {
		params["unique_filename"] = *p.UniqueFilename
	}
	if p.Overwrite != nil {
		params["overwrite"] = *p.Overwrite
	}

	for k, v := range p.FreeForm {
		params[k] = v
	}
	return params, nil
}

// buildEager joins the eager derivations with "|", each derivation
// its transformation and optional format joined with "/"
func buildEager(eager []Eager) (string, error) {
	single := make([]string, 0, len(eager))
	for _, e := range eager {
		encoded, err := transformation.Encode(e.Transformation)
		if err != nil {
			return "", err
		}
		if e.Format != "" {
			encoded += "/" + e.Format
		}
		single = append(single, encoded)
	}
	return strings.Join(single, "|"), nil
}

// buildCustomHeaders renders the extra delivery headers one per line
func buildCustomHeaders(headers map[string]string) string {
	lines := make([]string, 0, len(headers))
	for k, v := range headers {
		lines = append(lines, k+": "+v)
	}
	// deterministic for signing
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// asList wraps a single map in a slice so the wire value is always a
// JSON array
func asList(v interface{}) interface{} {
	switch v.(type) {
	case []interface{}, []map[string]interface{}:
		return v
	}
	return []interface{}{v}
}
