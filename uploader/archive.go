package uploader

import (
	"context"
	"strconv"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/transformation"
)

// ArchiveParams select the assets bundled into a generated archive
type ArchiveParams struct {
	ResourceType           string
	Type                   string
	Mode                   string
	TargetFormat           string
	TargetPublicID         string
	TargetTags             []string
	Tags                   []string
	PublicIDs              []string
	Prefixes               []string
	Transformations        []Eager
	FlattenFolders         bool
	FlattenTransformations bool
	UseOriginalFilename    bool
	KeepDerived            bool
	SkipTransformationName bool
	AllowMissing           bool
	Async                  bool
	NotificationURL        string
	ExpiresAt              int64

	FreeForm map[string]interface{}
}

func (p *ArchiveParams) buildParams() (map[string]interface{}, error) {
	if p == nil {
		p = &ArchiveParams{}
	}
	params := map[string]interface{}{
		"type":             p.Type,
		"mode":             p.Mode,
		"target_format":    p.TargetFormat,
		"target_public_id": p.TargetPublicID,
		"notification_url": p.NotificationURL,
	}
	if len(p.TargetTags) > 0 {
		params["target_tags"] = p.TargetTags
	}
	if len(p.Tags) > 0 {
		params["tags"] = p.Tags
	}
	if len(p.PublicIDs) > 0 {
		params["public_ids"] = p.PublicIDs
	}
	if len(p.Prefixes) > 0 {
		params["prefixes"] = p.Prefixes
	}
	if len(p.Transformations) > 0 {
		encoded, err := buildEager(p.Transformations)
		if err != nil {
			return nil, err
		}
		params["transformations"] = encoded
	}
	setBool := func(key string, set bool) {
		if set {
			params[key] = true
		}
	}
	setBool("flatten_folders", p.FlattenFolders)
	setBool("flatten_transformations", p.FlattenTransformations)
	setBool("use_original_filename", p.UseOriginalFilename)
	setBool("keep_derived", p.KeepDerived)
	setBool("skip_transformation_name", p.SkipTransformationName)
	setBool("allow_missing", p.AllowMissing)
	setBool("async", p.Async)
	if p.ExpiresAt != 0 {
		params["expires_at"] = p.ExpiresAt
	}
	for k, v := range p.FreeForm {
		params[k] = v
	}
	return params, nil
}

// CreateArchive generates an archive of the selected assets and
// stores it as a raw asset
func (u *API) CreateArchive(ctx context.Context, p *ArchiveParams) (*api.Response, error) {
	params, err := p.buildParams()
	if err != nil {
		return nil, err
	}
	resourceType := api.Image.String()
	if p != nil && p.ResourceType != "" {
		resourceType = p.ResourceType
	}
	return u.call(ctx, resourceType, "generate_archive", params, callOptions{})
}

// CreateZip generates a zip archive of the selected assets
func (u *API) CreateZip(ctx context.Context, p *ArchiveParams) (*api.Response, error) {
	if p == nil {
		p = &ArchiveParams{}
	}
	p.TargetFormat = "zip"
	return u.CreateArchive(ctx, p)
}

// Multi assembles all assets with the given tag into one animated image
func (u *API) Multi(ctx context.Context, tag string, trans interface{}) (*api.Response, error) {
	encoded, err := transformation.Encode(trans)
	if err != nil {
		return nil, err
	}
	params := map[string]interface{}{
		"tag":            tag,
		"transformation": encoded,
	}
	return u.call(ctx, api.Image.String(), "multi", params, callOptions{})
}

// GenerateSprite builds a sprite sheet and css from all assets with
// the given tag
func (u *API) GenerateSprite(ctx context.Context, tag string, trans interface{}) (*api.Response, error) {
	encoded, err := transformation.Encode(trans)
	if err != nil {
		return nil, err
	}
	params := map[string]interface{}{
		"tag":            tag,
		"transformation": encoded,
	}
	return u.call(ctx, api.Image.String(), "sprite", params, callOptions{})
}

// SlideshowParams describe a server-generated video slideshow
type SlideshowParams struct {
	ManifestTransformation interface{}
	ManifestJSON           map[string]interface{}
	PublicID               string
	UploadPreset           string
	NotificationURL        string
	Overwrite              bool

	FreeForm map[string]interface{}
}

// CreateSlideshow renders a slideshow video from a manifest
func (u *API) CreateSlideshow(ctx context.Context, p SlideshowParams) (*api.Response, error) {
	params := map[string]interface{}{
		"public_id":        p.PublicID,
		"upload_preset":    p.UploadPreset,
		"notification_url": p.NotificationURL,
	}
	if p.ManifestTransformation != nil {
		encoded, err := transformation.Encode(p.ManifestTransformation)
		if err != nil {
			return nil, err
		}
		params["manifest_transformation"] = encoded
	}
	if p.ManifestJSON != nil {
		body, err := api.JSONBody(p.ManifestJSON)
		if err != nil {
			return nil, err
		}
		params["manifest_json"] = string(body)
	}
	if p.Overwrite {
		params["overwrite"] = true
	}
	for k, v := range p.FreeForm {
		params[k] = v
	}
	return u.call(ctx, api.Video.String(), "create_slideshow", params, callOptions{})
}

// signedURL builds a signed GET URL under the upload API root
func (u *API) signedURL(resourceType, action string, params map[string]interface{}) (string, error) {
	values, err := api.NormalizeParams(params)
	if err != nil {
		return "", err
	}
	if err := u.signParams(values); err != nil {
		return "", err
	}
	return u.rootURL() + "/" + resourceType + "/" + action + "?" + values.Encode(), nil
}

// DownloadParams tweak a private download URL
type DownloadParams struct {
	ResourceType string
	Type         string
	Attachment   string
	ExpiresAt    int64
}

// PrivateDownloadURL builds a time-limited URL for downloading the
// original of a private asset
func (u *API) PrivateDownloadURL(publicID, format string, p DownloadParams) (string, error) {
	params := map[string]interface{}{
		"public_id":  publicID,
		"format":     format,
		"type":       p.Type,
		"attachment": p.Attachment,
	}
	if p.ExpiresAt != 0 {
		params["expires_at"] = strconv.FormatInt(p.ExpiresAt, 10)
	}
	return u.signedURL(orImage(p.ResourceType), "download", params)
}

// ZipDownloadURL builds a signed URL that downloads a zip of all
// assets with the given tag
func (u *API) ZipDownloadURL(tag string, trans interface{}) (string, error) {
	encoded, err := transformation.Encode(trans)
	if err != nil {
		return "", err
	}
	params := map[string]interface{}{
		"tag":            tag,
		"transformation": encoded,
	}
	return u.signedURL(api.Image.String(), "download_tag.zip", params)
}

// DownloadArchiveURL builds a signed URL that generates and streams
// an archive on access
func (u *API) DownloadArchiveURL(p *ArchiveParams) (string, error) {
	params, err := p.buildParams()
	if err != nil {
		return "", err
	}
	params["mode"] = "download"
	resourceType := api.Image.String()
	if p != nil && p.ResourceType != "" {
		resourceType = p.ResourceType
	}
	return u.signedURL(resourceType, "generate_archive", params)
}
