package admin

import (
	"context"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
)

// ListParams page and filter an asset listing
type ListParams struct {
	ResourceType string
	Type         string
	NextCursor   string
	MaxResults   int
	Prefix       string
	StartAt      string
	Direction    string
	Tags         bool
	Context      bool
	Moderations  bool
}

func (p ListParams) toParams() map[string]interface{} {
	params := map[string]interface{}{
		"next_cursor": p.NextCursor,
		"prefix":      p.Prefix,
		"start_at":    p.StartAt,
		"direction":   p.Direction,
	}
	if p.MaxResults > 0 {
		params["max_results"] = p.MaxResults
	}
	if p.Tags {
		params["tags"] = true
	}
	if p.Context {
		params["context"] = true
	}
	if p.Moderations {
		params["moderations"] = true
	}
	return params
}

func (p ListParams) resourceType() string {
	if p.ResourceType == "" {
		return api.Image.String()
	}
	return p.ResourceType
}

// Resources lists assets, optionally restricted to one delivery type
func (a *API) Resources(ctx context.Context, p ListParams) (*api.Response, error) {
	segments := []string{"resources", p.resourceType()}
	if p.Type != "" {
		segments = append(segments, p.Type)
	}
	return a.call(ctx, "GET", segments, p.toParams())
}

// ResourcesByTag lists the assets carrying a tag
func (a *API) ResourcesByTag(ctx context.Context, tag string, p ListParams) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"resources", p.resourceType(), "tags", tag}, p.toParams())
}

// ResourcesByModeration lists assets by moderation kind and status
func (a *API) ResourcesByModeration(ctx context.Context, kind, status string, p ListParams) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"resources", p.resourceType(), "moderations", kind, status}, p.toParams())
}

// ResourcesByIDs fetches specific assets by public ID
func (a *API) ResourcesByIDs(ctx context.Context, publicIDs []string, p ListParams) (*api.Response, error) {
	params := p.toParams()
	params["public_ids"] = publicIDs
	return a.call(ctx, "GET", []string{"resources", p.resourceType(), orUpload(p.Type)}, params)
}

// ResourcesByContext lists assets with a context key, optionally
// restricted to one value
func (a *API) ResourcesByContext(ctx context.Context, key, value string, p ListParams) (*api.Response, error) {
	params := p.toParams()
	params["key"] = key
	params["value"] = value
	return a.call(ctx, "GET", []string{"resources", p.resourceType(), "context"}, params)
}

// ResourceParams select the detail sections returned with one asset
type ResourceParams struct {
	ResourceType      string
	Type              string
	Colors            bool
	Exif              bool
	Faces             bool
	QualityAnalysis   bool
	ImageMetadata     bool
	Phash             bool
	Pages             bool
	Coordinates       bool
	MaxResults        int
	DerivedNextCursor string
}

// Resource fetches the details of one asset
func (a *API) Resource(ctx context.Context, publicID string, p ResourceParams) (*api.Response, error) {
	params := map[string]interface{}{
		"derived_next_cursor": p.DerivedNextCursor,
	}
	if p.MaxResults > 0 {
		params["max_results"] = p.MaxResults
	}
	for key, set := range map[string]bool{
		"colors":           p.Colors,
		"exif":             p.Exif,
		"faces":            p.Faces,
		"quality_analysis": p.QualityAnalysis,
		"image_metadata":   p.ImageMetadata,
		"phash":            p.Phash,
		"pages":            p.Pages,
		"coordinates":      p.Coordinates,
	} {
		if set {
			params[key] = true
		}
	}
	resourceType := p.ResourceType
	if resourceType == "" {
		resourceType = api.Image.String()
	}
	return a.call(ctx, "GET", []string{"resources", resourceType, orUpload(p.Type), publicID}, params)
}

// UpdateResourceParams are the mutable attributes of a stored asset
type UpdateResourceParams struct {
	ResourceType      string
	Type              string
	Tags              []string
	Context           map[string]interface{}
	Metadata          map[string]interface{}
	FaceCoordinates   interface{}
	CustomCoordinates interface{}
	ModerationStatus  string
	AccessControl     interface{}
	AutoTagging       interface{}
	Categorization    string
	Detection         string
	OCR               string
	NotificationURL   string
}

// UpdateResource updates one asset's attributes
func (a *API) UpdateResource(ctx context.Context, publicID string, p UpdateResourceParams) (*api.Response, error) {
	params := map[string]interface{}{
		"moderation_status": p.ModerationStatus,
		"categorization":    p.Categorization,
		"detection":         p.Detection,
		"ocr":               p.OCR,
		"notification_url":  p.NotificationURL,
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
	if p.AccessControl != nil {
		body, err := api.JSONBody(p.AccessControl)
		if err != nil {
			return nil, err
		}
		params["access_control"] = string(body)
	}
	if p.AutoTagging != nil {
		params["auto_tagging"] = p.AutoTagging
	}
	resourceType := p.ResourceType
	if resourceType == "" {
		resourceType = api.Image.String()
	}
	return a.call(ctx, "POST", []string{"resources", resourceType, orUpload(p.Type), publicID}, params)
}

// DeleteParams tweak a bulk delete
type DeleteParams struct {
	ResourceType    string
	Type            string
	KeepOriginal    bool
	Invalidate      bool
	Transformations string
	NextCursor      string
}

func (p DeleteParams) toParams() map[string]interface{} {
	params := map[string]interface{}{
		"transformations": p.Transformations,
		"next_cursor":     p.NextCursor,
	}
	if p.KeepOriginal {
		params["keep_original"] = true
	}
	if p.Invalidate {
		params["invalidate"] = true
	}
	return params
}

func (p DeleteParams) resourceType() string {
	if p.ResourceType == "" {
		return api.Image.String()
	}
	return p.ResourceType
}

// DeleteResources deletes assets by public ID
func (a *API) DeleteResources(ctx context.Context, publicIDs []string, p DeleteParams) (*api.Response, error) {
	params := p.toParams()
	params["public_ids"] = publicIDs
	return a.call(ctx, "DELETE", []string{"resources", p.resourceType(), orUpload(p.Type)}, params)
}

// DeleteResourcesByPrefix deletes all assets whose public ID starts
// with prefix
func (a *API) DeleteResourcesByPrefix(ctx context.Context, prefix string, p DeleteParams) (*api.Response, error) {
	params := p.toParams()
	params["prefix"] = prefix
	return a.call(ctx, "DELETE", []string{"resources", p.resourceType(), orUpload(p.Type)}, params)
}

// DeleteResourcesByTag deletes all assets carrying a tag
func (a *API) DeleteResourcesByTag(ctx context.Context, tag string, p DeleteParams) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"resources", p.resourceType(), "tags", tag}, p.toParams())
}

// DeleteAllResources deletes every asset of the given type
func (a *API) DeleteAllResources(ctx context.Context, p DeleteParams) (*api.Response, error) {
	params := p.toParams()
	params["all"] = true
	return a.call(ctx, "DELETE", []string{"resources", p.resourceType(), orUpload(p.Type)}, params)
}

// DeleteDerivedResources deletes derived assets by derived resource ID
func (a *API) DeleteDerivedResources(ctx context.Context, derivedIDs []string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"derived_resources"}, map[string]interface{}{
		"derived_resource_ids": derivedIDs,
	})
}

// DeleteDerivedByTransformation deletes the derived assets of the
// given transformations only
func (a *API) DeleteDerivedByTransformation(ctx context.Context, publicIDs []string, transformations string, p DeleteParams) (*api.Response, error) {
	params := p.toParams()
	params["public_ids"] = publicIDs
	params["transformations"] = transformations
	params["keep_original"] = true
	return a.call(ctx, "DELETE", []string{"resources", p.resourceType(), orUpload(p.Type)}, params)
}

// Restore brings backed-up assets back to their previous state
func (a *API) Restore(ctx context.Context, publicIDs []string, p DeleteParams) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"resources", p.resourceType(), orUpload(p.Type), "restore"}, map[string]interface{}{
		"public_ids": publicIDs,
	})
}

// Tags lists the account's tags
func (a *API) Tags(ctx context.Context, p ListParams) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"tags", p.resourceType()}, p.toParams())
}

func orUpload(deliveryType string) string {
	if deliveryType == "" {
		return api.Upload.String()
	}
	return deliveryType
}
