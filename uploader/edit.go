package uploader

import (
	"context"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/transformation"
)

// Explicit applies upload options to an asset that is already stored
func (u *API) Explicit(ctx context.Context, publicID string, p *UploadParams) (*api.Response, error) {
	params, err := p.buildParams()
	if err != nil {
		return nil, err
	}
	params["public_id"] = publicID
	key, cached := u.probeBreakpoints(p, params)
	resp, err := u.call(ctx, uploadResourceType(p), "explicit", params, callOptions{})
	if err != nil {
		return nil, err
	}
	if !cached {
		key.PublicID = publicID
		u.storeBreakpoints(key, resp)
	}
	return resp, nil
}

// DestroyParams select the asset to delete
type DestroyParams struct {
	ResourceType string
	Type         string
	Invalidate   bool
}

// Destroy deletes an asset
func (u *API) Destroy(ctx context.Context, publicID string, p DestroyParams) (*api.Response, error) {
	params := map[string]interface{}{
		"public_id": publicID,
		"type":      p.Type,
	}
	if p.Invalidate {
		params["invalidate"] = true
	}
	return u.call(ctx, orImage(p.ResourceType), "destroy", params, callOptions{})
}

// RenameParams tweak a rename
type RenameParams struct {
	ResourceType string
	Type         string
	ToType       string
	Overwrite    bool
	Invalidate   bool
}

// Rename changes an asset's public ID, optionally moving it to
// another delivery type
func (u *API) Rename(ctx context.Context, fromPublicID, toPublicID string, p RenameParams) (*api.Response, error) {
	params := map[string]interface{}{
		"from_public_id": fromPublicID,
		"to_public_id":   toPublicID,
		"type":           p.Type,
		"to_type":        p.ToType,
	}
	if p.Overwrite {
		params["overwrite"] = true
	}
	if p.Invalidate {
		params["invalidate"] = true
	}
	return u.call(ctx, orImage(p.ResourceType), "rename", params, callOptions{})
}

// Text renders a text image
func (u *API) Text(ctx context.Context, text string, options map[string]interface{}) (*api.Response, error) {
	params := map[string]interface{}{"text": text}
	for k, v := range options {
		params[k] = v
	}
	return u.call(ctx, api.Image.String(), "text", params, callOptions{})
}

// Explode generates derived images for all pages of a multi-page asset
func (u *API) Explode(ctx context.Context, publicID string, trans interface{}, p *UploadParams) (*api.Response, error) {
	params, err := p.buildParams()
	if err != nil {
		return nil, err
	}
	encoded, err := transformation.Encode(trans)
	if err != nil {
		return nil, err
	}
	params["public_id"] = publicID
	params["transformation"] = encoded
	return u.call(ctx, uploadResourceType(p), "explode", params, callOptions{})
}

// UpdateMetadata sets structured metadata field values on assets
func (u *API) UpdateMetadata(ctx context.Context, metadata map[string]interface{}, publicIDs []string, resourceType string) (*api.Response, error) {
	encoded, err := api.EncodeMap(metadata)
	if err != nil {
		return nil, err
	}
	params := map[string]interface{}{
		"metadata":   encoded,
		"public_ids": publicIDs,
	}
	return u.call(ctx, orImage(resourceType), "metadata", params, callOptions{})
}

// TagParams select the assets a tag command applies to
type TagParams struct {
	ResourceType string
	Type         string
}

// AddTag adds a tag to the given assets
func (u *API) AddTag(ctx context.Context, tag string, publicIDs []string, p TagParams) (*api.Response, error) {
	return u.callTags(ctx, "add", tag, publicIDs, p)
}

// SetExclusiveTag adds a tag to the given assets, removing it from
// every other asset
func (u *API) SetExclusiveTag(ctx context.Context, tag string, publicIDs []string, p TagParams) (*api.Response, error) {
	return u.callTags(ctx, "set_exclusive", tag, publicIDs, p)
}

// RemoveTag removes a tag from the given assets
func (u *API) RemoveTag(ctx context.Context, tag string, publicIDs []string, p TagParams) (*api.Response, error) {
	return u.callTags(ctx, "remove", tag, publicIDs, p)
}

// RemoveAllTags removes every tag from the given assets
func (u *API) RemoveAllTags(ctx context.Context, publicIDs []string, p TagParams) (*api.Response, error) {
	return u.callTags(ctx, "remove_all", "", publicIDs, p)
}

// ReplaceTag replaces all tags on the given assets with one tag
func (u *API) ReplaceTag(ctx context.Context, tag string, publicIDs []string, p TagParams) (*api.Response, error) {
	return u.callTags(ctx, "replace", tag, publicIDs, p)
}

func (u *API) callTags(ctx context.Context, command, tag string, publicIDs []string, p TagParams) (*api.Response, error) {
	params := map[string]interface{}{
		"command":    command,
		"public_ids": publicIDs,
		"type":       p.Type,
	}
	if tag != "" {
		params["tag"] = tag
	}
	return u.call(ctx, orImage(p.ResourceType), "tags", params, callOptions{})
}

// AddContext adds context key-value pairs to the given assets
func (u *API) AddContext(ctx context.Context, pairs map[string]interface{}, publicIDs []string, p TagParams) (*api.Response, error) {
	encoded, err := api.EncodeMap(pairs)
	if err != nil {
		return nil, err
	}
	return u.callContext(ctx, "add", encoded, publicIDs, p)
}

// RemoveAllContext removes all context from the given assets
func (u *API) RemoveAllContext(ctx context.Context, publicIDs []string, p TagParams) (*api.Response, error) {
	return u.callContext(ctx, "remove_all", "", publicIDs, p)
}

func (u *API) callContext(ctx context.Context, command, encoded string, publicIDs []string, p TagParams) (*api.Response, error) {
	params := map[string]interface{}{
		"command":    command,
		"public_ids": publicIDs,
		"type":       p.Type,
	}
	if encoded != "" {
		params["context"] = encoded
	}
	return u.call(ctx, orImage(p.ResourceType), "context", params, callOptions{})
}

func orImage(resourceType string) string {
	if strings.TrimSpace(resourceType) == "" {
		return api.Image.String()
	}
	return resourceType
}
