package admin

import (
	"context"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/transformation"
)

// Transformations lists the account's transformations; named
// restricts the listing to saved named transformations
func (a *API) Transformations(ctx context.Context, named bool, p ListParams) (*api.Response, error) {
	params := map[string]interface{}{"next_cursor": p.NextCursor}
	if p.MaxResults > 0 {
		params["max_results"] = p.MaxResults
	}
	if named {
		params["named"] = true
	}
	return a.call(ctx, "GET", []string{"transformations"}, params)
}

// Transformation fetches the details of one transformation, which may
// be given by name or as an encodable transformation value
func (a *API) Transformation(ctx context.Context, trans interface{}, maxResults int) (*api.Response, error) {
	encoded, err := transformation.Encode(trans)
	if err != nil {
		return nil, err
	}
	params := map[string]interface{}{"transformation": encoded}
	if maxResults > 0 {
		params["max_results"] = maxResults
	}
	return a.call(ctx, "GET", []string{"transformations"}, params)
}

// CreateTransformation saves a named transformation
func (a *API) CreateTransformation(ctx context.Context, name string, definition interface{}) (*api.Response, error) {
	encoded, err := transformation.Encode(definition)
	if err != nil {
		return nil, err
	}
	return a.call(ctx, "POST", []string{"transformations"}, map[string]interface{}{
		"name":           name,
		"transformation": encoded,
	})
}

// UpdateTransformation changes a transformation's settings
func (a *API) UpdateTransformation(ctx context.Context, trans interface{}, allowedForStrict, unsafeUpdate interface{}) (*api.Response, error) {
	encoded, err := transformation.Encode(trans)
	if err != nil {
		return nil, err
	}
	params := map[string]interface{}{"transformation": encoded}
	if allowedForStrict != nil {
		params["allowed_for_strict"] = allowedForStrict
	}
	if unsafeUpdate != nil {
		unsafeEncoded, err := transformation.Encode(unsafeUpdate)
		if err != nil {
			return nil, err
		}
		params["unsafe_update"] = unsafeEncoded
	}
	return a.call(ctx, "PUT", []string{"transformations"}, params)
}

// DeleteTransformation deletes a transformation and its derived assets
func (a *API) DeleteTransformation(ctx context.Context, trans interface{}) (*api.Response, error) {
	encoded, err := transformation.Encode(trans)
	if err != nil {
		return nil, err
	}
	return a.call(ctx, "DELETE", []string{"transformations"}, map[string]interface{}{
		"transformation": encoded,
	})
}

// UploadPresets lists the account's upload presets
func (a *API) UploadPresets(ctx context.Context, p ListParams) (*api.Response, error) {
	params := map[string]interface{}{"next_cursor": p.NextCursor}
	if p.MaxResults > 0 {
		params["max_results"] = p.MaxResults
	}
	return a.call(ctx, "GET", []string{"upload_presets"}, params)
}

// UploadPreset fetches one upload preset
func (a *API) UploadPreset(ctx context.Context, name string) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"upload_presets", name}, nil)
}

// CreateUploadPreset saves an upload preset; settings take the same
// keys as upload options
func (a *API) CreateUploadPreset(ctx context.Context, name string, unsigned bool, settings map[string]interface{}) (*api.Response, error) {
	params := map[string]interface{}{"name": name}
	if unsigned {
		params["unsigned"] = true
	}
	for k, v := range settings {
		params[k] = v
	}
	return a.call(ctx, "POST", []string{"upload_presets"}, params)
}

// UpdateUploadPreset changes an upload preset's settings
func (a *API) UpdateUploadPreset(ctx context.Context, name string, settings map[string]interface{}) (*api.Response, error) {
	return a.call(ctx, "PUT", []string{"upload_presets", name}, settings)
}

// DeleteUploadPreset deletes an upload preset
func (a *API) DeleteUploadPreset(ctx context.Context, name string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"upload_presets", name}, nil)
}

// RootFolders lists the account's top-level folders
func (a *API) RootFolders(ctx context.Context, p ListParams) (*api.Response, error) {
	params := map[string]interface{}{"next_cursor": p.NextCursor}
	if p.MaxResults > 0 {
		params["max_results"] = p.MaxResults
	}
	return a.call(ctx, "GET", []string{"folders"}, params)
}

// SubFolders lists the folders directly under path
func (a *API) SubFolders(ctx context.Context, path string, p ListParams) (*api.Response, error) {
	params := map[string]interface{}{"next_cursor": p.NextCursor}
	if p.MaxResults > 0 {
		params["max_results"] = p.MaxResults
	}
	return a.call(ctx, "GET", []string{"folders", path}, params)
}

// CreateFolder creates an empty folder
func (a *API) CreateFolder(ctx context.Context, path string) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"folders", path}, nil)
}

// RenameFolder moves a folder and its contents to a new path
func (a *API) RenameFolder(ctx context.Context, fromPath, toPath string) (*api.Response, error) {
	return a.call(ctx, "PUT", []string{"folders", fromPath}, map[string]interface{}{
		"to_folder": toPath,
	})
}

// DeleteFolder deletes an empty folder
func (a *API) DeleteFolder(ctx context.Context, path string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"folders", path}, nil)
}

// UploadMappings lists the folder-to-URL upload mappings
func (a *API) UploadMappings(ctx context.Context, p ListParams) (*api.Response, error) {
	params := map[string]interface{}{"next_cursor": p.NextCursor}
	if p.MaxResults > 0 {
		params["max_results"] = p.MaxResults
	}
	return a.call(ctx, "GET", []string{"upload_mappings"}, params)
}

// UploadMapping fetches the mapping of one folder
func (a *API) UploadMapping(ctx context.Context, folder string) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"upload_mappings"}, map[string]interface{}{"folder": folder})
}

// CreateUploadMapping maps a folder to a template URL
func (a *API) CreateUploadMapping(ctx context.Context, folder, template string) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"upload_mappings"}, map[string]interface{}{
		"folder":   folder,
		"template": template,
	})
}

// UpdateUploadMapping changes a folder's template URL
func (a *API) UpdateUploadMapping(ctx context.Context, folder, template string) (*api.Response, error) {
	return a.call(ctx, "PUT", []string{"upload_mappings"}, map[string]interface{}{
		"folder":   folder,
		"template": template,
	})
}

// DeleteUploadMapping removes a folder mapping
func (a *API) DeleteUploadMapping(ctx context.Context, folder string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"upload_mappings"}, map[string]interface{}{"folder": folder})
}

// StreamingProfiles lists the adaptive streaming profiles
func (a *API) StreamingProfiles(ctx context.Context) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"streaming_profiles"}, nil)
}

// StreamingProfile fetches one streaming profile
func (a *API) StreamingProfile(ctx context.Context, name string) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"streaming_profiles", name}, nil)
}

// CreateStreamingProfile saves a streaming profile; representations
// is a list of {transformation: ...} entries
func (a *API) CreateStreamingProfile(ctx context.Context, name, displayName string, representations []interface{}) (*api.Response, error) {
	encoded, err := encodeRepresentations(representations)
	if err != nil {
		return nil, err
	}
	return a.call(ctx, "POST", []string{"streaming_profiles"}, map[string]interface{}{
		"name":            name,
		"display_name":    displayName,
		"representations": encoded,
	})
}

// UpdateStreamingProfile changes a streaming profile
func (a *API) UpdateStreamingProfile(ctx context.Context, name, displayName string, representations []interface{}) (*api.Response, error) {
	params := map[string]interface{}{"display_name": displayName}
	if representations != nil {
		encoded, err := encodeRepresentations(representations)
		if err != nil {
			return nil, err
		}
		params["representations"] = encoded
	}
	return a.call(ctx, "PUT", []string{"streaming_profiles", name}, params)
}

// DeleteStreamingProfile deletes a custom streaming profile or
// reverts a built-in one
func (a *API) DeleteStreamingProfile(ctx context.Context, name string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"streaming_profiles", name}, nil)
}

// encodeRepresentations encodes each representation's transformation
// and serialises the list as the JSON array the endpoint expects
func encodeRepresentations(representations []interface{}) (string, error) {
	out := make([]interface{}, 0, len(representations))
	for _, r := range representations {
		m, ok := r.(map[string]interface{})
		if !ok {
			out = append(out, r)
			continue
		}
		if trans, ok := m["transformation"]; ok {
			encoded, err := transformation.Encode(trans)
			if err != nil {
				return "", err
			}
			copied := make(map[string]interface{}, len(m))
			for k, v := range m {
				copied[k] = v
			}
			copied["transformation"] = encoded
			out = append(out, copied)
			continue
		}
		out = append(out, m)
	}
	body, err := api.JSONBody(out)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
