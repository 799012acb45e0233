package admin

import (
	"context"

	"github.com/go-cloudinary/cloudinary/api"
)

// MetadataFields lists the structured metadata field definitions
func (a *API) MetadataFields(ctx context.Context) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"metadata_fields"}, nil)
}

// MetadataField fetches one field definition by external ID
func (a *API) MetadataField(ctx context.Context, fieldID string) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"metadata_fields", fieldID}, nil)
}

// CreateMetadataField defines a structured metadata field; field takes
// the documented shape (type, external_id, label, datasource, ...)
func (a *API) CreateMetadataField(ctx context.Context, field map[string]interface{}) (*api.Response, error) {
	return a.callJSON(ctx, "POST", []string{"metadata_fields"}, field)
}

// UpdateMetadataField changes a field definition
func (a *API) UpdateMetadataField(ctx context.Context, fieldID string, field map[string]interface{}) (*api.Response, error) {
	return a.callJSON(ctx, "PUT", []string{"metadata_fields", fieldID}, field)
}

// DeleteMetadataField removes a field definition and its values
func (a *API) DeleteMetadataField(ctx context.Context, fieldID string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"metadata_fields", fieldID}, nil)
}

// UpdateMetadataFieldDatasource adds or updates entries in a list
// field's datasource
func (a *API) UpdateMetadataFieldDatasource(ctx context.Context, fieldID string, entries []interface{}) (*api.Response, error) {
	return a.callJSON(ctx, "PUT", []string{"metadata_fields", fieldID, "datasource"}, map[string]interface{}{
		"values": entries,
	})
}

// DeleteMetadataFieldDatasource deactivates datasource entries by
// external ID
func (a *API) DeleteMetadataFieldDatasource(ctx context.Context, fieldID string, entryIDs []string) (*api.Response, error) {
	return a.callJSON(ctx, "DELETE", []string{"metadata_fields", fieldID, "datasource"}, map[string]interface{}{
		"external_ids": entryIDs,
	})
}

// RestoreMetadataFieldDatasource reactivates previously deactivated
// datasource entries
func (a *API) RestoreMetadataFieldDatasource(ctx context.Context, fieldID string, entryIDs []string) (*api.Response, error) {
	return a.callJSON(ctx, "POST", []string{"metadata_fields", fieldID, "datasource_restore"}, map[string]interface{}{
		"external_ids": entryIDs,
	})
}

// ReorderMetadataFieldDatasource orders a list field's datasource by
// the given criterion ("value", ...)
func (a *API) ReorderMetadataFieldDatasource(ctx context.Context, fieldID, orderBy, direction string) (*api.Response, error) {
	body := map[string]interface{}{"order_by": orderBy}
	if direction != "" {
		body["direction"] = direction
	}
	return a.callJSON(ctx, "POST", []string{"metadata_fields", fieldID, "datasource", "order"}, body)
}

// MetadataRules lists the conditional metadata rules
func (a *API) MetadataRules(ctx context.Context) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"metadata_rules"}, nil)
}

// CreateMetadataRule defines a conditional metadata rule
func (a *API) CreateMetadataRule(ctx context.Context, rule map[string]interface{}) (*api.Response, error) {
	return a.callJSON(ctx, "POST", []string{"metadata_rules"}, rule)
}

// UpdateMetadataRule changes a rule definition
func (a *API) UpdateMetadataRule(ctx context.Context, ruleID string, rule map[string]interface{}) (*api.Response, error) {
	return a.callJSON(ctx, "PUT", []string{"metadata_rules", ruleID}, rule)
}

// DeleteMetadataRule removes a rule
func (a *API) DeleteMetadataRule(ctx context.Context, ruleID string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"metadata_rules", ruleID}, nil)
}
