package provisioning

import (
	"context"

	"github.com/go-cloudinary/cloudinary/api"
)

// SubAccountParams are the settings of a sub account
type SubAccountParams struct {
	Name           string
	CloudName      string
	CustomAttrs    map[string]interface{}
	Enabled        *bool
	BaseSubAccount string
}

func (p SubAccountParams) toParams() map[string]interface{} {
	params := map[string]interface{}{
		"name":                p.Name,
		"cloud_name":          p.CloudName,
		"base_sub_account_id": p.BaseSubAccount,
	}
	if len(p.CustomAttrs) > 0 {
		params["custom_attributes"] = p.CustomAttrs
	}
	if p.Enabled != nil {
		params["enabled"] = *p.Enabled
	}
	return params
}

// SubAccounts lists the account's sub accounts; ids restricts the
// listing and prefix filters by name
func (a *API) SubAccounts(ctx context.Context, enabled *bool, ids []string, prefix string) (*api.Response, error) {
	params := map[string]interface{}{"prefix": prefix}
	if enabled != nil {
		params["enabled"] = *enabled
	}
	if len(ids) > 0 {
		params["ids"] = ids
	}
	return a.call(ctx, "GET", []string{"sub_accounts"}, params)
}

// SubAccount fetches one sub account
func (a *API) SubAccount(ctx context.Context, subAccountID string) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"sub_accounts", subAccountID}, nil)
}

// CreateSubAccount creates a sub account
func (a *API) CreateSubAccount(ctx context.Context, p SubAccountParams) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"sub_accounts"}, p.toParams())
}

// UpdateSubAccount changes a sub account's settings
func (a *API) UpdateSubAccount(ctx context.Context, subAccountID string, p SubAccountParams) (*api.Response, error) {
	return a.call(ctx, "PUT", []string{"sub_accounts", subAccountID}, p.toParams())
}

// DeleteSubAccount deletes a sub account; it must have no assets
func (a *API) DeleteSubAccount(ctx context.Context, subAccountID string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"sub_accounts", subAccountID}, nil)
}

// UserParams are the settings of an account user
type UserParams struct {
	Name          string
	Email         string
	Role          string
	SubAccountIDs []string
	Enabled       *bool
}

func (p UserParams) toParams() map[string]interface{} {
	params := map[string]interface{}{
		"name":  p.Name,
		"email": p.Email,
		"role":  p.Role,
	}
	if len(p.SubAccountIDs) > 0 {
		params["sub_account_ids"] = p.SubAccountIDs
	}
	if p.Enabled != nil {
		params["enabled"] = *p.Enabled
	}
	return params
}

// UserListParams filter a user listing
type UserListParams struct {
	Pending      *bool
	IDs          []string
	Prefix       string
	SubAccountID string
}

// Users lists the account's users
func (a *API) Users(ctx context.Context, p UserListParams) (*api.Response, error) {
	params := map[string]interface{}{
		"prefix":         p.Prefix,
		"sub_account_id": p.SubAccountID,
	}
	if p.Pending != nil {
		params["pending"] = *p.Pending
	}
	if len(p.IDs) > 0 {
		params["ids"] = p.IDs
	}
	return a.call(ctx, "GET", []string{"users"}, params)
}

// User fetches one user
func (a *API) User(ctx context.Context, userID string) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"users", userID}, nil)
}

// CreateUser invites a user into the account
func (a *API) CreateUser(ctx context.Context, p UserParams) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"users"}, p.toParams())
}

// UpdateUser changes a user's settings
func (a *API) UpdateUser(ctx context.Context, userID string, p UserParams) (*api.Response, error) {
	return a.call(ctx, "PUT", []string{"users", userID}, p.toParams())
}

// DeleteUser removes a user from the account
func (a *API) DeleteUser(ctx context.Context, userID string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"users", userID}, nil)
}

// UserGroups lists the account's user groups
func (a *API) UserGroups(ctx context.Context) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"user_groups"}, nil)
}

// UserGroup fetches one user group
func (a *API) UserGroup(ctx context.Context, groupID string) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"user_groups", groupID}, nil)
}

// CreateUserGroup creates a user group
func (a *API) CreateUserGroup(ctx context.Context, name string) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"user_groups"}, map[string]interface{}{"name": name})
}

// UpdateUserGroup renames a user group
func (a *API) UpdateUserGroup(ctx context.Context, groupID, name string) (*api.Response, error) {
	return a.call(ctx, "PUT", []string{"user_groups", groupID}, map[string]interface{}{"name": name})
}

// DeleteUserGroup deletes a user group
func (a *API) DeleteUserGroup(ctx context.Context, groupID string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"user_groups", groupID}, nil)
}

// AddUserToGroup adds a user to a group
func (a *API) AddUserToGroup(ctx context.Context, groupID, userID string) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"user_groups", groupID, "users", userID}, nil)
}

// RemoveUserFromGroup removes a user from a group
func (a *API) RemoveUserFromGroup(ctx context.Context, groupID, userID string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"user_groups", groupID, "users", userID}, nil)
}

// UserGroupUsers lists the users of a group
func (a *API) UserGroupUsers(ctx context.Context, groupID string) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"user_groups", groupID, "users"}, nil)
}

// AccessKeyParams are the settings of a sub account access key
type AccessKeyParams struct {
	Name    string
	Enabled *bool
}

func (p AccessKeyParams) toParams() map[string]interface{} {
	params := map[string]interface{}{"name": p.Name}
	if p.Enabled != nil {
		params["enabled"] = *p.Enabled
	}
	return params
}

// AccessKeys lists a sub account's access keys
func (a *API) AccessKeys(ctx context.Context, subAccountID string, pageSize, page int, sortBy, sortOrder string) (*api.Response, error) {
	params := map[string]interface{}{
		"sort_by":    sortBy,
		"sort_order": sortOrder,
	}
	if pageSize > 0 {
		params["page_size"] = pageSize
	}
	if page > 0 {
		params["page"] = page
	}
	return a.call(ctx, "GET", []string{"sub_accounts", subAccountID, "access_keys"}, params)
}

// GenerateAccessKey makes a new access key for a sub account
func (a *API) GenerateAccessKey(ctx context.Context, subAccountID string, p AccessKeyParams) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"sub_accounts", subAccountID, "access_keys"}, p.toParams())
}

// UpdateAccessKey changes an access key's name or enabled state
func (a *API) UpdateAccessKey(ctx context.Context, subAccountID, apiKey string, p AccessKeyParams) (*api.Response, error) {
	return a.call(ctx, "PUT", []string{"sub_accounts", subAccountID, "access_keys", apiKey}, p.toParams())
}

// DeleteAccessKey revokes an access key
func (a *API) DeleteAccessKey(ctx context.Context, subAccountID, apiKey string) (*api.Response, error) {
	return a.call(ctx, "DELETE", []string{"sub_accounts", subAccountID, "access_keys", apiKey}, nil)
}
