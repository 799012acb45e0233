package provisioning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/config"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.ProvisioningConfig{
		AccountID:             "acct_1",
		ProvisioningAPIKey:    "pkey",
		ProvisioningAPISecret: "psecret",
		UploadPrefix:          server.URL,
	}
	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func writeJSON(t *testing.T, w http.ResponseWriter, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(&config.ProvisioningConfig{AccountID: "acct_1"})
	require.Error(t, err)
}

func TestSubAccountsAuthAndPath(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1_1/provisioning/accounts/acct_1/sub_accounts", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "pkey", user)
		assert.Equal(t, "psecret", pass)
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("enabled"))
		assert.Equal(t, "id1", q.Get("ids[0]"))
		assert.Equal(t, "id2", q.Get("ids[1]"))
		writeJSON(t, w, map[string]interface{}{"sub_accounts": []interface{}{}})
	})

	enabled := true
	_, err := a.SubAccounts(context.Background(), &enabled, []string{"id1", "id2"}, "")
	require.NoError(t, err)
}

func TestCreateSubAccount(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1_1/provisioning/accounts/acct_1/sub_accounts", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "staging", form.Get("name"))
		assert.Equal(t, "env=staging", form.Get("custom_attributes"))
		writeJSON(t, w, map[string]interface{}{"id": "sub_1", "name": "staging"})
	})

	resp, err := a.CreateSubAccount(context.Background(), SubAccountParams{
		Name:        "staging",
		CustomAttrs: map[string]interface{}{"env": "staging"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sub_1", resp.GetString("id"))
}

func TestUpdateUser(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/v1_1/provisioning/accounts/acct_1/users/user_7", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "billing", r.PostForm.Get("role"))
		assert.Equal(t, "0", r.PostForm.Get("enabled"))
		writeJSON(t, w, map[string]interface{}{"id": "user_7"})
	})

	enabled := false
	_, err := a.UpdateUser(context.Background(), "user_7", UserParams{
		Role:    "billing",
		Enabled: &enabled,
	})
	require.NoError(t, err)
}

func TestUserGroupMembership(t *testing.T) {
	var paths []string
	var methods []string
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		methods = append(methods, r.Method)
		writeJSON(t, w, map[string]interface{}{"ok": true})
	})

	ctx := context.Background()
	_, err := a.AddUserToGroup(ctx, "grp_1", "user_7")
	require.NoError(t, err)
	_, err = a.RemoveUserFromGroup(ctx, "grp_1", "user_7")
	require.NoError(t, err)
	_, err = a.UserGroupUsers(ctx, "grp_1")
	require.NoError(t, err)

	base := "/v1_1/provisioning/accounts/acct_1/user_groups/grp_1/users"
	assert.Equal(t, []string{base + "/user_7", base + "/user_7", base}, paths)
	assert.Equal(t, []string{"POST", "DELETE", "GET"}, methods)
}

func TestAccessKeys(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			assert.Equal(t, "/v1_1/provisioning/accounts/acct_1/sub_accounts/sub_1/access_keys", r.URL.Path)
			assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		case "PUT":
			assert.Equal(t, "/v1_1/provisioning/accounts/acct_1/sub_accounts/sub_1/access_keys/abc123", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "primary", r.PostForm.Get("name"))
		}
		writeJSON(t, w, map[string]interface{}{"ok": true})
	})

	ctx := context.Background()
	_, err := a.AccessKeys(ctx, "sub_1", 10, 0, "", "")
	require.NoError(t, err)
	_, err = a.UpdateAccessKey(ctx, "sub_1", "abc123", AccessKeyParams{Name: "primary"})
	require.NoError(t, err)
}

func TestErrorBody(t *testing.T) {
	a := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Name is required"}}`))
	})

	_, err := a.CreateUserGroup(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name is required")
}

func TestTransportErrorTagged(t *testing.T) {
	cfg := &config.ProvisioningConfig{
		AccountID:             "acct_1",
		ProvisioningAPIKey:    "pkey",
		ProvisioningAPISecret: "psecret",
		UploadPrefix:          "http://127.0.0.1:1",
	}
	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.UserGroups(context.Background())
	require.Error(t, err)
	apiErr := api.IsError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, api.GeneralError, apiErr.Code)
}
