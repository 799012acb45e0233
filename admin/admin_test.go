package admin

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

func newTestAPI(t *testing.T, handler http.HandlerFunc) (*API, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.FromParams("test123", "key", "secret")
	cfg.UploadPrefix = server.URL
	a, err := New(cfg)
	require.NoError(t, err)
	return a, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestPingSendsBasicAuth(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1_1/test123/ping", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		writeJSON(t, w, map[string]interface{}{"status": "ok"})
	})

	resp, err := a.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.GetString("status"))
}

func TestOAuthBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer MTQ0NjJk", r.Header.Get("Authorization"))
		writeJSON(t, w, map[string]interface{}{"status": "ok"})
	}))
	t.Cleanup(server.Close)

	cfg := config.FromParams("test123", "", "")
	cfg.OAuthToken = "MTQ0NjJk"
	cfg.UploadPrefix = server.URL
	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.Ping(context.Background())
	require.NoError(t, err)
}

func TestResourcesQuery(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1_1/test123/resources/image/upload", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "10", q.Get("max_results"))
		assert.Equal(t, "abc", q.Get("next_cursor"))
		assert.Equal(t, "1", q.Get("tags"))
		assert.Empty(t, q.Get("prefix"))
		writeJSON(t, w, map[string]interface{}{"resources": []interface{}{}})
	})

	_, err := a.Resources(context.Background(), ListParams{
		Type:       "upload",
		MaxResults: 10,
		NextCursor: "abc",
		Tags:       true,
	})
	require.NoError(t, err)
}

func TestResourceDetailFlags(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/test123/resources/image/upload/sample", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("colors"))
		assert.Equal(t, "1", q.Get("faces"))
		assert.Empty(t, q.Get("exif"))
		writeJSON(t, w, map[string]interface{}{"public_id": "sample"})
	})

	resp, err := a.Resource(context.Background(), "sample", ResourceParams{
		Colors: true,
		Faces:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "sample", resp.GetString("public_id"))
}

func TestDeleteResourcesFormBody(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "/v1_1/test123/resources/image/upload", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "one", form.Get("public_ids[0]"))
		assert.Equal(t, "two", form.Get("public_ids[1]"))
		assert.Equal(t, "1", form.Get("invalidate"))
		writeJSON(t, w, map[string]interface{}{"deleted": map[string]interface{}{"one": "deleted"}})
	})

	_, err := a.DeleteResources(context.Background(), []string{"one", "two"}, DeleteParams{Invalidate: true})
	require.NoError(t, err)
}

func TestUpdateResource(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1_1/test123/resources/image/upload/sample", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "a,b", r.PostForm.Get("tags"))
		assert.Equal(t, "alt=First|caption=Second", r.PostForm.Get("context"))
		assert.Equal(t, "10,20,150,30", r.PostForm.Get("face_coordinates"))
		writeJSON(t, w, map[string]interface{}{"public_id": "sample"})
	})

	_, err := a.UpdateResource(context.Background(), "sample", UpdateResourceParams{
		Tags:            []string{"a", "b"},
		Context:         map[string]interface{}{"caption": "Second", "alt": "First"},
		FaceCoordinates: []int{10, 20, 150, 30},
	})
	require.NoError(t, err)
}

func TestTransformationEncoded(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1_1/test123/transformations", r.URL.Path)
		assert.Equal(t, "c_fill,w_100", r.URL.Query().Get("transformation"))
		writeJSON(t, w, map[string]interface{}{"name": "c_fill,w_100"})
	})

	_, err := a.Transformation(context.Background(), map[string]interface{}{
		"crop": "fill", "width": 100,
	}, 0)
	require.NoError(t, err)
}

func TestCreateFolderEscapesPath(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1_1/test123/folders/product%20images", r.URL.EscapedPath())
		writeJSON(t, w, map[string]interface{}{"success": true})
	})

	_, err := a.CreateFolder(context.Background(), "product images")
	require.NoError(t, err)
}

func TestCreateMetadataFieldJSON(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1_1/test123/metadata_fields", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"external_id":"color","label":"Color","type":"string"}`, string(body))
		writeJSON(t, w, map[string]interface{}{"external_id": "color"})
	})

	_, err := a.CreateMetadataField(context.Background(), map[string]interface{}{
		"type":        "string",
		"external_id": "color",
		"label":       "Color",
	})
	require.NoError(t, err)
}

func TestSearchSerialization(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1_1/test123/resources/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"expression": "resource_type:image AND tags=kitten",
			"sort_by": [{"public_id": "desc"}, {"created_at": "asc"}],
			"aggregate": ["format"],
			"with_field": ["context", "tags"],
			"max_results": 30,
			"next_cursor": "cur"
		}`, string(body))
		writeJSON(t, w, map[string]interface{}{"total_count": float64(0)})
	})

	_, err := NewSearch().
		Expression("resource_type:image AND tags=kitten").
		SortBy("public_id", "desc").
		SortBy("created_at", "asc").
		Aggregate("format").
		WithField("context").
		WithField("tags").
		MaxResults(30).
		NextCursor("cur").
		Execute(context.Background(), a)
	require.NoError(t, err)
}

func TestErrorBody(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"Resource not found - missing"}}`))
	})

	_, err := a.Resource(context.Background(), "missing", ResourceParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Resource not found")
}

func TestRateLimitHeaders(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FeatureRateLimit-Limit", "500")
		w.Header().Set("X-FeatureRateLimit-Remaining", "497")
		w.Header().Set("X-FeatureRateLimit-Reset", "Wed, 03 Oct 2018 08:00:00 GMT")
		writeJSON(t, w, map[string]interface{}{"status": "ok"})
	})

	resp, err := a.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500, resp.RateLimitAllowed)
	assert.Equal(t, 497, resp.RateLimitRemaining)
	assert.Equal(t, 2018, resp.RateLimitResetAt.Year())
}

func TestTransportErrorTagged(t *testing.T) {
	cfg := config.FromParams("test123", "key", "secret")
	cfg.UploadPrefix = "http://127.0.0.1:1"
	a, err := New(cfg)
	require.NoError(t, err)

	_, err = a.Ping(context.Background())
	require.Error(t, err)
	apiErr := api.IsError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, api.GeneralError, apiErr.Code)
	assert.NotNil(t, apiErr.Cause)
}

func TestMalformedResponseTagged(t *testing.T) {
	a, _ := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := a.Ping(context.Background())
	require.Error(t, err)
	apiErr := api.IsError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, api.GeneralError, apiErr.Code)
	assert.Equal(t, http.StatusOK, apiErr.HTTPCode)
	assert.Contains(t, apiErr.Message, "oops")
}
