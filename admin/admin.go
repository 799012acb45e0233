// Package admin implements the management API: asset listing and
// maintenance, transformations, upload presets, folders, metadata and
// search.
package admin

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/config"
	"github.com/go-cloudinary/cloudinary/lib/rest"
)

// API talks to the management endpoints of one account
type API struct {
	Config config.Config

	client *rest.Client
}

// New makes an admin API for the configuration
func New(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &API{
		Config: *cfg,
		client: rest.NewClient(&http.Client{}),
	}
	prefix := cfg.UploadPrefix
	if prefix == "" {
		prefix = api.BaseURL
	}
	a.client.SetRoot(strings.TrimSuffix(prefix, "/") + "/" + api.APIVersion + "/" + cfg.CloudName)
	a.client.SetErrorHandler(errorHandler)
	a.client.SetHeader("User-Agent", api.UserAgent)
	if cfg.OAuthToken != "" {
		a.client.SetTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken}))
	} else {
		a.client.SetUserPass(cfg.APIKey, cfg.APISecret)
	}
	return a, nil
}

func errorHandler(resp *http.Response) error {
	body, err := rest.ReadBody(resp)
	if err != nil {
		return api.ErrorFromStatus(resp.StatusCode, err.Error())
	}
	if message := api.ErrorMessage(body); message != "" {
		return api.ErrorFromStatus(resp.StatusCode, message)
	}
	return api.ErrorFromStatus(resp.StatusCode, strings.TrimSpace(string(body)))
}

func joinSegments(segments []string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// call sends params in the query string for GET and as a form body
// otherwise, decoding the JSON response
func (a *API) call(ctx context.Context, method string, segments []string, params map[string]interface{}) (*api.Response, error) {
	values, err := api.NormalizeParams(params)
	if err != nil {
		return nil, err
	}
	opts := rest.Opts{
		Method: method,
		Path:   joinSegments(segments),
	}
	if method == "GET" {
		opts.Parameters = values
	} else if len(values) > 0 {
		opts.Body = strings.NewReader(values.Encode())
		opts.ContentType = "application/x-www-form-urlencoded"
	}
	return a.do(ctx, &opts, nil)
}

// callJSON sends a deterministic JSON body, for the endpoints which
// mandate one
func (a *API) callJSON(ctx context.Context, method string, segments []string, body interface{}) (*api.Response, error) {
	opts := rest.Opts{
		Method: method,
		Path:   joinSegments(segments),
	}
	if body != nil {
		encoded, err := api.JSONBody(body)
		if err != nil {
			return nil, err
		}
		opts.Body = strings.NewReader(string(encoded))
		opts.ContentType = "application/json"
	}
	return a.do(ctx, &opts, nil)
}

func (a *API) do(ctx context.Context, opts *rest.Opts, request interface{}) (*api.Response, error) {
	var body map[string]interface{}
	resp, err := a.client.CallJSON(ctx, opts, request, &body)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, api.TransportError(status, err)
	}
	return api.NewResponse(body, resp.Header), nil
}

// Ping checks connectivity and credentials
func (a *API) Ping(ctx context.Context) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"ping"}, nil)
}

// Usage reports the account's usage statistics, optionally for a
// specific date (yyyy-mm-dd)
func (a *API) Usage(ctx context.Context, date string) (*api.Response, error) {
	segments := []string{"usage"}
	if date != "" {
		segments = append(segments, date)
	}
	return a.call(ctx, "GET", segments, nil)
}

// Configuration fetches the cloud's settings; settings toggles extra
// detail sections (for example "extensions")
func (a *API) Configuration(ctx context.Context, settings map[string]interface{}) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"config"}, settings)
}

// ResourceTypes lists the resource types with stored assets
func (a *API) ResourceTypes(ctx context.Context) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"resources"}, nil)
}
