// Package mo implements the media optimizer endpoints: cache
// invalidation and warm up.
package mo

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

// API talks to the media optimizer endpoints of one account
type API struct {
	Config config.Config

	client *rest.Client
}

// New makes a media optimizer API for the configuration
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
	a.client.SetRoot(strings.TrimSuffix(prefix, "/") + "/" + api.APIVersion + "/" + cfg.CloudName + "/mo")
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

func (a *API) call(ctx context.Context, method string, segments []string, body interface{}) (*api.Response, error) {
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
	var out map[string]interface{}
	resp, err := a.client.CallJSON(ctx, &opts, nil, &out)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, api.TransportError(status, err)
	}
	return api.NewResponse(out, resp.Header), nil
}

func joinSegments(segments []string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// Ping checks connectivity and credentials against the media
// optimizer endpoints
func (a *API) Ping(ctx context.Context) (*api.Response, error) {
	return a.call(ctx, "GET", []string{"ping"}, nil)
}

// Invalidate evicts the given delivery URLs from the optimizer cache
func (a *API) Invalidate(ctx context.Context, urls ...string) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"invalidate"}, map[string]interface{}{
		"urls": urls,
	})
}

// WarmUp primes the optimizer cache for a delivery URL
func (a *API) WarmUp(ctx context.Context, warmURL string) (*api.Response, error) {
	return a.call(ctx, "POST", []string{"cache_warm_up"}, map[string]interface{}{
		"url": warmURL,
	})
}
