// Package provisioning implements the account management endpoints:
// sub accounts, users, user groups and access keys.
package provisioning

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/config"
	"github.com/go-cloudinary/cloudinary/lib/rest"
)

// API talks to the provisioning endpoints of one account
type API struct {
	Config config.ProvisioningConfig

	client *rest.Client
}

// New makes a provisioning API for the configuration
func New(cfg *config.ProvisioningConfig) (*API, error) {
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
	a.client.SetRoot(strings.TrimSuffix(prefix, "/") + "/" + api.APIVersion + "/provisioning/accounts/" + cfg.AccountID)
	a.client.SetErrorHandler(errorHandler)
	a.client.SetHeader("User-Agent", api.UserAgent)
	a.client.SetUserPass(cfg.ProvisioningAPIKey, cfg.ProvisioningAPISecret)
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
	var body map[string]interface{}
	resp, err := a.client.CallJSON(ctx, &opts, nil, &body)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, api.TransportError(status, err)
	}
	return api.NewResponse(body, resp.Header), nil
}
