// Package uploader implements the upload API: direct and chunked
// uploads, asset edits, tagging, archive generation and the signed
// download URL helpers.
package uploader

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/cache"
	"github.com/go-cloudinary/cloudinary/config"
	"github.com/go-cloudinary/cloudinary/lib/rest"
)

// timeNow is stubbed in tests
var timeNow = time.Now

// API talks to the upload endpoints of one account
type API struct {
	Config      config.Config
	Breakpoints *cache.Breakpoints

	client *rest.Client
}

// New makes an upload API for the configuration
func New(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	u := &API{
		Config: *cfg,
		client: rest.NewClient(&http.Client{}),
	}
	if cfg.UseCache {
		u.Breakpoints = cache.NewBreakpoints(0)
	}
	u.client.SetRoot(u.rootURL())
	u.client.SetErrorHandler(errorHandler)
	u.client.SetHeader("User-Agent", api.UserAgent)
	if cfg.OAuthToken != "" {
		u.client.SetTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken}))
	}
	return u, nil
}

func (u *API) rootURL() string {
	prefix := u.Config.UploadPrefix
	if prefix == "" {
		prefix = api.BaseURL
	}
	return strings.TrimSuffix(prefix, "/") + "/" + api.APIVersion + "/" + u.Config.CloudName
}

// errorHandler decodes the standard error body, falling back to the
// status code when the body is not recognisable
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

// signParams stamps, signs and authenticates a normalized parameter
// set.  OAuth authenticated calls carry no signature.
func (u *API) signParams(values map[string][]string) error {
	if values["timestamp"] == nil {
		values["timestamp"] = []string{strconv.FormatInt(timeNow().Unix(), 10)}
	}
	if u.Config.OAuthToken != "" {
		return nil
	}
	if u.Config.APIKey == "" || u.Config.APISecret == "" {
		return api.NewError(api.InvalidConfiguration, "must supply api_key and api_secret")
	}
	signature, err := api.SignParameters(values, u.Config.APISecret, u.Config.SignatureAlgorithm)
	if err != nil {
		return err
	}
	values["signature"] = []string{signature}
	values["api_key"] = []string{u.Config.APIKey}
	return nil
}

// callOptions tweak a single API call
type callOptions struct {
	unsigned    bool
	file        interface{}
	fileName    string
	extraHeader map[string]string
}

// call posts params to /{resourceType}/{action} as a multipart form,
// optionally attaching a file, and decodes the JSON response
func (u *API) call(ctx context.Context, resourceType, action string, params map[string]interface{}, co callOptions) (*api.Response, error) {
	values, err := api.NormalizeParams(params)
	if err != nil {
		return nil, err
	}
	if !co.unsigned {
		if err := u.signParams(values); err != nil {
			return nil, err
		}
	}

	opts := rest.Opts{
		Method:          "POST",
		Path:            "/" + resourceType + "/" + action,
		MultipartParams: values,
		ExtraHeaders:    co.extraHeader,
	}
	if co.file != nil {
		in, cleanup, err := openFile(co.file)
		if err != nil {
			return nil, err
		}
		defer cleanup()
		opts.Body = in
		opts.MultipartContentName = "file"
		opts.MultipartFileName = co.fileName
		if opts.MultipartFileName == "" {
			opts.MultipartFileName = "file"
		}
	}

	var body map[string]interface{}
	resp, err := u.client.CallJSON(ctx, &opts, nil, &body)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, api.TransportError(status, err)
	}
	return api.NewResponse(body, resp.Header), nil
}

// warnf logs a non-fatal problem with an upload option
func warnf(format string, args ...interface{}) {
	logrus.WithField("component", "uploader").Warnf(format, args...)
}
