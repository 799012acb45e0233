// Package config loads the account configuration from the
// environment, from a connection string or from programmatic
// overrides.
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
)

// Environment variables read by New and NewProvisioning
const (
	EnvURL                   = "CLOUDINARY_URL"
	EnvAccountURL            = "CLOUDINARY_ACCOUNT_URL"
	EnvCloudName             = "CLOUDINARY_CLOUD_NAME"
	EnvAPIKey                = "CLOUDINARY_API_KEY"
	EnvAPISecret             = "CLOUDINARY_API_SECRET"
	EnvSecureDistribution    = "CLOUDINARY_SECURE_DISTRIBUTION"
	EnvPrivateCDN            = "CLOUDINARY_PRIVATE_CDN"
	EnvSecure                = "CLOUDINARY_SECURE"
	EnvAccountID             = "CLOUDINARY_ACCOUNT_ID"
	EnvProvisioningAPIKey    = "CLOUDINARY_PROVISIONING_API_KEY"
	EnvProvisioningAPISecret = "CLOUDINARY_PROVISIONING_API_SECRET"
)

// AuthToken holds the parameters of HMAC token generation for
// token-authenticated delivery URLs.
type AuthToken struct {
	Key             string
	StartTime       int64
	Expiration      int64
	Duration        int64 // window in seconds, used when Expiration is 0
	ACL             string
	IP              string
	SetURLSignature bool
}

// Config holds the account settings.  It is a value: call sites copy
// it on entry so a call observes a consistent snapshot.
type Config struct {
	CloudName          string
	APIKey             string
	APISecret          string
	OAuthToken         string
	UploadPrefix       string
	Secure             bool
	SecureDistribution string
	PrivateCDN         bool
	CName              string
	CDNSubdomain       bool
	SecureCDNSubdomain *bool // nil means follow CDNSubdomain on shared domains
	Shorten            bool
	SignURL            bool
	LongURLSignature   bool
	SignatureAlgorithm api.SignatureAlgorithm
	ForceVersion       bool
	ClientHints        bool
	AkamaiKey          string
	AuthToken          AuthToken
	UseCache           bool

	// ResponsiveWidthTransformation overrides the transformation
	// appended when responsive_width is requested.
	ResponsiveWidthTransformation map[string]interface{}

	// Extra holds connection string parameters with no dedicated field
	Extra map[string]string
}

// defaults returns a Config with the non-zero defaults applied
func defaults() *Config {
	return &Config{ForceVersion: true}
}

// New loads the configuration from the environment.
//
// The connection string variable takes precedence over the individual
// variables.
func New() (*Config, error) {
	if s := os.Getenv(EnvURL); s != "" {
		return FromURL(s)
	}
	c := defaults()
	c.CloudName = os.Getenv(EnvCloudName)
	c.APIKey = os.Getenv(EnvAPIKey)
	c.APISecret = os.Getenv(EnvAPISecret)
	c.SecureDistribution = os.Getenv(EnvSecureDistribution)
	c.PrivateCDN = parseBool(os.Getenv(EnvPrivateCDN))
	c.Secure = parseBool(os.Getenv(EnvSecure))
	return c, nil
}

// FromParams makes a Config from the three account credentials
func FromParams(cloudName, apiKey, apiSecret string) *Config {
	c := defaults()
	c.CloudName = cloudName
	c.APIKey = apiKey
	c.APISecret = apiSecret
	return c
}

// FromURL parses a cloudinary:// connection string.
//
// The host is the cloud name, the userinfo carries the key and
// secret, a path sets secure_distribution and implies private_cdn,
// and query parameters become settings, with bracket syntax for
// nested keys.
func FromURL(s string) (*Config, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, api.NewErrorf(api.InvalidConfiguration, "invalid connection string: %v", err)
	}
	if !strings.EqualFold(u.Scheme, "cloudinary") {
		return nil, api.NewErrorf(api.InvalidConfiguration, "invalid connection string scheme %q, expecting cloudinary://", u.Scheme)
	}
	c := defaults()
	c.CloudName = u.Hostname()
	if u.User != nil {
		c.APIKey = u.User.Username()
		c.APISecret, _ = u.User.Password()
	}
	if u.Path != "" && u.Path != "/" {
		c.SecureDistribution = strings.TrimPrefix(u.Path, "/")
		c.PrivateCDN = true
	}
	if err := c.applyQuery(u.Query()); err != nil {
		return nil, err
	}
	return c, nil
}

// applyQuery folds connection string query parameters into the config.
// List-valued parameters collapse to their first value.
func (c *Config) applyQuery(q url.Values) error {
	for key, values := range q {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		path := splitBrackets(key)
		if err := c.set(path, value); err != nil {
			return err
		}
	}
	return nil
}

// splitBrackets turns "a[b][c]" into ["a", "b", "c"]
func splitBrackets(key string) []string {
	var path []string
	for _, part := range strings.FieldsFunc(key, func(r rune) bool {
		return r == '[' || r == ']'
	}) {
		if part != "" {
			path = append(path, part)
		}
	}
	return path
}

func (c *Config) set(path []string, value string) error {
	if len(path) == 0 {
		return nil
	}
	if len(path) > 1 {
		if path[0] == "auth_token" {
			return c.setAuthToken(path[1], value)
		}
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[strings.Join(path, ".")] = value
		return nil
	}
	switch path[0] {
	case "cloud_name":
		c.CloudName = value
	case "api_key":
		c.APIKey = value
	case "api_secret":
		c.APISecret = value
	case "oauth_token":
		c.OAuthToken = value
	case "upload_prefix":
		c.UploadPrefix = value
	case "secure":
		c.Secure = parseBool(value)
	case "secure_distribution":
		c.SecureDistribution = value
	case "private_cdn":
		c.PrivateCDN = parseBool(value)
	case "cname":
		c.CName = value
	case "cdn_subdomain":
		c.CDNSubdomain = parseBool(value)
	case "secure_cdn_subdomain":
		b := parseBool(value)
		c.SecureCDNSubdomain = &b
	case "shorten":
		c.Shorten = parseBool(value)
	case "sign_url":
		c.SignURL = parseBool(value)
	case "long_url_signature":
		c.LongURLSignature = parseBool(value)
	case "signature_algorithm":
		c.SignatureAlgorithm = api.SignatureAlgorithm(value)
	case "force_version":
		c.ForceVersion = parseBool(value)
	case "client_hints":
		c.ClientHints = parseBool(value)
	case "akamai_key":
		c.AkamaiKey = value
	case "use_cache":
		c.UseCache = parseBool(value)
	default:
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra[path[0]] = value
	}
	return nil
}

func (c *Config) setAuthToken(key, value string) error {
	switch key {
	case "key":
		c.AuthToken.Key = value
	case "start_time":
		c.AuthToken.StartTime = parseInt(value)
	case "expiration":
		c.AuthToken.Expiration = parseInt(value)
	case "duration":
		c.AuthToken.Duration = parseInt(value)
	case "acl":
		c.AuthToken.ACL = value
	case "ip":
		c.AuthToken.IP = value
	case "set_url_signature":
		c.AuthToken.SetURLSignature = parseBool(value)
	default:
		if c.Extra == nil {
			c.Extra = make(map[string]string)
		}
		c.Extra["auth_token."+key] = value
	}
	return nil
}

// Validate checks that the credentials needed for API calls are set
func (c *Config) Validate() error {
	if c.CloudName == "" {
		return api.NewError(api.InvalidConfiguration, "must supply cloud_name")
	}
	if c.OAuthToken != "" {
		return nil
	}
	if c.APIKey == "" {
		return api.NewError(api.InvalidConfiguration, "must supply api_key")
	}
	if c.APISecret == "" {
		return api.NewError(api.InvalidConfiguration, "must supply api_secret")
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
