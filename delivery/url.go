// Package delivery builds asset delivery URLs: host selection, path
// assembly, optional URL signing and access token generation.
package delivery

import (
	"encoding/base64"
	"hash/crc32"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/authtoken"
	"github.com/go-cloudinary/cloudinary/config"
	"github.com/go-cloudinary/cloudinary/transformation"
)

// Options select what to deliver and how.  Zero values fall back to
// the configuration and the usual defaults (image, upload).
type Options struct {
	ResourceType    string
	Type            string
	Version         interface{}
	Format          string
	Transformation  interface{}
	URLSuffix       string
	UseRootPath     bool
	Shorten         bool
	ResponsiveWidth bool
	AuthToken       *config.AuthToken
}

// responsiveWidthTransformation is appended when responsive width is
// requested and the configuration carries no override
var responsiveWidthTransformation = map[string]interface{}{
	"width": "auto",
	"crop":  "limit",
}

var (
	remoteSourceRe = regexp.MustCompile(`^https?:/`)
	versionRe      = regexp.MustCompile(`^v[0-9]+`)
	repeatSlashRe  = regexp.MustCompile(`([^:])/+`)
)

// URL builds the delivery URL for source.
//
// The configuration is taken by value so a call observes a single
// consistent snapshot.
func URL(cfg config.Config, source string, o Options) (string, error) {
	if source == "" {
		return "", nil
	}
	if cfg.CloudName == "" {
		return "", api.NewError(api.InvalidConfiguration, "must supply cloud_name")
	}

	resourceType := o.ResourceType
	if resourceType == "" {
		resourceType = api.Image.String()
	}
	deliveryType := o.Type
	if deliveryType == "" {
		deliveryType = api.Upload.String()
	}
	if (deliveryType == "upload" || deliveryType == "asset") && remoteSourceRe.MatchString(source) {
		return source, nil
	}

	format := o.Format
	trans := o.Transformation
	if deliveryType == "fetch" && format != "" {
		trans = withFetchFormat(trans, format)
		format = ""
	}
	transStr, err := transformation.Encode(trans)
	if err != nil {
		return "", err
	}
	if o.ResponsiveWidth {
		responsive := cfg.ResponsiveWidthTransformation
		if responsive == nil {
			responsive = responsiveWidthTransformation
		}
		responsiveStr, err := transformation.Encode(responsive)
		if err != nil {
			return "", err
		}
		if transStr == "" {
			transStr = responsiveStr
		} else {
			transStr += "/" + responsiveStr
		}
	}

	if o.URLSuffix != "" && !cfg.PrivateCDN {
		return "", api.NewError(api.InvalidURLSuffix, "url_suffix is only supported in private CDN")
	}
	resourceType, deliveryType, err = finalizeResourceType(resourceType, deliveryType, o)
	if err != nil {
		return "", err
	}
	source, sourceToSign, err := finalizeSource(source, format, o.URLSuffix)
	if err != nil {
		return "", err
	}

	version := api.ToString(o.Version)
	if version == "" && cfg.ForceVersion &&
		strings.Contains(sourceToSign, "/") &&
		!remoteSourceRe.MatchString(sourceToSign) &&
		!versionRe.MatchString(sourceToSign) {
		version = "1"
	}
	if version != "" {
		version = "v" + version
	}

	token := o.AuthToken
	if token == nil && (cfg.AuthToken.Key != "" ||
		(cfg.AkamaiKey != "" && cfg.AuthToken != (config.AuthToken{}))) {
		token = &cfg.AuthToken
	}
	// the legacy akamai key serves as the fallback token key
	if token != nil && token.Key == "" && cfg.AkamaiKey != "" {
		t := *token
		t.Key = cfg.AkamaiKey
		token = &t
	}

	signature := ""
	if cfg.SignURL && (token == nil || token.SetURLSignature) {
		signature, err = signURL(cfg, transStr, sourceToSign)
		if err != nil {
			return "", err
		}
	}

	prefix, err := distributionPrefix(cfg, source)
	if err != nil {
		return "", err
	}

	assembled := joinURL(prefix, resourceType, deliveryType, signature, transStr, version, source)
	assembled = repeatSlashRe.ReplaceAllString(assembled, "$1/")

	if token != nil && token.Key != "" {
		q, err := tokenQuery(*token, assembled)
		if err != nil {
			return "", err
		}
		assembled += "?" + q
	}
	return assembled, nil
}

// withFetchFormat folds the requested format into the transformation
// as fetch_format, since a fetched source keeps its own extension
func withFetchFormat(trans interface{}, format string) interface{} {
	switch t := trans.(type) {
	case nil:
		return transformation.Transformation{"fetch_format": format}
	case transformation.Transformation:
		return withFetchFormatMap(t, format)
	case map[string]interface{}:
		return withFetchFormatMap(t, format)
	}
	return []interface{}{trans, transformation.Transformation{"fetch_format": format}}
}

func withFetchFormatMap(t map[string]interface{}, format string) map[string]interface{} {
	out := make(map[string]interface{}, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	if _, ok := out["fetch_format"]; !ok {
		out["fetch_format"] = format
	}
	return out
}

// finalizeResourceType folds url_suffix, use_root_path and shorten
// into the resource-type and delivery-type path segments
func finalizeResourceType(resourceType, deliveryType string, o Options) (string, string, error) {
	if o.URLSuffix != "" {
		switch {
		case resourceType == "image" && deliveryType == "upload":
			resourceType, deliveryType = "images", ""
		case resourceType == "raw" && deliveryType == "upload":
			resourceType, deliveryType = "files", ""
		default:
			return "", "", api.NewError(api.InvalidURLSuffix, "url_suffix is only supported for image/upload and raw/upload")
		}
	}
	if o.UseRootPath {
		if (resourceType == "image" && deliveryType == "upload") || (resourceType == "images" && deliveryType == "") {
			resourceType, deliveryType = "", ""
		} else {
			return "", "", api.NewError(api.InvalidURLSuffix, "root path is only supported for image/upload")
		}
	}
	if o.Shorten && resourceType == "image" && deliveryType == "upload" {
		resourceType, deliveryType = "iu", ""
	}
	return resourceType, deliveryType, nil
}

// finalizeSource escapes the source and appends the url_suffix and
// format.  The returned sourceToSign excludes the suffix, which is
// not covered by URL signatures.
func finalizeSource(source, format, urlSuffix string) (string, string, error) {
	source = repeatSlashRe.ReplaceAllString(source, "$1/")
	if remoteSourceRe.MatchString(source) {
		source = api.SmartEscape(source)
		return source, source, nil
	}
	if unquoted, err := url.PathUnescape(source); err == nil {
		source = unquoted
	}
	source = api.SmartEscape(source)
	sourceToSign := source
	if urlSuffix != "" {
		if strings.ContainsAny(urlSuffix, "./") {
			return "", "", api.NewError(api.InvalidURLSuffix, "url_suffix should not include . or /")
		}
		source += "/" + urlSuffix
	}
	if format != "" {
		source += "." + format
		sourceToSign += "." + format
	}
	return source, sourceToSign, nil
}

// signURL builds the "s--sig--" path segment over the transformation
// and the source.  Long mode always uses SHA-256 and 32 characters.
func signURL(cfg config.Config, transStr, sourceToSign string) (string, error) {
	message := sourceToSign
	if transStr != "" {
		message = transStr + "/" + sourceToSign
	}
	algo := cfg.SignatureAlgorithm
	length := 8
	if cfg.LongURLSignature {
		algo = api.SHA256
		length = 32
	}
	digest, err := api.RawDigest(message, cfg.APISecret, algo)
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(digest)
	return "s--" + encoded[:length] + "--", nil
}

// distributionPrefix picks the scheme and host per the account's
// distribution setup
func distributionPrefix(cfg config.Config, source string) (string, error) {
	if strings.HasPrefix(cfg.CloudName, "/") {
		return "/res" + cfg.CloudName, nil
	}

	sharedDomain := !cfg.PrivateCDN
	shard := strconv.FormatUint(uint64(crc32.ChecksumIEEE([]byte(source))%5+1), 10)

	var prefix string
	if cfg.Secure {
		distribution := cfg.SecureDistribution
		if distribution == "" || distribution == api.OldAkamaiSharedCDN {
			if cfg.PrivateCDN {
				distribution = cfg.CloudName + "-res.cloudinary.com"
			} else {
				distribution = api.SharedCDN
			}
		}
		sharedDomain = sharedDomain || distribution == api.SharedCDN

		secureSubdomain := cfg.SecureCDNSubdomain != nil && *cfg.SecureCDNSubdomain
		if cfg.SecureCDNSubdomain == nil && sharedDomain {
			secureSubdomain = cfg.CDNSubdomain
		}
		if secureSubdomain {
			distribution = strings.Replace(distribution, "res.cloudinary.com", "res-"+shard+".cloudinary.com", 1)
		}
		prefix = "https://" + distribution
	} else if cfg.CName != "" {
		subdomain := ""
		if cfg.CDNSubdomain {
			subdomain = "a" + shard + "."
		}
		prefix = "http://" + subdomain + cfg.CName
	} else {
		subdomain := "res"
		if cfg.PrivateCDN {
			subdomain = cfg.CloudName + "-res"
		}
		if cfg.CDNSubdomain {
			subdomain += "-" + shard
		}
		prefix = "http://" + subdomain + ".cloudinary.com"
	}
	if sharedDomain {
		prefix += "/" + cfg.CloudName
	}
	return prefix, nil
}

func joinURL(parts ...string) string {
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}

// tokenQuery generates the access token for an assembled URL, hashing
// its path when no ACL restricts the token
func tokenQuery(token config.AuthToken, assembled string) (string, error) {
	path := ""
	if u, err := url.Parse(assembled); err == nil {
		path = u.Path
	}
	return authtoken.Generate(authtoken.Options{
		Key:        token.Key,
		StartTime:  token.StartTime,
		Expiration: token.Expiration,
		Duration:   token.Duration,
		IP:         token.IP,
		ACL:        token.ACL,
		URL:        path,
	})
}
