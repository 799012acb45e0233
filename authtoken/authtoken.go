// Package authtoken generates the HMAC-signed query fragment that
// grants time-bounded access to token-protected delivery URLs.
package authtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/go-cloudinary/cloudinary/api"
)

// TokenName is the query parameter carrying the token
const TokenName = "__cld_token__"

// Options control token generation.  Key is the hex-encoded account
// token key.  Either Expiration or Duration must be set, and either
// ACL or URL; when both ACL and URL are given the URL is ignored.
type Options struct {
	Key        string
	StartTime  int64
	Expiration int64
	Duration   int64
	IP         string
	ACL        string
	URL        string
	TokenName  string
}

// timeNow is stubbed in tests
var timeNow = time.Now

// Generate builds the token for the given options.
//
// The signed message joins the ip, st, exp, acl and url parts with
// "~" in that order; the emitted token carries the same parts minus
// url, followed by the hex HMAC-SHA256 digest.
func Generate(o Options) (string, error) {
	key, err := hex.DecodeString(o.Key)
	if err != nil {
		return "", api.NewErrorf(api.InvalidTokenRequest, "invalid token key: %v", err)
	}
	if o.ACL == "" && o.URL == "" {
		return "", api.NewError(api.InvalidTokenRequest, "must provide either acl or url")
	}
	expiration := o.Expiration
	if expiration == 0 {
		if o.Duration == 0 {
			return "", api.NewError(api.InvalidTokenRequest, "must provide either expiration or duration")
		}
		start := o.StartTime
		if start == 0 {
			start = timeNow().Unix()
		}
		expiration = start + o.Duration
	}

	var parts []string
	if o.IP != "" {
		parts = append(parts, "ip="+o.IP)
	}
	if o.StartTime != 0 {
		parts = append(parts, "st="+strconv.FormatInt(o.StartTime, 10))
	}
	parts = append(parts, "exp="+strconv.FormatInt(expiration, 10))
	if o.ACL != "" {
		parts = append(parts, "acl="+escapeToLower(o.ACL))
	}
	toSign := append([]string(nil), parts...)
	if o.URL != "" && o.ACL == "" {
		toSign = append(toSign, "url="+escapeToLower(o.URL))
	}

	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(strings.Join(toSign, "~")))
	parts = append(parts, "hmac="+hex.EncodeToString(mac.Sum(nil)))

	name := o.TokenName
	if name == "" {
		name = TokenName
	}
	return name + "=" + strings.Join(parts, "~"), nil
}

const lowerhex = "0123456789abcdef"

// escapeToLower percent-encodes with lowercase hex digits, keeping
// unreserved characters and "*" so ACL wildcards survive
func escapeToLower(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if tokenSafe(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(lowerhex[c>>4])
			b.WriteByte(lowerhex[c&15])
		}
	}
	return b.String()
}

func tokenSafe(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '~', c == '*':
		return true
	}
	return false
}
