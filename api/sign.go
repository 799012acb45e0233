package api

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SignatureAlgorithm selects the digest used for request and URL signatures
type SignatureAlgorithm string

// Supported signature algorithms
const (
	SHA1   SignatureAlgorithm = "sha1"
	SHA256 SignatureAlgorithm = "sha256"
)

// Hasher returns a new hash for the algorithm, or an
// InvalidSignatureScheme error for anything unrecognised.  The empty
// string selects SHA-1.
func (a SignatureAlgorithm) Hasher() (hash.Hash, error) {
	switch a {
	case "", SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	}
	return nil, NewErrorf(InvalidSignatureScheme, "unsupported signature algorithm %q", string(a))
}

// RawDigest hashes message+secret with the algorithm
func RawDigest(message, secret string, algorithm SignatureAlgorithm) ([]byte, error) {
	h, err := algorithm.Hasher()
	if err != nil {
		return nil, err
	}
	_, _ = h.Write([]byte(message))
	_, _ = h.Write([]byte(secret))
	return h.Sum(nil), nil
}

// excluded from signing: the file itself and the authentication fields
var unsignedKeys = map[string]bool{
	"file":          true,
	"api_key":       true,
	"signature":     true,
	"resource_type": true,
}

// SignParameters produces the deterministic request signature over a
// parameter set: empty values and the unsigned keys are excluded, the
// rest sorted and serialized as k=v&k=v, the secret appended and the
// whole hashed to lowercase hex.
func SignParameters(params map[string][]string, secret string, algorithm SignatureAlgorithm) (string, error) {
	pairs := make([]string, 0, len(params))
	for k, vs := range params {
		if unsignedKeys[k] {
			continue
		}
		v := strings.Join(vs, ",")
		if v == "" {
			continue
		}
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	digest, err := RawDigest(strings.Join(pairs, "&"), secret, algorithm)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(digest), nil
}

// VerifyAPIResponseSignature checks the signature returned with an API
// response against one recomputed over public_id and version.  The
// comparison is constant-time.
func VerifyAPIResponseSignature(publicID, version, signature, secret string, algorithm SignatureAlgorithm) (bool, error) {
	expected, err := SignParameters(map[string][]string{
		"public_id": {publicID},
		"version":   {version},
	}, secret, algorithm)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1, nil
}

// VerifyNotificationSignature checks a server-originated callback
// signature.  The notification is valid when the recomputed digest
// over body+timestamp+secret matches and the timestamp is no older
// than validFor.
func VerifyNotificationSignature(body string, timestamp int64, signature string, validFor time.Duration, secret string, algorithm SignatureAlgorithm) (bool, error) {
	if secret == "" {
		return false, NewError(InvalidConfiguration, "must supply api_secret")
	}
	digest, err := RawDigest(body+strconv.FormatInt(timestamp, 10), secret, algorithm)
	if err != nil {
		return false, err
	}
	expected := hex.EncodeToString(digest)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return false, nil
	}
	return time.Now().Unix()-timestamp <= int64(validFor/time.Second), nil
}
