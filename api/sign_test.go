package api

import (
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "hdcixPpR2iKERPwqvH6sHdK9cyac"

func testParams() map[string][]string {
	return map[string][]string{
		"cloud_name": {"dn6ot3ged"},
		"timestamp":  {"1568810420"},
		"username":   {"user@cloudinary.com"},
	}
}

func TestSignParametersSHA1(t *testing.T) {
	sig, err := SignParameters(testParams(), testSecret, SHA1)
	require.NoError(t, err)
	assert.Equal(t, "14c00ba6d0dfdedbc86b316847d95b9e6cd46d94", sig)
}

func TestSignParametersSHA256(t *testing.T) {
	sig, err := SignParameters(testParams(), testSecret, SHA256)
	require.NoError(t, err)
	assert.Equal(t, "45ddaa4fa01f0c2826f32f669d2e4514faf275fe6df053f1a150e7beae58a3bd", sig)
}

func TestSignParametersDefaultsToSHA1(t *testing.T) {
	sig, err := SignParameters(testParams(), testSecret, "")
	require.NoError(t, err)
	assert.Equal(t, "14c00ba6d0dfdedbc86b316847d95b9e6cd46d94", sig)
}

func TestSignParametersUnknownAlgorithm(t *testing.T) {
	_, err := SignParameters(testParams(), testSecret, "md5")
	require.Error(t, err)
	apiErr := IsError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, InvalidSignatureScheme, apiErr.Code)
}

// signature is order independent under the canonical sort
func TestSignParametersOrderIndependent(t *testing.T) {
	a := map[string][]string{"b": {"2"}, "a": {"1"}, "c": {"3"}}
	b := map[string][]string{"c": {"3"}, "a": {"1"}, "b": {"2"}}
	sigA, err := SignParameters(a, "secret", SHA1)
	require.NoError(t, err)
	sigB, err := SignParameters(b, "secret", SHA1)
	require.NoError(t, err)
	assert.Equal(t, sigA, sigB)
}

func TestSignParametersExcludesAuthFields(t *testing.T) {
	params := testParams()
	with := map[string][]string{}
	for k, v := range params {
		with[k] = v
	}
	with["api_key"] = []string{"key"}
	with["signature"] = []string{"bogus"}
	with["file"] = []string{"ignored"}
	with["resource_type"] = []string{"image"}
	with["empty"] = []string{""}
	sig, err := SignParameters(with, testSecret, SHA1)
	require.NoError(t, err)
	assert.Equal(t, "14c00ba6d0dfdedbc86b316847d95b9e6cd46d94", sig)
}

func TestSignParametersJoinsListValues(t *testing.T) {
	sig, err := SignParameters(map[string][]string{"tags": {"a", "b"}}, "secret", SHA1)
	require.NoError(t, err)
	expected, err := SignParameters(map[string][]string{"tags": {"a,b"}}, "secret", SHA1)
	require.NoError(t, err)
	assert.Equal(t, expected, sig)
}

func TestVerifyAPIResponseSignature(t *testing.T) {
	secret := "someApiSecret"
	ok, err := VerifyAPIResponseSignature("sample", "1234", "cd902e74d995a74329316c6da69086ef14799c1e", secret, SHA1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyAPIResponseSignature("sample", "1234", "deadbeef", secret, SHA1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyNotificationSignature(t *testing.T) {
	secret := "someApiSecret"
	body := `{"public_id":"sample","version":1234}`
	timestamp := int64(1568810420)
	signature := "26ee4112def87274fcf58311f2f4575a0bd080bf"

	// stale timestamp fails even with a valid signature
	ok, err := VerifyNotificationSignature(body, timestamp, signature, 2*time.Hour, secret, SHA1)
	require.NoError(t, err)
	assert.False(t, ok)

	// fresh timestamp passes
	now := time.Now().Unix()
	freshSig, err := RawDigest(body+strconv.FormatInt(now, 10), secret, SHA1)
	require.NoError(t, err)
	ok, err = VerifyNotificationSignature(body, now, hex.EncodeToString(freshSig), 2*time.Hour, secret, SHA1)
	require.NoError(t, err)
	assert.True(t, ok)

	// bad signature fails
	ok, err = VerifyNotificationSignature(body, now, "deadbeef", 2*time.Hour, secret, SHA1)
	require.NoError(t, err)
	assert.False(t, ok)

	// missing secret is an error
	_, err = VerifyNotificationSignature(body, now, signature, 2*time.Hour, "", SHA1)
	require.Error(t, err)
}
