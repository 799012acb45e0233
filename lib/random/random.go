// Package random holds a few functions for working with random identifiers
package random

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

const idChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ID creates a random alphanumeric string of length n.
//
// It is used for upload session identifiers so it uses crypto/rand.
func ID(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(idChars)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "random read failed")
		}
		out[i] = idChars[v.Int64()]
	}
	return string(out), nil
}
