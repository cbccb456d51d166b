package auth

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	otpMin  = 100000
	otpSpan = 900000
)

// GenerateOTP returns a 6-digit numeric code sampled uniformly from
// [100000, 999999]. Codes never carry leading zeros, so verification can
// compare exact strings.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
