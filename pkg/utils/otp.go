package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpDigits = 6

// GenerateOTP returns a zero-padded numeric one-time code.
func GenerateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
