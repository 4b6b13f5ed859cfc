package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPValidity is how long a generated code stays usable.
const OTPValidity = 5 * time.Minute

// GenerateOTP returns a random six-digit verification code.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails if the system entropy source is broken
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// IsOTPExpired reports whether a code sent at sentAt is past its validity
// window. A nil sentAt means no code was ever sent.
func IsOTPExpired(sentAt *time.Time) bool {
	if sentAt == nil {
		return true
	}
	return time.Since(*sentAt) > OTPValidity
}
