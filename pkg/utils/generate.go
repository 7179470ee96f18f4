package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== OTP ====================

const (
	otpMin = 100000
	otpMax = 999999
)

var otpSpan = big.NewInt(otpMax - otpMin + 1)

// GenerateOTP returns a uniformly random integer in [100000, 999999] as a
// base-10 string, so the code is always exactly 6 digits.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
