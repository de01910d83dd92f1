package random

import (
	"crypto/rand"
	"math/big"
)

const digits = "0123456789"

// No I or O: room codes are read out loud and typed from phone screens.
const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ"

func Numeric(length int) string {
	return pickFromSet(digits, length)
}

// Code returns an uppercase code of the given length suitable for room codes.
func Code(length int) string {
	return pickFromSet(letters, length)
}

func pickFromSet(set string, length int) string {
	if length <= 0 {
		return ""
	}
	max := big.NewInt(int64(len(set)))
	runes := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			runes[i] = set[0]
			continue
		}
		runes[i] = set[n.Int64()]
	}
	return string(runes)
}
