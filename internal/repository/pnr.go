package repository

import (
	"crypto/rand"
	"fmt"
)

const (
	pnrAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	pnrLength   = 6
	// largest multiple of len(pnrAlphabet) that fits in a byte
	pnrRejectAbove = 252
)

// GeneratePNR returns six characters drawn uniformly from [A-Z0-9].
func GeneratePNR() (string, error) {
	out := make([]byte, 0, pnrLength)
	buf := make([]byte, 16)
	for len(out) < pnrLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("pnr entropy: %w", err)
		}
		for _, b := range buf {
			if b >= pnrRejectAbove {
				continue
			}
			out = append(out, pnrAlphabet[int(b)%len(pnrAlphabet)])
			if len(out) == pnrLength {
				break
			}
		}
	}
	return string(out), nil
}
