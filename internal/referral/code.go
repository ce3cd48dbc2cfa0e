package referral

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	codeAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	DefaultCodeLength = 10

	// largest multiple of len(codeAlphabet) that fits in a byte
	codeByteLimit = 256 - 256%len(codeAlphabet)
)

// Generator mints referral codes from a URL-safe alphabet. Codes are not
// checked against existing users; the store's unique index does that.
type Generator struct {
	Length int
	Rand   io.Reader
}

func NewGenerator(length int) *Generator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &Generator{Length: length, Rand: rand.Reader}
}

func (g *Generator) Generate() (string, error) {
	src := g.Rand
	if src == nil {
		src = rand.Reader
	}

	code := make([]byte, 0, g.Length)
	buf := make([]byte, g.Length*2)
	for len(code) < g.Length {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			// rejection sampling keeps every symbol equally likely
			if int(b) >= codeByteLimit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == g.Length {
				break
			}
		}
	}
	return string(code), nil
}
