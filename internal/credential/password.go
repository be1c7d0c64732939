// Package credential hashes, verifies and generates administrator passwords.
package credential

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one-way password transform used by the credential store.
type Hasher interface {
	// Hash returns a salted hash token for plaintext.
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. Malformed hashes never
	// match.
	Verify(plaintext, hash string) bool
}

// MaxInputBytes is the longest plaintext bcrypt reads. Anything past it would
// be ignored, so longer inputs are rejected outright.
const MaxInputBytes = 72

// BcryptHasher implements Hasher with bcrypt. The salt and cost are embedded
// in every token it produces.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost. Out-of-range costs
// fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

// Hash returns a bcrypt token for plaintext.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxInputBytes {
		return "", fmt.Errorf("bcrypt hash: password longer than %d bytes", MaxInputBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// Verify compares plaintext against hash in constant time.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	if hash == "" || len(plaintext) > MaxInputBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Password generation alphabets. Ambiguous glyphs (0/O, 1/l/I) are excluded.
const (
	lowerChars  = "abcdefghijkmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars  = "23456789"
	symbolChars = "!@#$%^&*-_=+?"
	allChars    = lowerChars + upperChars + digitChars + symbolChars
)

const (
	// MinGeneratedLength is the shortest password GeneratePassword returns.
	MinGeneratedLength = 12
	// DefaultGeneratedLength is used for admin password resets.
	DefaultGeneratedLength = 16
)

// GeneratePassword returns a random password of the given length (raised to
// MinGeneratedLength if smaller) containing at least one lowercase letter,
// uppercase letter, digit and symbol.
func GeneratePassword(length int) (string, error) {
	if length < MinGeneratedLength {
		length = MinGeneratedLength
	}

	buf := make([]byte, 0, length)
	for _, class := range []string{lowerChars, upperChars, digitChars, symbolChars} {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < length {
		c, err := randomChar(allChars)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	// Fisher-Yates so the guaranteed classes are not always in front.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func randomChar(alphabet string) (byte, error) {
	i, err := randomInt(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}
