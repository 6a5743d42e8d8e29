// Package sessionid issues the identifiers announced to each connection.
//
// An ID is a UUIDv7 rendered as 26 lowercase Crockford base32 characters, so
// IDs sort by creation time and fit in a URL without escaping.
package sessionid

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the number of characters in an encoded ID
const Length = 26

// New returns a fresh time-ordered ID
func New() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return Encode(u), nil
}

// Encode renders u as 26 base32 characters. The 128 bits are preceded by
// two zero bits, so the first character is always 0-7.
func Encode(u uuid.UUID) string {
	hi := binary.BigEndian.Uint64(u[:8])
	lo := binary.BigEndian.Uint64(u[8:])

	var out [Length]byte
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// Parse decodes an ID produced by Encode
func Parse(id string) (uuid.UUID, error) {
	if err := Validate(id); err != nil {
		return uuid.Nil, err
	}

	var hi, lo uint64
	for i := 0; i < Length; i++ {
		v := uint64(strings.IndexByte(alphabet, id[i]))
		hi = hi<<5 | lo>>59
		lo = lo<<5 | v
	}

	var u uuid.UUID
	binary.BigEndian.PutUint64(u[:8], hi)
	binary.BigEndian.PutUint64(u[8:], lo)
	return u, nil
}

// Validate checks if an ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("session ID must be exactly %d characters, got %d", Length, len(id))
	}

	// The leading character carries only three bits
	if id[0] > '7' {
		return fmt.Errorf("session ID first character must be 0-7, got %c", id[0])
	}

	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}

	return nil
}
