// Package opaqueid maps internal integer primary keys to short public
// identifier strings and back.
//
// Every encoded string carries the entity type it was minted for: the codec
// encodes the pair (value, magicBase+tag) and decode verifies the tag against
// the caller's expectation, so a string minted for one entity type never
// validates as another. The check is purely arithmetic — no storage lookup.
package opaqueid

import (
	"errors"
	"math"

	"github.com/sqids/sqids-go"
)

// EntityTag identifies which domain entity an integer id belongs to.
type EntityTag uint8

const (
	TagUser EntityTag = iota
	TagStructure
)

// String returns the tag name for logs and error context.
func (t EntityTag) String() string {
	switch t {
	case TagUser:
		return "user"
	case TagStructure:
		return "structure"
	default:
		return "unknown"
	}
}

// ErrInvalidID is returned for negative values on encode and for malformed,
// tampered, or cross-entity strings on decode.
var ErrInvalidID = errors.New("invalid id")

const (
	// defaultAlphabet deliberately drops 0, O, I and l to avoid visually
	// ambiguous identifiers.
	defaultAlphabet  = "ABCDEFGHJKLMNPQRSTUVWXYZ123456789abcdefghijkmnopqrstuvwxyz"
	defaultMinLength = 6

	// magicBase is added to the tag ordinal before encoding. Decoding
	// recomputes the ordinal from the second number and rejects mismatches.
	magicBase uint64 = 557
)

// Config controls the codec transform. Zero values select the defaults.
type Config struct {
	Alphabet  string
	MinLength uint8
}

// Codec is a bidirectional (EntityTag, int64) <-> string transform.
// Stateless after New; safe for unrestricted concurrent use.
type Codec struct {
	s *sqids.Sqids
}

// New builds the transform table once. The returned Codec is immutable.
func New(cfg Config) (*Codec, error) {
	alphabet := cfg.Alphabet
	if alphabet == "" {
		alphabet = defaultAlphabet
	}
	minLength := cfg.MinLength
	if minLength == 0 {
		minLength = defaultMinLength
	}

	s, err := sqids.New(sqids.Options{
		Alphabet:  alphabet,
		MinLength: minLength,
	})
	if err != nil {
		return nil, err
	}
	return &Codec{s: s}, nil
}

// Encode derives the public string for value under tag. The same pair always
// yields the same string; distinct pairs never collide. Negative values are
// rejected with ErrInvalidID.
func (c *Codec) Encode(tag EntityTag, value int64) (string, error) {
	if value < 0 {
		return "", ErrInvalidID
	}
	return c.s.Encode([]uint64{uint64(value), magicBase + uint64(tag)})
}

// Decode inverts Encode. It fails with ErrInvalidID when s is not decodable
// under the alphabet, does not contain exactly two numbers, was minted for a
// different entity tag, or exceeds the int64 range.
func (c *Codec) Decode(tag EntityTag, s string) (int64, error) {
	numbers := c.s.Decode(s)
	if len(numbers) != 2 {
		return 0, ErrInvalidID
	}

	v, m := numbers[0], numbers[1]
	if m < magicBase || m-magicBase != uint64(tag) {
		return 0, ErrInvalidID
	}
	if v > math.MaxInt64 {
		return 0, ErrInvalidID
	}
	return int64(v), nil
}
