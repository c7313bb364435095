// Package auth implements credential hashing and signed, time-bounded
// access tokens. Everything in it is stateless after construction and safe
// for concurrent use; it never logs and never retries.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2idTag = "argon2id"

// Upper bounds on the cost parameters. NewHasher refuses anything above
// them and Verify rejects stored hashes that exceed them, so every hash this
// package produces can be verified again.
const (
	MaxHashMemoryKiB  = 1 << 20
	MaxHashIterations = 64
	MaxHashKeyLength  = 1024
)

// HashParams are the argon2id cost parameters.
type HashParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns 64 MiB, 3 iterations, parallelism 1, a 16 byte
// salt and a 32 byte digest.
func DefaultHashParams() HashParams {
	return HashParams{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (p HashParams) validate() error {
	switch {
	case p.Iterations < 1 || p.Iterations > MaxHashIterations:
		return fmt.Errorf("hash iterations must be between 1 and %d", MaxHashIterations)
	case p.Parallelism < 1:
		return fmt.Errorf("hash parallelism must be at least 1")
	case p.MemoryKiB < 8*uint32(p.Parallelism) || p.MemoryKiB > MaxHashMemoryKiB:
		return fmt.Errorf("hash memory must be between %d and %d KiB", 8*uint32(p.Parallelism), MaxHashMemoryKiB)
	case p.SaltLength < 8:
		return fmt.Errorf("hash salt length must be at least 8 bytes")
	case p.KeyLength < 16 || p.KeyLength > MaxHashKeyLength:
		return fmt.Errorf("hash key length must be between 16 and %d bytes", MaxHashKeyLength)
	}
	return nil
}

// Hasher produces and verifies argon2id hashes in PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=1$<salt>$<digest>
//
// Salt and digest use unpadded standard base64.
type Hasher struct {
	params HashParams
	random io.Reader
}

func NewHasher(params HashParams) (*Hasher, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Hasher{params: params, random: rand.Reader}, nil
}

// Hash draws a fresh salt on every call, so equal secrets never share a hash.
func (h *Hasher) Hash(secret []byte) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.random, salt); err != nil {
		return "", fmt.Errorf("%w: read salt: %v", ErrHashingFailure, err)
	}

	digest := argon2.IDKey(secret, salt, h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idTag,
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify reports whether secret matches encoded. It returns false for any
// string it cannot parse. Hashes written by the previous bcrypt-based
// deployment are still accepted.
func (h *Hasher) Verify(secret []byte, encoded string) bool {
	if isBcrypt(encoded) {
		return bcrypt.CompareHashAndPassword([]byte(encoded), secret) == nil
	}

	decoded, err := decodeArgon2id(encoded)
	if err != nil {
		return false
	}

	actual := argon2.IDKey(secret, decoded.salt, decoded.params.Iterations, decoded.params.MemoryKiB, decoded.params.Parallelism, uint32(len(decoded.digest)))
	return subtle.ConstantTimeCompare(actual, decoded.digest) == 1
}

// NeedsRehash reports whether encoded was produced by another algorithm or
// with parameters different from the hasher's current ones.
func (h *Hasher) NeedsRehash(encoded string) bool {
	decoded, err := decodeArgon2id(encoded)
	if err != nil {
		return true
	}

	p := decoded.params
	return p.MemoryKiB != h.params.MemoryKiB ||
		p.Iterations != h.params.Iterations ||
		p.Parallelism != h.params.Parallelism ||
		uint32(len(decoded.salt)) != h.params.SaltLength ||
		uint32(len(decoded.digest)) != h.params.KeyLength
}

type decodedHash struct {
	params HashParams
	salt   []byte
	digest []byte
}

var errInvalidHash = errors.New("invalid argon2id hash")

func decodeArgon2id(encoded string) (decodedHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2idTag {
		return decodedHash{}, errInvalidHash
	}

	version, err := parseKeyValue(parts[2], "v", 32)
	if err != nil || version != argon2.Version {
		return decodedHash{}, errInvalidHash
	}

	params, err := parseCostParams(parts[3])
	if err != nil {
		return decodedHash{}, err
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(parts[4])
	if err != nil {
		return decodedHash{}, errInvalidHash
	}

	digest, err := base64.RawStdEncoding.Strict().DecodeString(parts[5])
	if err != nil || len(digest) == 0 || len(digest) > MaxHashKeyLength {
		return decodedHash{}, errInvalidHash
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(digest))

	return decodedHash{params: params, salt: salt, digest: digest}, nil
}

func parseCostParams(value string) (HashParams, error) {
	fields := strings.Split(value, ",")
	if len(fields) != 3 {
		return HashParams{}, errInvalidHash
	}

	memory, err := parseKeyValue(fields[0], "m", 32)
	if err != nil {
		return HashParams{}, errInvalidHash
	}
	iterations, err := parseKeyValue(fields[1], "t", 32)
	if err != nil {
		return HashParams{}, errInvalidHash
	}
	parallelism, err := parseKeyValue(fields[2], "p", 8)
	if err != nil {
		return HashParams{}, errInvalidHash
	}

	params := HashParams{
		MemoryKiB:   uint32(memory),
		Iterations:  uint32(iterations),
		Parallelism: uint8(parallelism),
	}
	if params.Iterations < 1 || params.Iterations > MaxHashIterations ||
		params.Parallelism < 1 ||
		params.MemoryKiB > MaxHashMemoryKiB {
		return HashParams{}, errInvalidHash
	}

	return params, nil
}

func parseKeyValue(field string, key string, bitSize int) (uint64, error) {
	raw, ok := strings.CutPrefix(field, key+"=")
	if !ok {
		return 0, errInvalidHash
	}
	return strconv.ParseUint(raw, 10, bitSize)
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
