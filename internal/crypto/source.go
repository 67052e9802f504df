package crypto

import (
	"errors"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// SeedSize is the seed length accepted by NewSeededSource.
const SeedSize = chacha20.KeySize

var ErrInvalidSeed = errors.New("seed must be 32 bytes")

// SeededSource is a deterministic stream of random bytes: the ChaCha20
// keystream under a caller-provided key. Equal seeds yield equal streams.
// The output is only as unpredictable as the seed.
type SeededSource struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
}

// NewSeededSource creates a SeededSource keyed by a 32-byte seed.
func NewSeededSource(seed []byte) (*SeededSource, error) {
	if len(seed) != SeedSize {
		return nil, ErrInvalidSeed
	}
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(seed, nonce)
	if err != nil {
		return nil, err
	}
	return &SeededSource{cipher: c}, nil
}

// Read fills p with the next bytes of the keystream. It never fails.
func (s *SeededSource) Read(p []byte) (int, error) {
	clear(p)
	s.mu.Lock()
	s.cipher.XORKeyStream(p, p)
	s.mu.Unlock()
	return len(p), nil
}
