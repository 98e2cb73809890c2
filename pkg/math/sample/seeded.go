package sample

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/chacha20"
)

// seeded is a deterministic stream of pseudo-random bytes.
type seeded struct {
	cipher *chacha20.Cipher
}

// NewSeeded returns a deterministic reader producing the ChaCha20 keystream
// keyed by seed.
//
// It is meant for reproducible sessions and tests, never for production keys.
// The returned reader is not safe for concurrent use.
func NewSeeded(seed uint64) io.Reader {
	key := make([]byte, chacha20.KeySize)
	binary.LittleEndian.PutUint64(key, seed)
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		// key and nonce sizes are constants
		panic(err)
	}
	return &seeded{cipher: c}
}

func (s *seeded) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	s.cipher.XORKeyStream(p, p)
	return len(p), nil
}
