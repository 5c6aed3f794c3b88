package block

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	HashSHA256     = "sha256"
	HashSHA3_256   = "sha3-256"
	HashBlake2b256 = "blake2b-256"
)

// Hasher is the digest used to seal and re-check blocks.
type Hasher interface {
	Name() string
	Sum(data []byte) []byte
}

// pooledHasher reuses hash.Hash instances between calls; Sum is safe for concurrent use.
type pooledHasher struct {
	name string
	pool sync.Pool
}

func newPooledHasher(name string, newHash func() hash.Hash) *pooledHasher {
	return &pooledHasher{
		name: name,
		pool: sync.Pool{
			New: func() interface{} {
				return newHash()
			},
		},
	}
}

func (p *pooledHasher) Name() string {
	return p.name
}

func (p *pooledHasher) Sum(data []byte) []byte {
	h := p.pool.Get().(hash.Hash)
	defer p.pool.Put(h)
	h.Reset()
	h.Write(data)
	return h.Sum(nil)
}

func SHA256Hasher() Hasher {
	return newPooledHasher(HashSHA256, sha256.New)
}

func SHA3Hasher() Hasher {
	return newPooledHasher(HashSHA3_256, sha3.New256)
}

func Blake2bHasher() Hasher {
	return newPooledHasher(HashBlake2b256, func() hash.Hash {
		// New256 only fails for keys longer than 64 bytes.
		h, _ := blake2b.New256(nil)
		return h
	})
}

// NewHasher resolves a configured hash function name. An empty name selects sha256.
func NewHasher(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HashSHA256:
		return SHA256Hasher(), nil
	case HashSHA3_256, "sha3":
		return SHA3Hasher(), nil
	case HashBlake2b256, "blake2b":
		return Blake2bHasher(), nil
	default:
		return nil, fmt.Errorf("unknown hash function %q", name)
	}
}
