package voicelib

import (
	"encoding/hex"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
)

// FingerprintBits is the length of a voice fingerprint in bits.
const FingerprintBits = 16

// fingerprintSeed fixes the hyperplanes so fingerprints are stable across
// runs and machines.
const fingerprintSeed = 0x5157454e

// Hasher projects speaker embeddings into short locality-sensitive hashes
// using random hyperplane LSH. Similar voices tend to share a fingerprint,
// and a shared prefix means a coarser match:
//
//	full  "A3F8"  16-bit
//	[:2]  "A3"    8-bit group
type Hasher struct {
	dim    int
	bits   int
	planes [][]float32 // bits × dim, each row is a unit hyperplane
}

// NewHasher creates a Hasher for embeddings of length dim. bits must be a
// positive multiple of 4.
func NewHasher(dim, bits int, seed uint64) *Hasher {
	if bits <= 0 || bits%4 != 0 {
		panic("voicelib: bits must be a positive multiple of 4")
	}
	if dim <= 0 {
		panic("voicelib: dim must be positive")
	}

	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	planes := make([][]float32, bits)
	for i := range planes {
		plane := make([]float32, dim)
		var norm float64
		for j := range plane {
			v := float32(rng.NormFloat64())
			plane[j] = v
			norm += float64(v) * float64(v)
		}
		if norm = math.Sqrt(norm); norm > 0 {
			scale := float32(1 / norm)
			for j := range plane {
				plane[j] *= scale
			}
		}
		planes[i] = plane
	}
	return &Hasher{dim: dim, bits: bits, planes: planes}
}

// Hash returns the uppercase hex fingerprint of embedding, or "" if its
// length does not match the hasher.
func (h *Hasher) Hash(embedding []float32) string {
	if len(embedding) != h.dim {
		return ""
	}
	buf := make([]byte, (h.bits+7)/8)
	for i, plane := range h.planes {
		if dot(plane, embedding) > 0 {
			buf[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return strings.ToUpper(hex.EncodeToString(buf))[:h.bits/4]
}

// Dim returns the expected embedding dimension.
func (h *Hasher) Dim() int { return h.dim }

// hashers caches one Hasher per embedding dimension.
var hashers sync.Map // int -> *Hasher

// Fingerprint returns the library fingerprint of an embedding.
func Fingerprint(embedding []float32) string {
	if len(embedding) == 0 {
		return ""
	}
	h, ok := hashers.Load(len(embedding))
	if !ok {
		h, _ = hashers.LoadOrStore(len(embedding), NewHasher(len(embedding), FingerprintBits, fingerprintSeed))
	}
	return h.(*Hasher).Hash(embedding)
}

// Cosine returns the cosine similarity of two embeddings, or 0 when their
// lengths differ or either is zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var ab, aa, bb float64
	for i := range a {
		ab += float64(a[i]) * float64(b[i])
		aa += float64(a[i]) * float64(a[i])
		bb += float64(b[i]) * float64(b[i])
	}
	if aa == 0 || bb == 0 {
		return 0
	}
	return ab / (math.Sqrt(aa) * math.Sqrt(bb))
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
