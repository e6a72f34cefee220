package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/corona10/goimagehash"
)

// Keyer derives cache keys from request inputs.
//
// Contract:
// - Determinism: equal inputs must produce equal keys.
// - Concurrency: implementations must be safe for concurrent use.
// - The prompt is carried into the key unchanged.
type Keyer interface {
	Key(image []byte, prompt string) (Key, error)
}

// Keyer names accepted by NewKeyer.
const (
	KeyerSHA256     = "sha256"
	KeyerPerceptual = "perceptual"
)

// NewKeyer returns the keyer registered under name. An empty name selects
// SHA-256.
func NewKeyer(name string) (Keyer, error) {
	switch name {
	case "", KeyerSHA256:
		return SHA256Keyer{}, nil
	case KeyerPerceptual:
		return NewPerceptualKeyer(PHash), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyer, name)
	}
}

// SHA256Keyer keys on the exact image bytes.
type SHA256Keyer struct{}

// Key hashes image with SHA-256.
func (SHA256Keyer) Key(image []byte, prompt string) (Key, error) {
	if len(image) == 0 {
		return Key{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	sum := sha256.Sum256(image)
	return Key{ImageHash: hex.EncodeToString(sum[:]), Prompt: prompt}, nil
}

// HashKind selects the perceptual hash algorithm.
type HashKind int

const (
	// PHash is the DCT based perceptual hash (most robust).
	PHash HashKind = iota
	// DHash is the difference hash.
	DHash
	// AHash is the average hash (fastest).
	AHash
)

// PerceptualKeyer keys on the look of the image so near-duplicate photos
// share an entry. Images the standard decoders cannot read (e.g. WebP) fall
// back to Fallback.
type PerceptualKeyer struct {
	Kind     HashKind
	Fallback Keyer
}

// NewPerceptualKeyer creates a perceptual keyer with a SHA-256 fallback.
func NewPerceptualKeyer(kind HashKind) *PerceptualKeyer {
	return &PerceptualKeyer{Kind: kind, Fallback: SHA256Keyer{}}
}

// Key decodes image and hashes it with the configured algorithm.
func (k *PerceptualKeyer) Key(data []byte, prompt string) (Key, error) {
	if len(data) == 0 {
		return Key{}, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if k.Fallback != nil {
			return k.Fallback.Key(data, prompt)
		}
		return Key{}, fmt.Errorf("%w: decode: %v", ErrInvalidImage, err)
	}

	var h *goimagehash.ImageHash
	switch k.Kind {
	case DHash:
		h, err = goimagehash.DifferenceHash(img)
	case AHash:
		h, err = goimagehash.AverageHash(img)
	default:
		h, err = goimagehash.PerceptionHash(img)
	}
	if err != nil {
		return Key{}, fmt.Errorf("%w: hash: %v", ErrInvalidImage, err)
	}
	return Key{ImageHash: fmt.Sprintf("p%d:%016x", k.Kind, h.GetHash()), Prompt: prompt}, nil
}

var (
	_ Keyer = SHA256Keyer{}
	_ Keyer = (*PerceptualKeyer)(nil)
)
