package storage

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"sentinela/pkg/platform/sentinel"
)

// Codec transforms a marshaled snapshot before it reaches the backend.
type Codec interface {
	Encode(raw []byte) ([]byte, error)
	Decode(blob []byte) ([]byte, error)
}

// ObfuscatingCodec is the legacy snapshot encoding: plain base64.
//
// This is a reversible encoding, NOT encryption, and provides no
// confidentiality whatsoever. It exists only for compatibility with snapshots
// written before AEADCodec was introduced. New deployments should configure a
// snapshot key so AEADCodec is used instead.
type ObfuscatingCodec struct{}

func NewObfuscatingCodec() ObfuscatingCodec { return ObfuscatingCodec{} }

func (ObfuscatingCodec) Encode(raw []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(out, raw)
	return out, nil
}

func (ObfuscatingCodec) Decode(blob []byte) ([]byte, error) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(blob)))
	n, err := base64.StdEncoding.Decode(out, blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel.ErrCorrupt, err)
	}
	return out[:n], nil
}

// AEADCodec seals snapshots with XChaCha20-Poly1305. A random nonce is
// prefixed to each blob, so identical snapshots never produce identical
// ciphertexts. Tampered or truncated blobs fail to open and are absorbed by
// the store as corrupt.
type AEADCodec struct {
	key []byte
}

// NewAEADCodec builds a codec from a 32-byte key.
func NewAEADCodec(key []byte) (*AEADCodec, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("snapshot key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &AEADCodec{key: key}, nil
}

func (c *AEADCodec) Encode(raw []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, raw, nil), nil
}

func (c *AEADCodec) Decode(blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, err
	}
	if len(blob) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: blob shorter than nonce", sentinel.ErrCorrupt)
	}
	nonce, sealed := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	raw, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sentinel.ErrCorrupt, err)
	}
	return raw, nil
}
