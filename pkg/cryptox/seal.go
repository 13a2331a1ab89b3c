package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealPrefix marks sealed values so plaintext written by an older build (or
// with sealing disabled) is still readable.
const sealPrefix = "sealed:v1:"

// hkdfInfo binds derived keys to this use so the same master material can
// safely serve other purposes.
var hkdfInfo = []byte("budadmin session store v1")

// ErrNoKeyMaterial is returned by LoadKeyMaterial when neither the key file
// nor the environment variable is set.
var ErrNoKeyMaterial = errors.New("cryptox: no master key material")

// LoadKeyMaterial reads master key material from path when set, falling back
// to the named environment variable. Surrounding whitespace is trimmed.
func LoadKeyMaterial(path, envVar string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read master key file: %w", err)
		}
		data = []byte(strings.TrimSpace(string(data)))
		if len(data) == 0 {
			return nil, fmt.Errorf("master key file %s is empty", path)
		}
		return data, nil
	}

	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return []byte(v), nil
	}

	return nil, ErrNoKeyMaterial
}

// Sealer encrypts short secrets (tokens) for storage at rest using
// XChaCha20-Poly1305 with a key derived from master material via HKDF-SHA256.
// The output is text so it can live in a TEXT column.
//
// Format: "sealed:v1:" + base64url([24-byte nonce][ciphertext][16-byte tag])
type Sealer struct {
	key []byte
}

// NewSealer derives a 32-byte key from material.
func NewSealer(material []byte) (*Sealer, error) {
	if len(material) == 0 {
		return nil, ErrNoKeyMaterial
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, material, nil, hkdfInfo)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext with a random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as is.
func (s *Sealer) Open(value string) (string, error) {
	encoded, ok := strings.CutPrefix(value, sealPrefix)
	if !ok {
		return value, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed value: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(data) < aead.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed: %w", err)
	}

	return string(plaintext), nil
}

// IsSealed reports whether value was produced by Seal.
func (s *Sealer) IsSealed(value string) bool {
	return strings.HasPrefix(value, sealPrefix)
}
