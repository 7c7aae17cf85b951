// Package keystore keeps a wallet's WIF encrypted at rest.
//
// Ciphertext layout: salt(16B) || nonce(12B) || AES-256-GCM(argon2id(password, salt), nonce, wif)
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	SaltLen  = 16
	NonceLen = 12

	fileVersion = 1
)

var (
	ErrEmptySecret    = errors.New("keystore: empty secret")
	ErrEmptyPassword  = errors.New("keystore: empty password")
	ErrDecryption     = errors.New("keystore: wrong password or corrupted data")
	ErrInvalidFile    = errors.New("keystore: invalid keystore file")
	ErrUnsupportedVer = errors.New("keystore: unsupported keystore version")
)

// Params are the Argon2id cost parameters.
type Params struct {
	Time        uint32
	Memory      uint32 // KiB
	Parallelism uint8
	KeyLen      uint32
}

// DefaultParams is 3 passes over 64 MB with 4 lanes.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Parallelism: 4, KeyLen: 32}

func (p Params) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keystore: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: GCM creation failed: %w", err)
	}
	return gcm, nil
}

// Encrypt seals secret under password.
func Encrypt(secret []byte, password string, params Params) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	salt := make([]byte, SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate salt: %w", err)
	}
	nonce := make([]byte, NonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: failed to generate nonce: %w", err)
	}

	gcm, err := newGCM(params.derive(password, salt))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, SaltLen+NonceLen+len(secret)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, secret, nil), nil
}

// Decrypt opens data produced by Encrypt with the same params.
func Decrypt(data []byte, password string, params Params) ([]byte, error) {
	if len(data) <= SaltLen+NonceLen {
		return nil, ErrDecryption
	}
	salt := data[:SaltLen]
	nonce := data[SaltLen : SaltLen+NonceLen]

	gcm, err := newGCM(params.derive(password, salt))
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, nonce, data[SaltLen+NonceLen:], nil)
	if err != nil {
		return nil, ErrDecryption
	}
	return plain, nil
}

// File is the on-disk form. Network and Address are kept in clear so
// a watch-only wallet can be opened without the password.
type File struct {
	Version    int    `json:"version"`
	Network    string `json:"network"`
	Address    string `json:"address"`
	Ciphertext string `json:"ciphertext"` // hex
	Params     Params `json:"kdf"`
}

// Save encrypts wif and writes the keystore to path with 0600 permissions.
func Save(path string, network string, address string, wif string, password string, params Params) error {
	sealed, err := Encrypt([]byte(wif), password, params)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(File{
		Version:    fileVersion,
		Network:    network,
		Address:    address,
		Ciphertext: hex.EncodeToString(sealed),
		Params:     params,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Read parses the keystore file without decrypting it.
func Read(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if f.Version != fileVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVer, f.Version)
	}
	return &f, nil
}

// Load reads the keystore at path and returns the decrypted WIF.
func Load(path string, password string) (*File, string, error) {
	f, err := Read(path)
	if err != nil {
		return nil, "", err
	}
	sealed, err := hex.DecodeString(f.Ciphertext)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	wif, err := Decrypt(sealed, password, f.Params)
	if err != nil {
		return nil, "", err
	}
	return f, string(wif), nil
}
