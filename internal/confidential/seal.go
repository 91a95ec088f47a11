package confidential

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

const (
	keySize = 32
	// SealOverhead is the size added to a plaintext by Seal.
	SealOverhead = box.AnonymousOverhead
)

var (
	// ErrDecrypt is returned when a ciphertext cannot be opened with the bound key.
	ErrDecrypt = errors.New("failed to decrypt ciphertext")

	// ErrUnsupportedRuntimeKey is returned when the runtime key is not a
	// curve25519 sealing key, e.g. a TFHE compact public key.
	ErrUnsupportedRuntimeKey = errors.New("unsupported runtime public key")
)

// Seal encrypts msg to recipient as a libsodium crypto_box_seal message.
func Seal(recipient *[keySize]byte, msg []byte) ([]byte, error) {
	sealed, err := box.SealAnonymous(nil, msg, recipient, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to seal: %w", err)
	}
	return sealed, nil
}

// Open reverses Seal with the recipient's keypair.
func Open(public, private *[keySize]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < SealOverhead {
		return nil, fmt.Errorf("%w: ciphertext is %d bytes", ErrDecrypt, len(sealed))
	}

	msg, ok := box.OpenAnonymous(nil, sealed, public, private)
	if !ok {
		return nil, ErrDecrypt
	}
	return msg, nil
}

// PublicKeyFromBytes checks that key is usable as a sealing key.
func PublicKeyFromBytes(key []byte) (*[keySize]byte, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d", ErrUnsupportedRuntimeKey, keySize, len(key))
	}
	var out [keySize]byte
	copy(out[:], key)
	return &out, nil
}
