package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// Snapshot envelope: [16-byte salt][12-byte nonce][AES-256-GCM ciphertext].
// The ciphertext is bound to snapshotLabel as associated data, so a valid
// key cannot open a blob that was sealed for some other purpose.
const snapshotLabel = "hunterhall-db-snapshot-v1"

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32

	argon2Passes  = 3
	argon2MemKiB  = 64 * 1024
	argon2Threads = 4
)

// GenerateSalt returns a fresh random salt for one snapshot.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches the backup passphrase into an AES-256 key with
// Argon2id. Same passphrase and salt, same key.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argon2Passes, argon2MemKiB, argon2Threads, keySize)
}

func snapshotAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm, nil
}

// EncryptFile seals srcPath into the snapshot envelope at dstPath.
func EncryptFile(srcPath, dstPath, passphrase string, salt []byte) error {
	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	gcm, err := snapshotAEAD(passphrase, salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, []byte(snapshotLabel))

	if err := os.WriteFile(dstPath, out, 0600); err != nil {
		return fmt.Errorf("write sealed snapshot: %w", err)
	}
	return nil
}

// DecryptFile opens the snapshot envelope at srcPath and writes the
// plaintext database to dstPath. The salt comes from the envelope itself.
func DecryptFile(srcPath, dstPath, passphrase string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read sealed snapshot: %w", err)
	}
	if len(data) < saltSize+nonceSize {
		return fmt.Errorf("sealed snapshot truncated: %d bytes", len(data))
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+nonceSize]
	ciphertext := data[saltSize+nonceSize:]

	gcm, err := snapshotAEAD(passphrase, salt)
	if err != nil {
		return err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(snapshotLabel))
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}

	if err := os.WriteFile(dstPath, plaintext, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
