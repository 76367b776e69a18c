package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// HashContent computes the hex-encoded SHA-256 digest of content. Unlike
// request-body hashing, evidence integrity hashes always cover the full
// content; truncation would defeat tamper detection.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashFile computes the hex-encoded SHA-256 digest of the file at path,
// streaming so that large log captures do not load into memory.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
