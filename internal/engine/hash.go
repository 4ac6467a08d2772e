package engine

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// HashFile computes the BLAKE3 hash of the file at path, returning the hex-encoded digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return hashReader(f, path)
}

// HashRange hashes n bytes of f starting at off without moving the file
// position.
func HashRange(f *os.File, off, n int64) (string, error) {
	return hashReader(io.NewSectionReader(f, off, n), f.Name())
}

func hashReader(r io.Reader, name string) (string, error) {
	h := blake3.New()
	buf := make([]byte, 32*1024)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hash %s: %w", name, err)
	}

	digest := h.Sum(nil)
	return hex.EncodeToString(digest), nil
}
