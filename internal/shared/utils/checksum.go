package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
)

// CalculateChecksumAndSize reads the whole file once and returns its
// lowercase hex MD5 digest and byte length.
func CalculateChecksumAndSize(path string) (string, int64, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("read %s: %w", path, err)
	}

	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:]), int64(len(content)), nil
}
