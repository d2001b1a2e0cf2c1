package utils

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseInt64 parses a path or query id, returning 0 and false on bad input.
func ParseInt64(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// SafeFilename rejects names that would escape the folder they are joined to.
func SafeFilename(name string) (string, error) {
	clean := filepath.Base(filepath.Clean(name))
	if name == "" || clean != name || clean == "." || clean == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return clean, nil
}

// DatasetFolder is {workingDir}/uploads/user_{userID}/dataset_{datasetID}.
func DatasetFolder(workingDir string, userID, datasetID int64) string {
	return filepath.Join(workingDir, "uploads",
		fmt.Sprintf("user_%d", userID),
		fmt.Sprintf("dataset_%d", datasetID),
	)
}

// FileURL builds the public download URL of a hubfile.
// Production links use https; a bare second-level domain gets a www. prefix.
func FileURL(domain string, production bool, fileID int64) string {
	proto := "http"
	if production {
		proto = "https"
	}
	if strings.Count(domain, ".") == 1 {
		domain = "www." + domain
	}
	return fmt.Sprintf("%s://%s/hubfile/download/%d", proto, domain, fileID)
}
