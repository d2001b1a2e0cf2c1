package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Checksum
// =============================================================================

func TestCalculateChecksumAndSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.uvl")
	require.NoError(t, os.WriteFile(path, []byte("features\n    Root"), 0o644))

	sum, size, err := CalculateChecksumAndSize(path)
	require.NoError(t, err)
	assert.Len(t, sum, 32)
	assert.Equal(t, int64(17), size)

	again, _, err := CalculateChecksumAndSize(path)
	require.NoError(t, err)
	assert.Equal(t, sum, again, "same content must give the same digest")

	require.NoError(t, os.WriteFile(path, []byte("features\n    Other"), 0o644))
	changed, _, err := CalculateChecksumAndSize(path)
	require.NoError(t, err)
	assert.NotEqual(t, sum, changed)
}

func TestCalculateChecksumAndSize_KnownDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.uvl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	sum, size, err := CalculateChecksumAndSize(path)
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", sum)
	assert.Zero(t, size)
}

func TestCalculateChecksumAndSize_MissingFile(t *testing.T) {
	_, _, err := CalculateChecksumAndSize(filepath.Join(t.TempDir(), "nope.uvl"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// =============================================================================
// Human-readable size
// =============================================================================

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 bytes"},
		{1023, "1023 bytes"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1096, "1.07 KB"},
		{1152, "1.12 KB"}, // 1.125 rounds half to even
		{1408, "1.38 KB"}, // 1.375 rounds half to even
		{1024 * 1024, "1.0 MB"},
		{1024*1024 - 1, "1024.0 KB"},
		{1024 * 1024 * 1024, "1.0 GB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, HumanReadableSize(tt.size))
		})
	}
}

// =============================================================================
// Paths and URLs
// =============================================================================

func TestSafeFilename(t *testing.T) {
	valid := []string{"model.uvl", "my model (1).uvl", "a.b.c.uvl"}
	for _, name := range valid {
		got, err := SafeFilename(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, got)
	}

	invalid := []string{"", ".", "..", "../secret.uvl", "dir/model.uvl", `dir\model.uvl`, "/etc/passwd"}
	for _, name := range invalid {
		_, err := SafeFilename(name)
		assert.Error(t, err, name)
	}
}

func TestDatasetFolder(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/srv/hub", "uploads", "user_3", "dataset_12"),
		DatasetFolder("/srv/hub", 3, 12),
	)
}

func TestFileURL(t *testing.T) {
	tests := []struct {
		name       string
		domain     string
		production bool
		want       string
	}{
		{"local", "localhost:5000", false, "http://localhost:5000/hubfile/download/7"},
		{"second level domain", "uvlhub.io", true, "https://www.uvlhub.io/hubfile/download/7"},
		{"subdomain", "hub.uvlhub.io", true, "https://hub.uvlhub.io/hubfile/download/7"},
		{"development with dot", "example.org", false, "http://www.example.org/hubfile/download/7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileURL(tt.domain, tt.production, 7))
		})
	}
}

func TestParseInt64(t *testing.T) {
	id, ok := ParseInt64("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, s := range []string{"", "abc", "0", "-3", "1.5"} {
		_, ok := ParseInt64(s)
		assert.False(t, ok, s)
	}
}
