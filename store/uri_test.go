package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
)

func TestSplitScheme(t *testing.T) {
	scheme, rest := splitScheme("s3://bucket/key")
	assert.Equal(t, "s3", scheme)
	assert.Equal(t, "bucket/key", rest)

	scheme, rest = splitScheme("/data/plate.zarr")
	assert.Equal(t, "", scheme)
	assert.Equal(t, "/data/plate.zarr", rest)
}

func TestTruncateAtZarrSegment(t *testing.T) {
	root, err := truncateAtZarrSegment("data/plate.zarr/0")
	require.NoError(t, err)
	assert.Equal(t, "data/plate.zarr", root)

	root, err = truncateAtZarrSegment("plate.zarr")
	require.NoError(t, err)
	assert.Equal(t, "plate.zarr", root)

	_, err = truncateAtZarrSegment("data/plate")
	require.Error(t, err)
	assert.True(t, pberrors.Is(err, pberrors.InvalidUri))
}

func TestOpen_FilesystemURI(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plate.zarr"), 0o755))
	s, err := Open(t.Context(), "file://"+dir+"/plate.zarr")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestOpen_BareFilesystemPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plate.zarr"), 0o755))
	s, err := Open(t.Context(), dir+"/plate.zarr")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestOpen_MissingZarrSegmentIsInvalidUri(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(t.Context(), dir+"/plate")
	require.Error(t, err)
	assert.True(t, pberrors.Is(err, pberrors.InvalidUri))
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open(t.Context(), "ftp://host/plate.zarr")
	require.Error(t, err)
	assert.True(t, pberrors.Is(err, pberrors.InvalidUri))
}

func TestOpen_HTTPURI(t *testing.T) {
	s, err := Open(t.Context(), "https://example.org/data/plate.zarr/0")
	require.NoError(t, err)
	hs, ok := s.(*httpStore)
	require.True(t, ok)
	assert.Equal(t, "https://example.org/data/plate.zarr", hs.baseURL)
}

func TestOpen_S3URI_RejectsUserInfo(t *testing.T) {
	_, err := Open(t.Context(), "s3://key:secret@s3.amazonaws.com/bucket/plate.zarr")
	require.Error(t, err)
	assert.True(t, pberrors.Is(err, pberrors.InvalidUri))
}

func TestOpen_S3URI_RequiresBucketAndPrefix(t *testing.T) {
	_, err := Open(t.Context(), "s3://s3.amazonaws.com/bucket-only.zarr")
	require.Error(t, err)
	assert.True(t, pberrors.Is(err, pberrors.InvalidUri))
}

func TestParseS3Credentials(t *testing.T) {
	q := map[string][]string{"anonymous": {"true"}}
	creds, err := parseS3Credentials(q)
	require.NoError(t, err)
	assert.True(t, creds.Anonymous)

	q = map[string][]string{"accessKeyId": {"AKIA"}, "secretAccessKey": {"secret"}, "region": {"eu-west-1"}}
	creds, err = parseS3Credentials(q)
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
	assert.Equal(t, "eu-west-1", creds.region())

	q = map[string][]string{"accessKeyId": {"AKIA"}}
	_, err = parseS3Credentials(q)
	require.Error(t, err)
	assert.True(t, pberrors.Is(err, pberrors.InvalidUri))

	q = map[string][]string{"anonymous": {"true"}, "profile": {"dev"}}
	_, err = parseS3Credentials(q)
	require.Error(t, err)
	assert.True(t, pberrors.Is(err, pberrors.InvalidUri))
}
