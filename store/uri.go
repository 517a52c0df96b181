package store

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
)

// Open parses rootURI (file/http/https/s3) and opens the corresponding
// Store, rooted at the ".zarr" directory segment the URI names.
func Open(ctx context.Context, rootURI string, opts ...Option) (Store, error) {
	o := newOptions(opts)

	scheme, rest := splitScheme(rootURI)
	switch scheme {
	case "", "file":
		return openFileURI(rest, o)
	case "http", "https":
		return openHTTPURI(scheme, rest, o)
	case "s3":
		return openS3URI(ctx, rest, o)
	default:
		return nil, pberrors.New(pberrors.InvalidUri, "unrecognized URI scheme %q", scheme)
	}
}

// splitScheme returns (scheme, rest) for "scheme://rest", or ("", uri)
// when uri carries no recognized "://" separator (a bare filesystem
// path).
func splitScheme(uri string) (string, string) {
	idx := strings.Index(uri, "://")
	if idx < 0 {
		return "", uri
	}
	return uri[:idx], uri[idx+3:]
}

// truncateAtZarrSegment finds the first "/"-separated segment ending in
// ".zarr" and returns the path truncated through (inclusive of) that
// segment. The path after the scheme must contain .zarr as a directory
// segment; the root is the portion up through that segment.
func truncateAtZarrSegment(path string) (root string, err error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if strings.HasSuffix(seg, ".zarr") {
			return strings.Join(segments[:i+1], "/"), nil
		}
	}
	return "", pberrors.New(pberrors.InvalidUri, "path %q has no \".zarr\" directory segment", path)
}

func openFileURI(rest string, o options) (Store, error) {
	logical := filepath.ToSlash(rest)
	root, err := truncateAtZarrSegment(logical)
	if err != nil {
		return nil, err
	}
	// Preserve a leading "/" for absolute paths (truncateAtZarrSegment
	// trims it for segment splitting).
	if strings.HasPrefix(logical, "/") {
		root = "/" + root
	}
	return openFilesystem(filepath.FromSlash(root), o)
}

func openHTTPURI(scheme, rest string, o options) (Store, error) {
	full := scheme + "://" + rest
	u, err := url.Parse(full)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.InvalidUri, err, "parse %s", full)
	}
	if u.User != nil {
		return nil, pberrors.New(pberrors.InvalidUri, "user-info is not allowed in %s URIs", scheme)
	}
	root, err := truncateAtZarrSegment(u.Path)
	if err != nil {
		return nil, err
	}
	base := scheme + "://" + u.Host + "/" + root
	return openHTTP(base, o), nil
}

func openS3URI(ctx context.Context, rest string, o options) (Store, error) {
	u, err := url.Parse("s3://" + rest)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.InvalidUri, err, "parse s3 uri")
	}
	if u.User != nil {
		return nil, pberrors.New(pberrors.InvalidUri, "user-info is not allowed in s3 URIs; use profile= or instance credentials")
	}

	path := strings.Trim(u.Path, "/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, pberrors.New(pberrors.InvalidUri, "s3 uri must be s3://host/bucket/key-prefix")
	}
	bucket, keyPrefix := parts[0], parts[1]

	root, err := truncateAtZarrSegment(keyPrefix)
	if err != nil {
		return nil, err
	}

	creds, err := parseS3Credentials(u.Query())
	if err != nil {
		return nil, err
	}

	return openS3(ctx, u.Host, bucket, root, creds, o)
}

func parseS3Credentials(q url.Values) (s3Credentials, error) {
	var c s3Credentials
	if v := q.Get("anonymous"); v == "true" {
		c.Anonymous = true
	}
	c.AccessKeyID = q.Get("accessKeyId")
	c.SecretAccessKey = q.Get("secretAccessKey")
	c.Profile = q.Get("profile")
	c.Region = q.Get("region")

	modes := 0
	if c.Anonymous {
		modes++
	}
	if c.AccessKeyID != "" || c.SecretAccessKey != "" {
		if c.AccessKeyID == "" || c.SecretAccessKey == "" {
			return c, pberrors.New(pberrors.InvalidUri, "accessKeyId and secretAccessKey must both be set")
		}
		modes++
	}
	if c.Profile != "" {
		modes++
	}
	if modes > 1 {
		return c, pberrors.New(pberrors.InvalidUri, "at most one of anonymous/static-credentials/profile may be set")
	}
	return c, nil
}
