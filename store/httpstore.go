package store

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-logr/logr"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
	"github.com/TuSKan/ngff-pixelbuffer/zarr"
)

// httpStore issues GETs against baseURL+"/"+key. 404 is ErrNotFound;
// other non-2xx statuses are StoreError.
type httpStore struct {
	client  *http.Client
	baseURL string // no trailing slash
	logger  logr.Logger
}

func openHTTP(baseURL string, o options) Store {
	return &httpStore{client: http.DefaultClient, baseURL: strings.TrimRight(baseURL, "/"), logger: o.logger}
}

func (s *httpStore) Get(ctx context.Context, key string) ([]byte, error) {
	full := s.baseURL
	if key != "" {
		full = s.baseURL + "/" + key
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.StoreError, err, "build request for %s", full)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.StoreError, err, "GET %s", full)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		s.logger.V(1).Info("key not found, treating as fill value", "url", full)
		return nil, ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		return nil, pberrors.New(pberrors.StoreError, "GET %s: unexpected status %d", full, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.StoreError, err, "read body of %s", full)
	}
	return data, nil
}

func (s *httpStore) Resolve(subpath string) zarr.Backend {
	subpath = strings.Trim(subpath, "/")
	next := s.baseURL
	if subpath != "" {
		next = s.baseURL + "/" + subpath
	}
	return &httpStore{client: s.client, baseURL: next, logger: s.logger}
}
