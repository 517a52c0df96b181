package store

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TuSKan/ngff-pixelbuffer/pberrors"
)

func TestHTTPStore_GetAndResolve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/plate.zarr/.zattrs", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"multiscales":[]}`))
	})
	mux.HandleFunc("/plate.zarr/0/0.0", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("chunk-data"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := openHTTP(srv.URL+"/plate.zarr", newOptions(nil))

	data, err := s.Get(t.Context(), ".zattrs")
	require.NoError(t, err)
	assert.JSONEq(t, `{"multiscales":[]}`, string(data))

	level0 := s.Resolve("0")
	data, err = level0.Get(t.Context(), "0.0")
	require.NoError(t, err)
	assert.Equal(t, "chunk-data", string(data))
}

func TestHTTPStore_404IsErrNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	s := openHTTP(srv.URL, newOptions(nil))
	_, err := s.Get(t.Context(), "0/0.0")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPStore_ServerErrorIsStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := openHTTP(srv.URL, newOptions(nil))
	_, err := s.Get(t.Context(), "0/0.0")
	require.Error(t, err)
	assert.True(t, pberrors.Is(err, pberrors.StoreError))
}
