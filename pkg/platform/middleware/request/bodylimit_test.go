package request

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyLimit(t *testing.T) {
	read := func(limit int64, body string) (int, error) {
		var n int
		var readErr error
		handler := BodyLimit(limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := io.ReadAll(r.Body)
			n, readErr = len(data), err
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/create", strings.NewReader(body)))
		return n, readErr
	}

	t.Run("under and at the limit", func(t *testing.T) {
		n, err := read(100, strings.Repeat("x", 40))
		require.NoError(t, err)
		assert.Equal(t, 40, n)

		n, err = read(100, strings.Repeat("x", 100))
		require.NoError(t, err)
		assert.Equal(t, 100, n)
	})

	t.Run("over the limit", func(t *testing.T) {
		_, err := read(100, strings.Repeat("x", 101))
		require.Error(t, err)
		var maxErr *http.MaxBytesError
		assert.True(t, errors.As(err, &maxErr))
		assert.Equal(t, int64(100), maxErr.Limit)
	})
}
