// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secureelement.
//
// go-secureelement is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends under test share one behavioral contract
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	file, err := NewFile(t.TempDir())
	require.NoError(t, err)
	return map[string]Backend{
		"memory": NewMemory(),
		"file":   file,
	}
}

func TestBackendRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, backend.Put("bindings/tls-server", []byte(`{"slot":2}`)))

			value, err := backend.Get("bindings/tls-server")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"slot":2}`), value)

			exists, err := backend.Exists("bindings/tls-server")
			require.NoError(t, err)
			assert.True(t, exists)

			require.NoError(t, backend.Delete("bindings/tls-server"))

			_, err = backend.Get("bindings/tls-server")
			assert.ErrorIs(t, err, ErrNotFound)

			exists, err = backend.Exists("bindings/tls-server")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestBackendNotFound(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := backend.Get("bindings/missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, backend.Delete("bindings/missing"), ErrNotFound)
		})
	}
}

func TestBackendOverwrite(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, backend.Put("k", []byte("one")))
			require.NoError(t, backend.Put("k", []byte("two")))

			value, err := backend.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("two"), value)
		})
	}
}

func TestBackendList(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, backend.Put("bindings/a", []byte("1")))
			require.NoError(t, backend.Put("bindings/b", []byte("2")))
			require.NoError(t, backend.Put("other/c", []byte("3")))

			keys, err := backend.List("bindings/")
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"bindings/a", "bindings/b"}, keys)

			all, err := backend.List("")
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestBackendClosed(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, backend.Close())

			_, err := backend.Get("k")
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, backend.Put("k", nil), ErrClosed)
			assert.ErrorIs(t, backend.Delete("k"), ErrClosed)
			_, err = backend.List("")
			assert.ErrorIs(t, err, ErrClosed)
			_, err = backend.Exists("k")
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	backend := NewMemory()
	require.NoError(t, backend.Put("k", []byte("abc")))

	value, err := backend.Get("k")
	require.NoError(t, err)
	value[0] = 'x'

	again, err := backend.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestFileInvalidKey(t *testing.T) {
	backend, err := NewFile(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "/absolute"} {
		_, err := backend.Get(key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
		assert.ErrorIs(t, backend.Put(key, nil), ErrInvalidKey, "key %q", key)
	}
}

func TestFilePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	backend, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, backend.Put("bindings/signer", []byte(`{"slot":0}`)))
	require.NoError(t, backend.Close())

	reopened, err := NewFile(dir)
	require.NoError(t, err)
	value, err := reopened.Get("bindings/signer")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"slot":0}`), value)
}
