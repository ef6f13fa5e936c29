package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.Get(ctx, "invoice_FAC-1.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "invoice_FAC-1.pdf", []byte("first")))
	require.NoError(t, s.Put(ctx, "invoice_FAC-1.pdf", []byte("second")))
	b, err := s.Get(ctx, "invoice_FAC-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	require.NoError(t, s.Delete(ctx, "invoice_FAC-1.pdf"))
	require.NoError(t, s.Delete(ctx, "invoice_FAC-1.pdf"))
	_, err = s.Get(ctx, "invoice_FAC-1.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRejectsPaths(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "../x.pdf", "a/b.pdf", ".hidden"} {
		assert.Error(t, s.Put(context.Background(), name, []byte("x")), name)
	}
}
