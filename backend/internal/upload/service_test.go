package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(dir)
	require.NoError(t, err)

	ref, err := svc.Save("Photo.JPG", strings.NewReader("image bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, filepath.Base(dir)+"/"))
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	name := filepath.Base(ref)
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))

	require.NoError(t, svc.Delete(ref))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	// Deleting a ref that no longer resolves is not an error
	assert.NoError(t, svc.Delete(ref))
}

func TestService_SaveGeneratesUniqueNames(t *testing.T) {
	svc, err := NewService(t.TempDir())
	require.NoError(t, err)

	a, err := svc.Save("same.png", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := svc.Save("same.png", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
