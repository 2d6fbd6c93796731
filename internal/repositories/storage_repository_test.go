package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath_DecodesDownloadURL(t *testing.T) {
	u := "https://firebasestorage.googleapis.com/v0/b/wegig.appspot.com/o/posts%2Fabc%2Fcover.jpg?alt=media&token=xyz"
	path, err := objectPath(u)
	require.NoError(t, err)
	assert.Equal(t, "posts/abc/cover.jpg", path)
}

func TestObjectPath_RejectsNonDownloadURL(t *testing.T) {
	_, err := objectPath("https://example.com/image.jpg")
	assert.Error(t, err)
}
