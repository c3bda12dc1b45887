package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codemint/internal/config"
)

func newStore(t *testing.T, endpoint string) *ObjectStore {
	t.Helper()
	store, err := NewObjectStore(config.StorageConfig{
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	return store
}

func TestPublicURLIsDeterministic(t *testing.T) {
	store := newStore(t, "https://storage.example.com")

	first := store.PublicURL("codemint-barcodes", "barcodes/123456789012.png")
	second := store.PublicURL("codemint-barcodes", "barcodes/123456789012.png")

	// Same bucket and key always map to the same URL: re-uploads
	// overwrite, they never fork a new address.
	assert.Equal(t, first, second)
	assert.Equal(t, "https://storage.example.com/codemint-barcodes/barcodes/123456789012.png", first)
}

func TestPublicURLNormalizesEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
	}{
		{
			name:     "bare host gets https",
			endpoint: "storage.example.com",
			want:     "https://storage.example.com/b/k.png",
		},
		{
			name:     "trailing slash trimmed",
			endpoint: "https://storage.example.com/",
			want:     "https://storage.example.com/b/k.png",
		},
		{
			name:     "http preserved",
			endpoint: "http://localhost:9000",
			want:     "http://localhost:9000/b/k.png",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store := newStore(t, testCase.endpoint)
			assert.Equal(t, testCase.want, store.PublicURL("b", "k.png"))
		})
	}
}
