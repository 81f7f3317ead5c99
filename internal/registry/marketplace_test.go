package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nftpulse/notifier/internal/registry"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marketplaces.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMarketplaces_LookupIsCaseInsensitive(t *testing.T) {
	path := writeRegistry(t, `{
		"OpenSea": ["0x00000000006c3852cbEf3e08E8dF289169EdE581"],
		"Blur": ["0x000000000000Ad05Ccc4F10045630fb830B95127"]
	}`)

	reg, err := registry.LoadMarketplaces(path)
	require.NoError(t, err)

	name, ok := reg.Lookup("0x00000000006c3852cbef3e08e8df289169ede581")
	assert.True(t, ok)
	assert.Equal(t, "OpenSea", name)

	_, ok = reg.Lookup("0x000000000000AD05CCC4F10045630FB830B95127")
	assert.True(t, ok)
	_, ok = reg.Lookup("0x1111111111111111111111111111111111111111")
	assert.False(t, ok)
}

func TestLoadMarketplaces_MissingFile(t *testing.T) {
	_, err := registry.LoadMarketplaces(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "failed to read marketplace registry file")
}

func TestLoadMarketplaces_InvalidJSON(t *testing.T) {
	path := writeRegistry(t, `{"OpenSea": "not-a-list"}`)

	_, err := registry.LoadMarketplaces(path)
	assert.ErrorContains(t, err, "failed to parse marketplace registry JSON")
}
