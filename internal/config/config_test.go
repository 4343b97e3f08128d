package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalsim/engine/internal/config"
	"github.com/fiscalsim/engine/internal/domain"
)

func TestDefault_ParsesTheEmbeddedFixture(t *testing.T) {
	cfg := config.Default()

	require.Equal(t, ":8080", cfg.ListenAddr)
	require.Equal(t, domain.RegionFR, cfg.DefaultRegion)
	require.NotZero(t, cfg.DefaultYear)
}

func TestLoadFile_MissingPathReturnsDefaults(t *testing.T) {
	cfg, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadFile_OverlaysOnDiskValuesOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAddr: \":9090\"\ndefaultRegion: \"FR-67\"\n"), 0o600))

	cfg, err := config.LoadFile(path)

	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ListenAddr)
	require.Equal(t, domain.RegionFR67, cfg.DefaultRegion)
	// untouched keys keep their defaults
	require.Equal(t, config.Default().DefaultYear, cfg.DefaultYear)
}

func TestLoadFile_MalformedYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listenAddr: [unclosed"), 0o600))

	_, err := config.LoadFile(path)

	require.Error(t, err)
}
