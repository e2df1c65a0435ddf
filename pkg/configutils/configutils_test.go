package configutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestResolveAndMergeFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempConfig(t, dir, "config.yaml", "runner:\n  output_dir: /tmp/out\n")

	v := viper.New()
	require.NoError(t, ResolveAndMergeFile(v, path))
	assert.Equal(t, "/tmp/out", v.GetString("runner.output_dir"))
}

func TestResolveAndMergeFileImports(t *testing.T) {
	dir := t.TempDir()
	writeTempConfig(t, dir, "base.yaml", "logging:\n  level: debug\nrunner:\n  output_dir: /base\n")
	root := writeTempConfig(t, dir, "config.yaml", "imports:\n  - base.yaml\nrunner:\n  output_dir: /override\n")

	v := viper.New()
	require.NoError(t, ResolveAndMergeFile(v, root))
	// The importer wins over imported values; imported-only keys survive.
	assert.Equal(t, "/override", v.GetString("runner.output_dir"))
	assert.Equal(t, "debug", v.GetString("logging.level"))
}

func TestResolveAndMergeFileCircularImports(t *testing.T) {
	dir := t.TempDir()
	writeTempConfig(t, dir, "a.yaml", "imports:\n  - b.yaml\nkey_a: 1\n")
	writeTempConfig(t, dir, "b.yaml", "imports:\n  - a.yaml\nkey_b: 2\n")
	root := writeTempConfig(t, dir, "config.yaml", "imports:\n  - a.yaml\n")

	v := viper.New()
	require.NoError(t, ResolveAndMergeFile(v, root))
	assert.Equal(t, 1, v.GetInt("key_a"))
	assert.Equal(t, 2, v.GetInt("key_b"))
}

func TestResolveAndMergeFileMissing(t *testing.T) {
	v := viper.New()
	assert.Error(t, ResolveAndMergeFile(v, "/does/not/exist.yaml"))
}

func TestResolveAndMergeFileNoExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeTempConfig(t, dir, "config", "a: 1\n")

	v := viper.New()
	assert.Error(t, ResolveAndMergeFile(v, path))
}

func TestBindEnvsRecursive(t *testing.T) {
	type nested struct {
		Token string `mapstructure:"token"`
	}
	type config struct {
		OutputDir string  `mapstructure:"output_dir"`
		Auth      *nested `mapstructure:"auth"`
	}

	v := viper.New()
	v.SetEnvPrefix("MODELCOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	require.NoError(t, BindEnvsRecursive(v, &config{}, "runner"))

	// Binding registers the keys; values flow from the environment.
	t.Setenv("MODELCOST_RUNNER_OUTPUT_DIR", "/from/env")
	assert.Equal(t, "/from/env", v.GetString("runner.output_dir"))
}
