package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("chain", "ethereum", "")
	flags.String("rpc", "", "")
	flags.Int("chunk-size", 50, "")
	flags.StringSlice("pool", nil, "")
	return flags
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("", testFlags())
	require.NoError(t, err)
	require.Equal(t, "ethereum", cfg.Chain)
	require.Equal(t, 50, cfg.ChunkSize)
	require.Equal(t, 1, cfg.Parallelism)
	require.Equal(t, 10*time.Second, cfg.CallTimeout)
	require.Equal(t, "lenient", cfg.TopMode)
	require.Equal(t, 20, cfg.Limit)
	require.Nil(t, cfg.Pools)
}

func TestLoadFlagsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POOLSCOPE_RPC", "http://localhost:8545")
	t.Setenv("POOLSCOPE_STATIC_POOLS", "0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640, ,0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--chain", "Polygon", "--chunk-size", "7", "--pool", "0xaa,0xbb"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	require.Equal(t, "polygon", cfg.Chain)
	require.Equal(t, "http://localhost:8545", cfg.RPCURL)
	require.Equal(t, 7, cfg.ChunkSize)
	require.Equal(t, []string{"0xaa", "0xbb"}, cfg.Pools)
	require.Equal(t, []string{
		"0x88e6a0c2ddd26feeb64f039a2c41296fcb3f5640",
		"0x8ad599c3a0ff1de082011efddc58f1908eb6e6d8",
	}, cfg.StaticPools)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "poolscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulated: true\nlimit: 5\nsnapshot-mode: strict\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.True(t, cfg.Simulated)
	require.Equal(t, 5, cfg.Limit)
	require.Equal(t, "strict", cfg.SnapshotMode)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	base := Config{Chain: "ethereum", RPCURL: "http://x", ChunkSize: 50, Parallelism: 1}
	require.NoError(t, base.Validate())

	noRPC := base
	noRPC.RPCURL = ""
	require.Error(t, noRPC.Validate())

	badChunk := base
	badChunk.ChunkSize = 0
	require.Error(t, badChunk.Validate())

	badLimit := base
	badLimit.Limit = -1
	require.Error(t, badLimit.Validate())
}
