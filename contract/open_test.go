package contract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libstake-go/config"
	"github.com/bitfsorg/libstake-go/tokensvc"
)

// openConfig returns a valid host config rooted in a fresh temp dir, with the
// token service environment cleared.
func openConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("STAKE_TOKEN_URL", "")
	t.Setenv("STAKE_TOKEN_TIMEOUT", "")
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.LogFile = filepath.Join(cfg.DataDir, "stake.log")
	return cfg
}

func TestOpen(t *testing.T) {
	cfg := openConfig(t)

	c, err := Open(cfg, nil, prometheus.NewRegistry())
	require.NoError(t, err)
	_, err = c.Instantiate(Env{}, MessageInfo{Sender: testOwner}, InstantiateMsg{})
	require.NoError(t, err)
	_, err = execAt(c, 0, testOwner, nil, whitelistMsg(0))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(cfg, nil, nil)
	require.NoError(t, err)
	defer c.Close()

	got, err := c.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, testOwner, got.Owner)
	colls, err := c.GetCollections(context.Background())
	require.NoError(t, err)
	assert.Len(t, colls, 1)
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := openConfig(t)
	cfg.Network = "devnet"

	_, err := Open(cfg, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidNetwork)
}

func TestOpen_RetryAfterStoreFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := openConfig(t)
	logFile := cfg.LogFile

	notADir := filepath.Join(t.TempDir(), "datadir")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0600))
	cfg.DataDir = notADir
	_, err := Open(cfg, nil, reg)
	require.Error(t, err)

	cfg.DataDir = t.TempDir()
	cfg.LogFile = logFile
	c, err := Open(cfg, nil, reg)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// Close releases the collectors, so the same registry can be reused.
	c, err = Open(cfg, nil, reg)
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

func TestOpen_TokenEndpointResolution(t *testing.T) {
	t.Run("local preset", func(t *testing.T) {
		cfg := openConfig(t)
		cfg.Network = "local"
		c, err := Open(cfg, nil, nil)
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &tokensvc.Client{}, c.tokens)
	})

	t.Run("mainnet without endpoint", func(t *testing.T) {
		cfg := openConfig(t)
		c, err := Open(cfg, nil, nil)
		require.NoError(t, err)
		defer c.Close()
		assert.Nil(t, c.tokens)

		_, err = c.GetAllCollectionTokensByOwner(context.Background(), testStaker)
		assert.ErrorIs(t, err, tokensvc.ErrNotConfigured)
	})

	t.Run("bad timeout in environment", func(t *testing.T) {
		cfg := openConfig(t)
		cfg.Network = "local"
		t.Setenv("STAKE_TOKEN_TIMEOUT", "soon")
		_, err := Open(cfg, nil, nil)
		assert.Error(t, err)
	})

	t.Run("endpoint from environment", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Split(r.URL.EscapedPath(), "/")
			encoded, err := url.PathUnescape(parts[len(parts)-1])
			require.NoError(t, err)
			raw, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)
			var q map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &q))

			var data interface{}
			switch {
			case q["contract_info"] != nil:
				data = map[string]string{"name": "CW721 Base", "symbol": "CWB"}
			case q["num_tokens"] != nil:
				data = map[string]uint64{"count": 2}
			default:
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
		}))
		defer srv.Close()

		cfg := openConfig(t)
		t.Setenv("STAKE_TOKEN_URL", srv.URL)
		c, err := Open(cfg, nil, nil)
		require.NoError(t, err)
		defer c.Close()

		_, err = c.Instantiate(Env{}, MessageInfo{Sender: testOwner}, InstantiateMsg{})
		require.NoError(t, err)
		_, err = execAt(c, 0, testOwner, nil, whitelistMsg(0))
		require.NoError(t, err)

		colls, err := c.GetCollections(context.Background())
		require.NoError(t, err)
		require.Len(t, colls, 1)
		assert.Equal(t, "CW721 Base", colls[0].Name)
		assert.Equal(t, uint64(2), colls[0].NumTokens)
	})
}

func TestOpen_ServesMetrics(t *testing.T) {
	cfg := openConfig(t)
	cfg.MetricsAddr = "127.0.0.1:0"

	c, err := Open(cfg, nil, nil)
	require.NoError(t, err)
	addr := c.MetricsAddr()
	require.NotEmpty(t, addr)

	_, err = c.Instantiate(Env{}, MessageInfo{Sender: testOwner}, InstantiateMsg{})
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `stake_calls_total{op="instantiate",result="ok"} 1`)

	require.NoError(t, c.Close())
	assert.Empty(t, c.MetricsAddr())
	_, err = http.Get("http://" + addr + "/metrics")
	assert.Error(t, err)
}

func TestOpen_MetricsAddrInUse(t *testing.T) {
	cfg := openConfig(t)
	cfg.MetricsAddr = "127.0.0.1:0"
	first, err := Open(cfg, nil, nil)
	require.NoError(t, err)
	defer first.Close()

	second := openConfig(t)
	second.MetricsAddr = first.MetricsAddr()
	_, err = Open(second, nil, nil)
	assert.Error(t, err)
}
