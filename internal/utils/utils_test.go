package utils

import (
	"context"
	"crypto/tls"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSNFromEnv(t *testing.T) {
	for _, k := range []string{"PG_HOST", "PG_PORT", "PG_USER", "PG_PASSWORD", "PG_DB", "PG_SSLMODE"} {
		t.Setenv(k, "")
	}
	assert.Equal(t, "postgres://postgres@localhost:5432/hospital?sslmode=disable", BuildPostgresDSNFromEnv())

	t.Setenv("PG_HOST", "db")
	t.Setenv("PG_USER", "app")
	t.Setenv("PG_PASSWORD", "p@ss")
	t.Setenv("PG_SSLMODE", "require")
	assert.Equal(t, "postgres://app:p%40ss@db:5432/hospital?sslmode=require", BuildPostgresDSNFromEnv())
}

func TestOpenRedisFromEnv(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")
	t.Setenv("REDIS_HOST", host)
	t.Setenv("REDIS_PORT", port)
	t.Setenv("REDIS_PASS", "")
	t.Setenv("REDIS_DB", "bad")
	rc := OpenRedisFromEnv()
	defer rc.Close()
	assert.Equal(t, 0, rc.Options().DB)
	require.NoError(t, PingRedis(context.Background(), rc))
}

func TestEnsureSelfSignedCert(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "certs", "server.crt")
	key := filepath.Join(dir, "certs", "server.key")
	require.NoError(t, EnsureSelfSignedCert(cert, key, "hospital-api.local"))
	_, err := tls.LoadX509KeyPair(cert, key)
	require.NoError(t, err)

	before, err := os.ReadFile(cert)
	require.NoError(t, err)
	require.NoError(t, EnsureSelfSignedCert(cert, key, "other"))
	after, _ := os.ReadFile(cert)
	assert.Equal(t, before, after, "existing pair is kept")
}
