package concat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/s3utils/internal/pattern"
)

func mustMatcher(t *testing.T, cfg Config) *pattern.Matcher {
	t.Helper()
	m, err := pattern.Compile(cfg.Source, cfg.Target)
	require.NoError(t, err)
	return m
}
