//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/config"
	"github.com/tonimelisma/vidispine-client/internal/logger"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

// E2ETestHelper provides utilities for E2E testing against a live server.
type E2ETestHelper struct {
	App    *app.App
	Config *Config
	TestID string
}

// NewE2ETestHelper connects with the regular vsclient configuration plus
// the VIDISPINE_* environment overrides.
func NewE2ETestHelper(t *testing.T) *E2ETestHelper {
	t.Helper()

	cfg, err := config.LoadOrCreate()
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv(os.Getenv))
	if err := cfg.Validate(); err != nil {
		t.Fatalf(`
E2E Testing Setup Required:

Point the tests at a Vidispine server, for example:
   export VIDISPINE_HOST=vs.example.com VIDISPINE_USER=admin VIDISPINE_PASSWORD=...

Then run:
   go test -tags=e2e -v ./e2e/...

Configuration problem: %v`, err)
	}

	// Fail fast instead of retrying a misconfigured server for many minutes.
	cfg.Server.RetryAttempts = 3
	cfg.Server.MaxGatewayRetries = 3

	l := logger.NewDefaultLogger(testing.Verbose())
	client := vidispine.NewClient(cfg.Server, l)
	t.Cleanup(client.Close)

	return &E2ETestHelper{
		App:    &app.App{Config: cfg, Client: client, SDK: client, Logger: l},
		Config: LoadConfig(),
		TestID: uuid.NewString()[:8],
	}
}

// Context returns a context bounded by the configured test timeout.
func (h *E2ETestHelper) Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), h.Config.Timeout)
	t.Cleanup(cancel)
	return ctx
}

// LogTestInfo logs which server the tests run against.
func (h *E2ETestHelper) LogTestInfo(t *testing.T) {
	t.Helper()
	t.Logf("E2E test %s against %s as %s", h.TestID, h.App.Client.Connection().BaseURL(), h.App.Config.Server.Credentials())
}
