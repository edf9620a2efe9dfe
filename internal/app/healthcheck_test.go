package app

import (
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

// TestHealthCheckServer_ImmediateClose closes the server before its goroutine
// has had a chance to start listening.
func TestHealthCheckServer_ImmediateClose(t *testing.T) {
	testApp, _, _ := setupAppTest(t, map[string]string{
		"pipeline.hcl": `storage "memory" {}`,
	})
	testApp.config.HealthcheckPort = freePort(t)

	for i := 0; i < 20; i++ {
		testApp.healthCheckServer()
		require.NoError(t, testApp.closeHealthCheckServer())
		assert.Nil(t, testApp.httpServer)
	}
	// Give any late goroutines time to observe the closed server.
	time.Sleep(50 * time.Millisecond)
}

func TestHealthCheckServer_ServesHealth(t *testing.T) {
	testApp, _, _ := setupAppTest(t, map[string]string{
		"pipeline.hcl": `storage "memory" {}`,
	})
	port := freePort(t)
	testApp.config.HealthcheckPort = port

	testApp.healthCheckServer()
	t.Cleanup(func() { _ = testApp.closeHealthCheckServer() })

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHealthCheckServer_Disabled(t *testing.T) {
	testApp, logs, _ := setupAppTest(t, map[string]string{
		"pipeline.hcl": `storage "memory" {}`,
	})

	testApp.healthCheckServer()
	assert.Nil(t, testApp.httpServer)
	require.NoError(t, testApp.closeHealthCheckServer())
	assert.Contains(t, logs.String(), "Health check server not started")
}
