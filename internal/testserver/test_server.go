package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/turnkeeper/internal/app"
	"github.com/rpggio/turnkeeper/internal/config"
	"github.com/rpggio/turnkeeper/internal/domain/queue"
	"github.com/rpggio/turnkeeper/internal/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// DeviceID is the identity every test server runs under.
const DeviceID = "device_test"

// TestServer is a wired app connected to an in-memory MCP client.
type TestServer struct {
	App     *app.App
	Clock   *clockwork.FakeClock
	Session *sdkmcp.ClientSession
}

// New starts an app on a private in-memory database with a fake clock and
// an order-preserving shuffler.
func New(t *testing.T) *TestServer {
	t.Helper()
	ctx := context.Background()

	cfg := config.Default()
	cfg.Storage.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	cfg.Device.ID = DeviceID

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC))
	a, err := app.New(ctx, cfg, zerolog.Nop(), app.Options{
		Clock:    clock,
		Shuffler: queue.IdentityShuffler{},
		Version:  "test",
	})
	require.NoError(t, err)

	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := a.Server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "turnkeeper-test", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
		_ = a.Close()
	})

	return &TestServer{App: a, Clock: clock, Session: session}
}

// Call invokes a tool and returns the raw result.
func (ts *TestServer) Call(t *testing.T, name string, args any) *sdkmcp.CallToolResult {
	t.Helper()
	res, err := ts.Session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, name)
	require.Len(t, res.Content, 1, name)
	return res
}

// CallJSON invokes a tool that must succeed and decodes its result into out.
func (ts *TestServer) CallJSON(t *testing.T, name string, args any, out any) {
	t.Helper()
	res := ts.Call(t, name, args)
	text := resultText(t, res)
	require.False(t, res.IsError, "%s: %s", name, text)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text), out), name)
	}
}

// CallError invokes a tool that must fail and returns its error body.
func (ts *TestServer) CallError(t *testing.T, name string, args any) mcp.APIError {
	t.Helper()
	res := ts.Call(t, name, args)
	text := resultText(t, res)
	require.True(t, res.IsError, "%s: %s", name, text)
	var apiErr mcp.APIError
	require.NoError(t, json.Unmarshal([]byte(text), &apiErr), name)
	return apiErr
}

// Tick advances the fake clock and the rotation by n seconds.
func (ts *TestServer) Tick(n int) {
	for range n {
		ts.Clock.Advance(time.Second)
		ts.App.Controller.Tick(context.Background())
	}
}

func resultText(t *testing.T, res *sdkmcp.CallToolResult) string {
	t.Helper()
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return text.Text
}
