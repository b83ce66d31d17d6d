package discovery_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parkbrowse/parkbrowse/internal/discovery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDirectory(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "application/json", request.Header.Get("Accept"))
		writer.WriteHeader(status)
		_, _ = writer.Write([]byte(body))
	}))

	t.Cleanup(server.Close)

	return server
}

func fetchFrom(server *httptest.Server) discovery.Result {
	client := discovery.NewMasterClient(zap.NewNop(), server.Client(), server.URL)

	return <-client.FetchAsync(context.Background())
}

func TestMasterFetch(t *testing.T) {
	server := newDirectory(t, http.StatusOK,
		`{"status":200,"servers":[{"name":"A","version":"1.0"}]}`)

	result := fetchFrom(server)

	require.NoError(t, result.Err)
	require.Len(t, result.Entries, 1)
	require.Equal(t, "A", result.Entries[0].Name)
	require.False(t, result.Entries[0].Local)
}

func TestMasterFetchSkipsBadRecords(t *testing.T) {
	server := newDirectory(t, http.StatusOK,
		`{"status":200,"servers":[{"name":"A","version":"1.0"},42,{"name":"no version"},{"version":"1.0"}]}`)

	result := fetchFrom(server)

	require.NoError(t, result.Err)
	require.Len(t, result.Entries, 1)
}

func TestMasterFetchHTTPFailure(t *testing.T) {
	server := newDirectory(t, http.StatusBadGateway, `{}`)

	result := fetchFrom(server)

	require.ErrorIs(t, result.Err, discovery.ErrNoConnection)
}

func TestMasterFetchUnreachable(t *testing.T) {
	server := newDirectory(t, http.StatusOK, `{}`)
	server.Close()

	result := fetchFrom(server)

	require.ErrorIs(t, result.Err, discovery.ErrNoConnection)
}

func TestMasterFetchInvalidResponse(t *testing.T) {
	for name, body := range map[string]string{
		"Not JSON":          `<html>oops</html>`,
		"Status Missing":    `{"servers":[]}`,
		"Status Not Number": `{"status":"ok","servers":[]}`,
		"Servers Missing":   `{"status":200}`,
		"Servers Not Array": `{"status":200,"servers":{}}`,
	} {
		body := body

		t.Run(name, func(t *testing.T) {
			result := fetchFrom(newDirectory(t, http.StatusOK, body))

			require.ErrorIs(t, result.Err, discovery.ErrInvalidResponse)
		})
	}
}

func TestMasterFetchDirectoryFailure(t *testing.T) {
	server := newDirectory(t, http.StatusOK, `{"status":500,"servers":[]}`)

	result := fetchFrom(server)

	require.ErrorIs(t, result.Err, discovery.ErrMasterServerFailed)
}

func TestMasterFetchDisabled(t *testing.T) {
	client := discovery.NewMasterClient(zap.NewNop(), nil, "")

	result := <-client.FetchAsync(context.Background())

	require.NoError(t, result.Err)
	require.Empty(t, result.Entries)
}
