package discovery

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/parkbrowse/parkbrowse/internal/serverlist"
	"github.com/parkbrowse/parkbrowse/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultMasterServerURL is the directory queried when no override is
// configured.
const DefaultMasterServerURL = "https://servers.openrct2.io"

// The master fetch fails with exactly one of these. Match with errors.Is.
var (
	// ErrNoConnection means the directory could not be reached, or answered
	// with a non-success HTTP status.
	ErrNoConnection = errors.New("no connection to master server")
	// ErrInvalidResponse means the body was not the expected JSON shape.
	ErrInvalidResponse = errors.New("invalid master server response")
	// ErrMasterServerFailed means the directory itself reported a failure in
	// its body status field.
	ErrMasterServerFailed = errors.New("master server failed")
)

// MasterClient fetches the server directory from the master server.
type MasterClient struct {
	log    *zap.Logger
	client *http.Client
	url    string
}

// NewMasterClient creates a client against masterURL, falling back to the
// built-in default when empty. A nil http.Client disables the remote channel:
// fetches resolve immediately to an empty set without error.
func NewMasterClient(logger *zap.Logger, client *http.Client, masterURL string) *MasterClient {
	if masterURL == "" {
		masterURL = DefaultMasterServerURL
	}

	return &MasterClient{log: logger.Named("master"), client: client, url: masterURL}
}

// FetchAsync issues a single GET against the directory and resolves once with
// either the parsed entries or the error that aborted the fetch.
func (c *MasterClient) FetchAsync(ctx context.Context) <-chan Result {
	fetched := newPromise()

	if c.client == nil {
		fetched.resolve(Result{})

		return fetched.out
	}

	go func() {
		fetched.resolve(c.fetch(ctx))
	}()

	return fetched.out
}

func (c *MasterClient) fetch(ctx context.Context) Result {
	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if errReq != nil {
		return Result{Err: errors.Wrap(errReq, "Failed to create master server request")}
	}

	req.Header.Set("Accept", "application/json")

	resp, errResp := c.client.Do(req)
	if errResp != nil {
		return Result{Err: errors.Wrap(ErrNoConnection, errResp.Error())}
	}

	defer util.IgnoreClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Result{Err: errors.Wrapf(ErrNoConnection, "http status %d", resp.StatusCode)}
	}

	body, errBody := io.ReadAll(resp.Body)
	if errBody != nil {
		return Result{Err: errors.Wrap(ErrInvalidResponse, errBody.Error())}
	}

	entries, errParse := parseDirectory(body)
	if errParse != nil {
		return Result{Err: errParse}
	}

	c.log.Info("Fetched server directory", zap.String("url", c.url), zap.Int("count", len(entries)))

	return Result{Entries: entries}
}

// parseDirectory validates the directory envelope and parses its server
// records. A malformed individual record is skipped, not fatal.
func parseDirectory(body []byte) ([]serverlist.Entry, error) {
	var root map[string]any
	if errUnmarshal := json.Unmarshal(body, &root); errUnmarshal != nil {
		return nil, errors.Wrap(ErrInvalidResponse, errUnmarshal.Error())
	}

	status, okStatus := root["status"].(float64)
	if !okStatus {
		return nil, errors.Wrap(ErrInvalidResponse, "status is missing or not a number")
	}

	if int(status) != http.StatusOK {
		return nil, errors.Wrapf(ErrMasterServerFailed, "status %d", int(status))
	}

	rawServers, okServers := root["servers"].([]any)
	if !okServers {
		return nil, errors.Wrap(ErrInvalidResponse, "servers is missing or not an array")
	}

	var entries []serverlist.Entry

	for _, rawServer := range rawServers {
		rec, okRec := rawServer.(map[string]any)
		if !okRec {
			continue
		}

		entry, okEntry := serverlist.EntryFromRecord(rec)
		if !okEntry {
			continue
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
