package serverlist_test

import (
	"encoding/json"
	"testing"

	"github.com/parkbrowse/parkbrowse/internal/serverlist"
	"github.com/parkbrowse/parkbrowse/pkg/util"
	"github.com/stretchr/testify/require"
)

const currentVersion = "0.4.5"

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func TestCompare(t *testing.T) {
	t.Run("Favourite Outranks Everything", func(t *testing.T) {
		favourite := serverlist.Entry{Name: "zzz", Favourite: true, Local: true, RequiresPassword: true}
		better := serverlist.Entry{Name: "aaa", Version: currentVersion}

		require.Positive(t, favourite.Compare(better, currentVersion))
		require.Negative(t, better.Compare(favourite, currentVersion))
	})

	t.Run("Local Ranks Behind Remote", func(t *testing.T) {
		// Deliberate: at equal favourite status, LAN entries sort behind
		// internet entries, not ahead. This polarity is long-standing
		// behaviour and must not be "fixed".
		local := serverlist.Entry{Name: "aaa", Version: currentVersion, Local: true}
		remote := serverlist.Entry{Name: "zzz"}

		require.Negative(t, local.Compare(remote, currentVersion))
		require.Positive(t, remote.Compare(local, currentVersion))
	})

	t.Run("Compatible Version First", func(t *testing.T) {
		compatible := serverlist.Entry{Name: "zzz", Version: currentVersion}
		incompatible := serverlist.Entry{Name: "aaa", Version: "9.9.9"}

		require.Positive(t, compatible.Compare(incompatible, currentVersion))
	})

	t.Run("Passwordless First", func(t *testing.T) {
		open := serverlist.Entry{Name: "zzz", Version: currentVersion}
		locked := serverlist.Entry{Name: "aaa", Version: currentVersion, RequiresPassword: true}

		require.Positive(t, open.Compare(locked, currentVersion))
	})

	t.Run("Name Ascending Case Insensitive", func(t *testing.T) {
		alpha := serverlist.Entry{Name: "alpha", Version: currentVersion}
		beta := serverlist.Entry{Name: "Beta", Version: currentVersion}

		require.Positive(t, alpha.Compare(beta, currentVersion))
		require.Negative(t, beta.Compare(alpha, currentVersion))
		require.Zero(t, alpha.Compare(serverlist.Entry{Name: "ALPHA", Version: currentVersion}, currentVersion))
	})
}

func randomEntry() serverlist.Entry {
	names := []string{"alpha", "Beta", "gamma", "alpha"}
	versions := []string{"", currentVersion, "9.9.9"}

	return serverlist.Entry{
		Name:             names[util.RandInt(len(names))],
		Version:          versions[util.RandInt(len(versions))],
		Favourite:        util.RandInt(2) == 0,
		Local:            util.RandInt(2) == 0,
		RequiresPassword: util.RandInt(2) == 0,
	}
}

// The five-rule cascade must be a strict weak ordering or sorting is
// undefined behaviour.
func TestCompareStrictWeakOrdering(t *testing.T) {
	entries := make([]serverlist.Entry, 32)
	for i := range entries {
		entries[i] = randomEntry()
	}

	for _, a := range entries {
		for _, b := range entries {
			require.Equal(t, sign(a.Compare(b, currentVersion)), -sign(b.Compare(a, currentVersion)),
				"antisymmetry violated: %+v vs %+v", a, b)

			for _, c := range entries {
				if a.Compare(b, currentVersion) > 0 && b.Compare(c, currentVersion) > 0 {
					require.Positive(t, a.Compare(c, currentVersion),
						"transitivity violated: %+v > %+v > %+v", a, b, c)
				}

				if a.Compare(b, currentVersion) == 0 && b.Compare(c, currentVersion) == 0 {
					require.Zero(t, a.Compare(c, currentVersion),
						"equivalence not transitive: %+v = %+v = %+v", a, b, c)
				}
			}
		}
	}
}

func TestIsVersionValid(t *testing.T) {
	require.True(t, serverlist.Entry{Version: ""}.IsVersionValid(currentVersion))
	require.True(t, serverlist.Entry{Version: currentVersion}.IsVersionValid(currentVersion))
	require.False(t, serverlist.Entry{Version: "9.9.9"}.IsVersionValid(currentVersion))
}

func record(t *testing.T, body string) map[string]any {
	t.Helper()

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &rec))

	return rec
}

func TestEntryFromRecord(t *testing.T) {
	t.Run("Full Record", func(t *testing.T) {
		entry, ok := serverlist.EntryFromRecord(record(t, `{
			"name": "Backyard",
			"description": "vanilla",
			"version": "0.4.5",
			"requiresPassword": true,
			"players": 3,
			"maxPlayers": 16,
			"port": 11753,
			"ip": {"v4": ["10.0.0.7"]}
		}`))

		require.True(t, ok)
		require.Equal(t, serverlist.Entry{
			Address:          "10.0.0.7:11753",
			Name:             "Backyard",
			Description:      "vanilla",
			Version:          "0.4.5",
			RequiresPassword: true,
			Players:          3,
			MaxPlayers:       16,
		}, entry)
	})

	t.Run("Missing Name Refused", func(t *testing.T) {
		_, ok := serverlist.EntryFromRecord(record(t, `{"version": "0.4.5"}`))
		require.False(t, ok)
	})

	t.Run("Missing Version Refused", func(t *testing.T) {
		_, ok := serverlist.EntryFromRecord(record(t, `{"name": "Backyard"}`))
		require.False(t, ok)
	})

	t.Run("Non String Name Or Version Refused", func(t *testing.T) {
		// Mandatory fields must actually be strings; a number there is as
		// useless as an absent field and the record is refused outright.
		_, ok := serverlist.EntryFromRecord(record(t, `{"name": 42, "version": "0.4.5"}`))
		require.False(t, ok)

		_, ok = serverlist.EntryFromRecord(record(t, `{"name": "Backyard", "version": 45}`))
		require.False(t, ok)
	})

	t.Run("Optional Fields Default", func(t *testing.T) {
		entry, ok := serverlist.EntryFromRecord(record(t, `{"name": "Backyard", "version": "0.4.5"}`))

		require.True(t, ok)
		require.Equal(t, ":0", entry.Address)
		require.Empty(t, entry.Description)
		require.False(t, entry.RequiresPassword)
		require.Zero(t, entry.Players)
		require.Zero(t, entry.MaxPlayers)
	})

	t.Run("Malformed Optional Fields Degrade", func(t *testing.T) {
		entry, ok := serverlist.EntryFromRecord(record(t, `{
			"name": "Backyard",
			"version": "0.4.5",
			"players": "lots",
			"requiresPassword": "yes",
			"port": "eleven",
			"ip": {"v4": "10.0.0.7"}
		}`))

		require.True(t, ok)
		require.Equal(t, ":0", entry.Address)
		require.Zero(t, entry.Players)
		require.False(t, entry.RequiresPassword)
	})
}
