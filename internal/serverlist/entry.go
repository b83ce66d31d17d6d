package serverlist

import (
	"fmt"
	"strings"
)

// Entry is a single multiplayer server, either discovered during this session
// or remembered as a favourite.
type Entry struct {
	Address          string `json:"address"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Version          string `json:"version"`
	RequiresPassword bool   `json:"requires_password"`
	Players          uint8  `json:"players"`
	MaxPlayers       uint8  `json:"max_players"`
	Favourite        bool   `json:"favourite"`
	Local            bool   `json:"local"`
}

// IsVersionValid reports whether the entry can be joined by a client running
// currentVersion. An empty version acts as a wildcard.
func (e Entry) IsVersionValid(currentVersion string) bool {
	return e.Version == "" || e.Version == currentVersion
}

// Compare ranks two entries for display. A positive result means e should
// appear before other. Entries are ranked by favourite status, locality,
// version compatibility, password protection and finally name; each rule only
// applies when all preceding rules judge the entries equal.
//
// Note the locality rule: among equally-favourite entries, LAN servers rank
// behind internet ones. That polarity is long-standing behaviour and is kept
// as-is.
func (e Entry) Compare(other Entry, currentVersion string) int {
	if e.Favourite != other.Favourite {
		if e.Favourite {
			return 1
		}

		return -1
	}

	if e.Local != other.Local {
		if e.Local {
			return -1
		}

		return 1
	}

	compatible := e.Version == currentVersion
	otherCompatible := other.Version == currentVersion

	if compatible != otherCompatible {
		if compatible {
			return 1
		}

		return -1
	}

	if e.RequiresPassword != other.RequiresPassword {
		if e.RequiresPassword {
			return -1
		}

		return 1
	}

	// Ascending by name, so the lesser name gets the higher rank.
	return strings.Compare(strings.ToLower(other.Name), strings.ToLower(e.Name))
}

// EntryFromRecord builds an Entry from a decoded JSON object, as received from
// either a LAN announcement or the master server directory. Records without a
// name or version are refused. Every other field degrades to its zero value
// when missing or malformed. The address is synthesized from the first entry
// of ip.v4 plus the advertised port.
func EntryFromRecord(rec map[string]any) (Entry, bool) {
	name, hasName := recordString(rec, "name")
	version, hasVersion := recordString(rec, "version")

	if !hasName || !hasVersion {
		return Entry{}, false
	}

	description, _ := recordString(rec, "description")

	entry := Entry{
		Address:          fmt.Sprintf("%s:%d", recordHost(rec), recordInt(rec, "port")),
		Name:             name,
		Description:      description,
		Version:          version,
		RequiresPassword: recordBool(rec, "requiresPassword"),
		Players:          uint8(recordInt(rec, "players")),
		MaxPlayers:       uint8(recordInt(rec, "maxPlayers")),
	}

	return entry, true
}

func recordString(rec map[string]any, key string) (string, bool) {
	value, ok := rec[key].(string)

	return value, ok
}

func recordBool(rec map[string]any, key string) bool {
	value, ok := rec[key].(bool)

	return ok && value
}

func recordInt(rec map[string]any, key string) int {
	// encoding/json decodes any JSON number into a float64.
	value, ok := rec[key].(float64)
	if !ok {
		return 0
	}

	return int(value)
}

func recordHost(rec map[string]any) string {
	ip, okIP := rec["ip"].(map[string]any)
	if !okIP {
		return ""
	}

	v4, okV4 := ip["v4"].([]any)
	if !okV4 || len(v4) == 0 {
		return ""
	}

	host, _ := v4[0].(string)

	return host
}
