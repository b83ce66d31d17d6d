package serverlist

import (
	"sort"

	"go.uber.org/zap"
)

// FavouritesStore persists the favourite subset of a server list across
// sessions.
type FavouritesStore interface {
	// Read loads the persisted favourites. It is best-effort and returns an
	// empty set when nothing usable is on disk.
	Read() []Entry
	// Write replaces the persisted favourites with the given entries.
	Write(entries []Entry) error
}

// ServerList is the ordered collection of servers known to the session. It
// owns its entries and keeps them sorted with Entry.Compare after every
// mutation, so it is always ready to render. It performs no locking of its
// own; callers that mutate it from multiple goroutines must serialize access.
type ServerList struct {
	log        *zap.Logger
	version    string
	favourites FavouritesStore
	entries    []Entry
}

// New creates an empty list. version is the protocol version of the running
// client, used by the ordering rules to rank compatible servers first.
func New(logger *zap.Logger, version string, favourites FavouritesStore) *ServerList {
	return &ServerList{
		log:        logger.Named("serverlist"),
		version:    version,
		favourites: favourites,
	}
}

func (l *ServerList) sort() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Compare(l.entries[j], l.version) > 0
	})
}

// Add appends a single entry and re-sorts.
func (l *ServerList) Add(entry Entry) {
	l.entries = append(l.entries, entry)
	l.sort()
}

// AddRange appends entries in bulk with a single re-sort.
func (l *ServerList) AddRange(entries []Entry) {
	l.entries = append(l.entries, entries...)
	l.sort()
}

// GetServer returns the entry at index. Bounds are the caller's
// responsibility; an out-of-range index panics.
func (l *ServerList) GetServer(index int) Entry {
	return l.entries[index]
}

// GetCount returns the number of entries.
func (l *ServerList) GetCount() int {
	return len(l.entries)
}

// GetTotalPlayerCount sums the player counts of every entry.
func (l *ServerList) GetTotalPlayerCount() int {
	total := 0
	for _, entry := range l.entries {
		total += int(entry.Players)
	}

	return total
}

// Entries returns a copy of the current entries in display order.
func (l *ServerList) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)

	return out
}

// Clear drops every entry.
func (l *ServerList) Clear() {
	l.entries = nil
}

// SetFavourite flags or unflags the first entry whose address matches and
// re-sorts. It reports whether a matching entry was found.
func (l *ServerList) SetFavourite(address string, favourite bool) bool {
	for i := range l.entries {
		if l.entries[i].Address == address {
			l.entries[i].Favourite = favourite
			l.sort()

			return true
		}
	}

	return false
}

// ReadAndAddFavourites drops every favourite-flagged entry, reloads the
// favourites from the store and merges them back in. Calling it twice without
// a store change leaves the list unchanged.
func (l *ServerList) ReadAndAddFavourites() {
	kept := l.entries[:0]

	for _, entry := range l.entries {
		if !entry.Favourite {
			kept = append(kept, entry)
		}
	}

	l.entries = kept
	l.AddRange(l.favourites.Read())
}

// WriteFavourites persists the favourite-flagged subset of the list.
func (l *ServerList) WriteFavourites() error {
	var favouriteServers []Entry

	for _, entry := range l.entries {
		if entry.Favourite {
			favouriteServers = append(favouriteServers, entry)
		}
	}

	l.log.Debug("Writing favourites", zap.Int("count", len(favouriteServers)))

	return l.favourites.Write(favouriteServers)
}
