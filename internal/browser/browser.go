// Package browser ties the server list to its discovery channels and
// favourites store, and serializes every merge into the live list.
package browser

import (
	"context"
	"sync"

	"github.com/parkbrowse/parkbrowse/internal/discovery"
	"github.com/parkbrowse/parkbrowse/internal/serverlist"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrUnknownServer = errors.New("unknown server address")

// Browser owns the live server list. The list itself is not synchronized;
// Browser holds the single mutex that serializes merges and queries, so it is
// safe to use from concurrent HTTP handlers.
type Browser struct {
	log    *zap.Logger
	mu     sync.Mutex
	list   *serverlist.ServerList
	local  *discovery.LocalFinder
	master *discovery.MasterClient
}

// Stats is an aggregate view over the current list.
type Stats struct {
	Servers      int `json:"servers"`
	TotalPlayers int `json:"total_players"`
}

// RefreshSummary reports the outcome of one Refresh. The two discovery
// channels fail independently; an error on one never affects the other.
type RefreshSummary struct {
	LocalCount  int
	RemoteCount int
	LocalErr    error
	RemoteErr   error
}

func New(logger *zap.Logger, list *serverlist.ServerList, local *discovery.LocalFinder, master *discovery.MasterClient) *Browser {
	browser := &Browser{
		log:    logger.Named("browser"),
		list:   list,
		local:  local,
		master: master,
	}

	list.ReadAndAddFavourites()

	return browser
}

// Refresh launches both discovery channels, waits for both to resolve and
// rebuilds the list: favourites reloaded from disk, then whatever each
// channel found. Neither channel can be aborted once launched, so a Refresh
// takes at least the full LAN receive window.
func (b *Browser) Refresh(ctx context.Context) RefreshSummary {
	localOut := b.local.FetchAsync()
	masterOut := b.master.FetchAsync(ctx)

	localRes := <-localOut
	masterRes := <-masterOut

	summary := RefreshSummary{
		LocalCount:  len(localRes.Entries),
		RemoteCount: len(masterRes.Entries),
		LocalErr:    localRes.Err,
		RemoteErr:   masterRes.Err,
	}

	if localRes.Err != nil {
		b.log.Error("LAN discovery failed", zap.Error(localRes.Err))
	}

	if masterRes.Err != nil {
		b.log.Error("Master server fetch failed", zap.Error(masterRes.Err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.list.Clear()
	b.list.ReadAndAddFavourites()
	b.list.AddRange(localRes.Entries)
	b.list.AddRange(masterRes.Entries)

	b.log.Info("Server list refreshed",
		zap.Int("local", summary.LocalCount),
		zap.Int("remote", summary.RemoteCount),
		zap.Int("total", b.list.GetCount()))

	return summary
}

// Servers returns the current entries in display order.
func (b *Browser) Servers() []serverlist.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.list.Entries()
}

// Stats aggregates the current list.
func (b *Browser) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Stats{
		Servers:      b.list.GetCount(),
		TotalPlayers: b.list.GetTotalPlayerCount(),
	}
}

// SetFavourite flags or unflags the server at address and persists the
// favourite subset. The in-memory flag sticks even when persisting fails;
// the caller is told via the returned error.
func (b *Browser) SetFavourite(address string, favourite bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.list.SetFavourite(address, favourite) {
		return errors.Wrap(ErrUnknownServer, address)
	}

	return b.list.WriteFavourites()
}
