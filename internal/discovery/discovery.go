// Package discovery finds multiplayer servers over two independent channels:
// a LAN broadcast probe and the master server directory. Both channels are
// asynchronous; each fetch returns a channel that receives exactly one Result
// and is then closed. Neither channel touches the live server list; callers
// merge resolved entries themselves.
package discovery

import (
	"sync"

	"github.com/parkbrowse/parkbrowse/internal/serverlist"
)

// Result is the outcome of one discovery run. Exactly one of Entries and Err
// is meaningful; a run that found nothing resolves with both empty.
type Result struct {
	Entries []serverlist.Entry
	Err     error
}

// promise delivers a single Result. resolve may be called any number of
// times; only the first call wins.
type promise struct {
	once sync.Once
	out  chan Result
}

func newPromise() *promise {
	return &promise{out: make(chan Result, 1)}
}

func (p *promise) resolve(result Result) {
	p.once.Do(func() {
		p.out <- result
		close(p.out)
	})
}
