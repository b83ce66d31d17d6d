package discovery

import (
	"encoding/json"
	"net"
	"time"

	"github.com/parkbrowse/parkbrowse/internal/serverlist"
	"github.com/parkbrowse/parkbrowse/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// ProbeMessage is the literal datagram a server answers to.
	ProbeMessage = "Are you an OpenRCT2 server?"
	// BroadcastPort is the well-known UDP port servers listen on.
	BroadcastPort = 11754
	// DefaultBroadcastAddress is used when no subnet broadcast address is
	// configured.
	DefaultBroadcastAddress = "255.255.255.255"

	// Announcements larger than this are truncated; the limit is part of the
	// wire protocol.
	maxAnnouncementSize = 1023

	recvDelay  = 10 * time.Millisecond
	recvWindow = 2000 * time.Millisecond
)

// ErrBroadcastFailed means the probe datagram was not (fully) sent.
var ErrBroadcastFailed = errors.New("unable to broadcast server query")

// PacketConn is the minimal UDP capability local discovery needs. The real
// implementation is BroadcastConn; tests substitute their own.
type PacketConn interface {
	// Broadcast sends payload to the subnet broadcast address and returns
	// the number of bytes accepted.
	Broadcast(payload []byte) (int, error)
	// Receive waits up to wait for one datagram. It returns the payload
	// size and the sender's host address, or an error when nothing was
	// received in time.
	Receive(buf []byte, wait time.Duration) (int, string, error)
	Close() error
}

// BroadcastConn is a PacketConn over a real UDP socket.
type BroadcastConn struct {
	conn net.PacketConn
	dest *net.UDPAddr
}

// NewBroadcastConn opens a UDP socket aimed at the given subnet broadcast
// address on the well-known port.
func NewBroadcastConn(broadcastAddress string) (*BroadcastConn, error) {
	if broadcastAddress == "" {
		broadcastAddress = DefaultBroadcastAddress
	}

	ip := net.ParseIP(broadcastAddress)
	if ip == nil {
		return nil, errors.Errorf("invalid broadcast address: %s", broadcastAddress)
	}

	conn, errListen := net.ListenPacket("udp4", ":0")
	if errListen != nil {
		return nil, errors.Wrap(errListen, "Failed to open UDP socket")
	}

	return &BroadcastConn{conn: conn, dest: &net.UDPAddr{IP: ip, Port: BroadcastPort}}, nil
}

func (c *BroadcastConn) Broadcast(payload []byte) (int, error) {
	return c.conn.WriteTo(payload, c.dest)
}

func (c *BroadcastConn) Receive(buf []byte, wait time.Duration) (int, string, error) {
	if errDeadline := c.conn.SetReadDeadline(time.Now().Add(wait)); errDeadline != nil {
		return 0, "", errDeadline
	}

	size, from, errRead := c.conn.ReadFrom(buf)
	if errRead != nil {
		return 0, "", errRead
	}

	host, _, errSplit := net.SplitHostPort(from.String())
	if errSplit != nil {
		host = from.String()
	}

	return size, host, nil
}

func (c *BroadcastConn) Close() error {
	return c.conn.Close()
}

// LocalFinder probes the local subnet for servers.
type LocalFinder struct {
	log  *zap.Logger
	dial func() (PacketConn, error)
}

// NewLocalFinder creates a finder. dial is invoked once per fetch to obtain a
// fresh socket.
func NewLocalFinder(logger *zap.Logger, dial func() (PacketConn, error)) *LocalFinder {
	return &LocalFinder{log: logger.Named("lan"), dial: dial}
}

// FetchAsync broadcasts the probe and collects responses for the full receive
// window before resolving. The socket I/O is blocking, so the fetch runs on
// its own goroutine. There is no early exit: several servers may answer over
// the window, so every receive slot is attempted. There is also no
// cancellation; once launched the fetch runs until the window closes.
func (f *LocalFinder) FetchAsync() <-chan Result {
	fetched := newPromise()

	go func() {
		fetched.resolve(f.fetch())
	}()

	return fetched.out
}

func (f *LocalFinder) fetch() Result {
	conn, errDial := f.dial()
	if errDial != nil {
		return Result{Err: errors.Wrap(errDial, "Failed to open broadcast socket")}
	}

	defer util.LogClose(f.log, conn)

	probe := []byte(ProbeMessage)

	sent, errSend := conn.Broadcast(probe)
	if errSend != nil {
		return Result{Err: errors.Wrap(ErrBroadcastFailed, errSend.Error())}
	}

	if sent != len(probe) {
		return Result{Err: ErrBroadcastFailed}
	}

	var entries []serverlist.Entry

	buf := make([]byte, maxAnnouncementSize)

	for attempt := 0; attempt < int(recvWindow/recvDelay); attempt++ {
		slotStart := time.Now()

		size, sender, errRecv := conn.Receive(buf, recvDelay)
		if errRecv != nil {
			// Nothing arrived; the read deadline consumed this slot.
			continue
		}

		f.log.Debug("Received announcement", zap.String("sender", sender))

		if entry, ok := parseAnnouncement(buf[:size], sender); ok {
			entries = append(entries, entry)
		} else {
			f.log.Debug("Skipping malformed announcement", zap.String("sender", sender))
		}

		// A receive returns ahead of the slot deadline; sleep out the
		// remainder so the window always spans the full 2000 ms and slow
		// responders still get their turn.
		if remaining := recvDelay - time.Since(slotStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}

	return Result{Entries: entries}
}

// parseAnnouncement decodes a server's self-description. The sender address
// observed on the socket always overrides whatever the payload claims.
func parseAnnouncement(payload []byte, sender string) (serverlist.Entry, bool) {
	var rec map[string]any
	if errUnmarshal := json.Unmarshal(payload, &rec); errUnmarshal != nil || rec == nil {
		return serverlist.Entry{}, false
	}

	rec["ip"] = map[string]any{"v4": []any{sender}}

	entry, ok := serverlist.EntryFromRecord(rec)
	if !ok {
		return serverlist.Entry{}, false
	}

	entry.Local = true

	return entry, true
}
