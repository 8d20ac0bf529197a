// Package conn implements the per-socket connection lifecycle: handshake,
// heartbeat, and best-effort framed send — the spec's raw-TCP analogue of
// the teacher's websocket LongConnection (framework/conn/connection.go),
// rebuilt on net.Conn and the fixed 3-byte frame instead of gorilla/websocket.
package conn

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"riichi-server/internal/logx"
	"riichi-server/internal/protocol"
)

const (
	handshakeTimeout = 400 * time.Millisecond
	pingInterval     = 15 * time.Second
	pingWait         = 300 * time.Millisecond
)

var uidCounter uint32 = 8000

// NextUID allocates a new player identity from the monotonic counter.
func NextUID() uint16 {
	return uint16(atomic.AddUint32(&uidCounter, 1) - 1)
}

// AddressSet tracks one active connection per remote address when the
// server runs in "online" mode, guarded by its own mutex per the spec's
// shared-resource list (§5).
type AddressSet struct {
	mu    sync.Mutex
	addrs map[string]bool
}

func NewAddressSet() *AddressSet { return &AddressSet{addrs: make(map[string]bool)} }

// TryAdd reserves addr, returning false if it is already in use.
func (s *AddressSet) TryAdd(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addrs[addr] {
		return false
	}
	s.addrs[addr] = true
	return true
}

func (s *AddressSet) Remove(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.addrs, addr)
}

func (s *AddressSet) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.addrs)
}

func (s *AddressSet) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.addrs))
	for a := range s.addrs {
		out = append(out, a)
	}
	return out
}

// Kind classifies what a handshake resolved to.
type Kind int

const (
	KindRejected Kind = iota
	KindPlayer
	KindSpectator
)

// Connection wraps one accepted socket through its whole lifecycle:
// Accepted -> AwaitHandshake -> Attached/Rejected -> Closed.
type Connection struct {
	UID  uint16
	Addr string

	conn      net.Conn
	writeMu   sync.Mutex
	pingCh    chan struct{}
	closeChan chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
}

// Accept wraps a freshly accepted socket and allocates its uid from the
// monotonic counter starting at 8000. It sends nothing; Handshake sends
// your_id(uid) as its first step.
func Accept(nc net.Conn) *Connection {
	c := &Connection{
		UID:       NextUID(),
		Addr:      nc.RemoteAddr().String(),
		conn:      nc,
		pingCh:    make(chan struct{}, 1),
		closeChan: make(chan struct{}),
	}
	return c
}

// Handshake sends your_id then waits up to handshakeTimeout for
// join_as_player/join_as_spectator followed by my_id, per §4.5.
func (c *Connection) Handshake() (kind Kind, gameID uint16, claimedUID uint16, err error) {
	if err = c.SendFrame(protocol.New(protocol.YourID, c.UID)); err != nil {
		return KindRejected, 0, 0, err
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	first, err := protocol.ReadFrame(c.conn)
	if err != nil {
		return KindRejected, 0, 0, err
	}
	switch first.Header {
	case protocol.JoinAsPlayer:
		if first.Payload != protocol.NewPlayer {
			return KindRejected, 0, 0, nil
		}
		kind = KindPlayer
	case protocol.JoinSpectator:
		kind = KindSpectator
		gameID = first.Payload
	default:
		return KindRejected, 0, 0, nil
	}

	second, err := protocol.ReadFrame(c.conn)
	if err != nil {
		return KindRejected, 0, 0, err
	}
	if second.Header != protocol.MyID {
		return KindRejected, 0, 0, nil
	}
	claimedUID = second.Payload
	if kind == KindPlayer {
		c.UID = claimedUID
	}
	return kind, gameID, claimedUID, nil
}

// Start launches the RX and ping threads once the connection is attached to
// a session. Non-ping frames are tagged with the connection's uid and
// pushed into dest; ping frames are routed to the local condition instead
// (§4.5), never entering the session queue.
func (c *Connection) Start(dest *protocol.Queue) {
	go c.readLoop(dest)
	go c.pingLoop()
}

func (c *Connection) readLoop(dest *protocol.Queue) {
	defer c.Close()
	for {
		f, err := protocol.ReadFrame(c.conn)
		if err != nil {
			if err != io.EOF {
				logx.Debug("conn[%d] read error: %v", c.UID, err)
			}
			return
		}
		if f.Header == protocol.Ping {
			select {
			case c.pingCh <- struct{}{}:
			default:
			}
			continue
		}
		select {
		case <-c.closeChan:
			return
		default:
			dest.Push(protocol.Envelope{Sender: c.UID, Frame: f})
		}
	}
}

func (c *Connection) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.closeChan:
			return
		case <-ticker.C:
			if err := c.SendFrame(protocol.New(protocol.Ping, protocol.PingMagic)); err != nil {
				c.Close()
				return
			}
			select {
			case <-c.pingCh:
			case <-time.After(pingWait):
				logx.Warn("conn[%d] ping timeout, closing", c.UID)
				c.Close()
				return
			case <-c.closeChan:
				return
			}
		}
	}
}

// SendFrame is best-effort: any I/O error is logged, closes the socket, and
// is returned to the caller, which may ignore it. A send on an already
// closed connection does nothing and returns nil.
func (c *Connection) SendFrame(f protocol.Frame) error {
	if c.closed.Load() {
		return nil
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := protocol.WriteFrame(c.conn, f); err != nil {
		logx.Debug("conn[%d] write error: %v", c.UID, err)
		c.Close()
		return err
	}
	return nil
}

func (c *Connection) IsOpen() bool { return !c.closed.Load() }

func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeChan)
		_ = c.conn.Close()
	})
}
