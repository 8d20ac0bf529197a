// Package server implements the shell (C7): the game-id allocator, the
// game registry, the accept loop, and handshake-based routing to a new
// game's queue, an existing game's reconnect, or a game's spectator list —
// the single-binary analogue of the teacher's room_manager.go/worker.go,
// rebuilt without the teacher's etcd/NATS microservice registration (this
// is one process, not a fleet of workers needing service discovery).
package server

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"sync"

	"riichi-server/internal/conn"
	"riichi-server/internal/history"
	"riichi-server/internal/logx"
	"riichi-server/internal/protocol"
	"riichi-server/internal/session"
)

const seatsPerGame = 4

// Server owns the game registry and the connected-address set; see §5's
// "game-registry map guarded by the accept-loop-is-sole-writer rule" and
// "connected-IP set guarded by a mutex" shared-resource notes.
type Server struct {
	online      bool
	useRedFives bool
	history     history.Sink
	logDir      string

	addrs *conn.AddressSet

	mu       sync.Mutex
	games    map[uint16]*session.Game
	nextID   uint16
	opening  *session.Game
	openSeat int
}

// New builds a Server ready to Run. logDir receives per-game round logs
// (§6.3); an empty logDir disables them.
func New(online, useRedFives bool, hist history.Sink, logDir string) *Server {
	return &Server{
		online:      online,
		useRedFives: useRedFives,
		history:     hist,
		logDir:      logDir,
		addrs:       conn.NewAddressSet(),
		games:       make(map[uint16]*session.Game),
		nextID:      0x3f40,
	}
}

// Run listens on addr and accepts connections until the listener closes.
// It does not serve the stdin debug console; cmd/server runs DebugConsole
// in its own goroutine.
func (s *Server) Run(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	logx.Info("listening on %s (online=%v)", addr, s.online)
	for {
		nc, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleAccept(nc)
	}
}

func (s *Server) handleAccept(nc net.Conn) {
	addr := nc.RemoteAddr().String()
	host, _, _ := net.SplitHostPort(addr)
	if s.online && host != "" {
		if !s.addrs.TryAdd(host) {
			logx.Warn("rejecting duplicate address %s (online mode)", host)
			_ = nc.Close()
			return
		}
	}

	c := conn.Accept(nc)
	kind, gameID, claimedUID, err := c.Handshake()
	if err != nil || kind == conn.KindRejected {
		logx.Debug("handshake rejected from %s: %v", addr, err)
		if s.online && host != "" {
			s.addrs.Remove(host)
		}
		c.Close()
		return
	}

	switch kind {
	case conn.KindSpectator:
		s.routeSpectator(c, gameID)
	case conn.KindPlayer:
		s.routePlayer(c, claimedUID)
	}
}

// routePlayer implements §4.5's reconnect rule: claimed_uid is checked
// against every live game's seats before falling back to treating the
// connection as a brand-new player.
func (s *Server) routePlayer(c *conn.Connection, claimedUID uint16) {
	s.mu.Lock()
	for _, g := range s.games {
		if seat, ok := g.SeatForUID(claimedUID); ok {
			s.mu.Unlock()
			logx.Info("uid %d reconnecting to game %04x seat %d", claimedUID, g.ID, seat)
			g.Reconnect(seat, c)
			c.Start(g.Queue)
			return
		}
	}

	g := s.openingGameLocked()
	seat := s.openSeat
	g.AttachSeat(seat, c)
	s.openSeat++
	full := s.openSeat == seatsPerGame
	if full {
		s.opening = nil
		s.openSeat = 0
	}
	s.mu.Unlock()

	c.Start(g.Queue)
	if full {
		go g.Run()
	}
}

func (s *Server) routeSpectator(c *conn.Connection, gameID uint16) {
	s.mu.Lock()
	g, ok := s.games[gameID]
	s.mu.Unlock()
	if !ok {
		c.Close()
		return
	}
	g.AddSpectator(c)
	c.Start(g.Queue)
}

// openingGameLocked returns the game currently accepting new players,
// allocating a fresh one (skipping the NEW_PLAYER magic, per §4.7) if none
// is open. Callers must hold s.mu.
func (s *Server) openingGameLocked() *session.Game {
	if s.opening != nil {
		return s.opening
	}
	id := s.nextID
	s.nextID++
	if s.nextID == protocol.NewPlayer {
		s.nextID++
	}
	sink := history.ForGame(s.history, s.logDir, id)
	g := session.NewGame(id, [seatsPerGame]uint16{}, [seatsPerGame]*conn.Connection{}, s.useRedFives, sink, logx.Debug)
	s.games[id] = g
	s.opening = g
	s.openSeat = 0
	return g
}

// GameCount, ListIPs, and RemoveIP back both the stdin debug console below
// and C11's gRPC AdminService, so tooling and a human operator see the
// same registry/address-set state through two different front ends.
func (s *Server) GameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

func (s *Server) ListIPs() []string {
	list := s.addrs.List()
	sort.Strings(list)
	return list
}

func (s *Server) RemoveIP(addr string) {
	s.addrs.Remove(addr)
}

// DebugConsole reads stdin commands, per §4.7: "count", "ip list|remove|count".
func (s *Server) DebugConsole(r *os.File) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "count":
			fmt.Printf("games: %d\n", s.GameCount())
		case "ip":
			s.handleIPCommand(fields[1:])
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func (s *Server) handleIPCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: ip list|remove <addr>|count")
		return
	}
	switch args[0] {
	case "list":
		for _, a := range s.ListIPs() {
			fmt.Println(a)
		}
	case "remove":
		if len(args) < 2 {
			fmt.Println("usage: ip remove <addr>")
			return
		}
		s.RemoveIP(args[1])
	case "count":
		fmt.Printf("addresses: %d\n", s.addrs.Count())
	default:
		fmt.Printf("unknown ip command %q\n", args[0])
	}
}
