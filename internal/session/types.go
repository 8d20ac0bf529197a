// Package session implements the per-game engine thread (C6): the
// deterministic turn state machine, call arbitration, scoring payout,
// chombo, and exhaustive draw. One Game runs one goroutine that is the
// sole mutator of its state, consuming a single queue merged from all
// four players' connections (tagged by sender uid), matching the
// teacher's turn_manager.go/player_image.go shape but rebuilt on the
// spec's bit-packed tile domain instead of share.Tile{Type,ID}.
package session

import (
	"sync"
	"time"

	"riichi-server/internal/conn"
	"riichi-server/internal/hand"
	"riichi-server/internal/protocol"
	"riichi-server/internal/tile"
	"riichi-server/internal/wall"
)

const (
	initialScore    = 30000
	selfCallWindow  = 60 * time.Second
	callWindow      = 60 * time.Second
	tenpaiWindow    = 60 * time.Second
	maxPacingDelay  = 2 * time.Second
	riichiDeposit   = 1000
)

// Player is one seat's live state: identity, connection, and hand.
type Player struct {
	Seat int
	UID  uint16
	Conn *conn.Connection
	Hand hand.Hand

	Score        int
	Discards     []tile.Tile
	DiscardFaces map[uint16]bool // furiten set: faces this seat has ever discarded
	JustDrew     tile.Tile
}

func newPlayer(seat int, uid uint16, c *conn.Connection) *Player {
	return &Player{
		Seat:         seat,
		UID:          uid,
		Conn:         c,
		Score:        initialScore,
		DiscardFaces: make(map[uint16]bool),
		JustDrew:     tile.Invalid,
	}
}

// IsOpen reports whether this seat currently has a live connection.
func (p *Player) IsOpen() bool { return p.Conn != nil && p.Conn.IsOpen() }

// Game is one live four-player table: the engine thread's entire state.
type Game struct {
	ID      uint16
	Players [4]*Player
	Wall    *wall.Wall
	Queue   *protocol.Queue

	specMu      sync.Mutex
	Spectators  map[uint16]*conn.Connection

	Dealer         int
	PrevailingWind int // 0=E, 1=S, 2=W
	Honba          int
	DepositPool    int
	KongCount       int
	afterKong       bool
	lastDrawRinshan bool
	lastDiscardSeat int
	lastDiscard     tile.Tile

	History HistorySink
	Log     func(format string, args ...any)

	over bool
}

// NewGame builds a fresh table for four seated uids, their connections
// supplied in seat order (E, S, W, N).
func NewGame(id uint16, uids [4]uint16, conns [4]*conn.Connection, useRedFives bool, history HistorySink, logf func(string, ...any)) *Game {
	g := &Game{
		ID:         id,
		Wall:       wall.New(useRedFives),
		Queue:      protocol.NewQueue(256),
		Spectators: make(map[uint16]*conn.Connection),
		History:    history,
		Log:        logf,
	}
	for s := 0; s < 4; s++ {
		g.Players[s] = newPlayer(s, uids[s], conns[s])
	}
	return g
}

// SeatForUID reports which seat (if any) belongs to uid, for the server
// shell's reconnect routing (§4.7).
func (g *Game) SeatForUID(uid uint16) (int, bool) {
	return g.seatOf(uid)
}

// AttachSeat seats a newly accepted player connection into the next open
// slot during the server shell's queueing of a not-yet-full game.
func (g *Game) AttachSeat(seat int, c *conn.Connection) {
	g.Players[seat] = newPlayer(seat, c.UID, c)
}

func (g *Game) seatOf(uid uint16) (int, bool) {
	for i, p := range g.Players {
		if p != nil && p.UID == uid {
			return i, true
		}
	}
	return -1, false
}

func (g *Game) nextSeat(s int) int { return (s + 1) % 4 }

// SeatWind returns the canonical wind tile for a seat relative to the
// current dealer (dealer is always East).
func (g *Game) SeatWind(seat int) tile.Tile {
	return tile.New(tile.Wind, uint8((seat-g.Dealer+4)%4), 0)
}

// RoundWind returns the canonical wind tile for the current prevailing wind.
func (g *Game) RoundWind() tile.Tile {
	return tile.New(tile.Wind, uint8(g.PrevailingWind), 0)
}

// AddSpectator registers a spectator connection under the spectator mutex,
// per §5's "spectator list guarded by its own mutex" resource rule.
func (g *Game) AddSpectator(c *conn.Connection) {
	g.specMu.Lock()
	defer g.specMu.Unlock()
	g.Spectators[c.UID] = c
}

func (g *Game) RemoveSpectator(uid uint16) {
	g.specMu.Lock()
	defer g.specMu.Unlock()
	delete(g.Spectators, uid)
}

// Reconnect swaps in a fresh connection for seat, used by the server
// shell's routing when a new player connection claims a uid already seated
// in this game. The previous connection is replaced whether or not it has
// closed.
func (g *Game) Reconnect(seat int, c *conn.Connection) {
	g.Players[seat].Conn = c
}

// HistorySink receives round events for C10's match-history recorder. With
// no Mongo URL configured the server passes history.Noop (plus a round log
// when one can be opened); a nil sink is also accepted, since callers check
// g.History != nil.
type HistorySink interface {
	RoundStarted(gameID uint16, dealer, prevailingWind, honba int)
	Event(eventType string, seat int, data map[string]any)
	RoundEnded(deltas [4]int, endType string)
}
