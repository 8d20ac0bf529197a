package session

import "riichi-server/internal/protocol"

// send delivers one frame to a single seat, best-effort per §4.5.
func (g *Game) send(p *Player, h protocol.Header, payload uint16) {
	if p == nil || !p.IsOpen() {
		return
	}
	p.Conn.SendFrame(protocol.New(h, payload))
}

// broadcast delivers one frame to every attached player and spectator,
// optionally suppressing one seat (exclude = -1 for none). Opaque draws go
// through sendExclusive instead.
func (g *Game) broadcast(h protocol.Header, payload uint16, exclude int) {
	for i, p := range g.Players {
		if i == exclude {
			continue
		}
		g.send(p, h, payload)
	}
	g.specMu.Lock()
	for _, c := range g.Spectators {
		if c.IsOpen() {
			c.SendFrame(protocol.New(h, payload))
		}
	}
	g.specMu.Unlock()
}

// sendExclusive sends targetPayload to one seat and otherPayload to
// everyone else (other seats and spectators) under the same header — the
// mechanism behind opaque draws: other seats see tile(INVALID), the
// drawing seat sees the real tile.
func (g *Game) sendExclusive(h protocol.Header, target int, targetPayload, otherPayload uint16) {
	for i, p := range g.Players {
		if i == target {
			g.send(p, h, targetPayload)
		} else {
			g.send(p, h, otherPayload)
		}
	}
	g.specMu.Lock()
	defer g.specMu.Unlock()
	for _, c := range g.Spectators {
		if c.IsOpen() {
			c.SendFrame(protocol.New(h, otherPayload))
		}
	}
}

// reject responds to a seat's malformed or illegal message per §7's "rules
// violation" taxonomy: respond, do not advance state.
func (g *Game) reject(p *Player) {
	g.send(p, protocol.Reject, protocol.Reject16)
}

func (g *Game) logf(format string, args ...any) {
	if g.Log != nil {
		g.Log(format, args...)
	}
}
