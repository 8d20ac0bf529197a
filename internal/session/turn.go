package session

import (
	"time"

	"riichi-server/internal/hand"
	"riichi-server/internal/protocol"
	"riichi-server/internal/tile"
)

// Run drives the game from the first round to game_over, one round per
// runRound call, applying the next/renchan/game_over transitions the spec's
// §4.6 state diagram describes between rounds.
func (g *Game) Run() {
	for !g.over {
		g.startRound()
		outcome := g.runRound()
		if g.History != nil {
			g.History.RoundEnded(outcome.deltas, outcome.endType)
		}
		g.applyOutcome(outcome)
	}
	g.closeAll()
}

func (g *Game) closeAll() {
	for _, p := range g.Players {
		if p != nil && p.Conn != nil {
			p.Conn.Close()
		}
	}
}

// startRound wipes and rebuilds every hand, reshuffles the wall, and deals
// 13 tiles to each seat in seat order 0..3.
func (g *Game) startRound() {
	g.Wall.Reset()
	g.KongCount = 0
	g.afterKong = false
	for _, p := range g.Players {
		p.Hand = hand.Hand{}
		p.Discards = nil
		p.DiscardFaces = make(map[uint16]bool)
		p.JustDrew = tile.Invalid
		for i := 0; i < 13; i++ {
			t, err := g.Wall.Draw()
			if err != nil {
				break
			}
			p.Hand.Concealed = append(p.Hand.Concealed, t)
		}
		p.Hand.Sort()
	}
	g.broadcast(protocol.NewRound, uint16(g.PrevailingWind<<2)|uint16(g.Dealer), -1)
	for _, ind := range g.Wall.GetDoraIndicators() {
		g.broadcast(protocol.DoraIndicator, ind.Wire9(), -1)
	}
	if g.History != nil {
		g.History.RoundStarted(g.ID, g.Dealer, g.PrevailingWind, g.Honba)
	}
}

// roundOutcome describes how a round ended, for the next/renchan/game_over
// transition in Run.
type roundOutcome struct {
	dealerWon    bool
	renchan      bool // same dealer, honba += 1 (win-by-dealer, or dealer-tenpai draw)
	chomboReplay bool // chombo → penalty payments → restart same round unchanged
	deltas       [4]int
	endType      string
}

// runRound drives one round's turn FSM: draw → self-call → discard →
// opponent-call → ... until a win, chombo, or exhaustive draw resolves it.
func (g *Game) runRound() roundOutcome {
	cur := g.Dealer
	skipDraw := false
	for {
		if !skipDraw {
			drawn, err := g.drawForTurn()
			if err != nil {
				if ab, ok := err.(*roundAbort); ok {
					return g.abortiveDraw(ab.reason)
				}
				return g.exhaustiveDraw()
			}
			p := g.Players[cur]
			p.JustDrew = drawn
			p.Hand.Concealed = append(p.Hand.Concealed, drawn)
			p.Hand.Sort()
			g.broadcast(protocol.ThisPlayerDrew, uint16(cur), -1)
			g.sendExclusive(protocol.Tile, cur, drawn.Wire9(), tile.Invalid.Wire9())

			action := g.selfCallWindow(cur, drawn)
			switch action.kind {
			case actionTsumo:
				return g.payoutTsumo(cur, drawn)
			case actionChombo:
				return g.chomboOutcome(cur, "false tsumo")
			case actionClosedKong:
				g.applyClosedKong(cur, action.target)
				skipDraw = false
				continue
			case actionAddedKong:
				if out, won := g.applyAddedKong(cur, action.target); won {
					return out
				}
				skipDraw = false
				continue
			case actionDiscard:
				g.commitDiscard(cur, action.target)
			}
		} else {
			t := g.requestDiscard(cur)
			g.commitDiscard(cur, t)
			skipDraw = false
		}

		call := g.opponentCallWindow(cur, g.lastDiscard)
		switch call.kind {
		case callRon:
			return g.payoutRon(call.seats, cur, g.lastDiscard, false)
		case callKong:
			g.applyOpenKong(call.seat, g.lastDiscard, call.aux)
			cur = call.seat
			skipDraw = false
		case callPong:
			g.applyPong(call.seat, g.lastDiscard, call.aux)
			cur = call.seat
			skipDraw = true
		case callChow:
			g.applyChow(call.seat, g.lastDiscard, call.aux)
			cur = call.seat
			skipDraw = true
		case callNone:
			cur = g.nextSeat(cur)
			skipDraw = false
		}
	}
}

// drawForTurn draws from the live wall, or from the dead wall's kan slots
// when a kong was just completed. Returns wall.Empty-wrapped errors for
// exhaustive draw, and signals FOUR_KONGS when no replacement tiles remain.
func (g *Game) drawForTurn() (tile.Tile, error) {
	if g.afterKong {
		g.afterKong = false
		g.lastDrawRinshan = true
		if g.Wall.RemainingKanTiles() == 0 {
			return tile.Invalid, errFourKongs
		}
		return g.Wall.DrawKanTile()
	}
	g.lastDrawRinshan = false
	return g.Wall.Draw()
}

// commitDiscard records a discard, updates furiten tracking, and
// broadcasts it.
func (g *Game) commitDiscard(seat int, t tile.Tile) {
	p := g.Players[seat]
	p.Hand.RemoveCopy(t)
	p.Discards = append(p.Discards, t)
	p.DiscardFaces[t.ID7()] = true
	g.lastDiscardSeat = seat
	g.lastDiscard = t
	if t.SameCopy(p.JustDrew) {
		g.broadcast(protocol.TsumogiriTile, t.Wire9(), -1)
	} else {
		g.broadcast(protocol.Tile, t.Wire9(), -1)
	}
	if g.History != nil {
		g.History.Event("discard_tile", seat, map[string]any{"tile": t.Wire9()})
	}
	g.pacingDelay()
}

// pacingDelay sleeps a short randomized interval after a discard, per §4.6's
// "randomized delay (deck tiger scaled to ≤2s)" note — gives clients time
// to submit calls before the arbiter starts its window in earnest.
func (g *Game) pacingDelay() {
	d := time.Duration(g.Wall.Tiger()) * maxPacingDelay / (1 << 16)
	time.Sleep(d)
}

var errFourKongs = &roundAbort{reason: protocol.FourKongs}

// roundAbort signals an abortive draw reason distinct from ordinary
// exhaustive draw (wall empty).
type roundAbort struct {
	reason uint16
}

func (e *roundAbort) Error() string { return "session: round aborted" }

// requestDiscard asks a seat that just completed a pong/chow (and so did
// not draw) to choose its discard. Defaults to the rightmost sorted tile if
// the seat does not respond in time — there is no "just drawn" tile to
// tsumogiri here, so a fixed fallback stands in for it.
func (g *Game) requestDiscard(seat int) tile.Tile {
	p := g.Players[seat]
	deadline := time.Now().Add(selfCallWindow)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			if len(p.Hand.Concealed) == 0 {
				return tile.Invalid
			}
			return p.Hand.Concealed[len(p.Hand.Concealed)-1]
		}
		env, ok := g.Queue.PopFront(remaining)
		if !ok {
			continue
		}
		s, known := g.seatOf(env.Sender)
		if !known || s != seat {
			continue
		}
		if env.Frame.Header != protocol.DiscardTile {
			g.reject(p)
			continue
		}
		t := tile.FromWire9(env.Frame.Payload)
		if !p.Hand.Contains(t) {
			g.reject(p)
			continue
		}
		return t
	}
}
