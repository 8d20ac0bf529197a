package session

import (
	"time"

	"riichi-server/internal/hand"
	"riichi-server/internal/protocol"
	"riichi-server/internal/tile"
)

type actionKind int

const (
	actionDiscard actionKind = iota
	actionTsumo
	actionChombo
	actionClosedKong
	actionAddedKong
)

type selfAction struct {
	kind   actionKind
	target tile.Tile // discard tile, or the kong's target face
}

// selfCallWindow gives the seat that just drew a tile its ≈60s window to
// respond with a kong, tsumo, riichi declaration, or discard, per §4.6.
// Any invalid choice is rejected and the window continues; on timeout the
// default action is tsumogiri.
func (g *Game) selfCallWindow(seat int, drawn tile.Tile) selfAction {
	p := g.Players[seat]
	riichiPending := false
	deadline := time.Now().Add(selfCallWindow)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return selfAction{kind: actionDiscard, target: drawn}
		}
		env, ok := g.Queue.PopFront(remaining)
		if !ok {
			continue
		}
		s, known := g.seatOf(env.Sender)
		if !known || s != seat {
			continue // not this seat's turn to act; ignore stray traffic
		}

		switch env.Frame.Header {
		case protocol.CallTsumo:
			ctx := g.winContext(seat, drawn, true, riichiPending)
			res := hand.ScoreWin(p.Hand, ctx)
			if res.Fan == 0 {
				return selfAction{kind: actionChombo}
			}
			return selfAction{kind: actionTsumo}

		case protocol.CallKong:
			target, ok := g.awaitCallWithTile(p.UID, deadline)
			if !ok {
				g.reject(p)
				continue
			}
			if _, ok := hand.ClosedKongAvailable(p.Hand, target); ok {
				return selfAction{kind: actionClosedKong, target: target}
			}
			if _, ok := hand.AddedKongAvailable(p.Hand, target); ok {
				return selfAction{kind: actionAddedKong, target: target}
			}
			g.reject(p)

		case protocol.CallRiichi:
			if len(p.Hand.Melds) > 0 || p.Score < riichiDeposit || p.Hand.Riichi {
				g.reject(p)
				continue
			}
			if !hand.IsTenpai(p.Hand) {
				g.reject(p)
				continue
			}
			riichiPending = true

		case protocol.PassCalls:
			return g.finishDiscard(p, drawn, riichiPending)

		case protocol.DiscardTile:
			t := tile.FromWire9(env.Frame.Payload)
			if !p.Hand.Contains(t) {
				g.reject(p)
				continue
			}
			if (p.Hand.Riichi || riichiPending) && !t.SameCopy(drawn) {
				return selfAction{kind: actionChombo}
			}
			return g.finishDiscard(p, t, riichiPending)

		default:
			g.reject(p)
		}
	}
}

// finishDiscard applies a pending riichi declaration (posting the deposit
// and broadcasting it) before returning the chosen discard.
func (g *Game) finishDiscard(p *Player, t tile.Tile, riichiPending bool) selfAction {
	if riichiPending {
		p.Hand.Riichi = true
		p.Score -= riichiDeposit
		g.DepositPool += riichiDeposit
		g.broadcast(protocol.ThisPlayerRiichi, uint16(p.Seat), -1)
		g.clearIppatsu()
		p.Hand.Ippatsu = true
	}
	return selfAction{kind: actionDiscard, target: t}
}

// awaitCallWithTile blocks for the call_with_tile(tile9) frame that must
// follow a call_kong header, per §4.6.
func (g *Game) awaitCallWithTile(uid uint16, deadline time.Time) (tile.Tile, bool) {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return tile.Invalid, false
		}
		env, ok := g.Queue.PopFront(remaining)
		if !ok {
			return tile.Invalid, false
		}
		if env.Sender != uid {
			continue
		}
		if env.Frame.Header != protocol.CallWithTile {
			return tile.Invalid, false
		}
		return tile.FromWire9(env.Frame.Payload), true
	}
}

func (g *Game) clearIppatsu() {
	for _, p := range g.Players {
		p.Hand.Ippatsu = false
	}
}
