package session

import (
	"time"

	"riichi-server/internal/hand"
	"riichi-server/internal/protocol"
	"riichi-server/internal/tile"
)

type callKind int

const (
	callNone callKind = iota
	callRon
	callKong
	callPong
	callChow
)

type callResult struct {
	kind  callKind
	seat  int   // winning seat for kong/pong/chow; discarder's seat is unused
	seats []int // winning seats for ron (multi-ron pays the discarder once per winner)
	aux   []tile.Tile
}

// slotState tracks one seat's candidacy for one call type during
// arbitration: Maybe (mechanically available, not yet claimed), Must
// (claimed and promoted), or None (never available / passed).
type slotState int

const (
	slotNone slotState = iota
	slotMaybe
	slotMust
)

// opponentCallWindow collects and prioritizes calls from the three
// non-discarding seats after a discard, per §4.6's priority order: ron
// (closest downstream first) > kong > pong > chow (downstream only).
func (g *Game) opponentCallWindow(discarder int, t tile.Tile) callResult {
	ron := [4]slotState{}
	kong := [4]slotState{}
	pong := [4]slotState{}
	chow := [4]slotState{}
	aux := [4][]tile.Tile{}
	downstream := g.nextSeat(discarder)

	for seat := 0; seat < 4; seat++ {
		if seat == discarder {
			continue
		}
		p := g.Players[seat]
		if g.ronMechanicallyAvailable(seat, t) {
			ron[seat] = slotMaybe
		}
		if _, ok := hand.KongAvailable(p.Hand, t); ok {
			kong[seat] = slotMaybe
		}
		if _, ok := hand.PongAvailable(p.Hand, t); ok {
			pong[seat] = slotMaybe
		}
		if seat == downstream && len(hand.ChowAvailable(p.Hand, t)) > 0 {
			chow[seat] = slotMaybe
		}
	}

	deadline := time.Now().Add(callWindow)
	for {
		if winners := g.mustRonSeats(ron); len(winners) > 0 {
			return callResult{kind: callRon, seats: winners}
		}
		if seat, ok := mustSeat(kong, discarder); ok && len(aux[seat]) >= 3 {
			return callResult{kind: callKong, seat: seat, aux: aux[seat]}
		}
		if seat, ok := mustSeat(pong, discarder); ok && len(aux[seat]) >= 2 {
			return callResult{kind: callPong, seat: seat, aux: aux[seat]}
		}
		if seat, ok := mustSeat(chow, discarder); ok && len(aux[seat]) >= 2 {
			return callResult{kind: callChow, seat: seat, aux: aux[seat]}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return callResult{kind: callNone}
		}
		env, ok := g.Queue.PopFront(remaining)
		if !ok {
			continue
		}
		seat, known := g.seatOf(env.Sender)
		if !known || seat == discarder {
			continue
		}

		switch env.Frame.Header {
		case protocol.CallRon:
			if ron[seat] == slotMaybe {
				ron[seat] = slotMust
			} else {
				g.reject(g.Players[seat])
			}
		case protocol.CallKong:
			if kong[seat] == slotMaybe {
				kong[seat] = slotMust
				pong[seat], chow[seat] = slotNone, slotNone
			} else {
				g.reject(g.Players[seat])
			}
		case protocol.CallPong:
			if pong[seat] == slotMaybe {
				pong[seat] = slotMust
				chow[seat] = slotNone
			} else {
				g.reject(g.Players[seat])
			}
		case protocol.CallChow:
			if chow[seat] == slotMaybe {
				chow[seat] = slotMust
			} else {
				g.reject(g.Players[seat])
			}
		case protocol.CallWithTile:
			if len(aux[seat]) < 3 {
				aux[seat] = append(aux[seat], tile.FromWire9(env.Frame.Payload))
			}
		case protocol.PassCalls:
			ron[seat], kong[seat], pong[seat], chow[seat] = slotNone, slotNone, slotNone, slotNone
		default:
			g.reject(g.Players[seat])
		}
	}
}

// mustRonSeats returns every seat promoted to Must ron, ordered closest
// downstream of the discarder first (multi-ron pays the discarder once per
// winner; dealer-among-winners still drives the renchan decision upstream).
func (g *Game) mustRonSeats(ron [4]slotState) []int {
	var out []int
	for i := 1; i <= 4; i++ {
		seat := (g.lastDiscardSeat + i) % 4
		if ron[seat] == slotMust {
			out = append(out, seat)
		}
	}
	return out
}

// mustSeat finds the closest-downstream-of-the-discarder seat in slotMust,
// per the kong/pong tie-break rule (chow only ever has one eligible seat).
func mustSeat(slots [4]slotState, discarder int) (int, bool) {
	for i := 1; i <= 4; i++ {
		seat := (discarder + i) % 4
		if slots[seat] == slotMust {
			return seat, true
		}
	}
	return 0, false
}

// ronMechanicallyAvailable reports whether adding t to seat's hand would be
// a valid win with at least one yaku, respecting furiten.
func (g *Game) ronMechanicallyAvailable(seat int, t tile.Tile) bool {
	p := g.Players[seat]
	if p.DiscardFaces[t.ID7()] {
		return false // furiten: barred from ron on a face this seat has discarded
	}
	trial := hand.Hand{
		Concealed: append(append([]tile.Tile{}, p.Hand.Concealed...), t),
		Melds:     p.Hand.Melds,
		Riichi:    p.Hand.Riichi,
	}
	if !hand.IsComplete(trial) {
		return false
	}
	ctx := g.winContext(seat, t, false, false)
	return hand.ScoreWin(trial, ctx).Fan > 0
}
