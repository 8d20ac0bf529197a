package session

import (
	"time"

	"riichi-server/internal/hand"
	"riichi-server/internal/protocol"
	"riichi-server/internal/tile"
)

// winContext assembles the hand kernel's scoring context for a win at seat,
// on winTile, tsumo or ron, folding in riichi/ippatsu/haitei/houtei/rinshan
// and the wall's currently face-up dora indicators.
func (g *Game) winContext(seat int, winTile tile.Tile, tsumo bool, riichiPending bool) hand.WinContext {
	return g.winContextChankan(seat, winTile, tsumo, riichiPending, false)
}

// winContextChankan is winContext's chankan-aware form: applyAddedKong's
// robbing-the-kong ron path needs Chankan: true so the kernel can award the
// chankan yaku instead of scoring the win as an ordinary ron.
func (g *Game) winContextChankan(seat int, winTile tile.Tile, tsumo bool, riichiPending bool, chankan bool) hand.WinContext {
	p := g.Players[seat]
	return hand.WinContext{
		WinTile:           winTile,
		SeatWind:          g.SeatWind(seat),
		RoundWind:         g.RoundWind(),
		Tsumo:             tsumo,
		Riichi:            p.Hand.Riichi || riichiPending,
		DoubleRiichi:      p.Hand.DoubleRiichi,
		Ippatsu:           p.Hand.Ippatsu,
		Haitei:            tsumo && g.Wall.Size() == 0 && !g.lastDrawRinshan,
		Houtei:            !tsumo && g.Wall.Size() == 0,
		Rinshan:           tsumo && g.lastDrawRinshan,
		Chankan:           chankan,
		DoraIndicators:    g.Wall.GetDoraIndicators(),
		UraDoraIndicators: g.uraDoraFor(p),
	}
}

// uraDoraFor reveals one ura-dora indicator per face-up dora indicator, but
// only for a riichi winner, per §4.6's dora accounting.
func (g *Game) uraDoraFor(p *Player) []tile.Tile {
	if !p.Hand.Riichi {
		return nil
	}
	want := len(g.Wall.GetDoraIndicators())
	for len(g.Wall.GetUraDoraIndicators()) < want {
		if _, err := g.Wall.RevealUraDoraIndicator(); err != nil {
			break
		}
	}
	return g.Wall.GetUraDoraIndicators()
}

func (g *Game) broadcastYaku(seat int, res hand.ScoreResult) {
	g.broadcast(protocol.ClosedHand, protocol.StartStream, -1)
	for _, t := range g.Players[seat].Hand.Concealed {
		g.broadcast(protocol.Tile, t.Wire9(), -1)
	}
	g.broadcast(protocol.ClosedHand, protocol.EndStream, -1)

	g.broadcast(protocol.YakuList, protocol.StartStream, -1)
	for _, y := range res.Yaku {
		// No wire-level yaku id table is specified beyond the name/han the
		// kernel already carries; the han count stands in for the id here.
		g.broadcast(protocol.WinningYaku, uint16(y.Han), -1)
	}
	g.broadcast(protocol.YakuFanCount, uint16(res.Fan), -1)
	g.broadcast(protocol.FuCount, uint16(res.Fu), -1)
	g.broadcast(protocol.YakuList, protocol.EndStream, -1)
}

// payoutTsumo resolves a self-draw win: scores the hand, distributes
// payments to the other three seats, and broadcasts the result.
func (g *Game) payoutTsumo(seat int, winTile tile.Tile) roundOutcome {
	p := g.Players[seat]
	ctx := g.winContext(seat, winTile, true, false)
	res := hand.ScoreWin(p.Hand, ctx)
	payments := hand.Distribute(res.Points, seat, g.Dealer, -1, g.Honba, g.DepositPool)
	g.applyPayments(payments)
	g.broadcast(protocol.ThisPlayerTsumo, 0, -1)
	g.broadcast(protocol.ThisPlayerWon, uint16(seat), -1)
	g.broadcastYaku(seat, res)
	g.DepositPool = 0
	if g.History != nil {
		g.History.Event("tsumo", seat, map[string]any{"fu": res.Fu, "fan": res.Fan})
	}
	var deltas [4]int
	for _, pay := range payments {
		deltas[pay.Seat] = pay.Delta
		g.broadcast(protocol.ThisManyPoints, protocol.EncodeInt16(int16(pay.Delta)), -1)
	}
	return roundOutcome{dealerWon: seat == g.Dealer, renchan: seat == g.Dealer, deltas: deltas, endType: "tsumo"}
}

// payoutRon resolves one or more simultaneous ron claims against a single
// discarder, each scored and paid independently. chankan marks a
// robbing-the-kong win, which is not otherwise distinguishable from an
// ordinary ron at this call site.
func (g *Game) payoutRon(winners []int, discarder int, winTile tile.Tile, chankan bool) roundOutcome {
	var deltas [4]int
	dealerWon := false
	for _, seat := range winners {
		p := g.Players[seat]
		trial := hand.Hand{Concealed: append(append([]tile.Tile{}, p.Hand.Concealed...), winTile), Melds: p.Hand.Melds, Riichi: p.Hand.Riichi}
		ctx := g.winContextChankan(seat, winTile, false, false, chankan)
		res := hand.ScoreWin(trial, ctx)
		payments := hand.Distribute(res.Points, seat, g.Dealer, discarder, g.Honba, g.DepositPool)
		g.DepositPool = 0
		g.applyPayments(payments)
		for _, pay := range payments {
			deltas[pay.Seat] += pay.Delta
		}
		g.broadcast(protocol.ThisPlayerRon, 0, -1)
		g.broadcast(protocol.ThisPlayerWon, uint16(seat), -1)
		g.broadcastYaku(seat, res)
		if seat == g.Dealer {
			dealerWon = true
		}
		if g.History != nil {
			g.History.Event("ron", seat, map[string]any{"fu": res.Fu, "fan": res.Fan, "discarder": discarder})
		}
	}
	for _, d := range deltas {
		if d != 0 {
			g.broadcast(protocol.ThisManyPoints, protocol.EncodeInt16(int16(d)), -1)
		}
	}
	return roundOutcome{dealerWon: dealerWon, renchan: dealerWon, deltas: deltas, endType: "ron"}
}

func (g *Game) applyPayments(payments []hand.Payment) {
	for _, p := range payments {
		g.Players[p.Seat].Score += p.Delta
	}
}

// chomboOutcome resolves a riichi-discard violation or false tsumo/ron per
// §4.6 and §7: a mangan-class penalty, no round progress — control returns
// directly to start_round, not through next/renchan. A "mangan unit" here
// is 2000, the basic-points value a capped mangan hand scores at; dealer-
// at-fault pays 6 units split evenly three ways, non-dealer-at-fault pays 4
// units with the dealer's share doubled.
func (g *Game) chomboOutcome(seat int, reason string) roundOutcome {
	const manganUnit = 2000
	var deltas [4]int
	if g.atFaultIsDealer(seat) {
		each := 2 * manganUnit
		for s := 0; s < 4; s++ {
			if s == seat {
				continue
			}
			deltas[s] = each
			deltas[seat] -= each
		}
	} else {
		shares := 0
		for s := 0; s < 4; s++ {
			if s == seat {
				continue
			}
			if s == g.Dealer {
				shares += 2
			} else {
				shares++
			}
		}
		unit := 4 * manganUnit / shares
		for s := 0; s < 4; s++ {
			if s == seat {
				continue
			}
			amt := unit
			if s == g.Dealer {
				amt *= 2
			}
			deltas[s] = amt
			deltas[seat] -= amt
		}
	}
	g.applyPayments(deltaPayments(deltas))
	g.broadcast(protocol.ErrorFrame, uint16(seat), -1)
	if g.History != nil {
		g.History.Event("chombo", seat, map[string]any{"reason": reason})
	}
	return roundOutcome{chomboReplay: true, deltas: deltas, endType: "chombo"}
}

func (g *Game) atFaultIsDealer(seat int) bool { return seat == g.Dealer }

func deltaPayments(deltas [4]int) []hand.Payment {
	out := make([]hand.Payment, 0, 4)
	for s, d := range deltas {
		out = append(out, hand.Payment{Seat: s, Delta: d})
	}
	return out
}

// exhaustiveDraw polls every seat for tenpai/no-ten, verifies each claim
// against the kernel, and applies the standard no-ten payment tiers.
func (g *Game) exhaustiveDraw() roundOutcome {
	tenpai := [4]bool{}
	for seat := 0; seat < 4; seat++ {
		claimed := g.pollTenpaiClaim(seat)
		actual := hand.IsTenpai(g.Players[seat].Hand)
		if g.Players[seat].Hand.Riichi && !actual {
			out := g.chomboOutcome(seat, "false tenpai under riichi")
			return out
		}
		tenpai[seat] = claimed && actual
	}
	n := 0
	for _, t := range tenpai {
		if t {
			n++
		}
	}
	var deltas [4]int
	switch n {
	case 1, 2, 3:
		gain := map[int]int{1: 3000, 2: 1500, 3: 1000}[n]
		lose := map[int]int{1: 1000, 2: 1500, 3: 3000}[n]
		for s := 0; s < 4; s++ {
			if tenpai[s] {
				deltas[s] = gain
			} else {
				deltas[s] = -lose
			}
		}
		g.applyPayments(deltaPayments(deltas))
	}
	g.broadcast(protocol.GameDraw, protocol.ExhaustiveDraw, -1)
	if g.History != nil {
		g.History.Event("exhaustive_draw", -1, map[string]any{"tenpai": tenpai})
	}
	dealerTenpai := tenpai[g.Dealer]
	return roundOutcome{renchan: dealerTenpai, deltas: deltas, endType: "exhaustive_draw"}
}

func (g *Game) pollTenpaiClaim(seat int) bool {
	p := g.Players[seat]
	deadline := time.Now().Add(tenpaiWindow)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		env, ok := g.Queue.PopFront(remaining)
		if !ok {
			return false
		}
		s, known := g.seatOf(env.Sender)
		if !known || s != seat {
			continue
		}
		if env.Frame.Header != protocol.CallTenpai {
			g.reject(p)
			continue
		}
		return env.Frame.Payload == protocol.Tenpai
	}
}

// abortiveDraw resolves a non-exhaustive abortive draw (currently only
// FOUR_KONGS) with no scoring change; the dealer repeats.
func (g *Game) abortiveDraw(reason uint16) roundOutcome {
	g.broadcast(protocol.GameDraw, reason, -1)
	if g.History != nil {
		g.History.Event("abortive_draw", -1, map[string]any{"reason": reason})
	}
	return roundOutcome{renchan: true, endType: "abortive_draw"}
}

// applyOutcome advances the game between rounds per §4.6: renchan keeps the
// dealer and bumps honba; otherwise the dealer advances, and if it wraps
// back to seat 0 the prevailing wind advances, ending the game once the
// wind that just elapsed was West.
func (g *Game) applyOutcome(o roundOutcome) {
	if o.chomboReplay {
		return // start_round runs again with dealer/honba unchanged
	}
	if o.renchan {
		g.Honba++
		return
	}
	g.Honba = 0
	g.Dealer = g.nextSeat(g.Dealer)
	if g.Dealer == 0 {
		if g.PrevailingWind == 2 { // West
			g.over = true
			return
		}
		g.PrevailingWind++
	}
}
