package session

import (
	"riichi-server/internal/hand"
	"riichi-server/internal/protocol"
	"riichi-server/internal/tile"
)

// applyOpenKong removes three matching concealed tiles from the caller's
// hand, forms an open kong meld with the discarded tile, reveals the next
// dora indicator, and arms the after-kong rinshan draw.
func (g *Game) applyOpenKong(seat int, discard tile.Tile, aux []tile.Tile) {
	p := g.Players[seat]
	tiles := append(append([]tile.Tile{}, aux...), discard.WithOpen())
	for _, t := range aux {
		p.Hand.RemoveCopy(t)
	}
	p.Hand.Melds = append(p.Hand.Melds, tile.NewMeld(tile.Kong, tiles, true))
	g.afterKongFollowup(seat)
}

// applyClosedKong removes four matching concealed tiles and forms a closed
// kong, with the same dora/rinshan follow-up as an open kong.
func (g *Game) applyClosedKong(seat int, target tile.Tile) {
	p := g.Players[seat]
	quad, ok := hand.ClosedKongAvailable(p.Hand, target)
	if !ok {
		return
	}
	for _, t := range quad {
		p.Hand.RemoveCopy(t)
	}
	p.Hand.Melds = append(p.Hand.Melds, tile.NewMeld(tile.Kong, quad[:], false))
	g.afterKongFollowup(seat)
}

// applyAddedKong upgrades an existing open pong into a kong (chakan). This
// exposes the hand to a ron "robbing the kong" (chankan) by any seat
// furiten-eligible on target — checked before the meld mutation commits.
func (g *Game) applyAddedKong(seat int, target tile.Tile) (roundOutcome, bool) {
	p := g.Players[seat]
	idx, ok := hand.AddedKongAvailable(p.Hand, target)
	if !ok {
		return roundOutcome{}, false
	}
	if winners := g.chankanRonSeats(seat, target); len(winners) > 0 {
		return g.payoutRon(winners, seat, target, true), true
	}
	p.Hand.RemoveCopy(target)
	old := p.Hand.Melds[idx]
	tiles := append(old.Tiles(), target.WithOpen())
	p.Hand.Melds[idx] = tile.NewMeld(tile.Kong, tiles, true)
	g.afterKongFollowup(seat)
	return roundOutcome{}, false
}

func (g *Game) chankanRonSeats(kongSeat int, t tile.Tile) []int {
	var winners []int
	for seat := 0; seat < 4; seat++ {
		if seat == kongSeat {
			continue
		}
		if g.ronMechanicallyAvailable(seat, t) {
			winners = append(winners, seat)
		}
	}
	return winners
}

// afterKongFollowup broadcasts the kong, reveals a dora indicator, bumps the
// round's kong count (for the FOUR_KONGS abortive-draw check), and arms the
// after-kong rinshan draw that the next drawForTurn call will use.
func (g *Game) afterKongFollowup(seat int) {
	g.KongCount++
	g.broadcast(protocol.ThisPlayerKong, uint16(seat), -1)
	if ind, err := g.Wall.RevealDoraIndicator(); err == nil {
		g.broadcast(protocol.DoraIndicator, ind.Wire9(), -1)
	}
	g.clearIppatsu()
	g.afterKong = true
}

// applyPong removes two matching concealed tiles and forms an open pong
// with the discard.
func (g *Game) applyPong(seat int, discard tile.Tile, aux []tile.Tile) {
	p := g.Players[seat]
	for _, t := range aux {
		p.Hand.RemoveCopy(t)
	}
	tiles := append(append([]tile.Tile{}, aux...), discard.WithOpen())
	p.Hand.Melds = append(p.Hand.Melds, tile.NewMeld(tile.Set, tiles, true))
	g.broadcast(protocol.ThisPlayerPong, uint16(seat), -1)
	g.clearIppatsu()
}

// applyChow removes the two auxiliary tiles and forms an open sequence with
// the discard. Only the discarder's immediate downstream neighbor may call
// this — enforced by the arbiter, not here.
func (g *Game) applyChow(seat int, discard tile.Tile, aux []tile.Tile) {
	p := g.Players[seat]
	for _, t := range aux {
		p.Hand.RemoveCopy(t)
	}
	tiles := hand.SortedCopy([]tile.Tile{aux[0], aux[1], discard.WithOpen()})
	p.Hand.Melds = append(p.Hand.Melds, tile.NewMeld(tile.Sequence, tiles, true))
	g.broadcast(protocol.ThisPlayerChow, uint16(seat), -1)
	g.clearIppatsu()
}
