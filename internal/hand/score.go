package hand

import "riichi-server/internal/tile"

// ScoreResult is the outcome of scoring one winning hand: the fu/fan used,
// the yaku that contributed, and the resulting basic point value.
type ScoreResult struct {
	Kind   AgariKind
	Fu     int
	Fan    int
	Yaku   []YakuHan
	Points int
}

func meldFu(m tile.Meld) int {
	if m.IsSequence() || m.IsPair() {
		return 0
	}
	fu := 2
	if !m.IsOpen() {
		fu *= 2
	}
	if m.IsTerminalOrHonor() {
		fu *= 2
	}
	if m.IsKong() {
		fu *= 4
	}
	return fu
}

func waitFu(melds []tile.Meld, pair tile.Meld, winTile tile.Tile) int {
	if waitIsRyanmen(melds, pair, winTile) {
		return 0
	}
	return 2
}

func roundUp10(n int) int {
	if n%10 == 0 {
		return n
	}
	return n + (10 - n%10)
}

// computeFu applies §4.4's fu formula, with the pinfu special case locking
// the result to 20 (tsumo) or 30 (ron) regardless of the itemized sum.
func computeFu(melds []tile.Meld, pair tile.Meld, ctx WinContext) int {
	closed := isFullyConcealed(melds)
	if isPinfu(melds, pair, ctx) {
		if ctx.Tsumo {
			return 20
		}
		return 30
	}
	fu := 20
	for _, m := range melds {
		fu += meldFu(m)
	}
	if isYakuhaiPair(pair, ctx) {
		fu += 2
	}
	fu += waitFu(melds, pair, ctx.WinTile)
	if ctx.Tsumo {
		fu += 2
	} else if closed {
		fu += 10
	}
	return roundUp10(fu)
}

func totalFan(yaku []YakuHan) int {
	n := 0
	for _, y := range yaku {
		n += y.Han
	}
	return n
}

// basicPoints applies the mangan/haneman/baiman/sanbaiman caps and the
// mangan floor on high-fu low-fan hands.
func basicPoints(fu, fan int) int {
	switch {
	case fan >= 13:
		return 8000 // kazoe yakuman, scored as a mangan multiple elsewhere
	case fan >= 11:
		return 6000
	case fan >= 8:
		return 4000
	case fan >= 6:
		return 3000
	case fan == 5:
		return 2000
	case fan == 4 && fu >= 40:
		return 2000
	case fan == 3 && fu >= 70:
		return 2000
	}
	pts := fu << uint(2+fan)
	if pts > 2000 {
		pts = 2000
	}
	return pts
}

// Payment is one seat's score delta for a resolved win.
type Payment struct {
	Seat  int
	Delta int
}

// Distribute computes the per-seat payment for a win given its basic
// points, dealer-relative seats, honba count, and riichi deposit pool.
// discarder is -1 for tsumo.
func Distribute(basic int, winnerSeat, dealerSeat, discarderSeat int, honba, depositPool int) []Payment {
	isDealer := winnerSeat == dealerSeat
	honbaEach := honba * 100
	var payments []Payment
	total := 0
	if discarderSeat < 0 {
		for seat := 0; seat < 4; seat++ {
			if seat == winnerSeat {
				continue
			}
			amt := basic
			if isDealer {
				amt *= 2
			} else if seat == dealerSeat {
				amt *= 2
			}
			amt += honbaEach
			payments = append(payments, Payment{Seat: seat, Delta: -amt})
			total += amt
		}
	} else {
		mult := 4
		if isDealer {
			mult = 6
		}
		amt := basic * mult
		amt += honba * 300
		payments = append(payments, Payment{Seat: discarderSeat, Delta: -amt})
		total = amt
	}
	payments = append(payments, Payment{Seat: winnerSeat, Delta: total + depositPool})
	return payments
}

// kokushiFan is the fixed fan ScoreKokushi reports for thirteen orphans.
const kokushiFan = 13

// ScoreDecomposition scores one standard 4-melds-plus-pair decomposition.
func ScoreDecomposition(concealedMelds []tile.Meld, calledMelds []tile.Meld, pair tile.Meld, ctx WinContext) ScoreResult {
	full := append(append([]tile.Meld{}, concealedMelds...), calledMelds...)
	yaku := DetectYaku(full, pair, ctx)
	fan := totalFan(yaku)
	fu := computeFu(full, pair, ctx)
	return ScoreResult{Kind: AgariStandard, Fu: fu, Fan: fan, Yaku: yaku, Points: basicPoints(fu, fan)}
}

// ScoreChiitoitsu scores the fixed seven-pairs shape: no meld fu applies,
// only the base/wait/tsumo-or-ron contributions plus tanyao/honitsu-style
// flat-profile yaku computed over the pair tiles themselves.
func ScoreChiitoitsu(h Hand, ctx WinContext) ScoreResult {
	sorted := SortedCopy(h.Concealed)
	var yaku []YakuHan
	yaku = append(yaku, YakuHan{"chiitoitsu", 2})
	tanyao := true
	for _, t := range sorted {
		if t.IsTerminalOrHonor() {
			tanyao = false
			break
		}
	}
	if tanyao {
		yaku = append(yaku, YakuHan{"tanyao", 1})
	}
	suits := make(map[tile.Suit]bool)
	hasHonor := false
	for _, t := range sorted {
		if t.IsHonor() {
			hasHonor = true
		} else {
			suits[t.Suit()] = true
		}
	}
	if len(suits) == 1 && hasHonor {
		yaku = append(yaku, YakuHan{"honitsu", 3})
	} else if len(suits) == 1 && !hasHonor {
		yaku = append(yaku, YakuHan{"chinitsu", 6})
	}
	if n := countDora(sorted, ctx.DoraIndicators); n > 0 {
		yaku = append(yaku, YakuHan{"dora", n})
	}
	if n := countRedFives(sorted); n > 0 {
		yaku = append(yaku, YakuHan{"aka-dora", n})
	}
	fan := totalFan(yaku)
	// Base 20 + wait (tanki, always 2) + concealed-ron bonus; chiitoitsu is
	// always fully concealed and never a tsumo-pinfu shape.
	fu := 20 + 2
	if ctx.Tsumo {
		fu += 2
	} else {
		fu += 10
	}
	fu = roundUp10(fu)
	return ScoreResult{Kind: AgariChiitoitsu, Fu: fu, Fan: fan, Yaku: yaku, Points: basicPoints(fu, fan)}
}

// ScoreKokushi scores the thirteen-orphans special hand as a fixed yakuman.
func ScoreKokushi() ScoreResult {
	return ScoreResult{Kind: AgariKokushi, Fu: 0, Fan: kokushiFan, Yaku: []YakuHan{{"kokushi", kokushiFan}}, Points: 8000}
}

// ScoreWin tries every available decomposition (standard, chiitoitsu,
// kokushi) and returns the one maximizing points, ties broken by fu, then
// by candidate (leftmost) order.
func ScoreWin(h Hand, ctx WinContext) ScoreResult {
	if IsAgariKokushi(h) {
		return ScoreKokushi()
	}
	var best ScoreResult
	haveBest := false
	consider := func(r ScoreResult) {
		if !haveBest || r.Points > best.Points || (r.Points == best.Points && r.Fu > best.Fu) {
			best = r
			haveBest = true
		}
	}
	if IsAgariChiitoitsu(h) {
		consider(ScoreChiitoitsu(h, ctx))
	}
	for _, d := range IsAgariNormal(h) {
		pair := d[len(d)-1]
		concealedMelds := d[:len(d)-1]
		consider(ScoreDecomposition(concealedMelds, h.Melds, pair, ctx))
	}
	return best
}
