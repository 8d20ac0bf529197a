// Package wall implements the 136-tile deck: shuffle, live-wall draw,
// dead-wall dora/kan-replacement draw, and the round's shared RNG.
package wall

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	mathrand "math/rand"
	"sync"

	"riichi-server/internal/tile"
)

// Empty signals the live wall has been exhausted — an exhaustive draw, not
// an error condition the caller should log.
var Empty = errors.New("wall: live wall exhausted")

const (
	liveCapacity = 122
	deadCapacity = 14
	kanSlots     = 4
	doraSlots    = 5
	uraDoraSlots = 5
)

// Wall owns the shuffled 136-tile deque, split into a drawable live portion
// and a 14-tile dead wall (4 kan replacement tiles, 5 dora indicators, 5
// ura-dora indicators).
type Wall struct {
	mu  sync.Mutex
	rng *mathrand.Rand

	live      [liveCapacity]tile.Tile
	liveIndex int

	kanTiles [kanSlots]tile.Tile
	kanIndex int

	doraIndicators [doraSlots]tile.Tile
	doraRevealed   int

	uraDoraIndicators [uraDoraSlots]tile.Tile
	uraRevealed       int

	useRedFives bool
}

// New builds a Wall seeded from OS entropy. useRedFives marks one copy of
// each suit's 5 as a red five.
func New(useRedFives bool) *Wall {
	w := &Wall{useRedFives: useRedFives}
	w.rng = mathrand.New(mathrand.NewSource(seedFromOS()))
	w.Reset()
	return w
}

func seedFromOS() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Errorf("wall: reading OS entropy: %w", err))
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// Reset rebuilds all 136 tiles and reshuffles, clearing dead-wall reveal
// state. Called once per new round.
func (w *Wall) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	all := make([]tile.Tile, 0, 136)
	for _, s := range []tile.Suit{tile.Man, tile.Pin, tile.Sou} {
		for n := uint8(0); n < 9; n++ {
			for c := uint8(0); c < 4; c++ {
				t := tile.New(s, n, c)
				if w.useRedFives && n == 4 && c == 0 {
					t = t.WithRedFive()
				}
				all = append(all, t)
			}
		}
	}
	for n := uint8(0); n < 4; n++ {
		for c := uint8(0); c < 4; c++ {
			all = append(all, tile.New(tile.Wind, n, c))
		}
	}
	for n := uint8(0); n < 3; n++ {
		for c := uint8(0); c < 4; c++ {
			all = append(all, tile.New(tile.Dragon, n, c))
		}
	}

	w.rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	copy(w.live[:], all[:liveCapacity])
	w.liveIndex = 0

	dead := all[liveCapacity:]
	copy(w.kanTiles[:], dead[:kanSlots])
	copy(w.doraIndicators[:], dead[kanSlots:kanSlots+doraSlots])
	copy(w.uraDoraIndicators[:], dead[kanSlots+doraSlots:])
	w.kanIndex = 0
	w.doraRevealed = 1 // the first dora indicator is always face-up from the start
	w.uraRevealed = 0
}

// Draw pops the next live-wall tile. Returns Empty when exhausted.
func (w *Wall) Draw() (tile.Tile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.liveIndex >= liveCapacity {
		return tile.Invalid, Empty
	}
	t := w.live[w.liveIndex]
	w.liveIndex++
	return t, nil
}

// DrawKanTile performs a rinshan (dead-wall replacement) draw after a kong.
// Errors once all 4 replacement tiles have been consumed — the session
// engine must have already forced an abortive draw by then.
func (w *Wall) DrawKanTile() (tile.Tile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.kanIndex >= kanSlots {
		return tile.Invalid, fmt.Errorf("wall: no kan replacement tiles left")
	}
	t := w.kanTiles[w.kanIndex]
	w.kanIndex++
	return t, nil
}

// RemainingKanTiles reports how many rinshan draws remain.
func (w *Wall) RemainingKanTiles() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return kanSlots - w.kanIndex
}

// RevealDoraIndicator reveals the next dora indicator (called after a kong).
// The first indicator is revealed implicitly by Reset.
func (w *Wall) RevealDoraIndicator() (tile.Tile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doraRevealed >= doraSlots {
		return tile.Invalid, fmt.Errorf("wall: no dora indicators left")
	}
	t := w.doraIndicators[w.doraRevealed]
	w.doraRevealed++
	return t, nil
}

// RevealUraDoraIndicator reveals the next ura-dora indicator, used on a
// riichi win to match the count of face-up dora indicators.
func (w *Wall) RevealUraDoraIndicator() (tile.Tile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.uraRevealed >= uraDoraSlots {
		return tile.Invalid, fmt.Errorf("wall: no ura-dora indicators left")
	}
	t := w.uraDoraIndicators[w.uraRevealed]
	w.uraRevealed++
	return t, nil
}

// GetDoraIndicators returns the currently face-up dora indicators.
func (w *Wall) GetDoraIndicators() []tile.Tile {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]tile.Tile, w.doraRevealed)
	copy(out, w.doraIndicators[:w.doraRevealed])
	return out
}

// GetUraDoraIndicators returns the ura-dora indicators revealed so far.
func (w *Wall) GetUraDoraIndicators() []tile.Tile {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]tile.Tile, w.uraRevealed)
	copy(out, w.uraDoraIndicators[:w.uraRevealed])
	return out
}

// Size reports remaining live tiles.
func (w *Wall) Size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return liveCapacity - w.liveIndex
}

// Tiger returns a uniform u16, used by the session engine's post-discard
// pacing delay.
func (w *Wall) Tiger() uint16 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return uint16(w.rng.Intn(1 << 16))
}
