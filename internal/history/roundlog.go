package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"riichi-server/internal/logx"
	"riichi-server/internal/tile"
)

// copyDelims maps a tile's copy-index (0..3) to the wire notation's
// copy-delimiter character, per §6.3's persisted round-log format.
var copyDelims = [4]byte{' ', '_', '-', '^'}

var windLetters = [3]byte{'E', 'S', 'W'}

// RoundLog is a Sink that appends §6.3's human-readable, advisory-only
// round log to logs/NNNN.log (N = the zero-padded 4-digit hex game id) —
// one line per round header, one line per event. It is not required to
// round-trip and is never read back by this server.
type RoundLog struct {
	w *bufio.Writer
	f *os.File
}

// OpenRoundLog creates (or truncates) dir/NNNN.log for gameID.
func OpenRoundLog(dir string, gameID uint16) (*RoundLog, error) {
	if dir == "" {
		return nil, fmt.Errorf("history: empty round-log directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("%04x.log", gameID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &RoundLog{w: bufio.NewWriter(f), f: f}, nil
}

func (r *RoundLog) Close() {
	_ = r.w.Flush()
	_ = r.f.Close()
}

func (r *RoundLog) RoundStarted(gameID uint16, dealer, prevailingWind, honba int) {
	fmt.Fprintf(r.w, "%c%d\n", windLetters[prevailingWind%3], dealer)
}

func (r *RoundLog) Event(eventType string, seat int, data map[string]any) {
	if t, ok := tileFromEventData(data); ok {
		fmt.Fprintf(r.w, "%d %s %s\n", seat, eventType, wireTileNotation(t))
		return
	}
	fmt.Fprintf(r.w, "%d %s\n", seat, eventType)
}

func (r *RoundLog) RoundEnded(deltas [4]int, endType string) {
	fmt.Fprintf(r.w, "# %s %v\n", endType, deltas)
	_ = r.w.Flush()
}

func tileFromEventData(data map[string]any) (tile.Tile, bool) {
	v, ok := data["tile"]
	if !ok {
		return tile.Invalid, false
	}
	wire, ok := v.(uint16)
	if !ok {
		return tile.Invalid, false
	}
	return tile.FromWire9(wire), true
}

func wireTileNotation(t tile.Tile) string {
	if !t.IsValid() {
		return "??"
	}
	letter := byte('?')
	switch t.Suit() {
	case tile.Man:
		letter = 'm'
	case tile.Pin:
		letter = 'p'
	case tile.Sou:
		letter = 's'
	case tile.Wind:
		letter = 'w'
	case tile.Dragon:
		letter = 'd'
	}
	idx := t.CopyIndex()
	if idx > 3 {
		idx = 3
	}
	return fmt.Sprintf("%d%c%c", t.Number()+1, letter, copyDelims[idx])
}

// Multi fans a round's events out to several sinks — this server's own use
// is pairing the Mongo match-history Sink with a per-game RoundLog.
type Multi struct {
	Sinks []Sink
}

func (m Multi) RoundStarted(gameID uint16, dealer, prevailingWind, honba int) {
	for _, s := range m.Sinks {
		s.RoundStarted(gameID, dealer, prevailingWind, honba)
	}
}

func (m Multi) Event(eventType string, seat int, data map[string]any) {
	for _, s := range m.Sinks {
		s.Event(eventType, seat, data)
	}
}

func (m Multi) RoundEnded(deltas [4]int, endType string) {
	for _, s := range m.Sinks {
		s.RoundEnded(deltas, endType)
	}
}

// ForGame builds the sink a single game should report to: base (typically
// the Mongo match-history sink) plus a best-effort round-log file under
// logDir. An empty logDir or a failed open just falls back to base.
func ForGame(base Sink, logDir string, gameID uint16) Sink {
	if logDir == "" {
		return base
	}
	rl, err := OpenRoundLog(logDir, gameID)
	if err != nil {
		logx.Warn("history: round log for game %04x disabled: %v", gameID, err)
		return base
	}
	return Multi{Sinks: []Sink{base, rl}}
}
