// Package protocol implements the wire-level message layer: a fixed 3-byte
// frame (header byte + little-endian u16 payload) and the headers/magic
// constants both client and server agree on.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Size is the fixed length of every frame on the wire.
const Size = 3

// Header is the single printable-ASCII byte identifying a frame's meaning.
type Header byte

// Client -> Server headers.
const (
	MyID         Header = 'e' // my_id(u16 claimed_uid)
	JoinAsPlayer Header = 'p' // join_as_player(magic=NewPlayer)
	JoinSpectator Header = 's' // join_as_spectator(game id)
	DiscardTile  Header = 't' // discard_tile(tile9)
	CallWithTile Header = 'w' // call_with_tile(tile9)
	CallPong     Header = '3'
	CallChow     Header = 'c'
	CallKong     Header = '4'
	CallRiichi   Header = 'r'
	CallRon      Header = '*'
	CallTsumo    Header = '+'
	PassCalls    Header = 'n'
	CallTenpai   Header = 'i' // payload: Tenpai | NoTen
	Ping         Header = ';' // payload: random u16
)

// Server -> Client headers.
const (
	YourID            Header = 'I'
	Reject            Header = 'X'
	QueueSize         Header = 'Q'
	YourPosition      Header = 'P'
	ThisPlayerDrew    Header = 'D' // payload: seat
	Tile              Header = 'T' // payload: tile9
	TsumogiriTile     Header = 'G' // payload: tile9
	ThisPlayerPong    Header = '#'
	ThisPlayerChow    Header = 'C'
	ThisPlayerKong    Header = '$'
	ThisPlayerRiichi  Header = 'R'
	ThisPlayerRon     Header = '/'
	ThisPlayerTsumo   Header = '-'
	ThisPlayerWon     Header = 'W' // payload: seat
	ThisManyPoints    Header = 'Z' // payload: i16 two's complement delta
	DoraIndicator     Header = 'B' // payload: tile9
	ErrorFrame        Header = '!'
	ThisPlayerHand    Header = 'H' // payload: seat
	ClosedHand        Header = 'K' // stream marker
	YakuList          Header = 'M' // stream marker
	WinningYaku       Header = 'Y' // payload: yaku id
	YakuFanCount      Header = 'F'
	FuCount           Header = 'U'
	GameDraw          Header = 'E' // payload: reason code
	NewRound          Header = 'N' // payload: (prevailing_wind<<2)|dealer
)

// Magic constants carried in the payload field of certain frames.
const (
	NewPlayer      uint16 = 0x3f3f
	Reject16       uint16 = 0x8088
	StartStream    uint16 = 0xa000
	EndStream      uint16 = 0xa001
	PingMagic      uint16 = 0xefe0
	Tenpai         uint16 = 0x1009
	NoTen          uint16 = 0x100a
	NoInfo         uint16 = 0x6083
	ExhaustiveDraw uint16 = 0x100b
	FourKongs      uint16 = 0x100c
	NineTerminals  uint16 = 0x100d
	FourWinds      uint16 = 0x100e
	Timeout        uint16 = 0x0000
)

// DefaultPort is the server's default listen port.
const DefaultPort = 10000

// Frame is the decoded form of one 3-byte message.
type Frame struct {
	Header  Header
	Payload uint16
}

// Encode serializes f into exactly Size bytes.
func Encode(f Frame) [Size]byte {
	var buf [Size]byte
	buf[0] = byte(f.Header)
	binary.LittleEndian.PutUint16(buf[1:3], f.Payload)
	return buf
}

// Decode is the inverse of Encode.
func Decode(buf [Size]byte) Frame {
	return Frame{Header: Header(buf[0]), Payload: binary.LittleEndian.Uint16(buf[1:3])}
}

// New is a small convenience constructor.
func New(h Header, payload uint16) Frame { return Frame{Header: h, Payload: payload} }

// Int16Payload reinterprets the payload as a signed two's-complement delta
// (used by this_many_points).
func Int16Payload(payload uint16) int16 { return int16(payload) }

// EncodeInt16 is the inverse of Int16Payload.
func EncodeInt16(v int16) uint16 { return uint16(v) }

// ReadFrame reads exactly one 3-byte frame from r, blocking until the full
// frame has arrived or the stream errs. Mirrors the teacher's buffered
// read-until-full-frame pattern, simplified to the spec's fixed size.
func ReadFrame(r io.Reader) (Frame, error) {
	var buf [Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Frame{}, fmt.Errorf("read frame: %w", err)
	}
	return Decode(buf), nil
}

// WriteFrame writes one frame to w.
func WriteFrame(w io.Writer, f Frame) error {
	buf := Encode(f)
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
