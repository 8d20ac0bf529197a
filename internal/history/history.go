// Package history implements C10: an async, fire-and-forget match-history
// collector backed by MongoDB, mirroring the shape of the teacher's
// common/database/mongo.go client plus core/domain/entity's
// GameRecord/RoundRecord schema — rebuilt on this spec's own
// game/round/seat model instead of the teacher's five-service matchmaking
// schema, and degrading to a no-op sink when no Mongo URL is configured.
package history

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"riichi-server/internal/config"
	"riichi-server/internal/logx"
)

// Sink is the session engine's view of match history (session.HistorySink).
// The session package never imports this one — Game depends only on the
// interface it already declares, and main wires a concrete Sink in.
type Sink interface {
	RoundStarted(gameID uint16, dealer, prevailingWind, honba int)
	Event(eventType string, seat int, data map[string]any)
	RoundEnded(deltas [4]int, endType string)
}

// RoundEvent is one timestamped action within a round, mirroring the
// teacher's RoundEvent sub-document shape.
type RoundEvent struct {
	Type      string         `bson:"type"`
	Seat      int            `bson:"seat"`
	Data      map[string]any `bson:"data,omitempty"`
	Timestamp time.Time      `bson:"timestamp"`
}

// RoundRecord is one persisted round, mirroring the teacher's
// core/domain/entity/round_record.go schema flattened onto this spec's
// dealer/prevailing-wind/honba fields instead of the teacher's per-service
// round numbering.
type RoundRecord struct {
	GameID         uint16       `bson:"gameId"`
	RoundNumber    int          `bson:"roundNumber"`
	Dealer         int          `bson:"dealer"`
	PrevailingWind int          `bson:"prevailingWind"`
	Honba          int          `bson:"honba"`
	Events         []RoundEvent `bson:"events"`
	Deltas         [4]int       `bson:"deltas"`
	EndType        string       `bson:"endType"`
	StartedAt      time.Time    `bson:"startedAt"`
	EndedAt        time.Time    `bson:"endedAt"`
}

// Mongo is a Sink that appends one document per finished round to a
// rounds collection, matching the teacher's MongoManager.Cli/Db/NewMongo
// shape but scoped to a single collection this spec actually needs.
type Mongo struct {
	cli   *mongo.Client
	coll  *mongo.Collection
	cur   *RoundRecord
	round int

	inserts chan RoundRecord
	done    chan struct{}
}

const insertQueueDepth = 64

// Connect dials url and selects db.rounds, following the teacher's
// mongo.Connect + Ping handshake, then starts the single background
// goroutine that owns the Mongo session for inserts (§4.10: the engine
// only ever hands a value to a buffered channel).
func Connect(cfg config.Mongo) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.Url)
	if cfg.MinPoolSize > 0 {
		opts.SetMinPoolSize(uint64(cfg.MinPoolSize))
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	m := &Mongo{
		cli:     cli,
		coll:    cli.Database(cfg.Db).Collection("rounds"),
		inserts: make(chan RoundRecord, insertQueueDepth),
		done:    make(chan struct{}),
	}
	go m.insertLoop()
	return m, nil
}

func (m *Mongo) insertLoop() {
	defer close(m.done)
	for rec := range m.inserts {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := m.coll.InsertOne(ctx, rec); err != nil {
			logx.Warn("history: insert round for game %04x failed: %v", rec.GameID, err)
		}
		cancel()
	}
}

// Close stops accepting new rounds, drains the insert queue, and
// disconnects from Mongo.
func (m *Mongo) Close() {
	close(m.inserts)
	<-m.done
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.cli.Disconnect(ctx)
}

func (m *Mongo) RoundStarted(gameID uint16, dealer, prevailingWind, honba int) {
	m.round++
	m.cur = &RoundRecord{
		GameID:         gameID,
		RoundNumber:    m.round,
		Dealer:         dealer,
		PrevailingWind: prevailingWind,
		Honba:          honba,
		StartedAt:      time.Now(),
	}
}

func (m *Mongo) Event(eventType string, seat int, data map[string]any) {
	if m.cur == nil {
		return
	}
	m.cur.Events = append(m.cur.Events, RoundEvent{Type: eventType, Seat: seat, Data: data, Timestamp: time.Now()})
}

// RoundEnded hands the finished round to the insert queue (fire-and-forget,
// per §4.10), so a slow or unreachable Mongo never stalls the engine
// thread. A full queue drops the record rather than blocking the caller.
func (m *Mongo) RoundEnded(deltas [4]int, endType string) {
	if m.cur == nil {
		return
	}
	rec := *m.cur
	rec.Deltas = deltas
	rec.EndType = endType
	rec.EndedAt = time.Now()
	m.cur = nil

	select {
	case m.inserts <- rec:
	default:
		logx.Warn("history: insert queue full, dropping round for game %04x", rec.GameID)
	}
}

// Noop is the degrade-mode Sink used when no Mongo URL is configured.
type Noop struct{}

func (Noop) RoundStarted(uint16, int, int, int) {}
func (Noop) Event(string, int, map[string]any)  {}
func (Noop) RoundEnded([4]int, string)          {}

// New dials Mongo when cfg.Url is set, otherwise returns a Noop sink —
// match history degrades silently rather than blocking startup.
func New(cfg config.Mongo) Sink {
	if cfg.Url == "" {
		return Noop{}
	}
	m, err := Connect(cfg)
	if err != nil {
		logx.Warn("history: mongo connect failed, falling back to no-op: %v", err)
		return Noop{}
	}
	return m
}
