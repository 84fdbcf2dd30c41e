package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/anyoshi/bingo-live/game"
)

// DefaultSubject is the NATS subject committed state is relayed on.
const DefaultSubject = "bingo.state"

// relayMessage carries the committed document plus the writer's node id so
// a node can skip its own publishes; the wrapped store already notified
// local subscribers on the save path.
type relayMessage struct {
	NodeID string      `json:"nodeId"`
	State  *game.State `json:"state"`
}

// Relay extends a Watcher store across server instances over NATS. Every
// committed save is published on a subject; messages from other nodes are
// delivered to local subscribers as if they were local commits. A denied
// subscription surfaces as *PermissionError since the session would stop
// receiving remote updates.
type Relay struct {
	inner  Store
	watch  Watcher
	nc     *nats.Conn
	subj   string
	nodeID string
	log    *zap.SugaredLogger
}

// NewRelay wraps inner. When inner also implements Watcher, its local
// notifications are forwarded to subscribers as well.
func NewRelay(inner Store, nc *nats.Conn, subject string, log *zap.SugaredLogger) *Relay {
	if subject == "" {
		subject = DefaultSubject
	}
	w, _ := inner.(Watcher)
	return &Relay{
		inner:  inner,
		watch:  w,
		nc:     nc,
		subj:   subject,
		nodeID: uuid.NewString(),
		log:    log,
	}
}

func (r *Relay) Load(ctx context.Context) (*game.State, error) {
	return r.inner.Load(ctx)
}

func (r *Relay) Save(ctx context.Context, s *game.State, initial bool) error {
	if err := r.inner.Save(ctx, s, initial); err != nil {
		return err
	}
	msg, err := json.Marshal(relayMessage{NodeID: r.nodeID, State: s})
	if err != nil {
		// Committed locally; a relay encoding failure is not a save failure.
		r.log.Warnf("relay encode failed: %v", err)
		return nil
	}
	if err := r.nc.Publish(r.subj, msg); err != nil {
		r.log.Warnf("relay publish failed: %v", err)
	}
	return nil
}

func (r *Relay) Subscribe(onChange func(*game.State), onError func(error)) (func(), error) {
	var cancelInner func()
	if r.watch != nil {
		var err error
		cancelInner, err = r.watch.Subscribe(onChange, onError)
		if err != nil {
			return nil, err
		}
	}

	sub, err := r.nc.Subscribe(r.subj, func(m *nats.Msg) {
		r.handleMessage(m.Data, onChange)
	})
	if err != nil {
		if cancelInner != nil {
			cancelInner()
		}
		perr := &PermissionError{Err: err}
		if onError != nil {
			onError(perr)
		}
		return nil, perr
	}

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			r.log.Warnf("relay unsubscribe: %v", err)
		}
		if cancelInner != nil {
			cancelInner()
		}
	}, nil
}

// handleMessage decodes one relayed commit and hands it to the subscriber.
// The node's own publishes are skipped: the wrapped store already notified
// local subscribers when the save committed.
func (r *Relay) handleMessage(data []byte, onChange func(*game.State)) {
	var msg relayMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		r.log.Warnf("relay: dropping malformed message: %v", err)
		return
	}
	if msg.NodeID == r.nodeID || msg.State == nil {
		return
	}
	if msg.State.RegisteredCards == nil {
		msg.State.RegisteredCards = map[string][]int{}
	}
	onChange(msg.State)
}

// Connect dials the NATS server with the reconnect options used across
// deployments.
func Connect(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("bingo-live"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
	}
	return nats.Connect(url, opts...)
}
