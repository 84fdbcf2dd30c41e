package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/anyoshi/bingo-live/game"
	"github.com/anyoshi/bingo-live/store"
)

// Session owns the working copy of the shared game and fans committed
// state out to connected viewers. All user intents are serialized under
// one mutex, so a second draw can never start while a prior save is in
// flight.
//
// With a Watcher store the session broadcasts only from change
// notifications (write-then-notify is the only update path, and remote
// writers' commits arrive the same way). Without one it broadcasts right
// after each of its own saves.
type Session struct {
	st      store.Store
	watch   bool
	auto    *AutoDraw
	poolMax int
	log     *zap.SugaredLogger

	// intentMu serializes user intents; stateMu guards the working copy,
	// which change notifications replace from the writer's goroutine.
	intentMu sync.Mutex
	stateMu  sync.RWMutex
	state    *game.State

	clientsMu sync.RWMutex
	clients   map[string]*Client

	cancelSub func()
}

// NewSession wires a session over the given store. defaultPoolMax seeds
// the very first game when the store holds no document yet.
func NewSession(st store.Store, defaultPoolMax int, drawInterval time.Duration, clock clockwork.Clock, log *zap.SugaredLogger) *Session {
	if defaultPoolMax <= 0 {
		defaultPoolMax = game.DefaultPoolMax
	}
	return &Session{
		st:      st,
		auto:    NewAutoDraw(clock, drawInterval),
		poolMax: defaultPoolMax,
		log:     log,
		clients: make(map[string]*Client),
	}
}

// Start loads or initializes the shared document and, when the store
// supports it, attaches the live-update subscription. A denied
// subscription is surfaced but does not kill the session: intents still
// work, only remote changes stop arriving.
func (s *Session) Start(ctx context.Context) error {
	st, err := s.st.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Infof("no game document found, initializing with pool size %d", s.poolMax)
		st = game.NewState(s.poolMax, nil)
		if err := s.st.Save(ctx, st, true); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()

	if w, ok := s.st.(store.Watcher); ok {
		cancel, err := w.Subscribe(s.onChange, s.onStoreError)
		if err != nil {
			var perr *store.PermissionError
			if errors.As(err, &perr) {
				s.log.Errorf("live updates unavailable: %v", perr)
			} else {
				return err
			}
		} else {
			s.watch = true
			s.cancelSub = cancel
		}
	}
	return nil
}

// Stop cancels the auto-draw run and the store subscription.
func (s *Session) Stop() {
	s.auto.Stop()
	if s.cancelSub != nil {
		s.cancelSub()
		s.cancelSub = nil
	}
}

// onChange installs a committed document as the new working copy. Fires
// for this session's own saves as well as remote writers'.
func (s *Session) onChange(st *game.State) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()

	// A winner declared by a remote writer cancels the local auto-draw.
	if st.WinnerFound {
		s.auto.Stop()
	}
	s.broadcastState(st.Clone())
}

func (s *Session) onStoreError(err error) {
	var perr *store.PermissionError
	if errors.As(err, &perr) {
		s.log.Errorf("live updates lost: %v", perr)
		s.broadcastError("Live updates are no longer available. Check store access rules.")
		return
	}
	s.log.Errorf("store subscription error: %v", err)
	s.broadcastError("Lost connection to the game store.")
}

// State returns a copy of the current document.
func (s *Session) State() *game.State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.Clone()
}

// AutoDrawRunning reports whether the scheduler is active.
func (s *Session) AutoDrawRunning() bool {
	return s.auto.Running()
}

// commit persists a mutated working copy. The in-memory copy only advances
// when the save succeeded; a failed save leaves the session on the last
// committed document.
func (s *Session) commit(ctx context.Context, st *game.State) error {
	if err := s.st.Save(ctx, st, false); err != nil {
		return err
	}
	if !s.watch {
		// No notification path: install and broadcast directly.
		s.stateMu.Lock()
		s.state = st
		s.stateMu.Unlock()
		s.broadcastState(st.Clone())
	}
	return nil
}

// DrawOne performs one draw and persists the result.
func (s *Session) DrawOne(ctx context.Context) (*game.State, game.DrawOutcome, error) {
	s.intentMu.Lock()
	defer s.intentMu.Unlock()

	working := s.State()
	out, err := game.DrawOne(working)
	if err != nil {
		return nil, out, err
	}
	if err := s.commit(ctx, working); err != nil {
		return nil, out, err
	}
	if working.WinnerFound {
		s.auto.Stop()
		if working.WinnerCardID != "" {
			s.log.Infof("winner: card %s after %d balls", working.WinnerCardID, len(working.DrawnBalls))
		} else {
			s.log.Infof("pool exhausted after %d balls, no winner", len(working.DrawnBalls))
		}
	}
	return working, out, nil
}

// ToggleAutoDraw starts the scheduler, or stops it when running. Returns
// whether it is running afterwards. Starting a finished game is rejected.
func (s *Session) ToggleAutoDraw() (bool, error) {
	if s.auto.Running() {
		s.auto.Stop()
		return false, nil
	}
	if s.State().WinnerFound {
		return false, game.ErrWinnerAlreadyFound
	}
	return s.auto.Start(s.autoTick), nil
}

// autoTick is one scheduler beat. Terminal outcomes end the run;
// persistence failures are surfaced and the next tick retries by
// re-issuing the intent.
func (s *Session) autoTick() bool {
	st, _, err := s.DrawOne(context.Background())
	if err != nil {
		if errors.Is(err, game.ErrWinnerAlreadyFound) {
			return true
		}
		s.log.Warnf("auto draw failed: %v", err)
		return false
	}
	return st.WinnerFound || len(st.RemainingPool) == 0
}

// RegisterCard validates and persists a card registration. overwrite must
// be set to replace an existing card id.
func (s *Session) RegisterCard(ctx context.Context, id string, numbers []int, overwrite bool) (string, error) {
	s.intentMu.Lock()
	defer s.intentMu.Unlock()

	working := s.State()
	cardID, err := game.RegisterCard(working, id, numbers, overwrite)
	if err != nil {
		return cardID, err
	}
	if err := s.commit(ctx, working); err != nil {
		return cardID, err
	}
	s.log.Infof("card %s registered (%d numbers)", cardID, len(numbers))
	return cardID, nil
}

// ChangeConfiguration switches the pool size, restarting the game.
// confirmed must be set when balls were already drawn.
func (s *Session) ChangeConfiguration(ctx context.Context, newPoolMax int, confirmed bool) (*game.State, error) {
	s.intentMu.Lock()
	defer s.intentMu.Unlock()

	working := s.State()
	next, err := game.Reconfigure(working, newPoolMax, confirmed)
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	s.log.Infof("reconfigured to %d balls, game restarted", newPoolMax)
	return next, nil
}

// ResetGame restarts the game with the same pool size, keeping cards only
// when keepCards is set.
func (s *Session) ResetGame(ctx context.Context, keepCards bool) (*game.State, error) {
	s.intentMu.Lock()
	defer s.intentMu.Unlock()

	next := game.Reset(s.State(), keepCards)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	s.log.Infof("game reset (keepCards=%v)", keepCards)
	return next, nil
}

// Progress reports per-card analysis for the current game.
func (s *Session) Progress() []game.CardProgress {
	return game.Progress(s.State())
}

// -------------------- client fan-out --------------------

type stateEnvelope struct {
	Type     string      `json:"type"`
	State    *game.State `json:"state"`
	AutoDraw bool        `json:"autoDraw"`
}

type messageEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (s *Session) addClient(c *Client) {
	s.clientsMu.Lock()
	if old, ok := s.clients[c.id]; ok {
		old.Close()
	}
	s.clients[c.id] = c
	total := len(s.clients)
	s.clientsMu.Unlock()

	go c.writePump()
	go c.readPump()

	s.log.Infof("viewer %s connected (total=%d)", c.id, total)

	// New viewers get the current document immediately.
	b, err := json.Marshal(stateEnvelope{Type: "state", State: s.State(), AutoDraw: s.auto.Running()})
	if err == nil {
		c.trySend(b)
	}
}

func (s *Session) removeClient(id string) {
	s.clientsMu.Lock()
	if c, ok := s.clients[id]; ok {
		delete(s.clients, id)
		c.Close()
	}
	total := len(s.clients)
	s.clientsMu.Unlock()
	s.log.Infof("viewer %s disconnected (total=%d)", id, total)
}

func (s *Session) snapshotClients() []*Client {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	out := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

func (s *Session) broadcastState(st *game.State) {
	b, err := json.Marshal(stateEnvelope{Type: "state", State: st, AutoDraw: s.auto.Running()})
	if err != nil {
		s.log.Errorf("marshal state broadcast: %v", err)
		return
	}
	for _, c := range s.snapshotClients() {
		if !c.trySend(b) {
			s.log.Warnf("dropping state update to viewer %s", c.id)
		}
	}
}

func (s *Session) broadcastError(msg string) {
	b, _ := json.Marshal(messageEnvelope{Type: "error", Message: msg})
	for _, c := range s.snapshotClients() {
		c.trySend(b)
	}
}

func (s *Session) notifyClient(c *Client, msg string) {
	b, _ := json.Marshal(messageEnvelope{Type: "notification", Message: msg})
	if !c.trySend(b) {
		s.log.Warnf("dropping notification to viewer %s", c.id)
	}
}
