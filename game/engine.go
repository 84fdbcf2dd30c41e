package game

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// NewState builds a fresh game: a full uniform permutation of [1..poolMax]
// as the draw stack, no drawn balls, no winner, and a copy of the given
// cards attached. Cards are not re-validated against the new range; numbers
// that fall outside it simply can never be drawn.
func NewState(poolMax int, cards map[string][]int) *State {
	if poolMax <= 0 {
		poolMax = DefaultPoolMax
	}
	pool := make([]int, poolMax)
	for i := range pool {
		pool[i] = i + 1
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	// Copied so the new game never shares card storage with the state it
	// was derived from.
	copied := make(map[string][]int, len(cards))
	for id, numbers := range cards {
		copied[id] = append([]int(nil), numbers...)
	}
	return &State{
		PoolMax:         poolMax,
		RemainingPool:   pool,
		DrawnBalls:      []int{},
		WinnerFound:     false,
		WinnerCardID:    "",
		RegisteredCards: copied,
	}
}

// DrawOutcome describes a single draw.
type DrawOutcome struct {
	// Ball is the number drawn, 0 when the pool was already empty.
	Ball int
	// Exhausted is set when the draw found an empty pool and closed the
	// game with no winner.
	Exhausted bool
}

// DrawOne takes the next ball off the pool, appends it to the drawn
// sequence and runs winner detection. Preconditions, in order: a finished
// game rejects the draw with ErrWinnerAlreadyFound; an empty pool flips the
// game into its terminal no-winner form and reports Exhausted. The caller
// persists the mutated state.
func DrawOne(s *State) (DrawOutcome, error) {
	if s.WinnerFound {
		return DrawOutcome{}, ErrWinnerAlreadyFound
	}
	if len(s.RemainingPool) == 0 {
		s.WinnerFound = true
		return DrawOutcome{Exhausted: true}, nil
	}

	last := len(s.RemainingPool) - 1
	ball := s.RemainingPool[last]
	s.RemainingPool = s.RemainingPool[:last]
	s.DrawnBalls = append(s.DrawnBalls, ball)

	if id, ok := findWinner(s); ok {
		s.WinnerFound = true
		s.WinnerCardID = id
	}
	return DrawOutcome{Ball: ball}, nil
}

// findWinner returns the first card, by sorted card id, whose every number
// appears among the drawn balls. Sorted order keeps the result
// deterministic across processes; the document's JSON map carries no
// registration order.
func findWinner(s *State) (string, bool) {
	if len(s.RegisteredCards) == 0 {
		return "", false
	}
	drawn := make(map[int]bool, len(s.DrawnBalls))
	for _, n := range s.DrawnBalls {
		drawn[n] = true
	}

	ids := make([]string, 0, len(s.RegisteredCards))
	for id := range s.RegisteredCards {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		complete := true
		for _, n := range s.RegisteredCards[id] {
			if !drawn[n] {
				complete = false
				break
			}
		}
		if complete {
			return id, true
		}
	}
	return "", false
}

// NewCardID generates a synthetic card identifier. The small random suffix
// matches what participants are used to reading out; collisions fall into
// the overwrite-confirmation path like any other duplicate id.
func NewCardID() string {
	return fmt.Sprintf("PC-%d", rand.Intn(9999)+1)
}

// RegisterCard validates and inserts a card. An empty id gets a synthetic
// one. Registering an id that already exists requires overwrite to be set;
// otherwise the call fails with ErrCardExists so the caller can run its
// confirmation flow. The final card id is returned on success.
func RegisterCard(s *State, id string, numbers []int, overwrite bool) (string, error) {
	if id == "" {
		id = NewCardID()
	}
	if len(numbers) == 0 {
		return id, rangeError(s.PoolMax)
	}
	seen := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if n < 1 || n > s.PoolMax {
			return id, rangeError(s.PoolMax)
		}
		if seen[n] {
			return id, duplicateError()
		}
		seen[n] = true
	}
	if _, exists := s.RegisteredCards[id]; exists && !overwrite {
		return id, ErrCardExists
	}
	s.RegisteredCards[id] = append([]int(nil), numbers...)
	return id, nil
}

// Reconfigure rebuilds the game for a new pool size, keeping registered
// cards. When balls were already drawn the change is destructive and must
// be confirmed by the caller first.
func Reconfigure(s *State, newPoolMax int, confirmed bool) (*State, error) {
	if !SupportedPoolSize(newPoolMax) {
		return nil, ErrUnsupportedPoolSize
	}
	if len(s.DrawnBalls) > 0 && !confirmed {
		return nil, ErrConfirmRequired
	}
	return NewState(newPoolMax, s.RegisteredCards), nil
}

// Reset rebuilds the game with the same pool size. Cards survive only when
// keepCards is set.
func Reset(s *State, keepCards bool) *State {
	cards := map[string][]int{}
	if keepCards {
		cards = s.RegisteredCards
	}
	return NewState(s.PoolMax, cards)
}
