package game

// DefaultPoolMax is the pool size used when no configuration is given.
const DefaultPoolMax = 90

// PoolSizes are the supported pool configurations.
var PoolSizes = []int{75, 90}

// State is the single shared game document. The whole struct is persisted
// and replicated as one JSON value; remainingPool and drawnBalls partition
// the full range [1..poolMax] at all times.
type State struct {
	PoolMax         int              `json:"poolMax"`
	RemainingPool   []int            `json:"remainingPool"`
	DrawnBalls      []int            `json:"drawnBalls"`
	WinnerFound     bool             `json:"winnerFound"`
	WinnerCardID    string           `json:"winnerCardId"`
	RegisteredCards map[string][]int `json:"registeredCards"`
}

// Clone returns a deep copy. Sessions hand clones to the engine so a failed
// operation never leaves the shared working copy half-mutated.
func (s *State) Clone() *State {
	out := &State{
		PoolMax:         s.PoolMax,
		RemainingPool:   append([]int(nil), s.RemainingPool...),
		DrawnBalls:      append([]int(nil), s.DrawnBalls...),
		WinnerFound:     s.WinnerFound,
		WinnerCardID:    s.WinnerCardID,
		RegisteredCards: make(map[string][]int, len(s.RegisteredCards)),
	}
	for id, nums := range s.RegisteredCards {
		out.RegisteredCards[id] = append([]int(nil), nums...)
	}
	return out
}

// LastBall returns the most recently drawn ball, or 0 when nothing has been
// drawn yet.
func (s *State) LastBall() int {
	if len(s.DrawnBalls) == 0 {
		return 0
	}
	return s.DrawnBalls[len(s.DrawnBalls)-1]
}

// SupportedPoolSize reports whether max is one of the selectable sizes.
func SupportedPoolSize(max int) bool {
	for _, n := range PoolSizes {
		if n == max {
			return true
		}
	}
	return false
}
