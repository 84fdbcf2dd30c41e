package game

import "sort"

// CardProgress summarizes how close one card is to winning.
type CardProgress struct {
	CardID  string `json:"cardId"`
	Total   int    `json:"total"`
	Marked  int    `json:"marked"`
	Missing []int  `json:"missing"`
}

// Progress reports every registered card's marked and missing numbers,
// sorted by how few numbers remain (ties by card id). Drives the admin
// analysis panel: closest cards first, cards one number away easily
// filtered out by the caller.
func Progress(s *State) []CardProgress {
	drawn := make(map[int]bool, len(s.DrawnBalls))
	for _, n := range s.DrawnBalls {
		drawn[n] = true
	}

	out := make([]CardProgress, 0, len(s.RegisteredCards))
	for id, numbers := range s.RegisteredCards {
		p := CardProgress{CardID: id, Total: len(numbers), Missing: []int{}}
		for _, n := range numbers {
			if drawn[n] {
				p.Marked++
			} else {
				p.Missing = append(p.Missing, n)
			}
		}
		sort.Ints(p.Missing)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].Missing) != len(out[j].Missing) {
			return len(out[i].Missing) < len(out[j].Missing)
		}
		return out[i].CardID < out[j].CardID
	})
	return out
}
