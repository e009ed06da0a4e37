package game

import (
	"math/rand"
	"strings"
)

func shuffleStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// editDistance is plain Levenshtein over bytes, two rolling rows.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// isCloseGuess reports a near miss worth hinting at: one or two edits away
// and roughly the right length.
func isCloseGuess(guess, answer string) bool {
	g := strings.ToLower(strings.TrimSpace(guess))
	a := strings.ToLower(answer)
	if len(g) == 0 {
		return false
	}
	diff := len(g) - len(a)
	if diff < 0 {
		diff = -diff
	}
	if diff > 2 {
		return false
	}
	d := editDistance(g, a)
	return d >= 1 && d <= 2
}

// leaksAnswer flags a wrong guess that still gives the secret away, so it can
// be suppressed from the room chat.
func leaksAnswer(guess, answer string) bool {
	g := strings.ToLower(strings.TrimSpace(guess))
	a := strings.ToLower(answer)
	if g == "" {
		return false
	}
	return strings.Contains(g, a) || strings.Contains(a, g)
}
