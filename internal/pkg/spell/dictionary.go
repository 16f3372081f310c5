package spell

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// loadDictionary reads a frequency table of "term count" lines, the format
// of the SymSpell english dictionary. Malformed lines are skipped.
func loadDictionary(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frequency dictionary %s: %w", path, err)
	}
	defer f.Close()

	words := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		count, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		words[strings.ToLower(fields[0])] = count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read frequency dictionary %s: %w", path, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("frequency dictionary %s contains no entries", path)
	}

	return words, nil
}

// editDistance computes the optimal string alignment distance (Levenshtein
// with adjacent transpositions) between a and b, capped at max. It returns
// max+1 when the distance exceeds the cap.
func editDistance(a, b string, max int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la-lb > max || lb-la > max {
		return max + 1
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		best := curr[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := prev2[j-2] + 1; t < d {
					d = t
				}
			}
			curr[j] = d
			if d < best {
				best = d
			}
		}
		if best > max {
			return max + 1
		}
		prev2, prev, curr = prev, curr, prev2
	}

	return prev[lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// deletes generates every variant of term with up to depth characters
// removed, the SymSpell precalculation. The term itself is included.
func deletes(term string, depth int) []string {
	seen := map[string]struct{}{term: {}}
	frontier := []string{term}

	for d := 0; d < depth; d++ {
		var next []string
		for _, t := range frontier {
			runes := []rune(t)
			if len(runes) <= 1 {
				continue
			}
			for i := range runes {
				v := string(runes[:i]) + string(runes[i+1:])
				if _, ok := seen[v]; !ok {
					seen[v] = struct{}{}
					next = append(next, v)
				}
			}
		}
		frontier = next
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	return out
}

// prefix truncates a term to the first n runes, the SymSpell prefix
// optimization that keeps the delete index small.
func prefix(term string, n int) string {
	runes := []rune(term)
	if len(runes) <= n {
		return term
	}
	return string(runes[:n])
}
