package renderer

// LongestIncreasingSubsequence returns the positions of a longest strictly
// increasing subsequence of seq, ascending. Zero entries mean "no old
// counterpart" and never join the subsequence.
//
// The children diff stores old-index+1 per new position; the returned
// positions are the nodes that already sit in order and need no move.
func LongestIncreasingSubsequence(seq []int) []int {
	// tails[k] is the position of the smallest tail of an increasing run
	// of length k+1; prev links each position to its predecessor.
	prev := make([]int, len(seq))
	tails := make([]int, 0, len(seq))

	for i, v := range seq {
		if v == 0 {
			continue
		}
		if n := len(tails); n == 0 || seq[tails[n-1]] < v {
			if n > 0 {
				prev[i] = tails[n-1]
			}
			tails = append(tails, i)
			continue
		}

		lo, hi := 0, len(tails)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < seq[tails[lo]] {
			if lo > 0 {
				prev[i] = tails[lo-1]
			}
			tails[lo] = i
		}
	}

	out := make([]int, len(tails))
	if len(tails) == 0 {
		return out
	}
	p := tails[len(tails)-1]
	for k := len(tails) - 1; k >= 0; k-- {
		out[k] = p
		p = prev[p]
	}
	return out
}
