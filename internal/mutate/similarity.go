package mutate

// Similarity computes the classic sequence-matcher ratio between two
// strings: 2*M/T where M is the total length of matched blocks and T the
// combined length. 1.0 means identical, 0.0 means nothing in common.
func Similarity(a, b string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := matchingTotal([]byte(a), []byte(b))
	return 2.0 * float64(matched) / float64(total)
}

// matchingTotal sums the lengths of matching blocks: find the longest common
// substring, then recurse into the unmatched regions on either side.
func matchingTotal(a, b []byte) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	bestI, bestJ, bestLen := longestMatch(a, b)
	if bestLen == 0 {
		return 0
	}

	return bestLen +
		matchingTotal(a[:bestI], b[:bestJ]) +
		matchingTotal(a[bestI+bestLen:], b[bestJ+bestLen:])
}

func longestMatch(a, b []byte) (int, int, int) {
	// lengths[j] holds the match length ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)
	bestI, bestJ, bestLen := 0, 0, 0

	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestLen {
					bestLen = lengths[j]
					bestI = i - bestLen
					bestJ = j - bestLen
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestI, bestJ, bestLen
}
