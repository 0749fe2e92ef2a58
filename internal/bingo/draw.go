package bingo

// Remaining lists the numbers from 1 to MaxNumber that are not in drawn.
func Remaining(drawn []int) []int {
	seen := make(map[int]struct{}, len(drawn))
	for _, n := range drawn {
		seen[n] = struct{}{}
	}
	out := make([]int, 0, MaxNumber-len(seen))
	for n := 1; n <= MaxNumber; n++ {
		if _, ok := seen[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// Draw picks a number uniformly from those not yet drawn. It returns false
// once every number has been drawn.
func Draw(drawn []int, r Rand) (int, bool) {
	if r == nil {
		r = DefaultRand
	}
	left := Remaining(drawn)
	if len(left) == 0 {
		return 0, false
	}
	return left[r.IntN(len(left))], true
}
