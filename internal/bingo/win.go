package bingo

// HasBingo reports whether any row, column or either diagonal is fully marked.
func HasBingo(marked [Size][Size]bool) bool {
	for i := 0; i < Size; i++ {
		row, col := true, true
		for j := 0; j < Size; j++ {
			row = row && marked[i][j]
			col = col && marked[j][i]
		}
		if row || col {
			return true
		}
	}
	diag, anti := true, true
	for i := 0; i < Size; i++ {
		diag = diag && marked[i][i]
		anti = anti && marked[i][Size-1-i]
	}
	return diag || anti
}
