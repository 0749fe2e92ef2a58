// Package bingo holds the pure pieces of a 75-ball bingo game: card
// generation, win detection, number draws and game codes.
package bingo

import (
	"errors"
	"math/rand/v2"
	"strconv"
)

const (
	// Size is the width and height of a card.
	Size = 5
	// ColumnSpan is how many numbers belong to each column.
	ColumnSpan = 15
	// MaxNumber is the highest number that can be drawn.
	MaxNumber = Size * ColumnSpan

	center = Size / 2
)

// Rand is the subset of *rand.Rand the package draws from.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the math/rand/v2 global source.
var DefaultRand Rand = globalRand{}

// Cell is one square of a card. The zero value is the free center square.
type Cell int

// Free marks the center square.
const Free Cell = 0

const freeLabel = "FREE"

func (c Cell) MarshalJSON() ([]byte, error) {
	if c == Free {
		return []byte(`"` + freeLabel + `"`), nil
	}
	return strconv.AppendInt(nil, int64(c), 10), nil
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == `"`+freeLabel+`"` {
		*c = Free
		return nil
	}
	value, err := strconv.Atoi(string(data))
	if err != nil {
		return errors.New("cell must be a number or FREE")
	}
	*c = Cell(value)
	return nil
}

// Card is a player's grid, indexed [row][col].
type Card struct {
	Numbers [Size][Size]Cell `json:"numbers"`
	Marked  [Size][Size]bool `json:"marked"`
}

// ColumnRange returns the inclusive number range of a column.
func ColumnRange(col int) (int, int) {
	low := col*ColumnSpan + 1
	return low, low + ColumnSpan - 1
}

// NewCard samples five distinct numbers per column from that column's range,
// keeping sampling order top to bottom, and frees the center square.
func NewCard(r Rand) *Card {
	if r == nil {
		r = DefaultRand
	}
	card := &Card{}
	for col := 0; col < Size; col++ {
		low, _ := ColumnRange(col)
		seen := make(map[int]struct{}, Size)
		row := 0
		for row < Size {
			n := low + r.IntN(ColumnSpan)
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			card.Numbers[row][col] = Cell(n)
			row++
		}
	}
	card.Numbers[center][center] = Free
	card.Marked[center][center] = true
	return card
}

// InBounds reports whether row and col address a cell.
func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// Cell returns the value at row, col.
func (c *Card) Cell(row, col int) Cell {
	return c.Numbers[row][col]
}

// Bingo reports whether the card's marks complete a line.
func (c *Card) Bingo() bool {
	return HasBingo(c.Marked)
}
