package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allBoards enumerates every assignment of {Empty, X, O} to the nine cells.
func allBoards() []Board {
	marks := [3]Mark{Empty, X, O}
	boards := make([]Board, 0, 19683)

	for n := 0; n < 19683; n++ {
		var board Board
		v := n
		for cell := range board {
			board[cell] = marks[v%3]
			v /= 3
		}
		boards = append(boards, board)
	}

	return boards
}

// reachableBoards walks every position that legal play can produce.
func reachableBoards() []Board {
	seen := map[Board]bool{}
	var walk func(board Board)
	walk = func(board Board) {
		if seen[board] {
			return
		}
		seen[board] = true

		if CalculateWinner(board) != Empty {
			return
		}

		next := X
		if board.Count()%2 == 1 {
			next = O
		}
		for cell := range board {
			if board[cell] == Empty {
				child := board
				child[cell] = next
				walk(child)
			}
		}
	}
	walk(Board{})

	boards := make([]Board, 0, len(seen))
	for board := range seen {
		boards = append(boards, board)
	}

	return boards
}

func TestCalculateWinner(t *testing.T) {
	t.Run("Winner X on a column", func(t *testing.T) {
		// Given: X owns the left column
		board := Board{X, O, Empty, X, O, Empty, X, Empty, Empty}

		// When: checking for a winner
		winner := CalculateWinner(board)

		// Then: X wins
		require.Equal(t, X, winner)
	})

	t.Run("Winner O on the anti-diagonal", func(t *testing.T) {
		board := Board{X, X, O, Empty, O, X, O, Empty, Empty}

		assert.Equal(t, O, CalculateWinner(board))

		line, ok := WinningLine(board)
		require.True(t, ok)
		assert.Equal(t, [3]int{2, 4, 6}, line)
	})

	t.Run("Ongoing game", func(t *testing.T) {
		// Given: a board with no full line
		board := Board{X, O, X, Empty, O, Empty, X, Empty, Empty}

		// Then: there is no winner
		require.Equal(t, Empty, CalculateWinner(board))
	})

	t.Run("Empty board", func(t *testing.T) {
		assert.Equal(t, Empty, CalculateWinner(Board{}))

		_, ok := WinningLine(Board{})
		assert.False(t, ok)
	})

	t.Run("Every line wins for both marks", func(t *testing.T) {
		for _, mark := range []Mark{X, O} {
			for _, combo := range WinCombos {
				var board Board
				for _, cell := range combo {
					board[cell] = mark
				}

				assert.Equal(t, mark, CalculateWinner(board), "line %v", combo)
			}
		}
	})
}

func TestCalculateWinner_AllBoards(t *testing.T) {
	// Given: every possible board, reachable or not
	for _, board := range allBoards() {
		// When: the winner is calculated
		winner := CalculateWinner(board)

		// Then: a mark is returned only if it fills some line
		filled := map[Mark]bool{}
		for _, combo := range WinCombos {
			a := board[combo[0]]
			if a != Empty && a == board[combo[1]] && a == board[combo[2]] {
				filled[a] = true
			}
		}

		if winner == Empty {
			require.Empty(t, filled, "board %v", board)
			continue
		}
		require.True(t, filled[winner], "board %v", board)
	}
}

func TestCalculateWinner_OrderDoesNotMatterOnReachableBoards(t *testing.T) {
	for _, board := range reachableBoards() {
		// Given: the set of marks owning a full line
		owners := map[Mark]bool{}
		reversed := Empty
		for i := len(WinCombos) - 1; i >= 0; i-- {
			combo := WinCombos[i]
			a := board[combo[0]]
			if a != Empty && a == board[combo[1]] && a == board[combo[2]] {
				owners[a] = true
				reversed = a
			}
		}

		// Then: at most one mark can own a line, so evaluation order is irrelevant
		require.LessOrEqual(t, len(owners), 1, "board %v", board)
		require.Equal(t, CalculateWinner(board), reversed, "board %v", board)
	}
}

func TestStatusOf(t *testing.T) {
	t.Run("Terminal classifications are exclusive", func(t *testing.T) {
		for _, board := range reachableBoards() {
			next := X
			if board.Count()%2 == 1 {
				next = O
			}

			status := StatusOf(board, next)

			won := status.Outcome == Won
			draw := status.Outcome == Draw
			require.False(t, won && draw)

			if won {
				require.NotEqual(t, Empty, status.Winner)
				require.Equal(t, Empty, status.Next)
			}
			if draw {
				require.True(t, board.IsFull())
				require.Equal(t, Empty, CalculateWinner(board))
			}
			if !status.IsTerminal() {
				require.Equal(t, next, status.Next)
			}
		}
	})

	t.Run("Full board with a winner is a win", func(t *testing.T) {
		board := Board{X, X, X, O, O, X, X, O, O}

		status := StatusOf(board, O)

		assert.Equal(t, Status{Outcome: Won, Winner: X}, status)
		assert.Equal(t, "Winner: X", status.String())
	})

	t.Run("Status text", func(t *testing.T) {
		assert.Equal(t, "Next player: O", StatusOf(Board{X}, O).String())
		assert.Equal(t, "Draw: nobody won", Status{Outcome: Draw}.String())
	})
}

func TestBoard_IsFull(t *testing.T) {
	assert.False(t, Board{}.IsFull())
	assert.True(t, Board{X, O, X, X, O, O, O, X, X}.IsFull())
	assert.Equal(t, 9, Board{X, O, X, X, O, O, O, X, X}.Count())
}
