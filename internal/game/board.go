package game

// Mark is the content of a single cell.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Size is the number of cells on the board.
const Size = 9

// Board is a 3x3 grid stored row-major: index = row*3 + col.
// Board is a value type, so assigning it copies the cells.
type Board [Size]Mark

// WinCombos - every row, column and diagonal, in the order they are checked.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// CalculateWinner - returns the mark owning a full line, or Empty.
func CalculateWinner(board Board) Mark {
	if line, ok := WinningLine(board); ok {
		return board[line[0]]
	}

	return Empty
}

// WinningLine - returns the first line fully occupied by one mark.
func WinningLine(board Board) ([3]int, bool) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != Empty && a == b && b == c {
			return combo, true
		}
	}

	return [3]int{}, false
}

// IsFull reports whether no empty cell is left.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// Count returns the number of occupied cells.
func (that Board) Count() int {
	n := 0
	for _, cell := range that {
		if cell != Empty {
			n++
		}
	}

	return n
}

func (that Mark) valid() bool {
	return that == Empty || that == X || that == O
}

func validCell(cell int) bool {
	return cell >= 0 && cell < Size
}
