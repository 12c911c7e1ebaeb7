package game

// StandardLayout returns the opening position for both players.
// Each side fills a 3 column x 17 row block along its edge of the 18x18 grid,
// numbered 1..51 row-major. Player 1 pieces come first, then player 2.
func StandardLayout() []*Piece {
	pieces := make([]*Piece, 0, 2*PiecesPerPlayer)
	pieces = appendBlock(pieces, Player1, Player1Column)
	pieces = appendBlock(pieces, Player2, Player2Column)
	return pieces
}

func appendBlock(pieces []*Piece, player, firstColumn int) []*Piece {
	num := 1
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			x := float64(firstColumn+c) * Grid
			y := float64(1+r) * Grid
			pieces = append(pieces, NewPiece(player, num, x, y))
			num++
		}
	}
	return pieces
}
