package chess

import (
	"math/rand"
	"slices"
	"testing"

	nchess "github.com/corentings/chess/v2"
)

// Random games are played through both this package and corentings/chess,
// comparing legal move sets, SAN and terminal states ply by ply.
func TestRandomGamesMatchReferenceLibrary(t *testing.T) {
	games := 40
	if testing.Short() {
		games = 5
	}
	rng := rand.New(rand.NewSource(1729))
	for g := 0; g < games; g++ {
		ref := nchess.NewGame()
		s := NewSession()
		for ply := 0; ply < 200; ply++ {
			if ref.Outcome() != nchess.NoOutcome || s.Status().IsOver() {
				break
			}
			refPos := ref.Position()

			var want []string
			for _, mv := range ref.ValidMoves() {
				want = append(want, nchess.UCINotation{}.Encode(refPos, &mv))
			}
			var got []string
			moves := s.LegalMoves()
			for _, mv := range moves {
				got = append(got, mv.String())
			}
			slices.Sort(want)
			slices.Sort(got)
			if !slices.Equal(got, want) {
				t.Fatalf("game %d ply %d %s\n got %v\nwant %v", g, ply, s.Position().FEN(), got, want)
			}

			mv := moves[rng.Intn(len(moves))]
			refMove, err := nchess.UCINotation{}.Decode(refPos, mv.String())
			if err != nil {
				t.Fatalf("reference decode %s: %v", mv, err)
			}
			wantSAN := nchess.AlgebraicNotation{}.Encode(refPos, refMove)
			res, err := s.Play(mv)
			if err != nil {
				t.Fatalf("Play(%s): %v", mv, err)
			}
			if res.SAN != wantSAN {
				t.Fatalf("game %d ply %d SAN = %q, want %q", g, ply, res.SAN, wantSAN)
			}
			if err := ref.Move(refMove, nil); err != nil {
				t.Fatalf("reference move %s: %v", mv, err)
			}
		}

		st := s.Status()
		if st.Checkmate != (ref.Method() == nchess.Checkmate) {
			t.Fatalf("game %d checkmate mismatch: ours %+v, reference %s", g, st, ref.Method())
		}
		if st.Stalemate != (ref.Method() == nchess.Stalemate) {
			t.Fatalf("game %d stalemate mismatch: ours %+v, reference %s", g, st, ref.Method())
		}
	}
}
