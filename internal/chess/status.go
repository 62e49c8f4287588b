package chess

// Outcome is the result of a game, in PGN result notation.
type Outcome string

const (
	NoOutcome Outcome = "*"
	WhiteWon  Outcome = "1-0"
	BlackWon  Outcome = "0-1"
	Draw      Outcome = "1/2-1/2"
)

func (o Outcome) String() string { return string(o) }

// Method is how an outcome (or a claimable draw) came about.
type Method uint8

const (
	NoMethod Method = iota
	Checkmate
	Stalemate
	InsufficientMaterial
	// ThreefoldRepetition and FiftyMoveRule only end the game when claimed.
	ThreefoldRepetition
	FiftyMoveRule
	// FivefoldRepetition and SeventyFiveMoveRule end the game automatically
	// unless the session disables automatic draws.
	FivefoldRepetition
	SeventyFiveMoveRule
)

var methodNames = [...]string{
	NoMethod:             "",
	Checkmate:            "checkmate",
	Stalemate:            "stalemate",
	InsufficientMaterial: "insufficient_material",
	ThreefoldRepetition:  "threefold_repetition",
	FiftyMoveRule:        "fifty_move_rule",
	FivefoldRepetition:   "fivefold_repetition",
	SeventyFiveMoveRule:  "seventy_five_move_rule",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "unknown"
}

// ParseMethod is the inverse of Method.String.
func ParseMethod(s string) (Method, bool) {
	for i, name := range methodNames {
		if name == s && name != "" {
			return Method(i), true
		}
	}
	return NoMethod, false
}

const (
	threefoldCount   = 3
	fivefoldCount    = 5
	fiftyMovePlies   = 100
	seventyFivePlies = 150
)

// Status classifies a position within its game. It is always computed from
// scratch by Evaluate and never updated in place.
type Status struct {
	Turn                 Color
	InCheck              bool
	Checkmate            bool
	Stalemate            bool
	InsufficientMaterial bool

	// RepetitionCount is how many times the current position key has
	// occurred in the game, the current occurrence included.
	RepetitionCount   int
	CanClaimThreefold bool
	CanClaimFiftyMove bool

	FivefoldRepetition  bool
	SeventyFiveMoveRule bool

	// DrawClaimed is set by the session after a successful draw claim.
	DrawClaimed bool

	Outcome Outcome
	Method  Method
}

// IsOver reports whether the game has ended.
func (s Status) IsOver() bool { return s.Outcome != NoOutcome }

// Winner returns the winning color; ok is false unless the game was won.
func (s Status) Winner() (c Color, ok bool) {
	switch s.Outcome {
	case WhiteWon:
		return White, true
	case BlackWon:
		return Black, true
	default:
		return White, false
	}
}

// ClaimableDraws lists the draw methods the side to move may claim now.
func (s Status) ClaimableDraws() []Method {
	if s.IsOver() {
		return nil
	}
	var out []Method
	if s.CanClaimThreefold {
		out = append(out, ThreefoldRepetition)
	}
	if s.CanClaimFiftyMove {
		out = append(out, FiftyMoveRule)
	}
	return out
}

// Evaluate computes the status of pos given how many times its key has been
// seen in the game. Precedence: checkmate, stalemate, insufficient
// material, then (when automaticDraws is set) fivefold repetition and the
// seventy-five-move rule. Threefold repetition and the fifty-move rule are
// only reported as claimable.
func Evaluate(pos Position, repetitions int, automaticDraws bool) Status {
	st := Status{
		Turn:            pos.turn,
		InCheck:         pos.InCheck(),
		RepetitionCount: repetitions,
		Outcome:         NoOutcome,
	}
	hasMove := HasLegalMove(pos)
	st.Checkmate = st.InCheck && !hasMove
	st.Stalemate = !st.InCheck && !hasMove
	st.InsufficientMaterial = HasInsufficientMaterial(pos)
	st.CanClaimThreefold = repetitions >= threefoldCount
	st.CanClaimFiftyMove = pos.halfmove >= fiftyMovePlies
	st.FivefoldRepetition = repetitions >= fivefoldCount
	st.SeventyFiveMoveRule = pos.halfmove >= seventyFivePlies

	switch {
	case st.Checkmate:
		st.Method = Checkmate
		st.Outcome = WhiteWon
		if pos.turn == White {
			st.Outcome = BlackWon
		}
	case st.Stalemate:
		st.Outcome, st.Method = Draw, Stalemate
	case st.InsufficientMaterial:
		st.Outcome, st.Method = Draw, InsufficientMaterial
	case automaticDraws && st.FivefoldRepetition:
		st.Outcome, st.Method = Draw, FivefoldRepetition
	case automaticDraws && st.SeventyFiveMoveRule:
		st.Outcome, st.Method = Draw, SeventyFiveMoveRule
	}
	return st
}
