// internal/game/types.go
//
// Core type definitions for the hangman engine.
// Defines:
//   - Phase: coarse round status (in_progress/won/lost).
//   - Round: state for a single in-progress or finished round.
//   - Guess: per-call outcome of SubmitGuess.
//   - View: derived display of a round (masked word, letter partitions).

package game

// Phase represents the coarse status of a round.
// Possible values:
//   - "in_progress": the round accepts further guesses.
//   - "won":         every distinct letter of the word has been guessed.
//   - "lost":        the wrong-guess count reached MaxWrong.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseWon        Phase = "won"
	PhaseLost       Phase = "lost"
)

// Round holds the state of a single hangman round.
type Round struct {
	ID      string // Unique round identifier (random hex string).
	Word    string // The target word (always uppercase A-Z).
	Guessed []rune // Guessed letters in submission order.
	Wrong   int    // Wrong guesses so far (0..MaxWrong).
	Phase   Phase  // Derived status, recomputed on every applied guess.
}

// Guess is the outcome of a single SubmitGuess call.
// Applied is false for no-op submissions (repeated letter, non-letter
// input, or a round already in a terminal phase).
type Guess struct {
	Applied  bool
	Correct  bool   // letter occurs in the word (meaningful when Applied)
	Phase    Phase  // phase after the call
	Revealed string // the word, set only when this guess lost the round
}

// View is the display projection of a round. Masked shows the word with
// unguessed positions as underscores, space-separated. Correct and
// Incorrect partition the guessed letters, preserving submission order.
type View struct {
	Masked    string
	Correct   []string
	Incorrect []string
}
