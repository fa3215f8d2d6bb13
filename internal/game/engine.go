// internal/game/engine.go
//
// Core engine for a single hangman round.
// Responsibilities:
//   - Create new rounds with a word drawn from the vocabulary.
//   - Apply letter guesses as explicit state transitions.
//   - Track phase transitions: in_progress → won/lost.
//
// Notes:
//   - The vocabulary is provided by the words package.
//   - Invalid and repeated guesses are no-ops, not errors; the round
//     also ignores guesses once it reaches a terminal phase.
//   - randomID() is a compact hex identifier for correlating server state.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/forca-futebol/go-server/internal/words"
)

// MaxWrong is the wrong-guess limit; reaching it loses the round.
const MaxWrong = 6

// New constructs a new round.
// If withWord is empty, a random word is drawn from the words package.
func New(withWord string) *Round {
	w := strings.ToUpper(strings.TrimSpace(withWord))
	if w == "" {
		w = words.RandomWord()
	}
	return &Round{
		ID:      randomID(),
		Word:    w,
		Guessed: []rune{},
		Phase:   PhaseInProgress,
	}
}

// SubmitGuess records a letter guess and recomputes the phase.
//
// No-op conditions (Applied=false, nothing changes):
//   - The round is already won or lost.
//   - The letter has been guessed before.
//   - The input does not normalize to A-Z.
//
// Otherwise the letter is appended to Guessed; if it does not occur in
// the word, Wrong is incremented. The phase is then recomputed: won when
// every distinct letter of the word has been guessed, lost when Wrong
// reaches MaxWrong. Losing the round sets Revealed to the word so the
// caller can surface it.
func (r *Round) SubmitGuess(letter rune) Guess {
	l := unicode.ToUpper(letter)
	if r.Phase != PhaseInProgress || l < 'A' || l > 'Z' || r.hasGuessed(l) {
		return Guess{Phase: r.Phase}
	}

	r.Guessed = append(r.Guessed, l)
	correct := strings.ContainsRune(r.Word, l)
	if !correct {
		r.Wrong++
	}

	out := Guess{Applied: true, Correct: correct}
	switch {
	case r.solved():
		r.Phase = PhaseWon
	case r.Wrong >= MaxWrong:
		r.Phase = PhaseLost
		out.Revealed = r.Word
	}
	out.Phase = r.Phase
	return out
}

// View derives the display projection of the round. Pure; no mutation.
func (r *Round) View() View {
	parts := make([]string, 0, len(r.Word))
	for _, c := range r.Word {
		if r.hasGuessed(c) {
			parts = append(parts, string(c))
		} else {
			parts = append(parts, "_")
		}
	}
	v := View{Masked: strings.Join(parts, " ")}
	for _, l := range r.Guessed {
		if strings.ContainsRune(r.Word, l) {
			v.Correct = append(v.Correct, string(l))
		} else {
			v.Incorrect = append(v.Incorrect, string(l))
		}
	}
	return v
}

// solved reports whether every distinct letter of the word is guessed.
func (r *Round) solved() bool {
	for _, c := range r.Word {
		if !r.hasGuessed(c) {
			return false
		}
	}
	return true
}

// hasGuessed reports whether l was already submitted this round.
func (r *Round) hasGuessed(l rune) bool {
	for _, g := range r.Guessed {
		if g == l {
			return true
		}
	}
	return false
}

// randomID returns a compact 16-hex-char identifier.
// Collisions are extremely unlikely given crypto/rand entropy.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
