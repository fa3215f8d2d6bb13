// internal/words/words.go
//
// Vocabulary management for the hangman engine.
//
// Responsibilities:
//   - Load the word list from an environment-provided theme file or fall
//     back to the embedded soccer defaults.
//   - Maintain a set for quick membership lookups.
//   - Supply utility functions like RandomWord, Contains, List, and Stats.
//
// Theme files:
//   - YAML with a theme name and a word list:
//       theme: futebol
//       words: [GOL, BOLA, TRAVE]
//   - Words are normalized to uppercase; entries outside A-Z are dropped.
//
// Initialization behavior (Init):
//   1. If WORDS_FILE is set, load the YAML theme file from that path.
//   2. Otherwise, fall back to the embedded defaults in assets/palavras.txt.
//
// Environment variables:
//   WORDS_FILE=/path/to/theme.yaml
//
// Constraints:
//   • Words must consist of ASCII letters only (accents pre-stripped).
//   • Initialization is run once (sync.Once).

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/forca-futebol/go-server/assets"
)

// DefaultTheme names the embedded vocabulary.
const DefaultTheme = "futebol"

var (
	initOnce   sync.Once
	theme      string
	vocabulary []string            // candidate words, uppercase
	vocabSet   map[string]struct{} // membership lookups
	initialErr error
)

// themeFile is the YAML shape accepted via WORDS_FILE.
type themeFile struct {
	Theme string   `yaml:"theme"`
	Words []string `yaml:"words"`
}

// Init loads the vocabulary exactly once.
// Returns an error if the resulting word list is empty.
func Init() error {
	initOnce.Do(func() {
		var list []string

		if path := os.Getenv("WORDS_FILE"); path != "" {
			var err error
			theme, list, err = readThemeFile(path)
			if err != nil {
				initialErr = err
				return
			}
		} else {
			raw, err := assets.WordList()
			if err != nil {
				initialErr = err
				return
			}
			theme = DefaultTheme
			list = normalize(raw)
		}

		vocabulary = list
		vocabSet = toSet(list)
		if len(vocabulary) == 0 {
			initialErr = errors.New("words: vocabulary is empty")
		}
	})
	return initialErr
}

// readThemeFile parses a YAML theme file into (theme, words).
func readThemeFile(path string) (string, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read theme file: %w", err)
	}
	var tf themeFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return "", nil, fmt.Errorf("parse theme file %s: %w", path, err)
	}
	name := strings.TrimSpace(tf.Theme)
	if name == "" {
		name = "custom"
	}
	return name, normalize(tf.Words), nil
}

// normalize uppercases entries and keeps only pure A-Z words.
func normalize(list []string) []string {
	var out []string
	for _, w := range list {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// RandomWord returns a cryptographically random word from the vocabulary.
// If the vocabulary is not loaded yet or empty, falls back to "GOL".
func RandomWord() string {
	if len(vocabulary) == 0 {
		return "GOL"
	}
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(vocabulary))))
	return vocabulary[nBig.Int64()]
}

// Contains reports whether w is a vocabulary word.
func Contains(w string) bool {
	_, ok := vocabSet[strings.ToUpper(w)]
	return ok
}

// List returns a copy of the vocabulary in load order.
func List() []string {
	out := make([]string, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Stats returns the theme name and the number of loaded words.
func Stats() (string, int) {
	return theme, len(vocabulary)
}
