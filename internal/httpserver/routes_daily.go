// internal/httpserver/routes_daily.go
//
// HTTP routes for the "daily word" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's round (creates or reuses session)
//   - POST /daily/guess       → submit a letter for today's round
//   - GET  /daily/leaderboard → fetch top 20 winners for today (or a given date)
//
// Each user can play once per day (enforced by DB + in-memory session).
// Rounds are held in the shared store for active play and the outcome is
// persisted to DB when the round finishes, won or lost.
// Deterministic word selection is based on date + salt.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/forca-futebol/go-server/internal/daily"
	"github.com/forca-futebol/go-server/internal/game"
	"github.com/forca-futebol/go-server/internal/words"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	sessions map[string]*dailySession // active sessions keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession holds transient in-memory state for an in-progress daily round.
type dailySession struct {
	RoundID   string
	UserID    string
	Date      string
	WordIndex int
	Start     time.Time
	Finished  bool
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		sessions: make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// dateKeyNow returns today's date key, deterministic word index, and word.
func (d *dailyServer) dateKeyNow() (date string, idx int, word string) {
	now := time.Now().UTC()
	date = daily.DateKey(now)
	vocab := words.List()
	if len(vocab) == 0 {
		return date, 0, ""
	}
	idx = daily.WordIndex(now, d.salt, len(vocab))
	return date, idx, vocab[idx]
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise ensures an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) (string, bool) {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID, true
	}
	return d.srv.ensureAnonID(w, r), true
}

// -----------------------------------------------------------------------------
// /daily/new

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	RoundID string `json:"roundId"`
	Date    string `json:"date"`
	Length  int    `json:"length"`
	Played  bool   `json:"played"`
}

// handleNew creates or reuses a daily session for the current date.
// - If user already has a DB row for today → return Played=true.
// - Otherwise create/reuse an in-memory session and return RoundID.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	date, idx, word := d.dateKeyNow()
	if word == "" {
		http.Error(w, "no vocabulary", http.StatusInternalServerError)
		return
	}

	// Check if already played (persisted in DB).
	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err == nil && played {
		_ = json.NewEncoder(w).Encode(dailyNewRes{RoundID: "", Date: date, Played: true})
		return
	}

	// Reuse or create session in memory.
	key := uid + "|" + date
	d.mu.Lock()
	if sess, ok := d.sessions[key]; ok {
		d.mu.Unlock()
		_ = json.NewEncoder(w).Encode(dailyNewRes{RoundID: sess.RoundID, Date: date, Length: len(word), Played: false})
		return
	}
	rd := game.New(word)
	if err := d.srv.store.Save(r.Context(), rd); err != nil {
		d.mu.Unlock()
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	sess := &dailySession{
		RoundID:   rd.ID,
		UserID:    uid,
		Date:      date,
		WordIndex: idx,
		Start:     time.Now(),
	}
	d.sessions[key] = sess
	d.mu.Unlock()

	_ = json.NewEncoder(w).Encode(dailyNewRes{RoundID: sess.RoundID, Date: date, Length: len(word), Played: false})
}

// -----------------------------------------------------------------------------
// /daily/guess

// dailyGuessReq is the request payload for /daily/guess.
type dailyGuessReq struct {
	RoundID string `json:"roundId"`
	Letter  string `json:"letter"`
}

// dailyGuessRes is the response payload for /daily/guess.
type dailyGuessRes struct {
	Applied          bool       `json:"applied"`
	Correct          bool       `json:"correct"`
	Phase            game.Phase `json:"phase"` // in_progress | won | lost | locked
	Masked           string     `json:"masked"`
	WrongGuesses     int        `json:"wrongGuesses"`
	CorrectLetters   []string   `json:"correctLetters"`
	IncorrectLetters []string   `json:"incorrectLetters"`
	Revealed         string     `json:"revealed,omitempty"`
}

// phaseLocked is reported once a finished daily session receives further guesses.
const phaseLocked game.Phase = "locked"

// handleGuess applies a letter to today's daily round.
// - Ensures valid RoundID for the caller's current session.
// - Applies the guess through the shared engine (no-op rules included).
// - Persists the result to DB when the round finishes, won or lost.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	uid, ok := d.userIDWithAnon(w, r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	letter := []rune(strings.TrimSpace(p.Letter))
	if p.RoundID == "" || len(letter) != 1 {
		http.Error(w, "invalid", http.StatusBadRequest)
		return
	}

	date, _, _ := d.dateKeyNow()

	// Find session.
	key := uid + "|" + date
	d.mu.Lock()
	sess, ok := d.sessions[key]
	d.mu.Unlock()
	if !ok || sess.RoundID != p.RoundID {
		http.Error(w, "no session", http.StatusConflict)
		return
	}
	if sess.Finished {
		_ = json.NewEncoder(w).Encode(dailyGuessRes{Phase: phaseLocked})
		return
	}

	rd, err := d.srv.store.Get(r.Context(), sess.RoundID)
	if err != nil {
		http.Error(w, "no session", http.StatusConflict)
		return
	}
	res := rd.SubmitGuess(letter[0])
	_ = d.srv.store.Save(r.Context(), rd)

	// Persist outcome once the round is over, won or lost.
	if res.Phase == game.PhaseWon || res.Phase == game.PhaseLost {
		d.mu.Lock()
		sess.Finished = true
		d.mu.Unlock()
		elapsed := int(time.Since(sess.Start).Milliseconds())
		_ = d.store.InsertResult(r.Context(), daily.Result{
			UserID: uid, Date: date, WordIndex: sess.WordIndex,
			Wrong: rd.Wrong, ElapsedMs: elapsed, Won: res.Phase == game.PhaseWon,
		})
	}

	v := rd.View()
	_ = json.NewEncoder(w).Encode(dailyGuessRes{
		Applied:          res.Applied,
		Correct:          res.Correct,
		Phase:            res.Phase,
		Masked:           v.Masked,
		WrongGuesses:     rd.Wrong,
		CorrectLetters:   v.Correct,
		IncorrectLetters: v.Incorrect,
		Revealed:         res.Revealed,
	})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _, _ = d.dateKeyNow()
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
