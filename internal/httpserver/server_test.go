package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/forca-futebol/go-server/internal/daily"
	"github.com/forca-futebol/go-server/internal/game"
	"github.com/forca-futebol/go-server/internal/store"
	"github.com/forca-futebol/go-server/internal/words"
)

// testSchema mirrors sql/001_init.sql + sql/002_daily.sql for in-memory runs.
const testSchema = `
CREATE TABLE users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TEXT NOT NULL,
    games_played INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    streak INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE rounds (
    id TEXT PRIMARY KEY,
    user_id TEXT REFERENCES users(id),
    anonymous_id TEXT,
    status TEXT NOT NULL DEFAULT 'in_progress',
    wrong_guesses INTEGER NOT NULL DEFAULT 0,
    started_at TEXT NOT NULL,
    finished_at TEXT
);
CREATE TABLE daily_results (
    user_id TEXT NOT NULL,
    date TEXT NOT NULL,
    word_index INTEGER NOT NULL,
    wrong_guesses INTEGER NOT NULL,
    elapsed_ms INTEGER NOT NULL,
    won INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
    UNIQUE(user_id, date)
);
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	if err := words.Init(); err != nil {
		t.Fatalf("words.Init: %v", err)
	}
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return New(store.NewMemoryStore(), db)
}

// client is a tiny cookie-carrying helper around the router.
type client struct {
	t       *testing.T
	srv     *Server
	cookies []*http.Cookie
}

func (c *client) do(method, path string, body any, out any) *httptest.ResponseRecorder {
	c.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.srv.Router().ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies = append(c.cookies, ck)
	}
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			c.t.Fatalf("%s %s: decode response: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w
}

func TestHealth(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	w := c.do(http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: status %d", w.Code)
	}
}

func TestRoundFlow(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	var created newRoundRes
	if w := c.do(http.MethodPost, "/round/new", newRoundReq{Word: "gol"}, &created); w.Code != http.StatusOK {
		t.Fatalf("new round: status %d", w.Code)
	}
	if created.Length != 3 || created.Masked != "_ _ _" {
		t.Fatalf("new round: %+v", created)
	}

	guess := func(letter string) guessRes {
		var res guessRes
		if w := c.do(http.MethodPost, "/round/guess", guessReq{RoundID: created.RoundID, Letter: letter}, &res); w.Code != http.StatusOK {
			t.Fatalf("guess %s: status %d", letter, w.Code)
		}
		return res
	}

	if res := guess("G"); !res.Applied || !res.Correct || res.Masked != "G _ _" {
		t.Fatalf("guess G: %+v", res)
	}
	if res := guess("o"); res.Masked != "G O _" {
		t.Fatalf("guess o: %+v", res)
	}
	if res := guess("X"); res.Correct || res.WrongGuesses != 1 {
		t.Fatalf("guess X: %+v", res)
	}
	if res := guess("X"); res.Applied {
		t.Fatalf("repeated X should be a no-op: %+v", res)
	}
	res := guess("L")
	if res.Phase != game.PhaseWon || res.Masked != "G O L" {
		t.Fatalf("guess L: %+v", res)
	}
	if strings.Join(res.IncorrectLetters, "") != "X" {
		t.Fatalf("incorrect letters: %v", res.IncorrectLetters)
	}

	// Round state is also readable directly.
	var got roundRes
	if w := c.do(http.MethodGet, "/round/"+created.RoundID, nil, &got); w.Code != http.StatusOK {
		t.Fatalf("get round: status %d", w.Code)
	}
	if got.Phase != game.PhaseWon || got.MaxWrong != game.MaxWrong {
		t.Fatalf("get round: %+v", got)
	}
}

func TestLoseRevealsWord(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	var created newRoundRes
	c.do(http.MethodPost, "/round/new", newRoundReq{Word: "GOL"}, &created)

	var res guessRes
	for _, l := range []string{"Q", "W", "E", "R", "T", "Y"} {
		c.do(http.MethodPost, "/round/guess", guessReq{RoundID: created.RoundID, Letter: l}, &res)
	}
	if res.Phase != game.PhaseLost || res.Revealed != "GOL" || res.WrongGuesses != game.MaxWrong {
		t.Fatalf("after 6 wrong guesses: %+v", res)
	}

	// Terminal round ignores further guesses.
	c.do(http.MethodPost, "/round/guess", guessReq{RoundID: created.RoundID, Letter: "G"}, &res)
	if res.Applied || res.Phase != game.PhaseLost {
		t.Fatalf("guess after loss: %+v", res)
	}
}

func TestGuessValidation(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	if w := c.do(http.MethodPost, "/round/guess", guessReq{RoundID: "x", Letter: "ab"}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("multi-letter guess: status %d", w.Code)
	}
	if w := c.do(http.MethodPost, "/round/guess", guessReq{RoundID: "missing", Letter: "a"}, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown round: status %d", w.Code)
	}
}

func TestSignupAndMe(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	w := c.do(http.MethodPost, "/auth/signup", map[string]string{"username": "zico", "password": "craque1981"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signup: status %d (%s)", w.Code, w.Body.String())
	}

	var me authUser
	if w := c.do(http.MethodGet, "/auth/me", nil, &me); w.Code != http.StatusOK {
		t.Fatalf("me: status %d", w.Code)
	}
	if me.Username != "zico" {
		t.Fatalf("me: %+v", me)
	}
}

func TestFinishedRoundBumpsStats(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.do(http.MethodPost, "/auth/signup", map[string]string{"username": "bebeto", "password": "copa1994x"}, nil)

	var created newRoundRes
	c.do(http.MethodPost, "/round/new", newRoundReq{Word: "GOL"}, &created)
	for _, l := range []string{"G", "O", "L"} {
		c.do(http.MethodPost, "/round/guess", guessReq{RoundID: created.RoundID, Letter: l}, nil)
	}

	var stats struct {
		GamesPlayed int `json:"gamesPlayed"`
		Wins        int `json:"wins"`
		Streak      int `json:"streak"`
	}
	if w := c.do(http.MethodGet, "/stats/me", nil, &stats); w.Code != http.StatusOK {
		t.Fatalf("stats: status %d", w.Code)
	}
	if stats.GamesPlayed != 1 || stats.Wins != 1 || stats.Streak != 1 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestDailyFlow(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	var created dailyNewRes
	if w := c.do(http.MethodPost, "/daily/new", nil, &created); w.Code != http.StatusOK {
		t.Fatalf("daily new: status %d", w.Code)
	}
	if created.Played || created.RoundID == "" {
		t.Fatalf("daily new: %+v", created)
	}

	// The day's word is deterministic from date + salt.
	vocab := words.List()
	idx := daily.WordIndex(time.Now().UTC(), "local_dev_salt", len(vocab))
	word := vocab[idx]
	if created.Length != len(word) {
		t.Fatalf("daily length %d, expected %d", created.Length, len(word))
	}

	var res dailyGuessRes
	seen := map[rune]bool{}
	for _, l := range word {
		if seen[l] {
			continue
		}
		seen[l] = true
		c.do(http.MethodPost, "/daily/guess", dailyGuessReq{RoundID: created.RoundID, Letter: string(l)}, &res)
	}
	if res.Phase != game.PhaseWon {
		t.Fatalf("daily flow: %+v", res)
	}

	// Finished sessions report locked.
	c.do(http.MethodPost, "/daily/guess", dailyGuessReq{RoundID: created.RoundID, Letter: "a"}, &res)
	if res.Phase != phaseLocked {
		t.Fatalf("expected locked, got %+v", res)
	}

	// Win shows up on today's leaderboard.
	var lb lbRes
	if w := c.do(http.MethodGet, "/daily/leaderboard", nil, &lb); w.Code != http.StatusOK {
		t.Fatalf("leaderboard: status %d", w.Code)
	}
	if len(lb.Top) != 1 || lb.Top[0].Wrong != 0 {
		t.Fatalf("leaderboard: %+v", lb)
	}

	// Second /daily/new the same day reports played=true.
	var again dailyNewRes
	c.do(http.MethodPost, "/daily/new", nil, &again)
	if !again.Played {
		t.Fatalf("expected played=true, got %+v", again)
	}
}
