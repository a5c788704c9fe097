// internal/httpserver/routes_game.go
//
// HTTP routes for countries and for a trivia session.
//   - GET  /api/countries             → id, name and clue count per country
//   - GET  /api/countries/all         → full country records
//   - GET  /api/countries/{id}/facts  → fact pool + one random fact
//   - POST /api/game/start            → new session + cookie, first question
//   - GET  /api/game                  → current snapshot
//   - POST /api/game/select           → answer the current question
//   - POST /api/game/next             → next question (or completion)
//   - POST /api/game/replay           → show the same question again
//   - POST /api/game/play-again       → fresh game after completion, else next question
//   - POST /api/game/new              → reset to not started
//
// The session is resolved from the cookie by withSession. Every successful
// transition is saved back to the registry so Redis stays current.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/narharikale/globe/internal/game"
	"github.com/narharikale/globe/internal/metrics"
	"github.com/narharikale/globe/internal/store"
)

type ctxSessionKey struct{}

// mountGame registers all /game routes on r.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/start", s.handleStart)

		r.Group(func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleSnapshot)
			r.Post("/select", s.handleSelect)
			r.Post("/next", s.transition("next", (*game.Session).Next))
			r.Post("/replay", s.transition("replay", (*game.Session).ReplaySame))
			r.Post("/new", s.transition("new", (*game.Session).NewGame))
			r.Post("/play-again", s.handlePlayAgain)
		})
	})
}

// withSession loads the caller's session from the cookie or answers 404.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.cookies.sessionID(r)
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "session_not_found"})
			return
		}
		sess, err := s.sessions.Get(r.Context(), sid)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.cookies.clear(w)
			}
			s.writeError(w, r, "", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *game.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*game.Session)
	return sess
}

// ------------------------------ handlers -----------------------------------

// snapshotView is the wire shape of a session. The correct answer is withheld
// until the question is resolved.
func snapshotView(snap game.Snapshot) game.Snapshot {
	if snap.State == game.StateAwaitingAnswer {
		snap.CorrectCountryID = nil
	}
	return snap
}

// handleCountries lists every country with its clue count (no clue text).
func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.Summaries(r.Context())
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAllCountries returns the full country records, clues and facts included.
func (s *Server) handleAllCountries(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.LoadAllCountries(r.Context())
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCountryFacts returns a country's facts plus one picked at random.
func (s *Server) handleCountryFacts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err == nil {
		err = s.validate.Var(id, "gt=0")
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_request", Detail: "country id must be a positive integer"})
		return
	}
	out, err := s.engine.CountryFacts(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleStart creates a session, starts it, and binds it to the cookie.
// A session already bound to the cookie is discarded.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess := s.engine.NewSession()
	snap, err := sess.Start(r.Context())
	if err != nil {
		s.writeError(w, r, "start", err)
		return
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.writeError(w, r, "start", err)
		return
	}
	if old, err := s.cookies.sessionID(r); err == nil {
		if err := s.sessions.Delete(r.Context(), old); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("session", old).Msg("delete replaced session")
		}
	}
	if err := s.cookies.set(w, sess.ID()); err != nil {
		s.writeError(w, r, "start", err)
		return
	}
	metrics.SessionsCreated.Inc()
	s.recorded(r, "start", snap)
	writeJSON(w, http.StatusOK, snapshotView(snap))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshotView(sessionFrom(r).Snapshot()))
}

type selectReq struct {
	CountryID int64 `json:"countryId" validate:"required,gt=0"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_request", Detail: err.Error()})
		return
	}

	sess := sessionFrom(r)
	snap, err := sess.Select(r.Context(), req.CountryID)
	if err != nil {
		s.writeError(w, r, "select", err)
		return
	}
	if snap.IsCorrect != nil {
		metrics.Answers.WithLabelValues(metrics.AnswerResult(*snap.IsCorrect)).Inc()
	}
	s.commit(w, r, "select", sess, snap)
}

// transition adapts a no-argument session operation into a handler.
func (s *Server) transition(op string, fn func(*game.Session, context.Context) (game.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		snap, err := fn(sess, r.Context())
		if err != nil {
			s.writeError(w, r, op, err)
			return
		}
		s.commit(w, r, op, sess, snap)
	}
}

// handlePlayAgain may swap the caller onto a brand new session.
func (s *Server) handlePlayAgain(w http.ResponseWriter, r *http.Request) {
	old := sessionFrom(r)
	sess, snap, err := old.PlayAgain(r.Context())
	if err != nil {
		s.writeError(w, r, "play_again", err)
		return
	}
	if sess != old {
		if err := s.sessions.Save(r.Context(), sess); err != nil {
			s.writeError(w, r, "play_again", err)
			return
		}
		if err := s.sessions.Delete(r.Context(), old.ID()); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("session", old.ID()).Msg("delete finished session")
		}
		if err := s.cookies.set(w, sess.ID()); err != nil {
			s.writeError(w, r, "play_again", err)
			return
		}
		metrics.SessionsCreated.Inc()
		s.recorded(r, "play_again", snap)
		writeJSON(w, http.StatusOK, snapshotView(snap))
		return
	}
	s.commit(w, r, "play_again", sess, snap)
}

// commit persists sess after a successful transition and writes the snapshot.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, op string, sess *game.Session, snap game.Snapshot) {
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		// The in-process session already moved on; only durability is lost.
		hlog.FromRequest(r).Error().Err(err).Str("session", snap.ID).Msg("persist session")
	}
	s.recorded(r, op, snap)
	writeJSON(w, http.StatusOK, snapshotView(snap))
}

// recorded updates metrics and logs a successful transition.
func (s *Server) recorded(r *http.Request, op string, snap game.Snapshot) {
	metrics.Transitions.WithLabelValues(op, "ok").Inc()
	if snap.State == game.StateCompleted && op != "new" {
		metrics.GamesCompleted.Inc()
	}
	hlog.FromRequest(r).Debug().
		Str("session", snap.ID).
		Str("op", op).
		Str("state", string(snap.State)).
		Int("correct", snap.Score.Correct).
		Int("incorrect", snap.Score.Incorrect).
		Msg("transition")
}
