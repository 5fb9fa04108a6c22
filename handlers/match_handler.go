package handlers

import (
	"errors"
	"net/http"

	"github.com/rodrigo-greising/game-theory-sub000/models"
	"github.com/rodrigo-greising/game-theory-sub000/services"
)

type MatchHandler struct {
	roundService      services.RoundService
	tournamentService services.TournamentService
	sessionService    services.SessionService
}

func NewMatchHandler(roundService services.RoundService, tournamentService services.TournamentService, sessionService services.SessionService) *MatchHandler {
	return &MatchHandler{
		roundService:      roundService,
		tournamentService: tournamentService,
		sessionService:    sessionService,
	}
}

func (h *MatchHandler) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, participantID, ok := requireSessionParticipant(w, r)
	if !ok {
		return
	}

	session, err := h.roundService.Start(r.Context(), sessionID, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": newSessionView(session)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) SubmitActionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, participantID, ok := requireSessionParticipant(w, r)
	if !ok {
		return
	}

	var input struct {
		Action *int `json:"action"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Action == nil {
		badRequestResponse(w, r, errors.New("action is required"))
		return
	}

	session, err := h.roundService.SubmitAction(r.Context(), sessionID, participantID, *input.Action)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": newSessionView(session)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ResetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, participantID, ok := requireSessionParticipant(w, r)
	if !ok {
		return
	}

	session, err := h.roundService.Reset(r.Context(), sessionID, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": newSessionView(session)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ReshuffleHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, participantID, ok := requireSessionParticipant(w, r)
	if !ok {
		return
	}

	session, err := h.tournamentService.Reshuffle(r.Context(), sessionID, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": newSessionView(session)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, _, ok := requireSessionParticipant(w, r)
	if !ok {
		return
	}

	standings, err := h.tournamentService.Standings(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HistoryHandler отдаёт историю раундов. Для турнира матч выбирается
// параметром ?match=, по умолчанию - матч самого участника.
func (h *MatchHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, participantID, ok := requireSessionParticipant(w, r)
	if !ok {
		return
	}

	session, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	var match *models.MatchState
	if session.IsTournament {
		if matchKey := r.URL.Query().Get("match"); matchKey != "" {
			match = session.Matches[matchKey]
		} else {
			match = session.MatchFor(participantID)
		}
	} else {
		match = session.Match
	}
	if match == nil {
		mapServiceErrorToHTTP(w, r, services.ErrNoActiveMatch)
		return
	}

	history := match.History
	if history == nil {
		history = []models.RoundResult{}
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"history": history}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
