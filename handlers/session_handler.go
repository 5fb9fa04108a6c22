package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"

	"github.com/rodrigo-greising/game-theory-sub000/middleware"
	"github.com/rodrigo-greising/game-theory-sub000/models"
	"github.com/rodrigo-greising/game-theory-sub000/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	jwtSecret      []byte
}

func NewSessionHandler(sessionService services.SessionService, jwtSecret string) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		jwtSecret:      []byte(jwtSecret),
	}
}

// sessionView прячет хэш пасскода из публичного представления.
type sessionView struct {
	*models.Session
	PasscodeHash string `json:"passcode_hash,omitempty"`
	HasPasscode  bool   `json:"has_passcode"`
}

func newSessionView(session *models.Session) sessionView {
	return sessionView{
		Session:     session,
		HasPasscode: session.PasscodeHash != "",
	}
}

// issueParticipantToken подписывает токен адресации участника в сессии.
func (h *SessionHandler) issueParticipantToken(sessionID, participantID string) (string, error) {
	claims := jwt.MapClaims{
		"session_id":     sessionID,
		"participant_id": participantID,
		"exp":            time.Now().Add(time.Hour * 24).Unix(),
		"iat":            time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

func (h *SessionHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name         string `json:"name"`
		GameID       string `json:"game_id"`
		HostName     string `json:"host_name"`
		IsTournament bool   `json:"is_tournament"`
		MaxRounds    int    `json:"max_rounds"`
		Passcode     string `json:"passcode"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, host, err := h.sessionService.Create(r.Context(), services.CreateSessionInput{
		Name:         input.Name,
		GameID:       input.GameID,
		HostName:     input.HostName,
		IsTournament: input.IsTournament,
		MaxRounds:    input.MaxRounds,
		Passcode:     input.Passcode,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.issueParticipantToken(session.ID, host.ID)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := jsonResponse{
		"session":     newSessionView(session),
		"participant": host,
		"token":       token,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessionService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		if session.Status == models.SessionStatusFinished {
			continue
		}
		views = append(views, newSessionView(session))
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sessions": views}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		badRequestResponse(w, r, errors.New("missing sessionID"))
		return
	}

	session, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": newSessionView(session)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) JoinSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		badRequestResponse(w, r, errors.New("missing sessionID"))
		return
	}

	var input struct {
		Name     string `json:"name"`
		Passcode string `json:"passcode"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, participant, err := h.sessionService.Join(r.Context(), sessionID, input.Name, input.Passcode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.issueParticipantToken(session.ID, participant.ID)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	response := jsonResponse{
		"session":     newSessionView(session),
		"participant": participant,
		"token":       token,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) LeaveSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, participantID, ok := requireSessionParticipant(w, r)
	if !ok {
		return
	}

	if err := h.sessionService.Leave(r.Context(), sessionID, participantID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "left session"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// requireSessionParticipant сверяет sessionID из URL с claims токена.
func requireSessionParticipant(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	urlSessionID := chi.URLParam(r, "sessionID")
	if urlSessionID == "" {
		badRequestResponse(w, r, errors.New("missing sessionID"))
		return "", "", false
	}

	tokenSessionID, err := middleware.GetSessionIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return "", "", false
	}
	participantID, err := middleware.GetParticipantIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return "", "", false
	}

	if tokenSessionID != urlSessionID {
		forbiddenResponse(w, r, "token was issued for a different session")
		return "", "", false
	}
	return urlSessionID, participantID, true
}
