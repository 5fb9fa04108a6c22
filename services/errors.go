package services

import "errors"

// Общие ошибки сервисного слоя; хендлеры маппят их на HTTP-статусы.
var (
	// Конфигурационные ошибки - фатальны только для вызвавшей операции.
	ErrInvalidPlayerCount = errors.New("participant count is not supported by this game variant")
	ErrInvalidMaxRounds   = errors.New("max rounds must be positive")
	ErrSessionNameTaken   = errors.New("session name is already in use")

	// Нарушения протокола - при корректной работе клиентов не возникают,
	// логируются как аномалии, мутация отклоняется.
	ErrActionAlreadySubmitted = errors.New("action already submitted for this round")
	ErrMatchNotInProgress     = errors.New("match is not in progress")
	ErrActionOutOfRange       = errors.New("action is outside the allowed range")
	ErrNoActiveMatch          = errors.New("participant has no active match this stage")

	// Ошибки членства и доступа.
	ErrParticipantNotFound   = errors.New("participant is not a member of this session")
	ErrHostOnly              = errors.New("operation is allowed only for the session host")
	ErrSessionFull           = errors.New("session already has the maximum number of participants")
	ErrSessionNotJoinable    = errors.New("session is not accepting new participants")
	ErrSessionAlreadyStarted = errors.New("session has already been started")
	ErrInvalidPasscode       = errors.New("invalid session passcode")

	// Турнирные ошибки.
	ErrNotTournament                      = errors.New("session is not a tournament")
	ErrInsufficientParticipantsForTourney = errors.New("tournament requires at least 2 participants")
)
