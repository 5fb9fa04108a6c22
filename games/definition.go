package games

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rodrigo-greising/game-theory-sub000/models"
)

var (
	ErrUnknownGameVariant = errors.New("unknown game variant")

	// ErrIncompleteActions - нарушение контракта вызова: координатор обязан
	// проверить готовность всех участников до вызова резолвера.
	ErrIncompleteActions = errors.New("resolver called with incomplete actions")
)

// Definition - контракт игрового варианта. Реализация обязана быть
// stateless: ResolveRound - чистая детерминированная функция своих
// аргументов, чтобы повторный вызов на тех же входах был безопасен.
type Definition interface {
	ID() string
	DisplayName() string

	MinPlayers() int
	MaxPlayers() int
	ValidatePlayerCount(n int) bool

	// DefaultState возвращает стартовую конфигурацию варианта без
	// участников; карту участников заполняет координатор или Initialize.
	DefaultState() models.MatchState

	// ResolveRound вычисляет результат раунда и новые накопленные очки
	// каждого участника. Состояние матча не мутирует.
	ResolveRound(state *models.MatchState, actions map[string]int) (models.RoundResult, map[string]float64, error)
}

// Initializer реализуют варианты, которым нужна структура на конкретный
// состав участников (например, роли в ультиматуме).
type Initializer interface {
	Initialize(state *models.MatchState, participantIDs []string)
}

// RoundAdvancer реализуют варианты, меняющие вариантную структуру между
// раундами (смена ролей и т.п.). Вызывается координатором после применения
// результата раунда.
type RoundAdvancer interface {
	AdvanceRound(state *models.MatchState)
}

// Classifier отдает каноническое "кооперативное" действие бинарной игры
// для турнирной статистики. Градуированные игры его не реализуют.
type Classifier interface {
	IsCooperative(action int) bool
}

// Registry - закрытый реестр вариантов: новые игры добавляются реализацией
// Definition и регистрацией здесь, а не копированием оркестрации.
type Registry struct {
	defs map[string]Definition
}

func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]Definition)}
	r.register(PrisonersDilemma{})
	r.register(StagHunt{})
	r.register(VolunteerDilemma{})
	r.register(Ultimatum{})
	r.register(PublicGoods{})
	return r
}

func (r *Registry) register(def Definition) {
	r.defs[def.ID()] = def
}

func (r *Registry) Get(id string) (Definition, error) {
	def, ok := r.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameVariant, id)
	}
	return def, nil
}

func (r *Registry) List() []Definition {
	defs := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID() < defs[j].ID() })
	return defs
}

// checkComplete валидирует контракт резолвера: ровно одно действие на
// каждого участника матча.
func checkComplete(state *models.MatchState, actions map[string]int) error {
	if len(actions) < len(state.Participants) {
		return fmt.Errorf("%w: got %d of %d", ErrIncompleteActions, len(actions), len(state.Participants))
	}
	for id := range state.Participants {
		if _, ok := actions[id]; !ok {
			return fmt.Errorf("%w: missing action for participant %s", ErrIncompleteActions, id)
		}
	}
	return nil
}

// cumulativeScores складывает выплаты раунда с текущими totals.
func cumulativeScores(state *models.MatchState, payoffs map[string]float64) map[string]float64 {
	totals := make(map[string]float64, len(payoffs))
	for id, payoff := range payoffs {
		totals[id] = state.Participants[id].TotalScore + payoff
	}
	return totals
}

// pairIDs возвращает обоих участников матча 1v1 в детерминированном порядке.
func pairIDs(state *models.MatchState) (string, string) {
	ids := make([]string, 0, 2)
	for id := range state.Participants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0], ids[1]
}
