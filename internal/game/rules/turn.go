package rules

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

// TurnState is a phase of the combat turn cycle.
type TurnState string

const (
	StateIdle                 TurnState = "idle"
	StatePlayerTurn           TurnState = "player_turn"
	StateAwaitingConfirmation TurnState = "awaiting_confirmation"
	StateResolvingSummons     TurnState = "resolving_summons"
	StateResolvingEnemy       TurnState = "resolving_enemy"
	StateEnemyDefeated        TurnState = "enemy_defeated"
	StatePlayerDefeated       TurnState = "player_defeated"
)

func (s TurnState) String() string {
	return string(s)
}

// Terminal reports whether the combat is over in this state.
func (s TurnState) Terminal() bool {
	return s == StateEnemyDefeated || s == StatePlayerDefeated
}

// Transition names an edge of the turn cycle.
type Transition string

const (
	TransitionDeal              Transition = "deal"
	TransitionEndTurn           Transition = "end_turn"
	TransitionAwaitConfirmation Transition = "await_confirmation"
	TransitionDecline           Transition = "decline"
	TransitionRedeal            Transition = "redeal"
	TransitionResolveEnemy      Transition = "resolve_enemy"
	TransitionNextTurn          Transition = "next_turn"
	TransitionEnemyDefeated     Transition = "enemy_defeated"
	TransitionPlayerDefeated    Transition = "player_defeated"
)

var activeStates = []string{
	string(StatePlayerTurn),
	string(StateAwaitingConfirmation),
	string(StateResolvingSummons),
	string(StateResolvingEnemy),
}

// TurnMachine tracks which part of the turn cycle a combat is in.
// It is not safe for concurrent use; the owning combat serializes access.
type TurnMachine struct {
	fsm  *fsm.FSM
	turn int
}

// NewTurnMachine creates a turn machine in the idle state.
func NewTurnMachine() *TurnMachine {
	m := &TurnMachine{}
	m.fsm = fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: string(TransitionDeal), Src: []string{string(StateIdle)}, Dst: string(StatePlayerTurn)},
			{Name: string(TransitionEndTurn), Src: []string{string(StatePlayerTurn)}, Dst: string(StateResolvingSummons)},
			{Name: string(TransitionAwaitConfirmation), Src: []string{string(StatePlayerTurn)}, Dst: string(StateAwaitingConfirmation)},
			{Name: string(TransitionDecline), Src: []string{string(StateAwaitingConfirmation)}, Dst: string(StatePlayerTurn)},
			{Name: string(TransitionRedeal), Src: []string{string(StatePlayerTurn), string(StateAwaitingConfirmation)}, Dst: string(StateResolvingSummons)},
			{Name: string(TransitionResolveEnemy), Src: []string{string(StateResolvingSummons)}, Dst: string(StateResolvingEnemy)},
			{Name: string(TransitionNextTurn), Src: []string{string(StateResolvingEnemy)}, Dst: string(StatePlayerTurn)},
			{Name: string(TransitionEnemyDefeated), Src: activeStates, Dst: string(StateEnemyDefeated)},
			{Name: string(TransitionPlayerDefeated), Src: activeStates, Dst: string(StatePlayerDefeated)},
		},
		fsm.Callbacks{
			"enter_" + string(StatePlayerTurn): func(_ context.Context, e *fsm.Event) {
				if e.Event == string(TransitionDeal) || e.Event == string(TransitionNextTurn) {
					m.turn++
				}
			},
		},
	)
	return m
}

// Fire applies a transition. It returns an error if the transition is not
// allowed from the current state.
func (m *TurnMachine) Fire(t Transition) error {
	if err := m.fsm.Event(context.Background(), string(t)); err != nil {
		return fmt.Errorf("turn transition %s from %s: %w", t, m.Current(), err)
	}
	return nil
}

// Can reports whether the transition is allowed from the current state.
func (m *TurnMachine) Can(t Transition) bool {
	return m.fsm.Can(string(t))
}

// Current returns the current state.
func (m *TurnMachine) Current() TurnState {
	return TurnState(m.fsm.Current())
}

// Is reports whether the machine is in the given state.
func (m *TurnMachine) Is(s TurnState) bool {
	return m.fsm.Is(string(s))
}

// TurnNumber returns the number of player turns started since the last reset.
func (m *TurnMachine) TurnNumber() int {
	return m.turn
}

// Reset returns the machine to idle and clears the turn counter.
func (m *TurnMachine) Reset() {
	m.fsm.SetState(string(StateIdle))
	m.turn = 0
}
