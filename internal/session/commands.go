package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/koacards/koa-server-go/internal/game"
	"go.uber.org/zap"
)

// Action names a player intent.
type Action string

const (
	ActionClick    Action = "click"
	ActionBurn     Action = "burn"
	ActionCast     Action = "cast"
	ActionEndTurn  Action = "end_turn"
	ActionAutoBurn Action = "auto_burn"
	ActionRedeal   Action = "redeal"
	ActionConfirm  Action = "confirm"
	ActionDecline  Action = "decline"
	ActionContinue Action = "continue"
	ActionRestart  Action = "restart"
	ActionRefresh  Action = "refresh"
)

// Command is a player intent addressed to a session. Index is only used
// when CardID is empty.
type Command struct {
	Action Action `json:"action"`
	Area   string `json:"area,omitempty"`
	CardID string `json:"card_id,omitempty"`
	Column int    `json:"column,omitempty"`
	Index  *int   `json:"index,omitempty"`
	Suit   string `json:"suit,omitempty"`
}

// Target converts the command's addressing fields into a click target.
func (cmd Command) Target() (game.Target, error) {
	area, err := game.ParseArea(cmd.Area)
	if err != nil {
		return game.Target{}, err
	}
	t := game.Target{Area: area, Column: cmd.Column, Index: -1}
	if cmd.Index != nil {
		t.Index = *cmd.Index
	}
	if cmd.CardID != "" {
		id, err := uuid.Parse(cmd.CardID)
		if err != nil {
			return game.Target{}, fmt.Errorf("invalid card id %q: %w", cmd.CardID, err)
		}
		t.CardID = id
	}
	if cmd.Suit != "" {
		suit, err := game.ParseSuit(cmd.Suit)
		if err != nil {
			return game.Target{}, err
		}
		t.Suit = suit
	}
	return t, nil
}

// Dispatch applies cmd to the session's combat. It reports whether the
// combat accepted the intent; rejected intents are not errors.
func (s *Session) Dispatch(ctx context.Context, cmd Command) (bool, error) {
	if s.State() == StateClosed {
		return false, ErrSessionClosed
	}
	s.Touch()

	c := s.combat
	var accepted bool
	switch cmd.Action {
	case ActionClick:
		t, err := cmd.Target()
		if err != nil {
			return false, err
		}
		accepted = c.Click(t)
	case ActionBurn:
		accepted = c.BurnSelectedCard()
	case ActionCast:
		accepted = c.CastSelectedCard()
	case ActionEndTurn:
		accepted = c.EndTurn()
	case ActionAutoBurn:
		accepted = c.AutoBurnAll()
	case ActionRedeal:
		accepted = c.Redeal()
	case ActionConfirm:
		accepted = s.answerConfirmation(true)
	case ActionDecline:
		accepted = s.answerConfirmation(false)
	case ActionContinue:
		accepted = c.ContinueAfterVictory()
	case ActionRestart:
		if err := s.Restart(ctx); err != nil {
			return false, err
		}
		accepted = true
	case ActionRefresh:
		c.Notify()
		accepted = true
	default:
		return false, fmt.Errorf("unknown action %q", cmd.Action)
	}

	s.logger.Debug("command dispatched",
		zap.String("action", string(cmd.Action)),
		zap.Bool("accepted", accepted),
	)
	return accepted, nil
}
