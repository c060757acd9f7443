package router

import (
	"encoding/json"
	"errors"

	"github.com/pixil98/go-tileworld/internal/game"
)

type contextRequest struct {
	TargetID string `json:"targetId"`
	ActionID string `json:"actionId"`
}

func handleGetContextMenu(s *Session, raw json.RawMessage) error {
	var req contextRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	if req.TargetID == "" {
		return NewValidationError("Missing targetId")
	}

	opts, err := s.router.sim.ContextMenu(req.TargetID, s.player)
	if errors.Is(err, game.ErrNPCNotFound) {
		return NewValidationError("Target not found")
	}
	if err != nil {
		return err
	}

	s.send(game.ContextMenuMessage{
		Type:     game.MsgContextMenu,
		TargetID: req.TargetID,
		Options:  opts,
	})
	return nil
}

// handleContextAction runs a menu choice. The behavior sends its own
// results; the caller gets an acknowledgement once it succeeds.
func handleContextAction(s *Session, raw json.RawMessage) error {
	var req contextRequest
	if err := decode(raw, &req); err != nil {
		return err
	}
	if req.TargetID == "" || req.ActionID == "" {
		return NewValidationError("Missing targetId or actionId")
	}

	err := s.router.sim.ContextAction(req.TargetID, req.ActionID, s.player)
	switch {
	case errors.Is(err, game.ErrNPCNotFound):
		return NewValidationError("Target not found")
	case errors.Is(err, game.ErrNoActions), errors.Is(err, game.ErrUnknownAction):
		return NewUserError("Nothing happens")
	case err != nil:
		return err
	}

	s.send(game.ContextActionMessage{
		Type:     game.MsgContextAction,
		TargetID: req.TargetID,
		ActionID: req.ActionID,
		Result:   "ok",
	})
	return nil
}
