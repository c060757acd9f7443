package game

import "errors"

var (
	ErrObjectNotFound  = errors.New("object not found")
	ErrObjectOwned     = errors.New("object already picked up")
	ErrNotOwner        = errors.New("object not held by player")
	ErrWrongRoom       = errors.New("object is not in this room")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrNPCNotFound     = errors.New("npc not found")
	ErrUnknownBehavior = errors.New("unknown behavior kind")
	ErrNoActions       = errors.New("npc has no actions")
	ErrUnknownAction   = errors.New("unknown action")
)
