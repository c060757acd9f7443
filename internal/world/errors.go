package world

import "errors"

var (
	ErrZoneNotFound      = errors.New("zone not found")
	ErrRoomNotFound      = errors.New("room not found")
	ErrOutOfBounds       = errors.New("coordinates out of bounds")
	ErrInvalidTerrain    = errors.New("invalid terrain")
	ErrInvalidExits      = errors.New("invalid tile exits")
	ErrInvalidDimensions = errors.New("invalid room dimensions")
)
