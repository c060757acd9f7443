package player

import (
	"fmt"
	"math/rand/v2"

	"github.com/pixil98/go-errors"
)

// EditPrivilege is the lowest privilege allowed to change the world.
const EditPrivilege = 10

var palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
}

// Record is the durable state of one character, stored as players/<key>.json.
type Record struct {
	Name      string   `json:"name"`
	Zone      string   `json:"zone,omitempty"`
	RoomID    int      `json:"roomId"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Color     string   `json:"color"`
	Inventory []string `json:"inventory"`
	Privilege int      `json:"privilege"`
	Salt      string   `json:"salt"`
	Hash      string   `json:"hash"`
}

// NewRecord builds a fresh character placed at the origin of the given room.
func NewRecord(name, zone string, roomID int, salt, hash string) *Record {
	return &Record{
		Name:      name,
		Zone:      zone,
		RoomID:    roomID,
		Color:     palette[rand.IntN(len(palette))],
		Inventory: []string{},
		Salt:      salt,
		Hash:      hash,
	}
}

// Validate satisfies storage.ValidatingSpec
func (r *Record) Validate() error {
	el := errors.NewErrorList()

	if !ValidName(r.Name) {
		el.Add(fmt.Errorf("name %q is invalid", r.Name))
	}
	if r.Privilege < 0 {
		el.Add(fmt.Errorf("privilege must not be negative"))
	}

	return el.Err()
}

// HasCredentials reports whether the record carries a salt and hash.
func (r *Record) HasCredentials() bool {
	return r.Salt != "" && r.Hash != ""
}

// CanEdit reports whether the character may change rooms.
func (r *Record) CanEdit() bool {
	return r.Privilege >= EditPrivilege
}
