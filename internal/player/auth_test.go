package player

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestValidName(t *testing.T) {
	tests := map[string]struct {
		name  string
		expOk bool
	}{
		"simple":     {name: "Ava", expOk: true},
		"symbols":    {name: "ava_the-2nd", expOk: true},
		"max length": {name: "abcdefghijklmnopqrstuvwx", expOk: true},
		"too long":   {name: "abcdefghijklmnopqrstuvwxy", expOk: false},
		"empty":      {name: "", expOk: false},
		"space":      {name: "Ava B", expOk: false},
		"path":       {name: "../ava", expOk: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "valid", ValidName(tt.name), tt.expOk)
		})
	}
}

func TestKey(t *testing.T) {
	testutil.AssertEqual(t, "folded", Key("AvA"), "ava")
	testutil.AssertEqual(t, "same key", Key("Bo_1"), Key("bO_1"))
}

func TestHashPassword(t *testing.T) {
	salt, hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "salt length", len(salt), saltLen*2)
	testutil.AssertEqual(t, "hash length", len(hash), keyLen*2)

	rec := &Record{Name: "Ava", Salt: salt, Hash: hash}

	tests := map[string]struct {
		password string
		expMatch bool
	}{
		"right password": {password: "hunter2", expMatch: true},
		"wrong password": {password: "hunter3", expMatch: false},
		"empty":          {password: "", expMatch: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ok, err := CheckPassword(rec, tt.password)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "match", ok, tt.expMatch)
		})
	}
}

func TestHashPassword_FreshSalt(t *testing.T) {
	s1, h1, _ := HashPassword("same")
	s2, h2, _ := HashPassword("same")

	testutil.AssertEqual(t, "salts differ", s1 != s2, true)
	testutil.AssertEqual(t, "hashes differ", h1 != h2, true)
}

func TestCheckPassword_CorruptRecord(t *testing.T) {
	_, err := CheckPassword(&Record{Name: "Ava", Salt: "zz", Hash: "00"}, "x")
	testutil.AssertErrorContains(t, err, "decoding salt")

	_, err = CheckPassword(&Record{Name: "Ava", Salt: "00", Hash: "not-hex"}, "x")
	testutil.AssertErrorContains(t, err, "decoding stored hash")
}

func TestRecord_Validate(t *testing.T) {
	tests := map[string]struct {
		rec    *Record
		expErr string
	}{
		"valid": {
			rec: NewRecord("Ava", "town", 1, "aa", "bb"),
		},
		"bad name": {
			rec:    &Record{Name: "a b"},
			expErr: "is invalid",
		},
		"negative privilege": {
			rec:    &Record{Name: "Ava", Privilege: -1},
			expErr: "privilege",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("Ava", "town", 3, "aa", "bb")

	testutil.AssertEqual(t, "room", rec.RoomID, 3)
	testutil.AssertEqual(t, "x", rec.X, 0.0)
	testutil.AssertEqual(t, "privilege", rec.Privilege, 0)
	testutil.AssertEqual(t, "inventory", len(rec.Inventory), 0)
	testutil.AssertEqual(t, "color set", rec.Color != "", true)
	testutil.AssertEqual(t, "can edit", rec.CanEdit(), false)
	testutil.AssertEqual(t, "credentials", rec.HasCredentials(), true)
}
