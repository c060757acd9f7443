package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-tileworld/internal/game"
	"github.com/pixil98/go-tileworld/internal/player"
)

type state int

const (
	awaitingAuth state = iota
	authenticated
	closed
)

func (s state) String() string {
	switch s {
	case awaitingAuth:
		return "awaiting-auth"
	case authenticated:
		return "authenticated"
	default:
		return "closed"
	}
}

// Session is the protocol state of one connection.
type Session struct {
	router *Router
	conn   Conn
	state  state
	player *player.Connection
}

type authRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Create   bool   `json:"create"`
}

// Player returns the character bound to the session, or nil before login.
func (s *Session) Player() *player.Connection {
	return s.player
}

// Handle processes one inbound frame.
func (s *Session) Handle(data []byte) {
	switch s.state {
	case awaitingAuth:
		s.authenticate(data)
	case authenticated:
		s.dispatch(data)
	default:
		slog.Debug("dropping message on closed session", "category", "protocol")
	}
}

func (s *Session) authenticate(data []byte) {
	var req authRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Name == "" || req.Password == "" {
		slog.Info("rejecting malformed login", "category", "protocol", "error", err)
		s.hangUp()
		return
	}
	if !player.ValidName(req.Name) {
		slog.Info("rejecting login with invalid name", "category", "protocol", "name", req.Name)
		s.hangUp()
		return
	}

	rec, err := s.login(req)
	if err != nil {
		var ae *AuthError
		if errors.As(err, &ae) {
			slog.Info("login refused", "name", req.Name, "reason", ae.Message)
			s.refuse(ae.Message)
			return
		}
		slog.Error("login failed", "name", req.Name, "error", err)
		s.refuse(msgGenericFailure)
		return
	}

	if err := s.join(rec); err != nil {
		slog.Error("joining world", "name", rec.Name, "error", err)
		s.refuse(msgGenericFailure)
	}
}

// login checks credentials, creating the character when asked to.
func (s *Session) login(req authRequest) (*player.Record, error) {
	sim := s.router.sim
	key := player.Key(req.Name)
	rec := sim.Records().Get(key)

	if rec == nil {
		if !req.Create {
			return nil, NewAuthError(msgNotFound)
		}

		salt, hash, err := player.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		zone, roomID := sim.DefaultLocation()
		rec = player.NewRecord(req.Name, zone, roomID, salt, hash)
		if err := sim.Records().Save(key, rec); err != nil {
			return nil, fmt.Errorf("creating character %s: %w", req.Name, err)
		}
		slog.Info("character created", "name", rec.Name)
		return rec, nil
	}

	if req.Create {
		return nil, NewAuthError(msgCharacterExists)
	}
	if !rec.HasCredentials() {
		slog.Error("character record has no credentials", "name", rec.Name, "category", "persistence")
		return nil, NewAuthError(msgCorruptRecord)
	}
	ok, err := player.CheckPassword(rec, req.Password)
	if err != nil {
		slog.Error("checking password", "name", rec.Name, "category", "persistence", "error", err)
		return nil, NewAuthError(msgCorruptRecord)
	}
	if !ok {
		return nil, NewAuthError(msgWrongPassword)
	}
	if sim.Players().LookupName(rec.Name) != nil {
		return nil, NewAuthError(msgAlreadyOnline)
	}

	return rec, nil
}

// join registers the character and sends the opening snapshot.
func (s *Session) join(rec *player.Record) error {
	sim := s.router.sim

	if _, err := sim.World().Room(rec.Zone, rec.RoomID); err != nil {
		zone, roomID := sim.DefaultLocation()
		slog.Warn("character saved in unknown room, moving to default",
			"name", rec.Name, "zone", rec.Zone, "room", rec.RoomID)
		rec.Zone, rec.RoomID = zone, roomID
		rec.X, rec.Y = 0, 0
	}

	players := sim.Players()
	c, err := players.Register(players.NextID(), rec, s.conn)
	if err != nil {
		return err
	}
	s.player = c
	s.state = authenticated

	var infos []game.PlayerInfo
	players.ForEach(func(other *player.Connection) {
		infos = append(infos, game.NewPlayerInfo(other))
	})
	zone, roomID := sim.DefaultLocation()

	s.send(game.InitMessage{
		Type:          game.MsgInit,
		ID:            c.ID,
		Players:       infos,
		DefaultZone:   zone,
		DefaultRoomID: roomID,
	})
	s.send(game.NewTimeUpdate(sim.Clock()))
	s.send(sim.RoomObjects(c.Zone, c.RoomID))
	s.send(sim.Inventory(c.Name()))
	s.send(sim.RoomNPCs(c.Zone, c.RoomID))

	if err := players.BroadcastAll(game.JoinMessage{Type: game.MsgJoin, Player: game.NewPlayerInfo(c)}, c.ID); err != nil {
		slog.Error("announcing join", "conn", c.ID, "error", err)
	}

	slog.Info("player joined", "conn", c.ID, "name", c.Name(), "zone", c.Zone, "room", c.RoomID)
	return nil
}

func (s *Session) dispatch(data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
		slog.Warn("malformed message", "conn", s.player.ID, "category", "protocol", "error", err)
		s.send(game.NewError(msgGenericFailure))
		return
	}

	h, ok := s.router.handlers[env.Type]
	if !ok {
		slog.Warn("unknown message type", "conn", s.player.ID, "type", env.Type, "category", "protocol")
		s.send(game.NewError(msgGenericFailure))
		return
	}

	err := s.run(h, data)
	if err == nil {
		return
	}

	var uf userFacing
	if errors.As(err, &uf) {
		slog.Debug("request rejected", "conn", s.player.ID, "type", env.Type, "reason", uf.userMessage())
		s.send(game.NewError(uf.userMessage()))
		return
	}
	slog.Error("handling message", "conn", s.player.ID, "type", env.Type, "category", "protocol", "error", err)
	s.send(game.NewError(msgGenericFailure))
}

// run calls h, converting a panic into an error so the session survives it.
func (s *Session) run(h HandlerFunc, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(s, data)
}

// Close tears the session down after the transport has gone away. The
// character is saved, removed from the registry and announced as gone.
func (s *Session) Close() {
	prev := s.state
	s.state = closed
	if prev != authenticated {
		return
	}

	sim := s.router.sim
	c := s.player
	if err := sim.SavePlayer(c); err != nil {
		slog.Error("saving player on disconnect", "name", c.Name(), "category", "persistence", "error", err)
	}
	sim.Players().Deregister(c.ID)
	if err := sim.Players().BroadcastAll(game.LeaveMessage{Type: game.MsgLeave, ID: c.ID}); err != nil {
		slog.Error("announcing leave", "conn", c.ID, "error", err)
	}

	slog.Info("player left", "conn", c.ID, "name", c.Name())
}

// send delivers msg to this session's character through the registry.
func (s *Session) send(msg any) {
	s.router.sim.SendToPlayer(s.player.ID, msg)
}

// refuse answers a failed login directly on the transport and closes it.
func (s *Session) refuse(msg string) {
	data, err := json.Marshal(game.NewError(msg))
	if err == nil {
		s.conn.Deliver(data)
	}
	s.hangUp()
}

func (s *Session) hangUp() {
	s.state = closed
	s.conn.Close()
}
