package game

import (
	"log/slog"
	"time"

	"github.com/pixil98/go-tileworld/internal/pathfind"
)

// roam may start a random walk for n. The target tile is drawn from the whole
// room without looking at terrain; unreachable picks are simply dropped.
func (s *Simulation) roam(n *NPCInstance) {
	t := s.npcs.Template(n.TypeID)
	if t == nil || t.Roam == nil || t.Roam.Type != RoamRandom {
		return
	}
	if n.MovePath != nil {
		return
	}
	if s.rng.Float64()*100 >= t.Roam.Frequency {
		return
	}

	room, err := s.world.Room(n.Zone, n.RoomID)
	if err != nil {
		slog.Warn("npc is in an unknown room", "instance", n.InstanceID, "zone", n.Zone, "room", n.RoomID)
		return
	}
	w, h := room.Size()
	if w == 0 || h == 0 {
		return
	}

	target := pathfind.Pt(s.rng.IntN(w), s.rng.IntN(h))
	path, ok := pathfind.Find(room, n.Pos(), target)
	if !ok {
		return
	}
	steps := len(path) - 1
	if steps == 0 || steps < t.Roam.MinDuration || steps > t.Roam.MaxDuration {
		return
	}

	rate := t.Roam.Rate
	if rate <= 0 {
		rate = 1
	}
	step := time.Duration(float64(s.baseStep) / rate)
	total := time.Duration(steps) * step

	n.MovePath = path
	n.MoveStartTick = s.clock.Tick
	n.MoveDuration = total.Milliseconds()

	s.BroadcastToRoom(n.Zone, n.RoomID, NPCStartPathMessage{
		Type:         MsgNPCStartPath,
		InstanceID:   n.InstanceID,
		Path:         path,
		StepDuration: step.Milliseconds(),
	})

	id := n.InstanceID
	s.timers.Schedule(id, total, func() {
		s.finishMove(id, path[len(path)-1])
	})
}

// finishMove snaps an NPC onto the last tile of its path. A room that shrank
// during the walk pulls the end back inside its bounds.
func (s *Simulation) finishMove(id string, end pathfind.Point) {
	n := s.npcs.Find(id)
	if n == nil {
		return
	}

	if room, err := s.world.Room(n.Zone, n.RoomID); err == nil {
		w, h := room.Size()
		end.X = max(min(end.X, w-1), 0)
		end.Y = max(min(end.Y, h-1), 0)
	}

	n.X, n.Y = end.X, end.Y
	n.MovePath = nil
	n.MoveStartTick = 0
	n.MoveDuration = 0
	s.npcs.persist()

	s.BroadcastToRoom(n.Zone, n.RoomID, NPCMoveMessage{
		Type:       MsgNPCMove,
		InstanceID: n.InstanceID,
		X:          n.X,
		Y:          n.Y,
	})
}
