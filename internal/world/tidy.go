package world

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-errors"
)

// GridKey parses a zone index key of the form "x,y".
func GridKey(key string) (int, int, bool) {
	xs, ys, ok := strings.Cut(key, ",")
	if !ok {
		return 0, 0, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return 0, 0, false
	}
	return x, y, true
}

// TidyEdges links neighbouring rooms of every grid-laid zone with walk-into
// exits on their shared edges, then rewrites every room file. Grids that were
// short on load have already been padded with the store's fill terrain, so
// they are written out complete. It returns the number of rooms written.
func TidyEdges(s *Store) (int, error) {
	el := errors.NewErrorList()
	written := 0

	for _, z := range s.Zones() {
		grid := map[[2]int]*Room{}
		for _, key := range z.Keys() {
			x, y, ok := GridKey(key)
			r := z.RoomByKey(key)
			if !ok || r == nil {
				continue
			}
			grid[[2]int{x, y}] = r
		}

		linked := map[int]*Room{}
		for pos, room := range grid {
			next := room.clone()
			linkEdges(next, pos, grid)
			linked[room.ID] = next
		}

		for _, id := range z.RoomIDs() {
			room := z.Room(id)
			if l, ok := linked[id]; ok {
				room = l
			}
			if err := s.SaveRoom(z.ID, room); err != nil {
				el.Add(fmt.Errorf("zone %q: %w", z.ID, err))
				continue
			}
			written++
		}
	}

	return written, el.Err()
}

func linkEdges(r *Room, pos [2]int, grid map[[2]int]*Room) {
	rx, ry := pos[0], pos[1]
	set := func(x, y int, apply func(*TileExits)) {
		t := &r.Tiles[y][x]
		if t.TileExits == nil {
			t.TileExits = &TileExits{}
		}
		apply(t.TileExits)
	}

	if n, ok := grid[[2]int{rx + 1, ry}]; ok {
		for y := 0; y < r.Height; y++ {
			target := &ExitTarget{RoomID: n.ID, X: 0, Y: min(y, n.Height-1)}
			set(r.Width-1, y, func(e *TileExits) { e.Right = target })
		}
	}
	if n, ok := grid[[2]int{rx - 1, ry}]; ok {
		for y := 0; y < r.Height; y++ {
			target := &ExitTarget{RoomID: n.ID, X: n.Width - 1, Y: min(y, n.Height-1)}
			set(0, y, func(e *TileExits) { e.Left = target })
		}
	}
	if n, ok := grid[[2]int{rx, ry + 1}]; ok {
		for x := 0; x < r.Width; x++ {
			target := &ExitTarget{RoomID: n.ID, X: min(x, n.Width-1), Y: 0}
			set(x, r.Height-1, func(e *TileExits) { e.Down = target })
		}
	}
	if n, ok := grid[[2]int{rx, ry - 1}]; ok {
		for x := 0; x < r.Width; x++ {
			target := &ExitTarget{RoomID: n.ID, X: min(x, n.Width-1), Y: n.Height - 1}
			set(x, 0, func(e *TileExits) { e.Up = target })
		}
	}
}
