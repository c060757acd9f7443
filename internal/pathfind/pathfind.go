package pathfind

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is a convenience constructor for Point.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns the component-wise sum of two points.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Grid is a rectangular tile map that can answer whether a tile is walkable.
type Grid interface {
	Size() (width, height int)
	Passable(x, y int) bool
}

// neighbours is the order in which adjacent tiles are explored. Among paths of
// equal length, the first one reached in this order wins.
var neighbours = [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Find returns a shortest 4-connected path from start to end, both included.
// ok is false when either end is outside the grid or impassable, or when no
// path exists.
func Find(g Grid, start, end Point) ([]Point, bool) {
	w, h := g.Size()
	inGrid := func(p Point) bool {
		return p.X >= 0 && p.Y >= 0 && p.X < w && p.Y < h && g.Passable(p.X, p.Y)
	}
	if !inGrid(start) || !inGrid(end) {
		return nil, false
	}
	if start == end {
		return []Point{start}, true
	}

	prev := make(map[Point]Point, w*h)
	prev[start] = start
	queue := []Point{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, d := range neighbours {
			next := cur.Add(d)
			if _, seen := prev[next]; seen || !inGrid(next) {
				continue
			}
			prev[next] = cur
			if next == end {
				return walkBack(prev, start, end), true
			}
			queue = append(queue, next)
		}
	}

	return nil, false
}

func walkBack(prev map[Point]Point, start, end Point) []Point {
	var path []Point
	for p := end; p != start; p = prev[p] {
		path = append(path, p)
	}
	path = append(path, start)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
