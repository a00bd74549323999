package routing

import (
	"container/heap"
	"context"
	"errors"
	"math"
)

// ErrNoPath is returned by ShortestPath when the target cannot be reached.
var ErrNoPath = errors.New("no path found")

// Path is a node sequence from start to end, both included.
type Path struct {
	Nodes      []int
	DistanceKm float64
}

type PriorityQueueItem struct {
	NodeID   int
	Priority float64
	Index    int
}

type PriorityQueue []*PriorityQueueItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	return pq[i].Priority < pq[j].Priority
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*PriorityQueueItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	*pq = old[0 : n-1]
	return item
}

// ctxCheckInterval is how many nodes a search settles between context checks.
const ctxCheckInterval = 1024

// shortestTree runs Dijkstra from start. When target is a valid node id the
// search stops as soon as target is settled; pass -1 to settle every
// reachable node. Unreached nodes keep an infinite distance and prev -1.
func shortestTree(g *Graph, start, target int) (dist []float64, prev []int) {
	dist, prev, _, _ = search(context.Background(), g, start, func(u int, _ float64) bool {
		return u == target
	})
	return dist, prev
}

// search runs Dijkstra from start and calls stop after each node is settled
// with its final distance. The search ends when stop returns true or the
// frontier is empty. Only nodes marked settled carry final distances.
func search(ctx context.Context, g *Graph, start int, stop func(u int, d float64) bool) (dist []float64, prev []int, settled []bool, err error) {
	n := g.NodeCount()
	dist = make([]float64, n)
	prev = make([]int, n)
	settled = make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}

	dist[start] = 0
	frontier := &PriorityQueue{}
	heap.Init(frontier)
	heap.Push(frontier, &PriorityQueueItem{NodeID: start, Priority: 0})

	count := 0
	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(*PriorityQueueItem)
		u := current.NodeID
		if settled[u] {
			continue
		}
		settled[u] = true
		if stop(u, dist[u]) {
			return dist, prev, settled, nil
		}

		count++
		if count%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return dist, prev, settled, err
			}
		}

		for _, e := range g.adj[u] {
			if settled[e.To] {
				continue
			}
			candidate := dist[u] + e.WeightKm
			if candidate < dist[e.To] {
				dist[e.To] = candidate
				prev[e.To] = u
				heap.Push(frontier, &PriorityQueueItem{NodeID: e.To, Priority: candidate})
			}
		}
	}

	return dist, prev, settled, nil
}

func reconstructPath(prev []int, start, end int) []int {
	var path []int
	for current := end; current != -1; current = prev[current] {
		path = append(path, current)
		if current == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ShortestPath returns the minimum-weight path between two nodes.
func ShortestPath(g *Graph, from, to int) (Path, error) {
	n := g.NodeCount()
	if from < 0 || from >= n || to < 0 || to >= n {
		return Path{}, ErrNoPath
	}
	if from == to {
		return Path{Nodes: []int{from}}, nil
	}

	dist, prev := shortestTree(g, from, to)
	if math.IsInf(dist[to], 1) {
		return Path{}, ErrNoPath
	}

	return Path{Nodes: reconstructPath(prev, from, to), DistanceKm: dist[to]}, nil
}

// PathWeight sums the edge weights along a node path. It reports false if two
// consecutive nodes are not adjacent.
func PathWeight(g *Graph, nodes []int) (float64, bool) {
	total := 0.0
	for i := 0; i+1 < len(nodes); i++ {
		w, ok := g.Weight(nodes[i], nodes[i+1])
		if !ok {
			return 0, false
		}
		total += w
	}
	return total, true
}
