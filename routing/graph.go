package routing

// Geometry is one road segment as supplied by a geometry source.
type Geometry struct {
	ID          string       // Source identifier (feature id or index)
	Coordinates []Coordinate // Ordered vertices, at least two
}

// Edge represents an undirected connection seen from one of its endpoints.
type Edge struct {
	To         int     // Node id of the opposite endpoint
	WeightKm   float64 // Great-circle length in kilometres
	GeometryID string  // Geometry the edge was first read from, diagnostics only
}

// Graph is an undirected weighted road graph. Nodes are addressed by dense
// integer ids assigned at build time. A Graph is never modified after
// BuildGraph returns and may be shared between goroutines.
type Graph struct {
	nodes []Coordinate     // Node id -> coordinate
	index map[coordKey]int // Rounded coordinate -> node id
	adj   [][]Edge         // Node id -> incident edges
	edges int              // Undirected edge count
}

type edgeKey struct {
	a, b int
}

// BuildGraph turns road geometries into a graph. Every consecutive vertex pair
// becomes an undirected edge weighted by Haversine; when the same pair shows up
// again (in either direction) the first weight is kept.
func BuildGraph(geoms []Geometry) *Graph {
	g := &Graph{
		index: make(map[coordKey]int),
	}
	seen := make(map[edgeKey]struct{})

	for _, geom := range geoms {
		if len(geom.Coordinates) < 2 {
			continue
		}
		for i := 0; i < len(geom.Coordinates)-1; i++ {
			a, b := geom.Coordinates[i], geom.Coordinates[i+1]
			u := g.addNode(a)
			v := g.addNode(b)
			if u == v {
				continue
			}

			k := edgeKey{a: u, b: v}
			if u > v {
				k = edgeKey{a: v, b: u}
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}

			w := Haversine(g.nodes[u], g.nodes[v])
			g.adj[u] = append(g.adj[u], Edge{To: v, WeightKm: w, GeometryID: geom.ID})
			g.adj[v] = append(g.adj[v], Edge{To: u, WeightKm: w, GeometryID: geom.ID})
			g.edges++
		}
	}

	return g
}

func (g *Graph) addNode(c Coordinate) int {
	k := c.key()
	if id, ok := g.index[k]; ok {
		return id
	}
	id := len(g.nodes)
	g.nodes = append(g.nodes, c)
	g.adj = append(g.adj, nil)
	g.index[k] = id
	return id
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return g.edges
}

// Node returns the coordinate of node id.
func (g *Graph) Node(id int) Coordinate {
	return g.nodes[id]
}

// Neighbors returns the edges incident to node id. The slice must not be modified.
func (g *Graph) Neighbors(id int) []Edge {
	return g.adj[id]
}

// Lookup returns the node id for c, if c (rounded to 6 decimals) is a node.
func (g *Graph) Lookup(c Coordinate) (int, bool) {
	if g == nil {
		return 0, false
	}
	id, ok := g.index[c.key()]
	return id, ok
}

// Weight returns the weight of the edge between u and v.
func (g *Graph) Weight(u, v int) (float64, bool) {
	e, ok := g.edge(u, v)
	return e.WeightKm, ok
}

// EdgeGeometry returns the id of the geometry the edge u-v was built from.
func (g *Graph) EdgeGeometry(u, v int) (string, bool) {
	e, ok := g.edge(u, v)
	return e.GeometryID, ok
}

func (g *Graph) edge(u, v int) (Edge, bool) {
	if u < 0 || u >= len(g.adj) {
		return Edge{}, false
	}
	for _, e := range g.adj[u] {
		if e.To == v {
			return e, true
		}
	}
	return Edge{}, false
}

// Coordinates maps a node id path to coordinates.
func (g *Graph) Coordinates(ids []int) []Coordinate {
	out := make([]Coordinate, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}
