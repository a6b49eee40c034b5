package soil_column

// Grid is the fine heat grid of a column. Nodes of a layer are spaced evenly,
// with the distance from a layer border to its nearest node half the in-layer spacing.
// Elements, the intervals between adjacent nodes, may cross layer borders.
type Grid struct {
	NodesPerLayer int
	Nodes         []float64 // depth of each node below the surface, m
	H             []float64 // H[k] distance from node k-1 (surface for k=0) to node k, m
	depth         float64   // total depth, m
}

// NewGrid lays out nodesPerLayer nodes in every layer of depths (mm).
func NewGrid(depths []float64, nodesPerLayer int) *Grid {
	n := len(depths) * nodesPerLayer
	g := &Grid{
		NodesPerLayer: nodesPerLayer,
		Nodes:         make([]float64, n),
		H:             make([]float64, n),
	}
	border := 0.0
	for l, d := range depths {
		dm := d / 1000
		for j := 0; j < nodesPerLayer; j++ {
			g.Nodes[l*nodesPerLayer+j] = border + dm/float64(nodesPerLayer*2) + (dm/float64(nodesPerLayer))*float64(j)
		}
		border += dm
	}
	g.depth = border
	g.Spacings(g.H)
	return g
}

// Spacings writes the node-to-node distances into h, which must have one entry per node.
// The solvers get a fresh copy every day since snow and litter lengthen the top element.
func (g *Grid) Spacings(h []float64) {
	prev := 0.0
	for k, x := range g.Nodes {
		h[k] = x - prev
		prev = x
	}
}

// Depth is the total column depth, m.
func (g *Grid) Depth() float64 { return g.depth }

// DeepestNode is the depth of the last node, equal to the sum of all spacings.
func (g *Grid) DeepestNode() float64 {
	if len(g.Nodes) == 0 {
		return 0
	}
	return g.Nodes[len(g.Nodes)-1]
}
