package mesh

// buildVertices fills a regular grid of GridWidth x GridHeight vertices.
// Vertex (x, y) sits at position (x*scale, y*scale): the buffer is
// pre-scaled, so drawing needs only the mapper's translation.
func buildVertices(r Resolution) []float32 {
	s := float32(r.Scale)
	out := make([]float32, 0, r.VertexCount()*2)
	for y := 0; y < r.GridHeight; y++ {
		for x := 0; x < r.GridWidth; x++ {
			out = append(out, float32(x)*s, float32(y)*s)
		}
	}
	return out
}

// buildIndices triangulates the grid with two triangles per quad,
// producing 6*(w-1)*(h-1) indices in counter-clockwise winding.
func buildIndices(r Resolution) []uint32 {
	w := uint32(r.GridWidth)
	out := make([]uint32, 0, r.IndexCount())
	for y := 0; y < r.GridHeight-1; y++ {
		for x := 0; x < r.GridWidth-1; x++ {
			a := uint32(y)*w + uint32(x)
			b := a + 1
			c := a + w
			d := c + 1
			out = append(out, a, b, c, b, d, c)
		}
	}
	return out
}
