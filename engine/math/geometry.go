package math

// ComputeExtents returns the bounding box of the given points. An empty
// slice yields a zero box.
func ComputeExtents(points [][3]float32) Extents3D {
	if len(points) == 0 {
		return Extents3D{}
	}
	e := Extents3D{
		Min: NewVec3(K_INFINITY, K_INFINITY, K_INFINITY),
		Max: NewVec3(-K_INFINITY, -K_INFINITY, -K_INFINITY),
	}
	for _, p := range points {
		e.Min.X = min(e.Min.X, p[0])
		e.Min.Y = min(e.Min.Y, p[1])
		e.Min.Z = min(e.Min.Z, p[2])
		e.Max.X = max(e.Max.X, p[0])
		e.Max.Y = max(e.Max.Y, p[1])
		e.Max.Z = max(e.Max.Z, p[2])
	}
	return e
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

func (e Extents3D) Size() Vec3 {
	return e.Max.Sub(e.Min)
}

// Radius is half the length of the box diagonal.
func (e Extents3D) Radius() float32 {
	return 0.5 * e.Size().Length()
}
