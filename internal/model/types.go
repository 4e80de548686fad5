package model

// Point is a geographic coordinate
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Clamp normalizes a point so latitude stays within [-90, 90] and
// longitude is wrapped into [-180, 180)
func (p Point) Clamp() Point {
	lat := p.Lat
	if lat > 90 {
		lat = 90
	} else if lat < -90 {
		lat = -90
	}
	lng := p.Lng
	for lng >= 180 {
		lng -= 360
	}
	for lng < -180 {
		lng += 360
	}
	return Point{Lat: lat, Lng: lng}
}

// Bounds is an axis-aligned map viewport: south-west and north-east
// corners plus the client zoom level. A viewport whose west edge lies
// east of its east edge spans the antimeridian.
type Bounds struct {
	SouthWest Point   `json:"sw"`
	NorthEast Point   `json:"ne"`
	Zoom      float64 `json:"zoom"`
}

// SpansAntimeridian reports whether the viewport crosses the 180th meridian
func (b *Bounds) SpansAntimeridian() bool {
	return b.SouthWest.Lng > b.NorthEast.Lng
}

// Contains reports whether the point lies within the viewport. Zoom does
// not affect containment.
func (b *Bounds) Contains(p Point) bool {
	if p.Lat < b.SouthWest.Lat || p.Lat > b.NorthEast.Lat {
		return false
	}
	if b.SpansAntimeridian() {
		return p.Lng >= b.SouthWest.Lng || p.Lng <= b.NorthEast.Lng
	}
	return p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}
