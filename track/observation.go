package track

// Observation is one GPS fix in a per-vehicle chain (spec §3). XWorld is
// the geographic coordinate; XProj is the local planar projection.
// Observations link to their predecessor via Prev; timestamps must
// strictly increase along the chain.
type Observation struct {
	Timestamp int64
	XWorld    LatLon
	XProj     Point
	Prev      *Observation
}

// NewObservation links obs onto prev, enforcing spec §3's strictly
// increasing timestamp requirement. A nil prev always succeeds (it is the
// first observation in a chain).
func NewObservation(timestamp int64, world LatLon, proj Point, prev *Observation) (*Observation, error) {
	if prev != nil && timestamp <= prev.Timestamp {
		return nil, &TimeOrderError{Prev: prev.Timestamp, Got: timestamp}
	}
	return &Observation{Timestamp: timestamp, XWorld: world, XProj: proj, Prev: prev}, nil
}

// DeltaT returns the elapsed seconds since Prev, or DefaultDt if there is
// no predecessor (spec §9: the 30s magic number, exposed here rather than
// hard-coded).
func (o *Observation) DeltaT(defaultDt float64) float64 {
	if o.Prev == nil {
		return defaultDt
	}
	return float64(o.Timestamp-o.Prev.Timestamp)
}
