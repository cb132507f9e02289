package main

import (
	"flag"
	"log"

	"roadtrack/track"
)

// main builds a tiny synthetic two-edge road network, drives the sampler
// to generate a trajectory plus matching observations, chains a
// VehicleState onto each observation, and logs the sampled path, the
// observation and the confidence ellipse of the sampled belief. It is
// deliberately thin: ingestion and HTTP are out-of-scope collaborators
// here, not deliverables.
func main() {
	seed := flag.Uint64("seed", 1, "deterministic RNG seed (0 = fresh entropy)")
	steps := flag.Int("steps", 5, "number of simulated observations")
	configPath := flag.String("config", "", "optional InitialParameters XML file")
	flag.Parse()

	params := track.DefaultInitialParameters()
	if *configPath != "" {
		loaded, err := track.LoadInitialParameters(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		params = loaded
	}
	params.Seed = *seed

	graph, edge1, edge2 := buildDemoGraph()
	index := track.NewRTreeEdgeIndex([]track.Edge{edge1, edge2})
	rng := track.NewRNG(params.Seed)
	filter := track.NewFilter(params.ObsVariance, params.OnRoadStateVariance, params.OffRoadStateVariance)
	sampler := track.NewSampler(graph, index, rng)

	origin, err := track.NewGeoreference(track.LatLon{Lat: 40.0, Lon: -73.0})
	if err != nil {
		log.Fatalf("georeference: %v", err)
	}
	_ = origin

	startPE := track.NewPathEdge(edge1, 0)
	belief := &track.RoadBelief{M: []float64{0, 10}, P: [][]float64{{1, 0}, {0, 1}}}
	transition := track.NewTransitionDistribution(params.OffTransitionProbs, params.OnTransitionProbs)

	var prevObs *track.Observation
	var parent *track.VehicleState
	b := track.Belief(belief)
	for i := 0; i < *steps; i++ {
		path, newBelief, err := sampler.TraverseEdge(transition, b, startPE, filter, params.DefaultDt)
		if err != nil {
			log.Fatalf("step %d: traverse edge: %v", i, err)
		}
		b = newBelief

		pe := path.Last()
		z, err := sampler.SampleObservation(filter, b, pe)
		if err != nil {
			log.Fatalf("step %d: sample observation: %v", i, err)
		}

		obs, err := track.NewObservation(int64(i+1)*30, track.LatLon{}, track.Point{X: z[0], Y: z[1]}, prevObs)
		if err != nil {
			log.Fatalf("step %d: observation: %v", i, err)
		}
		prevObs = obs

		var state *track.VehicleState
		if parent == nil {
			state, err = track.NewInitialVehicleState(filter, params, obs, pe.E, 0)
		} else {
			state, err = track.NewTransitionVehicleState(parent, b, path, pe, obs)
		}
		if err != nil {
			log.Fatalf("step %d: vehicle state: %v", i, err)
		}
		parent = state

		outMean, outMajor, outMinor, err := filter.OutputEllipse(b, pe)
		if err != nil {
			log.Fatalf("step %d: output ellipse: %v", i, err)
		}
		log.Printf("step %d: path=%v total=%.2f obs=(%.2f, %.2f) mean=(%.2f, %.2f) ellipse=[(%.2f, %.2f), (%.2f, %.2f)]",
			i, edgeIDs(path), path.TotalDistance(), z[0], z[1], outMean.X, outMean.Y, outMajor.X, outMajor.Y, outMinor.X, outMinor.Y)

		if pe.E.IsEmpty() {
			startPE = track.EmptyPathEdge
		} else {
			startPE = pe
		}
	}
}

func buildDemoGraph() (*track.AdjacencyGraph, *track.RoadEdge, *track.RoadEdge) {
	g := track.NewAdjacencyGraph()
	e1 := track.NewRoadEdge(1, []track.Point{{X: 0, Y: 0}, {X: 100, Y: 0}})
	e2 := track.NewRoadEdge(2, []track.Point{{X: 100, Y: 0}, {X: 200, Y: 0}})
	g.Connect(e1, e2)
	return g, e1, e2
}

func edgeIDs(p *track.Path) []int64 {
	ids := make([]int64, 0, len(p.Edges()))
	for _, pe := range p.Edges() {
		ids = append(ids, pe.E.ID())
	}
	return ids
}
