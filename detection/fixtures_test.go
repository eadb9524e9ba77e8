package detection

import (
	"fmt"
	"time"

	"go-aduan/types"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func at(lat, lng float64) types.Location {
	return types.Location{Coordinates: &types.Coordinates{Lat: lat, Lng: lng}, Village: "Karet Semanggi"}
}

func pothole(id string, lat float64, after time.Duration, text string) types.Report {
	return types.Report{
		ID:          id,
		Description: text,
		Location:    at(lat, 106.8456),
		Category:    types.Infrastructure,
		Severity:    types.High,
		CreatedAt:   t0.Add(after),
	}
}

func garbage(id string, lat float64, after time.Duration, text string) types.Report {
	return types.Report{
		ID:          id,
		Description: text,
		Location:    at(lat, 106.8456),
		Category:    types.Environment,
		Severity:    types.Medium,
		CreatedAt:   t0.Add(after),
	}
}

func reportA() types.Report {
	return pothole("a", -6.2088, 0, "Jalan berlubang besar di Jl. Sudirman dekat halte, sangat berbahaya untuk motor")
}

func reportB() types.Report {
	return pothole("b", -6.20871, time.Hour, "Lubang besar di Jl. Sudirman dekat halte membuat motor jatuh")
}

func reportD() types.Report {
	return pothole("d", -6.20862, 2*time.Hour, "Jalan berlubang di Jl. Sudirman dekat halte bikin motor jatuh")
}

// reportC is an unrelated environment complaint about 8 km from the potholes.
func reportC() types.Report {
	return garbage("c", -6.1368, 0, "Tumpukan sampah di pinggir sungai menimbulkan bau busuk")
}

func reportC2() types.Report {
	return garbage("c2", -6.13671, time.Hour, "Sampah menumpuk di pinggir sungai, bau busuk sekali")
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("cluster-%d", n)
	})
}

func fixedClock() Option {
	return WithClock(func() time.Time { return t0.Add(24 * time.Hour) })
}

func newEngine(mutate ...func(*types.ClusteringConfig)) *Engine {
	cfg := types.DefaultClusteringConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	return New(cfg, sequentialIDs(), fixedClock())
}
