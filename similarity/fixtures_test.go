package similarity

import (
	"time"

	"go-aduan/types"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func at(lat, lng float64) types.Location {
	return types.Location{Coordinates: &types.Coordinates{Lat: lat, Lng: lng}}
}

// reportA and reportB describe the same pothole 10 m and one hour apart.
func reportA() types.Report {
	return types.Report{
		ID:          "a",
		Description: "Jalan berlubang besar di Jl. Sudirman dekat halte, sangat berbahaya untuk motor",
		Location:    at(-6.2088, 106.8456),
		Category:    types.Infrastructure,
		Severity:    types.High,
		CreatedAt:   t0,
	}
}

func reportB() types.Report {
	return types.Report{
		ID:          "b",
		Description: "Lubang besar di Jl. Sudirman dekat halte membuat motor jatuh",
		Location:    at(-6.20871, 106.8456),
		Category:    types.Infrastructure,
		Severity:    types.High,
		CreatedAt:   t0.Add(time.Hour),
	}
}

// reportC is an unrelated environment complaint about 8 km away.
func reportC() types.Report {
	return types.Report{
		ID:          "c",
		Description: "Tumpukan sampah di pinggir sungai menimbulkan bau busuk",
		Location:    at(-6.1368, 106.8456),
		Category:    types.Environment,
		Severity:    types.Medium,
		CreatedAt:   t0,
	}
}
