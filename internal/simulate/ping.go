// Package simulate produces placeholder network measurements for the dashboard. Nothing
// here touches the network.
package simulate

import (
	"math/rand/v2"

	"trafficdash/internal/model"
)

// Ping returns a plausible ping run derived only from seed: min in [5,24] ms, avg up to
// 14 ms above min, max up to 29 ms above avg, and packet loss in [0,4]% one run in five.
func Ping(seed int64) model.PingResult {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	minMs := rng.IntN(20) + 5
	avgMs := minMs + rng.IntN(15)
	maxMs := avgMs + rng.IntN(30)

	loss := 0
	if rng.Float64() >= 0.8 {
		loss = rng.IntN(5)
	}

	return model.PingResult{
		MinMs:       minMs,
		AvgMs:       avgMs,
		MaxMs:       maxMs,
		LossPercent: loss,
	}
}
