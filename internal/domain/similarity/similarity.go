// Package similarity finds nearest peers by distance over normalized indicators.
package similarity

import (
	"math"
	"sort"

	"github.com/tourstat/compass/internal/domain/model"
)

// Peer is one neighbor of an entity with its distance.
type Peer struct {
	EntityID string
	Distance float64
}

// Nearest returns the k closest peers per entity. Distance is the root mean
// square difference over the indicators both entities carry non-null; a pair
// sharing no indicator is not comparable and produces no peer link. Ties are
// broken by the population's stable input order.
func Nearest(sets []model.NormalizedSet, indicators []string, k int) map[string][]Peer {
	out := make(map[string][]Peer, len(sets))
	if k <= 0 {
		return out
	}
	for i, a := range sets {
		peers := make([]Peer, 0, len(sets)-1)
		for j, b := range sets {
			if i == j {
				continue
			}
			if d, ok := distance(a, b, indicators); ok {
				peers = append(peers, Peer{EntityID: b.EntityID, Distance: d})
			}
		}
		sort.SliceStable(peers, func(x, y int) bool {
			return peers[x].Distance < peers[y].Distance
		})
		if len(peers) > k {
			peers = peers[:k]
		}
		out[a.EntityID] = peers
	}
	return out
}

func distance(a, b model.NormalizedSet, indicators []string) (float64, bool) {
	sum, n := 0.0, 0
	for _, name := range indicators {
		av, bv := a.Get(name), b.Get(name)
		if !av.Valid || !bv.Valid {
			continue
		}
		d := av.Float64 - bv.Float64
		sum += d * d
		n++
	}
	if n == 0 {
		return 0, false
	}
	return math.Sqrt(sum / float64(n)), true
}
