package reconcile

import (
	"math"
	"sort"

	"github.com/ironsheep/docdiff/internal/geometry"
)

// Pair links an only-in-first item to an only-in-second item at roughly the
// same place on the page, which usually means the text was edited rather
// than added or removed.
type Pair struct {
	First    DifferenceItem `json:"first"`
	Second   DifferenceItem `json:"second"`
	Distance float64        `json:"distance"`
}

// PairClose matches only-in-first items to only-in-second items whose box
// centers are closer than threshold. Matching is greedy by ascending
// distance and each item is used at most once. Items that are not paired are
// returned unchanged in their original order.
func PairClose(items []DifferenceItem, threshold float64) (pairs []Pair, unpaired []DifferenceItem) {
	var firsts, seconds []int
	for i, it := range items {
		switch {
		case it.Kind == OnlyInFirst && it.First != nil:
			firsts = append(firsts, i)
		case it.Kind == OnlyInSecond && it.Second != nil:
			seconds = append(seconds, i)
		}
	}

	type candidate struct {
		fi, si int
		dist   float64
	}
	var candidates []candidate
	for _, fi := range firsts {
		for _, si := range seconds {
			a, b := items[fi].First.BoundingBox, items[si].Second.BoundingBox
			if geometry.IsClose(a, b, threshold) {
				candidates = append(candidates, candidate{fi, si, geometry.CenterDistance(a, b)})
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})

	used := make(map[int]bool)
	pairs = []Pair{}
	for _, c := range candidates {
		if used[c.fi] || used[c.si] {
			continue
		}
		used[c.fi], used[c.si] = true, true
		pairs = append(pairs, Pair{
			First:    items[c.fi],
			Second:   items[c.si],
			Distance: math.Round(c.dist*100) / 100,
		})
	}

	unpaired = []DifferenceItem{}
	for i, it := range items {
		if !used[i] {
			unpaired = append(unpaired, it)
		}
	}
	return pairs, unpaired
}
