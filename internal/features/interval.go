package features

import (
	"container/heap"
	"sort"

	"github.com/wonny/salescast/internal/contracts"
)

// segment is a maximal run of days [from, to] with a constant covering set
type segment struct {
	from, to int
	percent  float64 // max percent over covering windows
}

// intervalIndex answers "max discount covering (product, day)" per product by binary search
type intervalIndex struct {
	byProduct map[string][]segment
}

type dayWindow struct {
	start, end int
	percent    float64
}

// percentHeap is a max-heap on percent
type percentHeap []dayWindow

func (h percentHeap) Len() int           { return len(h) }
func (h percentHeap) Less(i, j int) bool { return h[i].percent > h[j].percent }
func (h percentHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *percentHeap) Push(x any)        { *h = append(*h, x.(dayWindow)) }
func (h *percentHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// newIntervalIndex groups windows by product and flattens each group into disjoint segments
func newIntervalIndex(windows []contracts.DiscountWindow) *intervalIndex {
	grouped := make(map[string][]dayWindow)
	for _, w := range windows {
		s, e := dayNumber(w.StartDate), dayNumber(w.EndDate)
		if e < s {
			continue
		}
		grouped[w.ProductName] = append(grouped[w.ProductName], dayWindow{start: s, end: e, percent: w.DiscountPercent})
	}

	idx := &intervalIndex{byProduct: make(map[string][]segment, len(grouped))}
	for product, spans := range grouped {
		idx.byProduct[product] = sweep(spans)
	}
	return idx
}

// sweep walks the sorted boundary days; between two boundaries the covering set is fixed,
// so the heap top (after dropping expired spans) is that run's max percent.
func sweep(spans []dayWindow) []segment {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	bounds := make([]int, 0, 2*len(spans))
	for _, s := range spans {
		bounds = append(bounds, s.start, s.end+1)
	}
	sort.Ints(bounds)
	bounds = compactInts(bounds)

	var (
		h    percentHeap
		out  []segment
		next int
	)
	for i := 0; i < len(bounds)-1; i++ {
		day := bounds[i]
		for next < len(spans) && spans[next].start <= day {
			heap.Push(&h, spans[next])
			next++
		}
		for h.Len() > 0 && h[0].end < day {
			heap.Pop(&h)
		}
		if h.Len() == 0 {
			continue
		}
		seg := segment{from: day, to: bounds[i+1] - 1, percent: h[0].percent}
		// merge with previous run when contiguous and equal
		if n := len(out); n > 0 && out[n-1].to+1 == seg.from && out[n-1].percent == seg.percent {
			out[n-1].to = seg.to
			continue
		}
		out = append(out, seg)
	}
	return out
}

// lookup returns the max covering percent for (product, day)
func (idx *intervalIndex) lookup(product string, day int) (float64, bool) {
	segs := idx.byProduct[product]
	i := sort.Search(len(segs), func(i int) bool { return segs[i].to >= day })
	if i < len(segs) && segs[i].from <= day {
		return segs[i].percent, true
	}
	return 0, false
}

func compactInts(s []int) []int {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
