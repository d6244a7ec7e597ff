package adaptel

import (
	"container/heap"
)

// candidate is a pending pixel offered to the growing region.
type candidate struct {
	info float64
	idx  int
}

// candidateQueue is a min-heap on info, ties broken by pixel index. The
// same pixel may be queued more than once; entries for pixels already in
// the region are dropped on pop.
type candidateQueue []candidate

func (q candidateQueue) Len() int { return len(q) }
func (q candidateQueue) Less(i, j int) bool {
	if q[i].info != q[j].info {
		return q[i].info < q[j].info
	}
	return q[i].idx < q[j].idx
}
func (q candidateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *candidateQueue) Push(x any) {
	*q = append(*q, x.(candidate))
}

func (q *candidateQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// neighbor offsets in the order up, left, right, down.
var (
	neighborDY = [4]int{-1, 0, 0, 1}
	neighborDX = [4]int{0, -1, 1, 0}
)

// grower grows one region at a time by best-first flood fill. Its buffers
// are reused across regions of the same run.
type grower struct {
	src       sampler
	width     int
	height    int
	threshold float64

	// labels, when set, fences growth: pixels with a non-zero label are
	// never offered to the region.
	labels []int32

	model   *RegionModel
	queue   candidateQueue
	visited []bool
	members []int

	value []float64
	probe []float64

	candidates int
}

func newGrower(src sampler, width, height int, threshold float64, model *RegionModel) *grower {
	c := src.channels()
	return &grower{
		src:       src,
		width:     width,
		height:    height,
		threshold: threshold,
		model:     model,
		visited:   make([]bool, width*height),
		value:     make([]float64, c),
		probe:     make([]float64, c),
	}
}

// start clears the previous region and queues seed with zero information.
func (g *grower) start(seed int) {
	for _, idx := range g.members {
		g.visited[idx] = false
	}
	g.members = g.members[:0]
	g.queue = g.queue[:0]
	g.model.Reset()
	g.candidates = 0
	g.push(seed, 0)
}

func (g *grower) push(idx int, info float64) {
	heap.Push(&g.queue, candidate{info: info, idx: idx})
}

// drain admits the lowest-information pending pixel until the queue is
// empty. least is shared by every region of the run and only ever lowered.
func (g *grower) drain(least []float64) {
	for g.queue.Len() > 0 {
		item := heap.Pop(&g.queue).(candidate)
		if g.visited[item.idx] {
			continue
		}
		g.visited[item.idx] = true
		g.members = append(g.members, item.idx)

		g.src.at(item.idx, g.value)
		g.model.Commit(g.value)
		if info := g.model.Info(); info < least[item.idx] {
			least[item.idx] = info
		}

		y, x := item.idx/g.width, item.idx%g.width
		for k := 0; k < 4; k++ {
			py, px := y+neighborDY[k], x+neighborDX[k]
			if py < 0 || py >= g.height || px < 0 || px >= g.width {
				continue
			}
			n := py*g.width + px
			if g.visited[n] || (g.labels != nil && g.labels[n] != 0) {
				continue
			}
			g.src.at(n, g.probe)
			p := g.model.Probe(g.probe)
			if p < g.threshold && p < least[n] {
				least[n] = p
				g.push(n, p)
				g.candidates++
			}
		}
	}
}

// grow runs one full region growth from seed and returns its members. The
// returned slice is only valid until the next call.
func (g *grower) grow(seed int, least []float64) []int {
	g.start(seed)
	g.drain(least)
	return g.members
}
