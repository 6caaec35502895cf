package topk

import (
	"sync"

	"github.com/keilerkonzept/topk/sliding"
)

// SketchParams configures the sliding-window top-k sketch.
type SketchParams struct {
	K          int    // number of identifiers reported
	WindowSize int    // window length, in ticks
	Width      int    // counters per row
	Depth      int    // rows
	TickSize   uint64 // observations per tick
}

// Item is one identifier with its estimated count in the current window.
type Item struct {
	Identifier string `json:"identifier"`
	Count      uint32 `json:"count"`
}

// Sketch tracks the busiest identifiers seen on the proxy path. Time is
// measured in observations: the window advances one tick every TickSize
// calls to Observe, so quiet periods do not age the counts.
type Sketch struct {
	mu         sync.Mutex
	sketch     *sliding.Sketch
	tickSize   uint64
	tickReq    uint64 // observations since last tick
	tickCount  uint64
	windowSize int
}

func New(params SketchParams) *Sketch {
	if params.TickSize == 0 {
		params.TickSize = 1000
	}
	return &Sketch{
		sketch:     sliding.New(params.K, params.WindowSize, sliding.WithWidth(params.Width), sliding.WithDepth(params.Depth)),
		tickSize:   params.TickSize,
		windowSize: params.WindowSize,
	}
}

func (s *Sketch) Observe(identifier string) {
	if identifier == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sketch.Incr(identifier)
	s.tickReq++
	if s.tickReq >= s.tickSize {
		s.sketch.Tick()
		s.tickCount++
		s.tickReq = 0
	}
}

// Top returns the tracked identifiers ordered by descending count.
func (s *Sketch) Top() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := s.sketch.SortedSlice()
	items := make([]Item, 0, len(sorted))
	for _, it := range sorted {
		if it.Count == 0 {
			continue
		}
		items = append(items, Item{Identifier: it.Item, Count: it.Count})
	}
	return items
}

// Window returns the window length in observations.
func (s *Sketch) Window() uint64 {
	return uint64(s.windowSize) * s.tickSize
}

func (s *Sketch) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickCount
}
