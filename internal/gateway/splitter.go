package gateway

import (
	"math/rand"
)

// Splitter picks between the two user service versions. Each call draws a
// fresh uniform variate; there is deliberately no per-user stickiness, so
// consecutive requests from the same user may land on different versions.
type Splitter struct {
	probA  float64
	randFn func() float64
}

// NewSplitter builds a splitter that sends roughly probA of the traffic
// to backend A.
func NewSplitter(probA float64) *Splitter {
	return &Splitter{probA: probA, randFn: rand.Float64}
}

// Pick returns backend A with probability probA, otherwise backend B.
func (s *Splitter) Pick(backendA, backendB string) string {
	if s.randFn() < s.probA {
		return backendA
	}
	return backendB
}
