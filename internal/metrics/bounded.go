package metrics

import (
	"math"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
)

// Bounded reports the fraction of rows whose components all stay within
// [-threshold, threshold].
type Bounded struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewBounded(threshold float64) *Bounded {
	return &Bounded{
		name:      "bounded",
		threshold: threshold,
	}
}

func (b *Bounded) Name() string {
	return b.name
}

func (b *Bounded) Observe(t float64, x dynamo.State) {
	b.samples++
	for _, val := range x {
		if math.IsNaN(val) || math.Abs(val) > b.threshold {
			b.violations++
			break
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
