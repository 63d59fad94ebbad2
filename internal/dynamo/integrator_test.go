package dynamo_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kandels/se-for-sci-example/internal/dynamo"
	"github.com/kandels/se-for-sci-example/internal/integrators"
)

var decay = dynamo.Pure(func(t float64, y dynamo.State) dynamo.State {
	return dynamo.State{-y[0]}
})

type recorder struct {
	steps []int
	times []float64
}

func (r *recorder) OnStep(step int, t float64, y dynamo.State) {
	r.steps = append(r.steps, step)
	r.times = append(r.times, t)
}

type countMetric struct{ n int }

func (c *countMetric) Name() string                      { return "rows" }
func (c *countMetric) Observe(t float64, y dynamo.State) { c.n++ }
func (c *countMetric) Value() float64                    { return float64(c.n) }
func (c *countMetric) Reset()                            { c.n = 0 }

var _ = Describe("Integrator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("trajectory shape", func() {
		DescribeTable("returns one row per time point",
			func(m integrators.Method, n int) {
				ts := dynamo.Linspace(0, 1, n)
				tr, err := dynamo.New(m.New()).Integrate(ctx, decay, ts, dynamo.State{1})
				Expect(err).NotTo(HaveOccurred())
				Expect(tr.Len()).To(Equal(n))
				Expect(tr.Times).To(Equal(ts))
				for _, row := range tr.States {
					Expect(row).To(HaveLen(1))
				}
				Expect(tr.Stats.Steps).To(Equal(n - 1))
			},
			Entry("euler, 11 points", integrators.MethodEuler, 11),
			Entry("rk4, 11 points", integrators.MethodRK4, 11),
			Entry("rk4, single point", integrators.MethodRK4, 1),
			Entry("inverted euler, 2 points", integrators.MethodEulerInverted, 2),
		)

		It("returns an empty trajectory for an empty time sequence", func() {
			tr, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, decay, nil, dynamo.State{1, 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(0))
			Expect(tr.Order).To(Equal(2))
			Expect(tr.Final()).To(BeNil())
		})

		It("keeps row 0 equal to y0 without aliasing the caller's slice", func() {
			y0 := dynamo.State{1.0, 2.0}
			osc := dynamo.Pure(func(t float64, y dynamo.State) dynamo.State {
				return dynamo.State{y[1], -y[0]}
			})
			tr, err := dynamo.New(integrators.NewEuler()).Integrate(ctx, osc, []float64{0, 0.1, 0.2}, y0)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Row(0)).To(Equal(dynamo.State{1.0, 2.0}))

			tr.States[0][0] = 99
			Expect(y0[0]).To(Equal(1.0))
		})

		It("does not mutate the time sequence", func() {
			ts := []float64{0, 0.5, 1}
			_, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			Expect(ts).To(Equal([]float64{0, 0.5, 1}))
		})
	})

	Describe("accuracy", func() {
		It("approximates exp(-t) with RK4 in 10 steps", func() {
			tr, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, decay, dynamo.Linspace(0, 1, 11), dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			for i, t := range tr.Times {
				Expect(tr.Row(i)[0]).To(BeNumerically("~", math.Exp(-t), 1e-3))
			}
		})

		It("is more accurate with RK4 than Euler at the same step count", func() {
			ts := dynamo.Linspace(0, 1, 11)
			rk, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			eu, err := dynamo.New(integrators.NewEuler()).Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())

			exact := math.Exp(-1)
			Expect(math.Abs(rk.Final()[0] - exact)).To(BeNumerically("<", math.Abs(eu.Final()[0]-exact)/100))
		})

		It("matches the known single-step values on t=[0, 0.1]", func() {
			ts := []float64{0, 0.1}

			inv, err := dynamo.New(integrators.NewInvertedEuler()).Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Row(1)[0]).To(BeNumerically("~", 1.1, 1e-15))

			rk, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			Expect(rk.Row(1)[0]).To(BeNumerically("~", 0.9048374, 1e-6))
		})

		It("integrates backwards over a decreasing time sequence", func() {
			ts := dynamo.Linspace(1, 0, 21)
			y1 := dynamo.State{math.Exp(-1)}
			tr, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, decay, ts, y1)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Final()[0]).To(BeNumerically("~", 1.0, 1e-6))
			for i := 1; i < tr.Len(); i++ {
				Expect(tr.Row(i)[0]).To(BeNumerically(">", tr.Row(i-1)[0]))
			}
		})

		It("gives identical results for every method on a zero derivative", func() {
			zero := dynamo.Pure(func(t float64, y dynamo.State) dynamo.State {
				return make(dynamo.State, len(y))
			})
			ts := []float64{0, 0.3, 0.7, 2}
			y0 := dynamo.State{4, -1}

			eu, err := dynamo.New(integrators.NewEuler()).Integrate(ctx, zero, ts, y0)
			Expect(err).NotTo(HaveOccurred())
			rk, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, zero, ts, y0)
			Expect(err).NotTo(HaveOccurred())

			Expect(eu.States).To(Equal(rk.States))
			for _, row := range rk.States {
				Expect(row).To(Equal(y0))
			}
		})
	})

	Describe("statistics", func() {
		It("counts derivative evaluations", func() {
			ts := dynamo.Linspace(0, 1, 6)

			rk, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			Expect(rk.Stats.Evaluations).To(Equal(4 * 5))

			eu, err := dynamo.New(integrators.NewEuler()).Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			Expect(eu.Stats.Evaluations).To(Equal(5))
		})
	})

	Describe("failures", func() {
		It("propagates derivative errors and discards the trajectory", func() {
			boom := errors.New("domain error")
			calls := 0
			sys := dynamo.Func(func(t float64, y dynamo.State) (dynamo.State, error) {
				calls++
				if t >= 0.5 {
					return nil, boom
				}
				return dynamo.State{-y[0]}, nil
			})

			tr, err := dynamo.New(integrators.NewEuler()).Integrate(ctx, sys, dynamo.Linspace(0, 1, 11), dynamo.State{1})
			Expect(tr).To(BeNil())
			Expect(err).To(MatchError(boom))

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(5))
			Expect(simErr.Time).To(BeNumerically("~", 0.5, 1e-12))
			Expect(calls).To(Equal(6))
		})

		It("reports a shape error when f changes the vector length", func() {
			grow := dynamo.Pure(func(t float64, y dynamo.State) dynamo.State {
				return append(y.Clone(), 0)
			})

			tr, err := dynamo.New(integrators.NewRK4()).Integrate(ctx, grow, []float64{0, 1}, dynamo.State{1, 2})
			Expect(tr).To(BeNil())
			Expect(errors.Is(err, dynamo.ErrShape)).To(BeTrue())

			var shapeErr *dynamo.ShapeError
			Expect(errors.As(err, &shapeErr)).To(BeTrue())
			Expect(shapeErr.Want).To(Equal(2))
			Expect(shapeErr.Got).To(Equal(3))
		})

		It("reports a shape error from a stepper that returns the wrong length", func() {
			bad := stepperFunc(func(sys dynamo.System, t float64, y dynamo.State, h float64) (dynamo.State, error) {
				return dynamo.State{0}, nil
			})

			_, err := dynamo.New(bad).Integrate(ctx, decay, []float64{0, 1}, dynamo.State{1, 1})
			Expect(err).To(MatchError(dynamo.ErrShape))
		})

		DescribeTable("rejects non-monotonic time sequences before evaluating f",
			func(ts []float64) {
				calls := 0
				sys := dynamo.Pure(func(t float64, y dynamo.State) dynamo.State {
					calls++
					return dynamo.State{0}
				})
				_, err := dynamo.New(integrators.NewEuler()).Integrate(ctx, sys, ts, dynamo.State{1})
				Expect(err).To(MatchError(dynamo.ErrNonMonotonic))
				Expect(calls).To(BeZero())
			},
			Entry("repeated point", []float64{0, 1, 1, 2}),
			Entry("direction change", []float64{0, 1, 0.5}),
			Entry("NaN", []float64{0, math.NaN()}),
			Entry("single infinite point", []float64{math.Inf(1)}),
		)

		It("rejects NaN rows when state validation is on", func() {
			blowup := dynamo.Pure(func(t float64, y dynamo.State) dynamo.State {
				return dynamo.State{math.NaN()}
			})

			_, err := dynamo.New(integrators.NewEuler()).Integrate(ctx, blowup, []float64{0, 1}, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())

			_, err = dynamo.New(integrators.NewEuler(), dynamo.WithStateValidation()).Integrate(ctx, blowup, []float64{0, 1}, dynamo.State{1})
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
		})

		It("stops when the context is canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			tr, err := dynamo.New(integrators.NewRK4()).Integrate(canceled, decay, []float64{0, 1}, dynamo.State{1})
			Expect(tr).To(BeNil())
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("observers and metrics", func() {
		It("sees every row in order and resets metrics between calls", func() {
			rec := &recorder{}
			metric := &countMetric{}
			integ := dynamo.New(integrators.NewRK4(), dynamo.WithObserver(rec), dynamo.WithMetric(metric))

			ts := []float64{0, 0.25, 0.5}
			tr, err := integ.Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.steps).To(Equal([]int{0, 1, 2}))
			Expect(rec.times).To(Equal(ts))
			Expect(tr.Metrics).To(HaveKeyWithValue("rows", 3.0))

			tr, err = integ.Integrate(ctx, decay, ts, dynamo.State{1})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Metrics["rows"]).To(Equal(3.0))
		})
	})
})

type stepperFunc func(sys dynamo.System, t float64, y dynamo.State, h float64) (dynamo.State, error)

func (f stepperFunc) Step(sys dynamo.System, t float64, y dynamo.State, h float64) (dynamo.State, error) {
	return f(sys, t, y, h)
}
