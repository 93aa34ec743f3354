package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/coldsim/internal/particles"
	"github.com/san-kum/coldsim/internal/sim"
)

type emitter struct {
	count int
}

func (s *emitter) NumPtclsProduced(float64) int { return s.count }

func (s *emitter) ProducePtcls(_ float64, start, end int, e *particles.Ensemble) {
	for i := start; i < end; i++ {
		e.Velocities()[i] = r3.Vec{X: 1}
	}
}

type countMetric struct {
	last float64
	n    int
}

func (m *countMetric) Name() string { return "count" }
func (m *countMetric) Observe(e *particles.Ensemble, _ float64) {
	m.last = float64(e.NumPtcls())
	m.n++
}
func (m *countMetric) Value() float64 { return m.last }
func (m *countMetric) Reset()         { m.last, m.n = 0, 0 }

type recorder struct {
	records []sim.StepRecord
}

func (r *recorder) OnStep(_ *particles.Ensemble, rec sim.StepRecord) {
	r.records = append(r.records, rec)
}

var _ = Describe("Simulator", func() {
	var (
		ctx context.Context
		cfg sim.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = sim.Config{Dt: 0.25, Duration: 1.0}
	})

	Context("with a source feeding a plane sink", func() {
		var (
			s      *sim.Simulator
			plane  *particles.SinkPlane
			metric *countMetric
			rec    *recorder
		)

		BeforeEach(func() {
			var err error
			plane, err = particles.NewSinkPlane(r3.Vec{X: 0.5}, r3.Vec{X: 1})
			Expect(err).NotTo(HaveOccurred())

			s = sim.New(
				[]particles.Source{&emitter{count: 2}},
				[]particles.Sink{plane},
				nil,
			)
			metric = &countMetric{}
			rec = &recorder{}
			s.AddMetric(metric)
			s.AddObserver(rec)
		})

		It("injects before absorbing and tracks counts per step", func() {
			e := particles.NewEnsemble(0)
			res, err := s.Run(ctx, e, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.StepsTaken).To(Equal(4))
			Expect(res.Times).To(Equal([]float64{0, 0.25, 0.5, 0.75, 1.0}))
			Expect(res.Counts).To(Equal([]int{0, 2, 4, 4, 4}))
			Expect(res.Injected).To(Equal([]int{0, 2, 2, 2, 2}))
			Expect(res.Absorbed).To(Equal([]int{0, 0, 0, 2, 2}))
			Expect(res.TotalInjected).To(Equal(8))
			Expect(res.TotalAbsorbed).To(Equal(4))
			Expect(plane.Absorbed()).To(Equal(4))
			Expect(e.NumPtcls()).To(Equal(4))
		})

		It("collects metric series and final values", func() {
			res, err := s.Run(ctx, particles.NewEnsemble(0), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Series["count"]).To(Equal([]float64{0, 2, 4, 4, 4}))
			Expect(res.Metrics).To(HaveKeyWithValue("count", 4.0))
			Expect(metric.n).To(Equal(5))
		})

		It("notifies observers once per step", func() {
			_, err := s.Run(ctx, particles.NewEnsemble(0), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.records).To(HaveLen(4))
			Expect(rec.records[2].Step).To(Equal(2))
			Expect(rec.records[2].Absorbed).To(Equal([]int{2}))
		})

		It("takes deep snapshots at the configured interval", func() {
			cfg.SnapshotEvery = 2
			res, err := s.Run(ctx, particles.NewEnsemble(0), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Snapshots).To(HaveLen(3))
			Expect(res.Snapshots[0].Ensemble.NumPtcls()).To(Equal(0))
			Expect(res.Snapshots[1].Time).To(Equal(0.5))
			Expect(res.Snapshots[1].Ensemble.NumPtcls()).To(Equal(4))
		})
	})

	It("drifts particles freely without forces", func() {
		e := particles.NewEnsemble(1)
		e.Velocities()[0] = r3.Vec{Y: 2}

		_, err := sim.New(nil, nil, nil).Run(ctx, e, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Positions()[0].Y).To(BeNumerically("~", 2.0, 1e-12))
	})

	It("wraps step failures with their position in the run", func() {
		gravity := particles.ForceFunc(func(e *particles.Ensemble) []r3.Vec {
			return make([]r3.Vec, e.NumPtcls())
		})
		s := sim.New(nil, nil, []particles.Force{gravity})

		res, err := s.Run(ctx, particles.New(), cfg)
		Expect(err).To(MatchError(particles.ErrMissingMass))

		var stepErr *sim.StepError
		Expect(errors.As(err, &stepErr)).To(BeTrue())
		Expect(stepErr.Step).To(Equal(0))
		Expect(res.StepsTaken).To(Equal(0))
	})

	It("stops when the context is canceled", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		res, err := sim.New(nil, nil, nil).Run(canceled, particles.New(), cfg)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Times).To(HaveLen(1))
	})

	DescribeTable("rejects invalid configs",
		func(c sim.Config) {
			_, err := sim.New(nil, nil, nil).Run(ctx, particles.New(), c)
			Expect(err).To(HaveOccurred())
		},
		Entry("zero dt", sim.Config{Dt: 0, Duration: 1}),
		Entry("negative dt", sim.Config{Dt: -0.1, Duration: 1}),
		Entry("zero duration", sim.Config{Dt: 0.1, Duration: 0}),
		Entry("negative snapshot interval", sim.Config{Dt: 0.1, Duration: 1, SnapshotEvery: -1}),
	)

	It("formats step errors", func() {
		err := &sim.StepError{Step: 150, Time: 1.5, Wrapped: errors.New("boom")}
		Expect(err.Error()).To(Equal("step 150 (t=1.5000): boom"))
	})

	It("has a usable default config", func() {
		c := sim.DefaultConfig()
		Expect(c.Dt).To(BeNumerically(">", 0))
		Expect(c.Duration).To(BeNumerically(">", c.Dt))
	})
})

var _ = Describe("Batch", func() {
	It("runs one independent simulation per seed", func() {
		seen := make(chan int64, 3)
		build := func(seed int64) (*sim.Simulator, *particles.Ensemble, error) {
			seen <- seed
			return sim.New([]particles.Source{&emitter{count: int(seed)}}, nil, nil), particles.NewEnsemble(0), nil
		}

		res, err := sim.NewBatch(build, 3, 1).Run(context.Background(), sim.Config{Dt: 0.5, Duration: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(HaveLen(3))
		for i, r := range res {
			Expect(r.TotalInjected).To(Equal(2 * (i + 1)))
		}
		close(seen)
		Expect(seen).To(HaveLen(3))
	})

	It("propagates build failures", func() {
		boom := errors.New("boom")
		build := func(int64) (*sim.Simulator, *particles.Ensemble, error) {
			return nil, nil, boom
		}

		_, err := sim.NewBatch(build, 2, 0).Run(context.Background(), sim.DefaultConfig())
		Expect(err).To(MatchError(boom))
	})
})
