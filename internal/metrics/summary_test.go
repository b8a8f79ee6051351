package metrics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/metrics"
	"github.com/g960059/hemosim/internal/sim"
)

func record(t, aop, pap, pra, pla, vlv float64) sim.Record {
	y := make(circ.State, circ.StateDim)
	y[circ.LeftVentricle] = vlv
	return sim.Record{
		T:   t,
		Y:   y,
		Aux: circ.Aux{AoP: aop, PAP: pap, Pra: pra, Pla: pla},
	}
}

var _ = Describe("Summary", func() {
	Context("over synthetic records", func() {
		var records []sim.Record

		BeforeEach(func() {
			records = []sim.Record{
				record(2, 80, 14, 4, 8, 120),
				record(4, 100, 16, 5, 9, 100),
				record(6, 120, 20, 6, 10, 60),
				record(8, 90, 18, 5, 9, 80),
				record(10, 85, 12, 5, 9, 110),
			}
		})

		It("averages the monitored pressures", func() {
			s, ok := metrics.Compute(records, 60)
			Expect(ok).To(BeTrue())
			Expect(s.MAP).To(BeNumerically("~", 95, 1e-9))
			Expect(s.MeanPAP).To(BeNumerically("~", 16, 1e-9))
			Expect(s.CVP).To(BeNumerically("~", 5, 1e-9))
			Expect(s.PCWP).To(BeNumerically("~", 9, 1e-9))
		})

		It("finds systolic and diastolic extremes", func() {
			s, _ := metrics.Compute(records, 60)
			Expect(s.SysAoP).To(Equal(120.0))
			Expect(s.DiaAoP).To(Equal(80.0))
		})

		It("derives the volume indices", func() {
			s, _ := metrics.Compute(records, 60)
			Expect(s.EDV).To(Equal(120.0))
			Expect(s.ESV).To(Equal(60.0))
			Expect(s.StrokeVolume).To(Equal(60.0))
			Expect(s.EF).To(BeNumerically("~", 0.5, 1e-9))
			Expect(s.CO).To(BeNumerically("~", 3.6, 1e-9))
		})

		It("ignores records older than one period", func() {
			old := []sim.Record{
				record(100, 200, 30, 9, 14, 150),
				record(200, 200, 30, 9, 14, 150),
			}
			recent := make([]sim.Record, 0, 4)
			for i := 1; i <= 4; i++ {
				recent = append(recent, record(1200+float64(i)*2, 100, 15, 5, 9, 100))
			}
			s, ok := metrics.Compute(append(old, recent...), 60)
			Expect(ok).To(BeTrue())
			Expect(s.MAP).To(BeNumerically("~", 100, 1e-9))
			Expect(s.SysAoP).To(Equal(100.0))
		})
	})

	Context("with nothing to aggregate", func() {
		It("reports no summary for empty input", func() {
			_, ok := metrics.Compute(nil, 60)
			Expect(ok).To(BeFalse())
		})

		It("reports no summary for a non-positive rate", func() {
			_, ok := metrics.Compute([]sim.Record{record(2, 90, 15, 5, 9, 100)}, 0)
			Expect(ok).To(BeFalse())
		})
	})

	Context("over a live simulation", func() {
		var inst *sim.Instance

		BeforeEach(func() {
			r := sim.NewRuntime()
			var err error
			inst, err = r.Add("subject", circ.Defaults())
			Expect(err).NotTo(HaveOccurred())
			// 12 s of simulated time in 10 ms frames, enough to wash
			// out the seeded transient.
			for i := 0; i < 1200; i++ {
				r.Tick(10)
			}
		})

		It("lands in physiologic ranges for a healthy adult", func() {
			s, ok := metrics.Compute(inst.Buffer().Snapshot(), inst.Active().HR)
			Expect(ok).To(BeTrue())

			Expect(s.MAP).To(BeNumerically(">", 55))
			Expect(s.MAP).To(BeNumerically("<", 130))
			Expect(s.SysAoP).To(BeNumerically(">", s.DiaAoP))
			Expect(s.MeanPAP).To(BeNumerically("<", s.MAP))
			Expect(s.CVP).To(BeNumerically("<", 20))

			Expect(s.EDV).To(BeNumerically(">", s.ESV))
			Expect(s.EF).To(BeNumerically(">", 0.2))
			Expect(s.EF).To(BeNumerically("<", 0.9))
			Expect(s.CO).To(BeNumerically(">", 2))
			Expect(s.CO).To(BeNumerically("<", 10))
		})

		It("responds to a contractility drop", func() {
			weak := circ.Defaults()
			weak.LV.Ees = 0.9
			r := sim.NewRuntime()
			weakInst, err := r.Add("weak", weak)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 1200; i++ {
				r.Tick(10)
			}

			healthy, _ := metrics.Compute(inst.Buffer().Snapshot(), inst.Active().HR)
			failing, ok := metrics.Compute(weakInst.Buffer().Snapshot(), weakInst.Active().HR)
			Expect(ok).To(BeTrue())
			Expect(failing.EF).To(BeNumerically("<", healthy.EF))
		})
	})
})
