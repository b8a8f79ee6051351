package metrics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/g960059/hemosim/internal/circ"
	"github.com/g960059/hemosim/internal/metrics"
	"github.com/g960059/hemosim/internal/sim"
)

var _ = Describe("SettledBeat", func() {
	// beat appends one 1000 ms window of square-wave LV volume with the
	// given swing, sampled every 10 ms.
	beat := func(records []sim.Record, b int, sv float64) []sim.Record {
		for t := 0.0; t < 1000; t += 10 {
			v := 60.0
			if t < 500 {
				v = 60.0 + sv
			}
			records = append(records, record(float64(b)*1000+t, 100, 15, 5, 9, v))
		}
		return records
	}

	It("settles on the first repeated stroke volume", func() {
		var records []sim.Record
		for b, sv := range []float64{40, 70, 70.2, 70.3} {
			records = beat(records, b, sv)
		}
		n, ok := metrics.SettledBeat(records, 60, 1.0)
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(3))
	})

	It("reports no settling for a growing swing", func() {
		var records []sim.Record
		for b, sv := range []float64{10, 20, 40, 80} {
			records = beat(records, b, sv)
		}
		_, ok := metrics.SettledBeat(records, 60, 1.0)
		Expect(ok).To(BeFalse())
	})

	It("needs at least two full beats", func() {
		var records []sim.Record
		records = beat(records, 0, 50)
		_, ok := metrics.SettledBeat(records, 60, 1.0)
		Expect(ok).To(BeFalse())
	})

	It("rejects a non-positive rate", func() {
		records := beat(nil, 0, 50)
		_, ok := metrics.SettledBeat(records, 0, 1.0)
		Expect(ok).To(BeFalse())
	})

	It("anchors windows to whole periods when records start mid-beat", func() {
		var records []sim.Record
		for b, sv := range []float64{50, 50, 50, 50} {
			records = beat(records, b, sv)
		}
		// Drop the first 300 ms; scanning restarts at the next boundary.
		n, ok := metrics.SettledBeat(records[30:], 60, 1.0)
		Expect(ok).To(BeTrue())
		Expect(n).To(Equal(2))
	})

	It("settles early on a live simulation", func() {
		r := sim.NewRuntime()
		inst, err := r.Add("subject", circ.Defaults())
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 1500; i++ {
			r.Tick(10)
		}
		n, ok := metrics.SettledBeat(inst.Buffer().Snapshot(), inst.Active().HR, 1.0)
		Expect(ok).To(BeTrue())
		Expect(n).To(BeNumerically("<=", 12))
	})
})
