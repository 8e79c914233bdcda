package perfd

import (
	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type lockCall struct {
	handle   int32
	duration int32
	list     []int32
}

type fakeLibrary struct {
	hintReturn  int32
	lockReturn  int32
	releaseRC   int32
	hints       []int32
	locks       []lockCall
	releases    []int32
	closeCalled bool
	unloaded    bool
}

func (f *fakeLibrary) PerfHint(hintID int32, _ string, _ int32, _ int32) int32 {
	f.hints = append(f.hints, hintID)
	return f.hintReturn
}

func (f *fakeLibrary) LockAcquire(handle int32, duration int32, list []int32) int32 {
	f.locks = append(f.locks, lockCall{handle: handle, duration: duration, list: append([]int32{}, list...)})
	return f.lockReturn
}

func (f *fakeLibrary) LockRelease(handle int32) int32 {
	f.releases = append(f.releases, handle)
	return f.releaseRC
}

func (f *fakeLibrary) Loaded() bool {
	return !f.unloaded
}

func (f *fakeLibrary) Close() error {
	f.closeCalled = true
	return nil
}

var _ = Describe("Client", func() {
	var (
		lib    *fakeLibrary
		client *Client
		table  api.TuningTable
	)

	BeforeEach(func() {
		lib = &fakeLibrary{hintReturn: 7, lockReturn: 11}
		client = NewClient(lib)
		table = api.TuningTable{{Key: 0x41820000, Value: 0xa}, {Key: 0x40c68100, Value: -6}}
	})

	Describe("AcquireTunables", func() {
		It("should return the handle from perf_hint", func() {
			handle, err := client.AcquireTunables(0x1206, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(handle).To(Equal(framework.Handle(7)))
			Expect(lib.hints).To(Equal([]int32{0x1206}))
		})

		It("should fail on a non positive handle", func() {
			lib.hintReturn = -1
			_, err := client.AcquireTunables(0x1206, 0)
			Expect(err).To(MatchError(ErrInvalidHandle))
		})
	})

	Describe("ReleaseTunables", func() {
		It("should release valid handles", func() {
			Expect(client.ReleaseTunables(7)).To(Succeed())
			Expect(lib.releases).To(Equal([]int32{7}))
		})

		It("should reject invalid handles without calling the library", func() {
			Expect(client.ReleaseTunables(0)).To(MatchError(ErrInvalidHandle))
			Expect(lib.releases).To(BeEmpty())
		})
	})

	Describe("ApplyTuningRequest", func() {
		It("should send the flattened table as an indefinite lock", func() {
			Expect(client.ApplyTuningRequest(0x0A00, table)).To(Succeed())
			Expect(lib.locks).To(HaveLen(1))
			Expect(lib.locks[0].handle).To(BeZero())
			Expect(lib.locks[0].duration).To(BeZero())
			Expect(lib.locks[0].list).To(Equal([]int32{0x41820000, 0xa, 0x40c68100, -6}))
			Expect(client.ActiveHints()).To(ConsistOf(int32(0x0A00)))
		})

		It("should not lock twice for the same hint id", func() {
			Expect(client.ApplyTuningRequest(0x0A00, table)).To(Succeed())
			Expect(client.ApplyTuningRequest(0x0A00, table)).To(Succeed())
			Expect(lib.locks).To(HaveLen(1))
		})

		It("should not remember rejected requests", func() {
			lib.lockReturn = -1
			Expect(client.ApplyTuningRequest(0x0A00, table)).To(MatchError(ErrInvalidHandle))
			Expect(client.ActiveHints()).To(BeEmpty())
		})

		It("should reject empty tables", func() {
			Expect(client.ApplyTuningRequest(0x0A00, nil)).NotTo(Succeed())
			Expect(lib.locks).To(BeEmpty())
		})
	})

	Describe("WithdrawTuningRequest", func() {
		It("should release the lock recorded for the hint id", func() {
			Expect(client.ApplyTuningRequest(0x0A00, table)).To(Succeed())
			Expect(client.WithdrawTuningRequest(0x0A00)).To(Succeed())
			Expect(lib.releases).To(Equal([]int32{11}))
			Expect(client.ActiveHints()).To(BeEmpty())
		})

		It("should ignore unknown hint ids", func() {
			Expect(client.WithdrawTuningRequest(0x0C00)).To(Succeed())
			Expect(lib.releases).To(BeEmpty())
		})
	})

	Describe("Ready", func() {
		It("should succeed once the library is loaded", func() {
			Expect(client.Ready()).To(Succeed())
		})

		It("should fail while the library is not loaded", func() {
			lib.unloaded = true
			Expect(client.Ready()).To(MatchError(ErrLibraryNotLoaded))
			Expect(NewClient(nil).Ready()).To(MatchError(ErrLibraryNotLoaded))
		})
	})

	It("should withdraw outstanding requests on close", func() {
		Expect(client.ApplyTuningRequest(0x0A00, table)).To(Succeed())
		Expect(client.Close()).To(Succeed())
		Expect(lib.releases).To(Equal([]int32{11}))
		Expect(lib.closeCalled).To(BeTrue())
	})
})

var _ = Describe("DryRunLibrary", func() {
	It("should hand out increasing handles and track releases", func() {
		lib := NewDryRunLibrary()
		first := lib.PerfHint(0x1206, "", 0, TypeNone)
		second := lib.LockAcquire(0, 0, []int32{1, 2})
		Expect(second).To(BeNumerically(">", first))
		Expect(lib.Held()).To(Equal(2))
		Expect(lib.LockRelease(first)).To(BeZero())
		Expect(lib.LockRelease(first)).To(BeNumerically("<", 0))
		Expect(lib.Held()).To(Equal(1))
	})

	It("should always report itself loaded", func() {
		Expect(NewDryRunLibrary().Loaded()).To(BeTrue())
	})

	It("should reject odd resource lists", func() {
		lib := NewDryRunLibrary()
		Expect(lib.LockAcquire(0, 0, []int32{1})).To(BeNumerically("<", 0))
	})
})
