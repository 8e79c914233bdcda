package modes

import (
	"errors"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework/mocks"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Tracker", func() {
	var (
		ctrl    *gomock.Controller
		daemon  *mocks.MockPerfDaemon
		tracker *Tracker
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		daemon = mocks.NewMockPerfDaemon(ctrl)
		tracker = NewTracker(daemon, nil)
	})

	It("should start in normal mode without a handle", func() {
		Expect(tracker.Current()).To(Equal(api.PerformanceModeNormal))
		Expect(tracker.Handle().Valid()).To(BeFalse())
	})

	It("should acquire the sustained hint when sustained mode is enabled", func() {
		daemon.EXPECT().AcquireTunables(SustainedPerfHintID, int32(0)).Return(framework.Handle(5), nil)

		Expect(tracker.SetMode(api.PerformanceModeSustained, true)).To(Equal(api.HintHandled))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeSustained))
		Expect(tracker.Handle()).To(Equal(framework.Handle(5)))
	})

	It("should release the sustained handle before acquiring the combined VR hint", func() {
		gomock.InOrder(
			daemon.EXPECT().AcquireTunables(SustainedPerfHintID, int32(0)).Return(framework.Handle(5), nil),
			daemon.EXPECT().ReleaseTunables(framework.Handle(5)).Return(nil),
			daemon.EXPECT().AcquireTunables(VRModeSustainedPerfHintID, int32(0)).Return(framework.Handle(9), nil),
		)

		Expect(tracker.SetMode(api.PerformanceModeSustained, true)).To(Equal(api.HintHandled))
		Expect(tracker.SetMode(api.PerformanceModeVR, true)).To(Equal(api.HintHandled))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeVRSustained))
		Expect(tracker.Handle()).To(Equal(framework.Handle(9)))
	})

	It("should not call the daemon when enabling an active mode", func() {
		daemon.EXPECT().AcquireTunables(VRModeHintID, int32(0)).Return(framework.Handle(3), nil).Times(1)

		Expect(tracker.SetMode(api.PerformanceModeVR, true)).To(Equal(api.HintHandled))
		Expect(tracker.SetMode(api.PerformanceModeVR, true)).To(Equal(api.HintHandled))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeVR))
	})

	It("should not call the daemon when disabling an inactive mode", func() {
		Expect(tracker.SetMode(api.PerformanceModeSustained, false)).To(Equal(api.HintHandled))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeNormal))
	})

	It("should only release when returning to normal mode", func() {
		gomock.InOrder(
			daemon.EXPECT().AcquireTunables(VRModeHintID, int32(0)).Return(framework.Handle(3), nil),
			daemon.EXPECT().ReleaseTunables(framework.Handle(3)).Return(nil),
		)

		Expect(tracker.SetMode(api.PerformanceModeVR, true)).To(Equal(api.HintHandled))
		Expect(tracker.SetMode(api.PerformanceModeVR, false)).To(Equal(api.HintHandled))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeNormal))
		Expect(tracker.Handle().Valid()).To(BeFalse())
	})

	It("should keep the previous modes when the daemon rejects the request", func() {
		daemon.EXPECT().AcquireTunables(SustainedPerfHintID, int32(0)).Return(framework.Handle(0), errors.New("rejected"))

		Expect(tracker.SetMode(api.PerformanceModeSustained, true)).To(Equal(api.HintNone))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeNormal))
		Expect(tracker.Handle().Valid()).To(BeFalse())
	})

	It("should treat an invalid handle without error as a failed switch", func() {
		daemon.EXPECT().AcquireTunables(SustainedPerfHintID, int32(0)).Return(framework.Handle(-1), nil)

		Expect(tracker.SetMode(api.PerformanceModeSustained, true)).To(Equal(api.HintNone))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeNormal))
	})

	It("should restore the previous handle when the new acquire fails", func() {
		gomock.InOrder(
			daemon.EXPECT().AcquireTunables(SustainedPerfHintID, int32(0)).Return(framework.Handle(5), nil),
			daemon.EXPECT().ReleaseTunables(framework.Handle(5)).Return(nil),
			daemon.EXPECT().AcquireTunables(VRModeSustainedPerfHintID, int32(0)).Return(framework.Handle(0), errors.New("busy")),
			daemon.EXPECT().AcquireTunables(SustainedPerfHintID, int32(0)).Return(framework.Handle(8), nil),
		)

		Expect(tracker.SetMode(api.PerformanceModeSustained, true)).To(Equal(api.HintHandled))
		Expect(tracker.SetMode(api.PerformanceModeVR, true)).To(Equal(api.HintNone))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeSustained))
		Expect(tracker.Handle()).To(Equal(framework.Handle(8)))

		// the mode is still served, so enabling it again needs no daemon request
		Expect(tracker.SetMode(api.PerformanceModeSustained, true)).To(Equal(api.HintHandled))
		Expect(tracker.Handle()).To(Equal(framework.Handle(8)))
	})

	It("should keep the mask when the previous hint can't be restored either", func() {
		gomock.InOrder(
			daemon.EXPECT().AcquireTunables(VRModeHintID, int32(0)).Return(framework.Handle(3), nil),
			daemon.EXPECT().ReleaseTunables(framework.Handle(3)).Return(nil),
			daemon.EXPECT().AcquireTunables(VRModeSustainedPerfHintID, int32(0)).Return(framework.Handle(0), errors.New("busy")),
			daemon.EXPECT().AcquireTunables(VRModeHintID, int32(0)).Return(framework.Handle(-1), nil),
		)

		Expect(tracker.SetMode(api.PerformanceModeVR, true)).To(Equal(api.HintHandled))
		Expect(tracker.SetMode(api.PerformanceModeSustained, true)).To(Equal(api.HintNone))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeVR))
		Expect(tracker.Handle().Valid()).To(BeFalse())
	})

	It("should use configured hint ids", func() {
		tracker = NewTracker(daemon, HintTable{api.PerformanceModeSustained: 0x42})
		daemon.EXPECT().AcquireTunables(int32(0x42), int32(0)).Return(framework.Handle(1), nil)

		Expect(tracker.SetMode(api.PerformanceModeSustained, true)).To(Equal(api.HintHandled))
		// VR has no entry in this table, so the switch only releases
		daemon.EXPECT().ReleaseTunables(framework.Handle(1)).Return(nil)
		Expect(tracker.SetMode(api.PerformanceModeVR, true)).To(Equal(api.HintHandled))
		Expect(tracker.Current()).To(Equal(api.PerformanceModeVRSustained))
		Expect(tracker.Handle().Valid()).To(BeFalse())
	})

	It("should release the held handle and return to normal", func() {
		daemon.EXPECT().AcquireTunables(VRModeHintID, int32(0)).Return(framework.Handle(3), nil)
		daemon.EXPECT().ReleaseTunables(framework.Handle(3)).Return(nil)

		Expect(tracker.SetMode(api.PerformanceModeVR, true)).To(Equal(api.HintHandled))
		Expect(tracker.Release()).To(Succeed())
		Expect(tracker.Current()).To(Equal(api.PerformanceModeNormal))
		Expect(tracker.Release()).To(Succeed())
	})
})

var _ = Describe("HintTable", func() {
	It("should return zero for masks without a hint", func() {
		table := DefaultHintTable()
		Expect(table.HintID(api.PerformanceModeNormal)).To(BeZero())
		Expect(table.HintID(api.PerformanceModeVRSustained)).To(Equal(VRModeSustainedPerfHintID))
	})
})
