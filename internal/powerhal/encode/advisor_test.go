package encode

import (
	"errors"
	"sync"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework/mocks"
	"github.com/NexusGPU/powerhal/internal/powerhal/metadata"
	"github.com/NexusGPU/powerhal/internal/powerhal/perfd/perfdtest"
	"github.com/NexusGPU/powerhal/internal/powerhal/tuning"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
	"k8s.io/utils/ptr"
)

type fakeGovernor struct {
	name string
	err  error
}

func (g *fakeGovernor) CurrentGovernor() (string, error) {
	return g.name, g.err
}

type fakePlatform struct {
	lowEnd bool
	calls  int
}

func (p *fakePlatform) IsLowEndVariant() bool {
	p.calls++
	return p.lowEnd
}

var (
	startEvent = ptr.To("state=1")
	stopEvent  = ptr.To("state=0")
)

var _ = Describe("Advisor", func() {
	var (
		daemon   *perfdtest.Recorder
		governor *fakeGovernor
		platform *fakePlatform
		advisor  *Advisor
	)

	BeforeEach(func() {
		daemon = perfdtest.NewRecorder()
		governor = &fakeGovernor{name: tuning.GovernorSchedutil}
		platform = &fakePlatform{}
		advisor = NewAdvisor(daemon, governor, platform)
	})

	Context("schedutil governor", func() {
		It("should apply the default table on start and withdraw it on stop", func() {
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			applies := daemon.CallsOf(perfdtest.OpApply)
			Expect(applies).To(HaveLen(1))
			Expect(applies[0].HintID).To(Equal(metadata.DefaultVideoEncodeHintID))
			Expect(applies[0].Table).To(Equal(tuning.SchedutilEncode()))

			Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
			withdraws := daemon.CallsOf(perfdtest.OpWithdraw)
			Expect(withdraws).To(HaveLen(1))
			Expect(withdraws[0].HintID).To(Equal(metadata.DefaultVideoEncodeHintID))
			Expect(advisor.Sessions()).To(BeZero())
		})

		It("should pick the low-end table on SDM439/429", func() {
			platform.lowEnd = true
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			applies := daemon.CallsOf(perfdtest.OpApply)
			Expect(applies).To(HaveLen(1))
			Expect(applies[0].Table).To(Equal(tuning.SchedutilLowEndEncode()))
		})

		It("should apply once for overlapping sessions", func() {
			for range 3 {
				Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			}
			Expect(advisor.Sessions()).To(Equal(3))
			for range 3 {
				Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
			}
			Expect(daemon.CallsOf(perfdtest.OpApply)).To(HaveLen(1))
			Expect(daemon.CallsOf(perfdtest.OpWithdraw)).To(HaveLen(1))
		})

		It("should not withdraw again on a stray stop", func() {
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
			Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
			Expect(daemon.CallsOf(perfdtest.OpWithdraw)).To(HaveLen(1))
			Expect(advisor.Sessions()).To(BeZero())
		})

		It("should honour the hint id carried by the metadata", func() {
			Expect(advisor.OnVideoEncodeHint(ptr.To("state=1;hint_id=0x0A05"))).To(Equal(api.HintHandled))
			Expect(advisor.OnVideoEncodeHint(ptr.To("state=0;hint_id=0x0A05"))).To(Equal(api.HintHandled))
			Expect(daemon.CallsOf(perfdtest.OpApply)[0].HintID).To(Equal(int32(0x0A05)))
			Expect(daemon.CallsOf(perfdtest.OpWithdraw)[0].HintID).To(Equal(int32(0x0A05)))
		})
	})

	Context("interactive governor", func() {
		BeforeEach(func() {
			governor.name = tuning.GovernorInteractive
		})

		It("should apply the interactive table without probing the SoC", func() {
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			applies := daemon.CallsOf(perfdtest.OpApply)
			Expect(applies).To(HaveLen(1))
			Expect(applies[0].Table).To(Equal(tuning.InteractiveEncode()))
			Expect(platform.calls).To(BeZero())
		})

		// Both governor branches share the same rule: apply only when the first session starts
		It("should only apply on the first of overlapping sessions", func() {
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
			Expect(daemon.CallsOf(perfdtest.OpWithdraw)).To(BeEmpty())
			Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
			Expect(daemon.CallsOf(perfdtest.OpApply)).To(HaveLen(1))
			Expect(daemon.CallsOf(perfdtest.OpWithdraw)).To(HaveLen(1))
		})

		It("should not re-apply while a failed apply's session is still open", func() {
			daemon.FailApply = true
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			daemon.FailApply = false
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
			Expect(daemon.CallsOf(perfdtest.OpApply)).To(HaveLen(1))

			applied, _ := advisor.Applied()
			Expect(applied).To(BeFalse())
			Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
			Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
			Expect(daemon.CallsOf(perfdtest.OpWithdraw)).To(BeEmpty())
		})
	})

	Context("events that are ignored", func() {
		It("should ignore other governors", func() {
			governor.name = "performance"
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintIgnored))
			Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintIgnored))
			Expect(advisor.Sessions()).To(BeZero())
			Expect(daemon.Calls()).To(BeEmpty())
		})

		It("should ignore an unreadable governor", func() {
			governor.err = errors.New("offline")
			Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintIgnored))
			Expect(daemon.Calls()).To(BeEmpty())
		})

		It("should ignore missing or malformed metadata", func() {
			Expect(advisor.OnVideoEncodeHint(nil)).To(Equal(api.HintIgnored))
			Expect(advisor.OnVideoEncodeHint(ptr.To(""))).To(Equal(api.HintIgnored))
			Expect(advisor.OnVideoEncodeHint(ptr.To("state=yes"))).To(Equal(api.HintIgnored))
			Expect(advisor.OnVideoEncodeHint(ptr.To("hint_id=1"))).To(Equal(api.HintIgnored))
			Expect(advisor.OnVideoEncodeHint(ptr.To("state=1;hint_id=0x0C00"))).To(Equal(api.HintIgnored))
			Expect(advisor.OnVideoEncodeHint(ptr.To("state=0;hint_id=0x0C00"))).To(Equal(api.HintIgnored))
			Expect(daemon.Calls()).To(BeEmpty())
			Expect(advisor.Sessions()).To(BeZero())
		})
	})

	It("should withdraw applied tuning on reset", func() {
		Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
		Expect(advisor.Reset()).To(Succeed())
		Expect(daemon.CallsOf(perfdtest.OpWithdraw)).To(HaveLen(1))
		Expect(advisor.Sessions()).To(BeZero())
		Expect(advisor.Reset()).To(Succeed())
		Expect(daemon.CallsOf(perfdtest.OpWithdraw)).To(HaveLen(1))
	})

	It("should apply and withdraw exactly once under concurrent sessions", func() {
		const sessions = 16
		var wg sync.WaitGroup
		for range sessions {
			wg.Add(1)
			go func() {
				defer wg.Done()
				advisor.OnVideoEncodeHint(startEvent)
			}()
		}
		wg.Wait()
		Expect(advisor.Sessions()).To(Equal(sessions))

		for range sessions {
			wg.Add(1)
			go func() {
				defer wg.Done()
				advisor.OnVideoEncodeHint(stopEvent)
			}()
		}
		wg.Wait()

		Expect(daemon.CallsOf(perfdtest.OpApply)).To(HaveLen(1))
		Expect(daemon.CallsOf(perfdtest.OpWithdraw)).To(HaveLen(1))
		calls := daemon.Calls()
		Expect(calls[0].Op).To(Equal(perfdtest.OpApply))
		Expect(calls[len(calls)-1].Op).To(Equal(perfdtest.OpWithdraw))
	})
})

var _ = Describe("Advisor collaborators", func() {
	var (
		ctrl      *gomock.Controller
		daemon    *mocks.MockPerfDaemon
		governors *mocks.MockGovernorSource
		platform  *mocks.MockPlatformCapabilities
		advisor   *Advisor
	)

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		daemon = mocks.NewMockPerfDaemon(ctrl)
		governors = mocks.NewMockGovernorSource(ctrl)
		platform = mocks.NewMockPlatformCapabilities(ctrl)
		advisor = NewAdvisor(daemon, governors, platform)
	})

	It("should read the governor on every event", func() {
		governors.EXPECT().CurrentGovernor().Return(tuning.GovernorSchedutil, nil).Times(2)
		platform.EXPECT().IsLowEndVariant().Return(false).Times(1)
		gomock.InOrder(
			daemon.EXPECT().ApplyTuningRequest(metadata.DefaultVideoEncodeHintID, tuning.SchedutilEncode()).Return(nil),
			daemon.EXPECT().WithdrawTuningRequest(metadata.DefaultVideoEncodeHintID).Return(nil),
		)

		Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
		Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
	})

	It("should not ask the platform when the governor is unreadable", func() {
		governors.EXPECT().CurrentGovernor().Return("", errors.New("offline"))

		Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintIgnored))
	})

	It("should not retry a failed withdraw", func() {
		governors.EXPECT().CurrentGovernor().Return(tuning.GovernorInteractive, nil).AnyTimes()
		daemon.EXPECT().ApplyTuningRequest(metadata.DefaultVideoEncodeHintID, tuning.InteractiveEncode()).Return(nil)
		daemon.EXPECT().WithdrawTuningRequest(metadata.DefaultVideoEncodeHintID).Return(errors.New("daemon gone"))

		Expect(advisor.OnVideoEncodeHint(startEvent)).To(Equal(api.HintHandled))
		Expect(advisor.OnVideoEncodeHint(stopEvent)).To(Equal(api.HintHandled))
		Expect(advisor.Sessions()).To(BeZero())
		applied, _ := advisor.Applied()
		Expect(applied).To(BeFalse())
	})
})
