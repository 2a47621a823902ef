package flowdef_test

import (
	"time"

	"caseflow/bizerror"
	"caseflow/domain/flowdef"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Definition", func() {
	var (
		def *flowdef.Definition
	)

	BeforeEach(func() {
		//            intake       review       completed    rejected
		// intake       -          V (Submit)      X            X
		// review    V (Return)       -         V (Approve)  V (Reject)
		def = &flowdef.Definition{
			Stages: []flowdef.Stage{
				{ID: "intake", Label: "Intake", SlaHours: 24},
				{ID: "review", Label: "Review", SlaHours: 48},
				{ID: "completed", Label: "Completed"},
				{ID: "rejected", Label: "Rejected"},
			},
			Transitions: []flowdef.Transition{
				{ID: "t1", From: "intake", To: "review", Label: "Submit Application", Roles: []string{"maker"}},
				{ID: "t2", From: "review", To: "intake", Label: "Return", Roles: []string{"checker"}},
				{ID: "t3", From: "review", To: "completed", Label: "Approve", Roles: []string{"checker", "manager"}},
				{ID: "t4", From: "review", To: "rejected", Label: "Reject", Roles: []string{"checker", "manager"}},
			},
			AutoRules: []flowdef.AutoRule{
				{ID: "r1", Trigger: "on_enter:review", Action: "notify_checker"},
				{ID: "r2", Trigger: "on_enter:completed", Action: "archive"},
			},
		}
	})

	Describe("NormalizeAction", func() {
		It("should lower-case and replace spaces with underscores", func() {
			Expect(flowdef.NormalizeAction("Submit Application")).To(Equal("submit_application"))
			Expect(flowdef.NormalizeAction("  Approve ")).To(Equal("approve"))
			Expect(flowdef.NormalizeAction("already_normal")).To(Equal("already_normal"))
		})
	})

	Describe("ResolveTransition", func() {
		It("should resolve the matching transition for stage, action and role", func() {
			t, err := def.ResolveTransition("intake", "submit_application", "maker")
			Expect(err).To(BeNil())
			Expect(t.ID).To(Equal("t1"))
			Expect(t.To).To(Equal("review"))
		})

		It("should reject when the role is not listed on the transition", func() {
			_, err := def.ResolveTransition("intake", "submit_application", "viewer")
			Expect(err).To(Equal(&bizerror.ErrInvalidTransition{
				CurrentStage: "intake", Action: "submit_application", Role: "viewer"}))
		})

		It("should reject when no transition leaves the current stage with the action", func() {
			_, err := def.ResolveTransition("intake", "approve", "maker")
			Expect(err).ToNot(BeNil())

			_, err = def.ResolveTransition("completed", "submit_application", "maker")
			Expect(err).ToNot(BeNil())
		})

		It("should pick the first match when transitions overlap", func() {
			def.Transitions = append([]flowdef.Transition{
				{ID: "t0", From: "review", To: "rejected", Label: "Approve", Roles: []string{"checker"}},
			}, def.Transitions...)

			t, err := def.ResolveTransition("review", "approve", "checker")
			Expect(err).To(BeNil())
			Expect(t.ID).To(Equal("t0"))
			Expect(t.To).To(Equal("rejected"))
		})

		It("should resolve deterministically on repeated calls", func() {
			for i := 0; i < 10; i++ {
				t, err := def.ResolveTransition("review", "approve", "manager")
				Expect(err).To(BeNil())
				Expect(t.ID).To(Equal("t3"))
			}
		})

		It("should match the label only, never the actions entries", func() {
			def.Transitions[0].Actions = []string{"Send Forward"}

			_, err := def.ResolveTransition("intake", "send_forward", "maker")
			Expect(err).To(Equal(&bizerror.ErrInvalidTransition{
				CurrentStage: "intake", Action: "send_forward", Role: "maker"}))

			t, err := def.ResolveTransition("intake", "submit_application", "maker")
			Expect(err).To(BeNil())
			Expect(t.ID).To(Equal("t1"))
		})

		It("should compare roles exactly", func() {
			_, err := def.ResolveTransition("review", "approve", "Checker")
			Expect(err).To(Equal(&bizerror.ErrInvalidTransition{
				CurrentStage: "review", Action: "approve", Role: "Checker"}))

			_, err = def.ResolveTransition("review", "approve", "CHECKER")
			Expect(err).ToNot(BeNil())

			t, err := def.ResolveTransition("review", "approve", "checker")
			Expect(err).To(BeNil())
			Expect(t.ID).To(Equal("t3"))
		})
	})

	Describe("DeriveStatus", func() {
		It("should derive status from the target stage id", func() {
			Expect(flowdef.DeriveStatus("completed")).To(Equal(flowdef.StatusCompleted))
			Expect(flowdef.DeriveStatus("rejected")).To(Equal(flowdef.StatusRejected))
			Expect(flowdef.DeriveStatus("draft")).To(Equal(flowdef.StatusDraft))
			Expect(flowdef.DeriveStatus("review")).To(Equal(flowdef.StatusInProgress))
			Expect(flowdef.DeriveStatus("anything-else")).To(Equal(flowdef.StatusInProgress))
		})

		It("should mark only completed and rejected as terminal", func() {
			Expect(flowdef.StatusCompleted.IsTerminal()).To(BeTrue())
			Expect(flowdef.StatusRejected.IsTerminal()).To(BeTrue())
			Expect(flowdef.StatusDraft.IsTerminal()).To(BeFalse())
			Expect(flowdef.StatusInProgress.IsTerminal()).To(BeFalse())
			Expect(flowdef.StatusOnHold.IsTerminal()).To(BeFalse())
		})
	})

	Describe("StageDeadline", func() {
		It("should add the stage sla hours to the given time", func() {
			now := time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)
			Expect(def.StageDeadline("intake", now)).
				To(Equal(types.Timestamp(now.Add(24 * time.Hour))))
		})

		It("should carry no deadline for stages without positive sla hours", func() {
			now := time.Now()
			Expect(def.StageDeadline("completed", now)).To(Equal(types.Timestamp{}))
			Expect(def.StageDeadline("unknown", now)).To(Equal(types.Timestamp{}))
		})
	})

	Describe("MatchingAutoRules", func() {
		It("should return the rules triggered by entering a stage", func() {
			rules := def.MatchingAutoRules("review")
			Expect(len(rules)).To(Equal(1))
			Expect(rules[0].ID).To(Equal("r1"))

			Expect(def.MatchingAutoRules("intake")).To(BeEmpty())
		})
	})

	Describe("Validate", func() {
		It("should accept a well-formed definition", func() {
			Expect(def.Validate()).To(BeNil())
		})

		It("should reject empty stage list", func() {
			Expect((&flowdef.Definition{}).Validate()).To(Equal(bizerror.ErrStageInvalid))
		})

		It("should reject duplicated stage ids", func() {
			def.Stages = append(def.Stages, flowdef.Stage{ID: "intake"})
			Expect(def.Validate()).To(Equal(bizerror.ErrStageExisted))
		})

		It("should reject negative sla hours", func() {
			def.Stages[0].SlaHours = -1
			Expect(def.Validate()).To(Equal(bizerror.ErrStageInvalid))
		})

		It("should reject transitions referencing unknown stages", func() {
			def.Transitions = append(def.Transitions,
				flowdef.Transition{ID: "tx", From: "intake", To: "nowhere", Label: "Lost"})
			Expect(def.Validate()).To(Equal(bizerror.ErrUnknownStage))
		})
	})
})
