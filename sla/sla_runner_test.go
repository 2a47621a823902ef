package sla_test

import (
	"context"
	"testing"
	"time"

	"caseflow/domain"
	"caseflow/domain/flowdef"
	"caseflow/persistence"
	"caseflow/sla"
	"caseflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestSweepOverdueCases(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should mark open cases past their deadline and nothing else", func(t *testing.T) {
		testDatabase := testinfra.StartMysqlTestDatabase("caseflow")
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		persistence.ActiveDataSourceManager = testDatabase.DS
		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.AutoMigrate(&domain.Case{}).Error).To(BeNil())

		now := types.CurrentTimestamp()
		overdue := types.Timestamp(time.Now().Add(-time.Hour))
		pending := types.Timestamp(time.Now().Add(time.Hour))

		seed := func(id types.ID, status flowdef.Status, deadline types.Timestamp, breached bool) {
			Expect(db.Create(&domain.Case{ID: id, Identifier: "T1-" + id.String(), TenantID: 100,
				WorkflowID: 1, Title: "case", CurrentStage: "review", Status: status,
				SlaDeadline: deadline, SlaBreached: breached, Version: 1,
				CreateTime: now}).Error).To(BeNil())
		}
		seed(1, flowdef.StatusInProgress, overdue, false)
		seed(2, flowdef.StatusInProgress, pending, false)
		seed(3, flowdef.StatusInProgress, types.Timestamp{}, false)
		seed(4, flowdef.StatusCompleted, overdue, false)
		seed(5, flowdef.StatusRejected, overdue, false)
		seed(6, flowdef.StatusDraft, overdue, true)

		marked, err := sla.SweepOverdueCases()
		Expect(err).To(BeNil())
		Expect(marked).To(Equal(int64(1)))

		var breachedIds []types.ID
		Expect(db.Model(&domain.Case{}).Where("sla_breached = ?", true).
			Order("id ASC").Pluck("id", &breachedIds).Error).To(BeNil())
		Expect(breachedIds).To(Equal([]types.ID{1, 6}))

		// a second sweep finds nothing new
		marked, err = sla.SweepOverdueCases()
		Expect(err).To(BeNil())
		Expect(marked).To(BeZero())
	})
}
