package cases

import (
	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/domain/flowdef"
	"caseflow/event"
	"caseflow/idgen"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	PerformCaseActionFunc = PerformCaseAction
	QueryCaseRecordsFunc  = QueryCaseRecords
)

// PerformCaseAction applies one workflow transition to a case. The case
// update, the history append and the event row commit in a single
// transaction; a version check rejects writers racing on the same case.
func PerformCaseAction(caseId types.ID, req *CaseActionRequest, s *session.Session) (*CaseActionResult, error) {
	action := flowdef.NormalizeAction(req.Action)

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var result *CaseActionResult
	var ev *event.EventRecord
	var workflow *domain.WorkflowConfig
	var enteredStage string

	err := db.Transaction(func(tx *gorm.DB) error {
		one, err := findCaseAndCheckPerms(tx, caseId, s)
		if err != nil {
			return err
		}
		if one.Status.IsTerminal() {
			return bizerror.ErrCaseTerminal
		}

		workflow, err = resolveActiveWorkflow(one.WorkflowID, one.TenantID, s)
		if err != nil {
			return err
		}
		def := workflow.Definition()

		actorRole := s.Perms.TenantRoleValue(one.TenantID)
		transition, err := def.ResolveTransition(one.CurrentStage, action, actorRole)
		if err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		newStatus := flowdef.DeriveStatus(transition.To)
		deadline := def.StageDeadline(transition.To, now.Time())

		data := one.Data
		if data == nil {
			data = domain.PropertyMap{}
		}
		for k, v := range req.Data {
			data[k] = v
		}

		query := tx.Model(&domain.Case{}).Where("id = ? AND version = ?", one.ID, one.Version).
			Update(map[string]interface{}{
				"current_stage":    transition.To,
				"status":           newStatus,
				"sla_deadline":     deadline,
				"sla_breached":     false,
				"stage_begin_time": now,
				"data":             data,
				"version":          one.Version + 1,
			})
		if err := query.Error; err != nil {
			return err
		}
		if query.RowsAffected != 1 {
			return bizerror.ErrConflict
		}

		record := domain.CaseRecord{ID: idgen.NextID(recordIdWorker), CaseID: one.ID,
			Action: action, FromStage: one.CurrentStage, ToStage: transition.To,
			PerformerID: s.Identity.ID, PerformerName: s.Identity.Nickname,
			Comment: req.Comment, Timestamp: now}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent("CASE", one.ID, one.Identifier, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "CurrentStage", PropertyDesc: "CurrentStage",
				OldValue: one.CurrentStage, OldValueDesc: one.CurrentStage,
				NewValue: transition.To, NewValueDesc: transition.To,
			}},
			&s.Identity, now, tx)
		if err != nil {
			return err
		}

		enteredStage = transition.To
		result = &CaseActionResult{NewStage: transition.To, NewStatus: newStatus, SlaDeadline: deadline}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	logAutoRules(workflow, enteredStage)

	return result, nil
}

// logAutoRules records which auto rules would fire on stage entry. Rules
// are logged only, never executed.
func logAutoRules(workflow *domain.WorkflowConfig, enteredStage string) {
	if workflow == nil {
		return
	}
	for _, r := range workflow.Definition().MatchingAutoRules(enteredStage) {
		logrus.Infof("auto rule %s matched on stage %s of workflow %d: action %s skipped",
			r.ID, enteredStage, workflow.ID, r.Action)
	}
}

func QueryCaseRecords(caseId types.ID, s *session.Session) (*[]domain.CaseRecord, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	one := domain.Case{}
	if err := db.Where(&domain.Case{ID: caseId}).Select("tenant_id").First(&one).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return &[]domain.CaseRecord{}, nil
		}
		return nil, err
	}
	if !s.Perms.HasTenantViewPerm(one.TenantID) {
		return &[]domain.CaseRecord{}, nil
	}

	var records []domain.CaseRecord
	if err := db.Where(&domain.CaseRecord{CaseID: caseId}).Order("timestamp ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}
