package cases

import (
	"context"
	"errors"

	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/domain/flow"
	"caseflow/domain/flowdef"
	"caseflow/domain/tenants"
	"caseflow/event"
	"caseflow/idgen"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	caseIdWorker   = sonyflake.NewSonyflake(sonyflake.Settings{})
	recordIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateCaseFunc = CreateCase
	QueryCasesFunc = QueryCases
	DetailCaseFunc = DetailCase
	UpdateCaseFunc = UpdateCase
	LoadCasesFunc  = LoadCases
)

func CreateCase(c *CaseCreation, s *session.Session) (*domain.CaseDetail, error) {
	if !s.Perms.HasRoleSuffix("_" + c.TenantID.String()) {
		return nil, bizerror.ErrForbidden
	}

	workflow, err := resolveActiveWorkflow(c.WorkflowID, c.TenantID, s)
	if err != nil {
		return nil, err
	}
	def := workflow.Definition()
	initialStage := def.Stages[0]

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	var caseDetail *domain.CaseDetail
	var ev *event.EventRecord

	err1 := db.Transaction(func(tx *gorm.DB) error {
		now := types.CurrentTimestamp()
		identifier, err := tenants.NextCaseIdentifier(c.TenantID, tx)
		if err != nil {
			return err
		}

		data := c.Data
		if data == nil {
			data = domain.PropertyMap{}
		}
		caseDetail = &domain.CaseDetail{
			Case: domain.Case{
				ID:         idgen.NextID(caseIdWorker),
				Identifier: identifier,
				TenantID:   c.TenantID,
				WorkflowID: workflow.ID,

				Title:    c.Title,
				Priority: c.Priority,

				CurrentStage: initialStage.ID,
				Status:       flowdef.StatusDraft,

				AssignedTo: c.AssignedTo,
				CreatedBy:  s.Identity.ID,
				Data:       data,

				SlaDeadline: def.StageDeadline(initialStage.ID, now.Time()),
				Version:     1,

				StageBeginTime: now,
				CreateTime:     now,
			},
			Stage:    initialStage,
			Workflow: workflow,
		}

		if err := tx.Create(&caseDetail.Case).Error; err != nil {
			return err
		}

		initRecord := domain.CaseRecord{ID: idgen.NextID(recordIdWorker), CaseID: caseDetail.ID,
			Action: "create", FromStage: "", ToStage: initialStage.ID,
			PerformerID: s.Identity.ID, PerformerName: s.Identity.Nickname, Timestamp: now}
		if err := tx.Create(&initRecord).Error; err != nil {
			return err
		}

		ev, err = event.CreateEvent("CASE", caseDetail.ID, caseDetail.Identifier, event.EventCategoryCreated,
			nil, &s.Identity, now, tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}

	return caseDetail, nil
}

// resolveActiveWorkflow maps every failure mode onto ErrInvalidWorkflow:
// missing row, foreign tenant, deactivated config.
func resolveActiveWorkflow(workflowID, tenantID types.ID, s *session.Session) (*domain.WorkflowConfig, error) {
	workflow, err := flow.DetailWorkflowFunc(workflowID, s)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &bizerror.ErrInvalidWorkflow{WorkflowID: workflowID.String(), Reason: "not found"}
		}
		return nil, err
	}
	if workflow.TenantID != tenantID {
		return nil, &bizerror.ErrInvalidWorkflow{WorkflowID: workflowID.String(), Reason: "owned by another tenant"}
	}
	if !workflow.IsActive {
		return nil, &bizerror.ErrInvalidWorkflow{WorkflowID: workflowID.String(), Reason: "inactive"}
	}
	if len(workflow.Stages) == 0 {
		return nil, &bizerror.ErrInvalidWorkflow{WorkflowID: workflowID.String(), Reason: "no stages"}
	}
	return workflow, nil
}

func QueryCases(query *CaseQuery, s *session.Session) (*[]domain.Case, error) {
	var result []domain.Case
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Where(domain.Case{TenantID: query.TenantID})
	if query.Title != "" {
		q = q.Where("title like ?", "%"+query.Title+"%")
	}
	if len(query.Statuses) > 0 {
		q = q.Where("status in (?)", query.Statuses)
	}

	visibleTenants := s.VisibleTenants()
	if len(visibleTenants) == 0 {
		return &[]domain.Case{}, nil
	}
	q = q.Where("tenant_id in (?)", visibleTenants).Order("create_time DESC")
	if err := q.Find(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func DetailCase(identifier string, s *session.Session) (*domain.CaseDetail, error) {
	id, _ := types.ParseID(identifier)
	caseDetail := domain.CaseDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where("id = ? OR identifier LIKE ?", id, identifier).First(&(caseDetail.Case)).Error; err != nil {
		return nil, err
	}

	if !s.Perms.HasTenantViewPerm(caseDetail.TenantID) {
		return nil, bizerror.ErrForbidden
	}

	workflow, err := flow.DetailWorkflowFunc(caseDetail.WorkflowID, s)
	if err != nil {
		return nil, err
	}
	stageFound, found := workflow.FindStage(caseDetail.CurrentStage)
	if !found {
		return nil, bizerror.ErrStageInvalid
	}
	caseDetail.Stage = stageFound
	caseDetail.Workflow = workflow

	return &caseDetail, nil
}

func UpdateCase(id types.ID, u *CaseUpdating, s *session.Session) (*domain.Case, error) {
	var updatedCase domain.Case
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB(s.Context).Transaction(func(tx *gorm.DB) error {
		originCase, err := findCaseAndCheckPerms(tx, id, s)
		if err != nil {
			return err
		}

		db := tx.Model(&domain.Case{}).Where("id = ? AND version = ?", id, originCase.Version).
			Update(map[string]interface{}{
				"title": u.Title, "priority": u.Priority, "assigned_to": u.AssignedTo,
				"version": originCase.Version + 1,
			})
		if err := db.Error; err != nil {
			return err
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrConflict
		}

		ev, err = event.CreateEvent("CASE", originCase.ID, originCase.Identifier, event.EventCategoryPropertyUpdated,
			[]event.UpdatedProperty{{
				PropertyName: "Title", PropertyDesc: "Title",
				OldValue: originCase.Title, OldValueDesc: originCase.Title,
				NewValue: u.Title, NewValueDesc: u.Title,
			}},
			&s.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Case{ID: id}).First(&updatedCase).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updatedCase, nil
}

// LoadCases pages through all cases without permission filtering.
// Only used by index rebuilds under the index robot identity.
func LoadCases(page, size int) ([]domain.Case, error) {
	var result []domain.Case
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())
	if err := db.Offset((page - 1) * size).Limit(size).Order("id ASC").Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func findCaseAndCheckPerms(db *gorm.DB, id types.ID, s *session.Session) (*domain.Case, error) {
	var one domain.Case
	if err := db.Where(&domain.Case{ID: id}).First(&one).Error; err != nil {
		return nil, err
	}
	if s == nil || !s.Perms.HasRoleSuffix("_"+one.TenantID.String()) {
		return nil, bizerror.ErrForbidden
	}
	return &one, nil
}
