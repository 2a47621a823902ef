package flow

import (
	"time"

	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/idgen"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	// configs are immutable per version, so a short-lived cache is safe;
	// activation changes evict explicitly
	detailCache = cache.New(time.Minute, 10*time.Second)

	QueryWorkflowsFunc    = QueryWorkflows
	DetailWorkflowFunc    = DetailWorkflow
	CreateWorkflowFunc    = CreateWorkflow
	DeleteWorkflowFunc    = DeleteWorkflow
	SetWorkflowActiveFunc = SetWorkflowActive
)

type WorkflowQuery struct {
	TenantID types.ID `form:"tenantId"`
	Name     string   `form:"name"`
}

func CreateWorkflow(c *WorkflowConfigCreation, s *session.Session) (*domain.WorkflowConfig, error) {
	if !s.Perms.HasRoleSuffix("_" + c.TenantID.String()) {
		return nil, bizerror.ErrForbidden
	}

	def := c.Definition()
	if err := def.Validate(); err != nil {
		return nil, err
	}

	workflow := &domain.WorkflowConfig{
		ID:       idgen.NextID(idWorker),
		TenantID: c.TenantID,
		Name:     c.Name,
		Version:  1,
		IsActive: true,

		Stages:      c.Stages,
		Transitions: c.Transitions,
		AutoRules:   c.AutoRules,

		CreateTime: types.CurrentTimestamp(),
	}

	superseded := []types.ID{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		// a new row with the same name and tenant supersedes older versions
		var prior domain.WorkflowConfig
		err := tx.Where(&domain.WorkflowConfig{TenantID: c.TenantID, Name: c.Name}).
			Order("version DESC").First(&prior).Error
		if err == nil {
			workflow.Version = prior.Version + 1
			if err := tx.Model(&domain.WorkflowConfig{}).
				Where("tenant_id = ? AND name = ? AND is_active = ?", c.TenantID, c.Name, true).
				Pluck("id", &superseded).Error; err != nil {
				return err
			}
			if err := tx.Model(&domain.WorkflowConfig{}).
				Where("tenant_id = ? AND name = ?", c.TenantID, c.Name).
				Update("is_active", false).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		return tx.Create(workflow).Error
	})
	if err != nil {
		return nil, err
	}
	for _, id := range superseded {
		detailCache.Delete(id.String())
	}
	return workflow, nil
}

func DetailWorkflow(id types.ID, s *session.Session) (*domain.WorkflowConfig, error) {
	if cached, found := detailCache.Get(id.String()); found {
		workflow := cached.(*domain.WorkflowConfig)
		if !s.Perms.HasTenantViewPerm(workflow.TenantID) {
			return nil, bizerror.ErrForbidden
		}
		return workflow, nil
	}

	workflow := domain.WorkflowConfig{}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&domain.WorkflowConfig{ID: id}).First(&workflow).Error; err != nil {
		return nil, err
	}
	if !s.Perms.HasTenantViewPerm(workflow.TenantID) {
		return nil, bizerror.ErrForbidden
	}

	detailCache.Set(id.String(), &workflow, cache.DefaultExpiration)
	return &workflow, nil
}

func QueryWorkflows(query *WorkflowQuery, s *session.Session) (*[]domain.WorkflowConfig, error) {
	var workflows []domain.WorkflowConfig
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	q := db.Where(domain.WorkflowConfig{TenantID: query.TenantID})
	if query.Name != "" {
		q = q.Where("name like ?", "%"+query.Name+"%")
	}
	visibleTenants := s.VisibleTenants()
	if len(visibleTenants) == 0 {
		return &[]domain.WorkflowConfig{}, nil
	}
	q = q.Where("tenant_id in (?)", visibleTenants)
	if err := q.Find(&workflows).Error; err != nil {
		return nil, err
	}

	return &workflows, nil
}

func SetWorkflowActive(id types.ID, active bool, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		wf := domain.WorkflowConfig{}
		if err := tx.Where(&domain.WorkflowConfig{ID: id}).First(&wf).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix(domain.TenantRoleManager + "_" + wf.TenantID.String()) {
			return bizerror.ErrForbidden
		}
		return tx.Model(&domain.WorkflowConfig{}).Where("id = ?", id).
			Update("is_active", active).Error
	})
	if err != nil {
		return err
	}
	detailCache.Delete(id.String())
	return nil
}

func DeleteWorkflow(id types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		wf := domain.WorkflowConfig{}
		if err := tx.Where(&domain.WorkflowConfig{ID: id}).First(&wf).Error; err != nil {
			return err
		}
		if !s.Perms.HasRoleSuffix(domain.TenantRoleManager + "_" + wf.TenantID.String()) {
			return bizerror.ErrForbidden
		}

		if err := isWorkflowReferenced(tx, wf.ID); err != nil {
			return err
		}

		return tx.Model(&domain.WorkflowConfig{}).Delete(&domain.WorkflowConfig{ID: id}).Error
	})
	if err != nil {
		return err
	}
	detailCache.Delete(id.String())
	return nil
}

func isWorkflowReferenced(db *gorm.DB, workflowID types.ID) error {
	var one domain.Case
	err := db.Model(&domain.Case{}).Where(&domain.Case{WorkflowID: workflowID}).First(&one).Error
	if err == nil {
		return bizerror.ErrWorkflowIsReferenced
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return nil
}
