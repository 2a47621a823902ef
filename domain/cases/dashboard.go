package cases

import (
	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/domain/flowdef"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
)

var BuildDashboardSummaryFunc = BuildDashboardSummary

func BuildDashboardSummary(tenantId types.ID, s *session.Session) (*DashboardSummary, error) {
	if !s.Perms.HasTenantViewPerm(tenantId) {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	type statusCount struct {
		Status flowdef.Status `json:"status"`
		Num    int64          `json:"num"`
	}
	var counts []statusCount
	if err := db.Model(&domain.Case{}).Select("status, count(*) as num").
		Where("tenant_id = ?", tenantId).Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}

	summary := DashboardSummary{TenantID: tenantId, ByStatus: map[flowdef.Status]int64{}}
	for _, c := range counts {
		summary.ByStatus[c.Status] = c.Num
		summary.TotalCases += c.Num
	}

	if err := db.Model(&domain.Case{}).
		Where("tenant_id = ? AND sla_breached = ?", tenantId, true).
		Count(&summary.SlaBreached).Error; err != nil {
		return nil, err
	}

	return &summary, nil
}
