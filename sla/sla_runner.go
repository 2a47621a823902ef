package sla

import (
	"context"

	"caseflow/domain"
	"caseflow/domain/flowdef"
	"caseflow/persistence"

	"github.com/fundwit/go-commons/types"
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	SweepOverdueCasesFunc = SweepOverdueCases
)

func StartCron() {
	crontab := cron.New(cron.WithSeconds())
	crontab.AddFunc("0 * * * * ?", func() {
		if _, err := SweepOverdueCasesFunc(); err != nil {
			logrus.Errorf("sla sweep failed: %v", err)
		}
	})
	crontab.Start()
}

// SweepOverdueCases marks every open case whose deadline has passed.
// Records stay marked until a later action moves the case to a new stage.
func SweepOverdueCases() (int64, error) {
	db := persistence.ActiveDataSourceManager.GormDB(context.Background())

	now := types.CurrentTimestamp()
	q := db.Model(&domain.Case{}).
		Where("sla_breached = ?", false).
		Where("sla_deadline > ? AND sla_deadline < ?", types.Timestamp{}, now).
		Where("status NOT IN (?)", []flowdef.Status{flowdef.StatusCompleted, flowdef.StatusRejected}).
		Update("sla_breached", true)
	if err := q.Error; err != nil {
		return 0, err
	}
	if q.RowsAffected > 0 {
		logrus.Infof("sla sweep: marked %d overdue cases", q.RowsAffected)
	}
	return q.RowsAffected, nil
}
