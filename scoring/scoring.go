package scoring

import (
	"math/rand"

	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/idgen"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
	"golang.org/x/time/rate"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	// model runs are expensive, cap the request rate service-wide
	scoreLimiter = rate.NewLimiter(rate.Limit(5), 10)

	ScoreCaseFunc      = ScoreCase
	QueryModelRunsFunc = QueryModelRuns
)

// ScoreCase runs the risk models against one case and stores the outcome.
// The scoring backend is not integrated yet, scores are generated
// deterministically from the case id and the run sequence.
func ScoreCase(tenantId types.ID, req *ScoreRequest, s *session.Session) (*ModelRun, error) {
	if !s.Perms.HasRoleSuffix("_" + tenantId.String()) {
		return nil, bizerror.ErrForbidden
	}
	if !scoreLimiter.Allow() {
		return nil, bizerror.ErrRateLimited
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	var one domain.Case
	if err := db.Where(&domain.Case{ID: req.CaseID}).First(&one).Error; err != nil {
		return nil, err
	}
	if one.TenantID != tenantId {
		return nil, bizerror.ErrForbidden
	}

	model := req.Model
	if model == "" {
		model = "combined"
	}

	run := &ModelRun{
		ID:       idgen.NextID(idWorker),
		TenantID: tenantId,
		CaseID:   req.CaseID,

		Model: model,

		RequestedBy: s.Identity.ID,
		CreateTime:  types.CurrentTimestamp(),
	}

	gen := rand.New(rand.NewSource(int64(req.CaseID) ^ int64(run.ID)))
	run.PdScore = gen.Float64()
	run.FraudScore = gen.Float64()

	if err := db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func QueryModelRuns(q *ModelRunQuery, s *session.Session) (*[]ModelRun, error) {
	if !s.Perms.HasTenantViewPerm(q.TenantID) {
		return nil, bizerror.ErrForbidden
	}

	var runs []ModelRun
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	query := db.Where(ModelRun{TenantID: q.TenantID})
	if q.CaseID != 0 {
		query = query.Where(ModelRun{CaseID: q.CaseID})
	}
	if err := query.Order("create_time DESC").Find(&runs).Error; err != nil {
		return nil, err
	}
	return &runs, nil
}
