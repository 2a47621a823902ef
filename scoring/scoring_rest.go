package scoring

import (
	"net/http"

	"caseflow/bizerror"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type scoringHandler struct {
	validator *validator.Validate
}

func RegisterScoringRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/tenants/:tenantId/scores", middleWares...)

	handler := &scoringHandler{validator: validator.New()}
	g.POST("", handler.handleScoreCase)
	g.GET("", handler.handleQueryModelRuns)
}

func (h *scoringHandler) handleScoreCase(c *gin.Context) {
	req := ScoreRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(req); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	run, err := ScoreCaseFunc(parseTenantID(c), &req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, run)
}

func (h *scoringHandler) handleQueryModelRuns(c *gin.Context) {
	query := ModelRunQuery{}
	_ = c.MustBindWith(&query, binding.Query)
	query.TenantID = parseTenantID(c)

	runs, err := QueryModelRunsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, runs)
}

func parseTenantID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("tenantId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}
