package caserest

import (
	"net/http"

	"caseflow/bizerror"
	"caseflow/domain/cases"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type caseHandler struct {
	validator *validator.Validate
}

func RegisterCasesHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &caseHandler{validator: validator.New()}

	g := r.Group("/v1/tenants/:tenantId", middleWares...)

	g.POST("cases", handler.handleCreateCase)
	g.GET("cases", handler.handleQueryCases)
	g.GET("cases/:caseId", handler.handleDetailCase)
	g.PUT("cases/:caseId", handler.handleUpdateCase)
	g.POST("cases/:caseId/actions", handler.handleCaseAction)
	g.GET("cases/:caseId/records", handler.handleQueryCaseRecords)

	g.GET("dashboard", handler.handleDashboard)
}

func (h *caseHandler) handleCreateCase(c *gin.Context) {
	tenantId := parseTenantID(c)

	creation := cases.CaseCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if creation.TenantID != tenantId {
		panic(bizerror.ErrForbidden)
	}

	detail, err := cases.CreateCaseFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *caseHandler) handleQueryCases(c *gin.Context) {
	query := cases.CaseQuery{}
	_ = c.MustBindWith(&query, binding.Query)
	query.TenantID = parseTenantID(c)

	result, err := cases.QueryCasesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func (h *caseHandler) handleDetailCase(c *gin.Context) {
	detail, err := cases.DetailCaseFunc(c.Param("caseId"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	if detail.TenantID != parseTenantID(c) {
		panic(bizerror.ErrForbidden)
	}
	c.JSON(http.StatusOK, detail)
}

func (h *caseHandler) handleUpdateCase(c *gin.Context) {
	id := parseCaseID(c)

	updating := cases.CaseUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updated, err := cases.UpdateCaseFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func (h *caseHandler) handleCaseAction(c *gin.Context) {
	id := parseCaseID(c)

	request := cases.CaseActionRequest{}
	if err := c.ShouldBindBodyWith(&request, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(request); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	result, err := cases.PerformCaseActionFunc(id, &request, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func (h *caseHandler) handleQueryCaseRecords(c *gin.Context) {
	id := parseCaseID(c)

	records, err := cases.QueryCaseRecordsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func (h *caseHandler) handleDashboard(c *gin.Context) {
	summary, err := cases.BuildDashboardSummaryFunc(parseTenantID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, summary)
}

func parseTenantID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("tenantId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func parseCaseID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("caseId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}
