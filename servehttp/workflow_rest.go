package servehttp

import (
	"net/http"

	"caseflow/bizerror"
	"caseflow/domain/flow"
	"caseflow/misc"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type workflowHandler struct {
	validator *validator.Validate
}

func RegisterWorkflowHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/tenants/:tenantId/workflows", middleWares...)

	handler := &workflowHandler{validator: validator.New()}

	g.POST("", handler.handleCreateWorkflow)
	g.GET("", handler.handleQueryWorkflows)
	g.GET(":flowId", handler.handleDetailWorkflow)
	g.PUT(":flowId/active", handler.handleUpdateWorkflowActive)
	g.DELETE(":flowId", handler.handleDeleteWorkflow)
}

func (h *workflowHandler) handleQueryWorkflows(c *gin.Context) {
	query := flow.WorkflowQuery{}
	_ = c.MustBindWith(&query, binding.Query)
	query.TenantID = pathTenantID(c)

	flows, err := flow.QueryWorkflowsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, flows)
}

func (h *workflowHandler) handleCreateWorkflow(c *gin.Context) {
	creation := flow.WorkflowConfigCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if creation.TenantID != pathTenantID(c) {
		panic(bizerror.ErrForbidden)
	}

	workflow, err := flow.CreateWorkflowFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, workflow)
}

func (h *workflowHandler) handleDetailWorkflow(c *gin.Context) {
	id, err := types.ParseID(c.Param("flowId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("flowId") + "'"})
		return
	}

	workflow, err := flow.DetailWorkflowFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	if workflow.TenantID != pathTenantID(c) {
		panic(bizerror.ErrForbidden)
	}
	c.JSON(http.StatusOK, workflow)
}

func (h *workflowHandler) handleUpdateWorkflowActive(c *gin.Context) {
	id, err := types.ParseID(c.Param("flowId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("flowId") + "'"})
		return
	}

	updating := flow.WorkflowActiveUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := flow.SetWorkflowActiveFunc(id, *updating.IsActive, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *workflowHandler) handleDeleteWorkflow(c *gin.Context) {
	id, err := types.ParseID(c.Param("flowId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("flowId") + "'"})
		return
	}

	if err := flow.DeleteWorkflowFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Status(http.StatusNoContent)
}

func pathTenantID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("tenantId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}
