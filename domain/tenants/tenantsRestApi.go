package tenants

import (
	"net/http"

	"caseflow/bizerror"
	"caseflow/misc"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type tenantHandler struct {
	validator *validator.Validate
}

func RegisterTenantsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &tenantHandler{validator: validator.New()}

	g := r.Group("/v1/tenants", middleWares...)
	g.GET("", handler.handleQueryTenants)
	g.POST("", handler.handleCreateTenant)
	g.PUT(":tenantId", handler.handleUpdateTenant)
	g.GET(":tenantId/members", handler.handleQueryMembers)

	m := r.Group("/v1/tenant-members", middleWares...)
	m.POST("", handler.handleCreateMember)
	m.DELETE("", handler.handleDeleteMember)
}

func (h *tenantHandler) handleQueryTenants(c *gin.Context) {
	tenants, err := QueryTenantsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, tenants)
}

func (h *tenantHandler) handleCreateTenant(c *gin.Context) {
	creation := TenantCreating{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	tenant, err := CreateTenantFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, tenant)
}

func (h *tenantHandler) handleUpdateTenant(c *gin.Context) {
	id, err := types.ParseID(c.Param("tenantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("tenantId") + "'"})
		return
	}

	updating := TenantUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := UpdateTenantFunc(id, &updating, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func (h *tenantHandler) handleQueryMembers(c *gin.Context) {
	id, err := types.ParseID(c.Param("tenantId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("tenantId") + "'"})
		return
	}

	members, err := QueryTenantMembersFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, members)
}

func (h *tenantHandler) handleCreateMember(c *gin.Context) {
	creation := TenantMemberCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := CreateTenantMemberFunc(&creation, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func (h *tenantHandler) handleDeleteMember(c *gin.Context) {
	deletion := TenantMemberDeletion{}
	if err := c.ShouldBindBodyWith(&deletion, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(deletion); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := DeleteTenantMemberFunc(&deletion, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
