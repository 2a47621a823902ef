package search

import (
	"net/http"

	"caseflow/bizerror"
	"caseflow/domain/cases"
	"caseflow/misc"
	"caseflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathCaseSearch = "/v1/case-search"
)

func RegisterCaseSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathCaseSearch, middleWares...)
	g.GET("", handleCaseSearch)
}

func handleCaseSearch(c *gin.Context) {
	query := cases.CaseQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	records, err := SearchCasesFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: records, Total: uint64(len(records))})
}
