package search

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"caseflow/bizerror"
	"caseflow/domain"
	"caseflow/domain/cases"
	"caseflow/domain/flowdef"
	"caseflow/misc"
	"caseflow/session"
	"caseflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestHandleCaseSearch(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterCaseSearchRestAPI(router)

	t.Run("handle error", func(t *testing.T) {
		SearchCasesFunc = func(q cases.CaseQuery, s *session.Session) ([]domain.Case, error) {
			return nil, errors.New("error on search cases")
		}
		req := httptest.NewRequest(http.MethodGet, PathCaseSearch, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error", "message":"error on search cases", "data":null}`))
	})

	t.Run("should answer matched cases with query bound", func(t *testing.T) {
		matched := []domain.Case{{ID: 1000, Identifier: "T1-1", TenantID: 100, WorkflowID: 1,
			Title: "loan onboarding", CurrentStage: "intake", Status: flowdef.StatusDraft, Version: 1,
			StageBeginTime: types.CurrentTimestamp(), CreateTime: types.CurrentTimestamp()}}

		var boundQuery cases.CaseQuery
		SearchCasesFunc = func(q cases.CaseQuery, s *session.Session) ([]domain.Case, error) {
			boundQuery = q
			return matched, nil
		}
		req := httptest.NewRequest(http.MethodGet,
			PathCaseSearch+"?tenantId=100&title=loan&status=draft&status=in_progress", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(boundQuery.TenantID).To(Equal(types.ID(100)))
		Expect(boundQuery.Title).To(Equal("loan"))
		Expect(boundQuery.Statuses).To(Equal([]flowdef.Status{flowdef.StatusDraft, flowdef.StatusInProgress}))
		expected, err := json.Marshal(misc.PagedBody{List: matched, Total: 1})
		Expect(err).To(BeNil())
		Expect(body).To(MatchJSON(expected))
	})
}
