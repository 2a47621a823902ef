package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"

	"caseflow/authority"
	"caseflow/domain"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx build a session carrying the given permission strings.
func BuildSecCtx(uid types.ID, perms ...string) *session.Session {
	tenantRoles := authority.TenantRoles{}
	for _, perm := range perms {
		idx := strings.Index(perm, "_")
		if idx > 0 {
			role := perm[0:idx]
			tenantId, err := types.ParseID(perm[idx+1:])
			if err != nil {
				continue
			}
			tenantRoles = append(tenantRoles, domain.TenantRole{TenantID: tenantId, Role: role})
		}
	}

	return &session.Session{
		Identity:    session.Identity{ID: uid},
		Perms:       perms,
		TenantRoles: tenantRoles,
		Context:     context.Background(),
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}
