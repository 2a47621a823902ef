package sessions

import (
	"net/http"
	"time"

	"caseflow/account"
	"caseflow/bizerror"
	"caseflow/misc"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

func RegisterSessionsHandler(r *gin.Engine) {
	g := r.Group("/v1/sessions")
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)

	r.GET("/v1/session", session.SimpleAuthFilter(), HandleQuerySession)
}

func SimpleLogoutHandler(c *gin.Context) {
	token := ""
	header := c.GetHeader("Authorization")
	if len(header) > len("Bearer ") && header[:len("Bearer ")] == "Bearer " {
		token = header[len("Bearer "):]
	}
	if token == "" {
		token, _ = c.Cookie(session.KeySecToken) // ErrNoCookie
	}
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: err.Error()})
		return
	}

	db := persistence.ActiveDataSourceManager.GormDB(c.Request.Context())
	user := account.User{}
	if err := db.Model(&account.User{}).Where(&account.User{Name: login.Name, Secret: account.HashSha256(login.Password)}).
		Scan(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			panic(bizerror.ErrUnauthenticated)
		}
		c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
		return
	}
	if !user.IsActive {
		panic(bizerror.ErrUnauthenticated)
	}

	token := uuid.New().String()
	identity := session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname}
	securityContext := session.Session{Token: token, Identity: identity, SigningTime: time.Now(), Context: c.Request.Context()}
	perms, tenantRoles := account.LoadPermFunc(user.ID, &securityContext)
	securityContext.Perms = perms
	securityContext.TenantRoles = tenantRoles
	session.TokenCache.Set(token, &securityContext, cache.DefaultExpiration)

	account.RecordLastLogin(user.ID, &securityContext)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &securityContext)
}

func HandleQuerySession(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	c.JSON(http.StatusOK, s)
}
