package main

import (
	"context"
	"log"
	"net/http"

	"caseflow/account"
	"caseflow/bizerror"
	"caseflow/client/es"
	"caseflow/client/s3"
	"caseflow/common"
	"caseflow/domain"
	"caseflow/domain/cases/caserest"
	"caseflow/domain/document"
	"caseflow/domain/tenants"
	"caseflow/event"
	"caseflow/indices"
	"caseflow/indices/search"
	"caseflow/infra/tracing"
	"caseflow/persistence"
	"caseflow/scoring"
	"caseflow/servehttp"
	"caseflow/session"
	"caseflow/sessions"
	"caseflow/sla"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&account.User{},
		&domain.Tenant{},
		&domain.TenantMember{},
		&domain.WorkflowConfig{},
		&domain.Case{},
		&domain.CaseRecord{},
		&event.EventRecord{},
		&document.Document{},
		&scoring.ModelRun{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if closer := tracing.Bootstrap(common.GetServiceName()); closer != nil {
		defer closer.Close()
	}
	es.CreateClientFromEnv()
	s3.Bootstrap()

	event.EventHandlers = append(event.EventHandlers, indices.IndexCaseEventHandle)

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine)

	authed := session.SimpleAuthFilter()
	account.RegisterUsersHandler(engine, authed)
	tenants.RegisterTenantsHandler(engine, authed)
	servehttp.RegisterWorkflowHandler(engine, authed, session.TenantPathFilter())
	caserest.RegisterCasesHandler(engine, authed, session.TenantPathFilter())
	document.RegisterDocumentsRestAPI(engine, authed, session.TenantPathFilter())
	scoring.RegisterScoringRestAPI(engine, authed, session.TenantPathFilter())
	search.RegisterCaseSearchRestAPI(engine, authed)
	indices.RegisterIndicesRestAPI(engine, authed)

	sla.StartCron()

	servehttp.StartHTTPServer(engine)
}
