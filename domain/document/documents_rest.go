package document

import (
	"net/http"

	"caseflow/bizerror"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterDocumentsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/tenants/:tenantId/documents", middleWares...)
	g.POST("", handleUploadDocument)
	g.GET("", handleQueryDocuments)
	g.GET(":docId/content", handleDocumentContent)
	g.POST(":docId/parse", handleParseDocument)
}

func handleUploadDocument(c *gin.Context) {
	tenantId := parseIDParam(c, "tenantId")

	caseId := types.ID(0)
	if raw := c.PostForm("caseId"); raw != "" {
		id, err := types.ParseID(raw)
		if err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		caseId = id
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	file, err := fileHeader.Open()
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	defer file.Close()

	doc, err := CreateDocumentFunc(tenantId, caseId, fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"), fileHeader.Size, file,
		session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, doc)
}

func handleQueryDocuments(c *gin.Context) {
	query := DocumentQuery{}
	_ = c.MustBindWith(&query, binding.Query)
	query.TenantID = parseIDParam(c, "tenantId")

	docs, err := QueryDocumentsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, docs)
}

func handleDocumentContent(c *gin.Context) {
	docId := parseIDParam(c, "docId")

	content, doc, err := DocumentContentFunc(docId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, content)
}

func handleParseDocument(c *gin.Context) {
	docId := parseIDParam(c, "docId")

	doc, err := ParseDocumentFunc(docId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, doc)
}

func parseIDParam(c *gin.Context, name string) types.ID {
	id, err := types.ParseID(c.Param(name))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}
