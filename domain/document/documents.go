package document

import (
	"io"
	"io/ioutil"
	"math/rand"

	"caseflow/bizerror"
	"caseflow/client/s3"
	"caseflow/domain"
	"caseflow/idgen"
	"caseflow/persistence"
	"caseflow/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateDocumentFunc  = CreateDocument
	QueryDocumentsFunc  = QueryDocuments
	DocumentContentFunc = DocumentContent
	ParseDocumentFunc   = ParseDocument
)

func CreateDocument(tenantId, caseId types.ID, name, contentType string, size int64,
	r io.Reader, s *session.Session) (*Document, error) {
	if !s.Perms.HasRoleSuffix("_" + tenantId.String()) {
		return nil, bizerror.ErrForbidden
	}

	doc := &Document{
		ID:       idgen.NextID(idWorker),
		TenantID: tenantId,
		CaseID:   caseId,

		Name:        name,
		ContentType: contentType,
		Size:        size,

		UploadedBy: s.Identity.ID,
		CreateTime: types.CurrentTimestamp(),
	}
	doc.ObjectKey = "documents/" + tenantId.String() + "/" + doc.ID.String()

	if err := s3.PutObjectFunc(doc.ObjectKey, r, s); err != nil {
		return nil, err
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func QueryDocuments(q *DocumentQuery, s *session.Session) (*[]Document, error) {
	if !s.Perms.HasTenantViewPerm(q.TenantID) {
		return nil, bizerror.ErrForbidden
	}

	var docs []Document
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	query := db.Where(Document{TenantID: q.TenantID})
	if q.CaseID != 0 {
		query = query.Where(Document{CaseID: q.CaseID})
	}
	if err := query.Order("create_time DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return &docs, nil
}

func DocumentContent(id types.ID, s *session.Session) ([]byte, *Document, error) {
	doc, err := findDocument(id, s)
	if err != nil {
		return nil, nil, err
	}

	r, err := s3.GetObjectFunc(doc.ObjectKey, s)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, nil, bizerror.ErrNotFound
		}
		return nil, nil, err
	}
	defer r.Close()
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	return content, doc, nil
}

// ParseDocument extracts key fields from the stored file. The extraction
// backend is not integrated yet, values are generated deterministically
// from the document id so repeated calls return the same result.
func ParseDocument(id types.ID, s *session.Session) (*Document, error) {
	doc, err := findDocument(id, s)
	if err != nil {
		return nil, err
	}
	if !s.Perms.HasRoleSuffix("_" + doc.TenantID.String()) {
		return nil, bizerror.ErrForbidden
	}

	if doc.ParseResult != nil && len(doc.ParseResult) > 0 {
		return doc, nil
	}

	gen := rand.New(rand.NewSource(int64(doc.ID)))
	doc.ParseResult = domain.PropertyMap{
		"documentType": []string{"identity", "invoice", "statement", "contract"}[gen.Intn(4)],
		"amount":       float64(gen.Intn(1000000)) / 100,
		"confidence":   0.5 + gen.Float64()/2,
	}
	doc.ParseTime = types.CurrentTimestamp()

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Model(&Document{}).Where("id = ?", doc.ID).
		Update(map[string]interface{}{"parse_result": doc.ParseResult, "parse_time": doc.ParseTime}).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func findDocument(id types.ID, s *session.Session) (*Document, error) {
	var doc Document
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if err := db.Where(&Document{ID: id}).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if !s.Perms.HasTenantViewPerm(doc.TenantID) {
		return nil, bizerror.ErrForbidden
	}
	return &doc, nil
}
