package document

import (
	"caseflow/domain"

	"github.com/fundwit/go-commons/types"
)

type Document struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	TenantID types.ID `json:"tenantId"`
	CaseID   types.ID `json:"caseId"`

	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	ObjectKey   string `json:"-"`

	UploadedBy types.ID `json:"uploadedBy"`

	ParseResult domain.PropertyMap `json:"parseResult" sql:"type:TEXT"`
	ParseTime   types.Timestamp    `json:"parseTime" sql:"type:DATETIME(6) NULL"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6)"`
}

func (d *Document) TableName() string {
	return "documents"
}

type DocumentQuery struct {
	TenantID types.ID `uri:"tenantId" json:"-"`
	CaseID   types.ID `form:"caseId"`
}
