package indices

import (
	"fmt"

	"caseflow/client/es"
	"caseflow/domain"
	"caseflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	CaseIndexName = "cases"
)

type CaseDocument struct {
	domain.Case
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexCases(records []domain.Case, s *session.Session) error {
	docs := make([]CaseDocument, 0, len(records))
	for _, r := range records {
		docs = append(docs, CaseDocument{Case: r})
	}

	if err := saveCaseDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveCaseDocuments(docs []CaseDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(CaseIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index case %d %s %s\n", doc.ID, doc.Identifier, err)
		} else {
			logrus.Infof("index case %d %s successfully\n", doc.ID, doc.Identifier)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
