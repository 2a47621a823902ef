package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"caseflow/client/es"
	"caseflow/domain"
	"caseflow/domain/cases"
	"caseflow/indices"
	"caseflow/session"
)

var (
	SearchCasesFunc = SearchCases
)

func SearchCases(q cases.CaseQuery, s *session.Session) ([]domain.Case, error) {
	visibleTenants := s.VisibleTenants()
	if len(visibleTenants) == 0 {
		return []domain.Case{}, nil
	}

	filters := make([]es.H, 0, 10)
	if q.TenantID != 0 {
		filters = append(filters, es.H{"term": es.H{"tenantId": q.TenantID}})
	}
	filters = append(filters, es.H{"terms": es.H{"tenantId": visibleTenants}})

	if q.Title != "" {
		filters = append(filters, es.H{"match": es.H{"title": es.H{"query": q.Title, "operator": "AND"}}})
	}
	if len(q.Statuses) > 0 {
		filters = append(filters, es.H{"terms": es.H{"status": q.Statuses}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "desc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.CaseIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	records := make([]domain.Case, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		one := domain.Case{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&one); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		records = append(records, one)
	}

	return records, nil
}
