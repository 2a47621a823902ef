package indices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"caseflow/account"
	"caseflow/authority"
	"caseflow/bizerror"
	"caseflow/client/es"
	"caseflow/domain"
	"caseflow/domain/cases"
	"caseflow/event"
	"caseflow/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	CaseIndexEventHandlerName = "caseIndexer"
	indexRobot                = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{account.SystemViewPermission.ID},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasRole(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize   = 500
	SyncLoadRetries = 3

	// paces batch loads so a full sync cannot saturate the database
	SyncLimiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	failures := 0
	for {
		if err := SyncLimiter.Wait(context.Background()); err != nil {
			return err
		}

		records, err := cases.LoadCasesFunc(page, SyncBatchSize)
		if err != nil {
			failures++
			logrus.Warnf("indices fully sync: error on retrieve cases(page = %d, pageSize = %d, attempt = %d): %v", page, SyncBatchSize, failures, err)
			if failures >= SyncLoadRetries {
				return err
			}
			continue
		}
		failures = 0

		if len(records) == 0 {
			logrus.Infof("indices fully sync: there are no more cases to index")
			return nil // loop exit
		}

		if err := IndexCases(records, indexRobot); err != nil {
			logrus.Warnf("indices fully sync: error on index cases(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

func IndexCaseEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != "CASE" {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		err := es.DeleteDocumentByIdFunc(CaseIndexName, e.Event.SourceId, indexRobot)
		if err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete case index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: CaseIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: CaseIndexEventHandlerName}
	}

	detail, err := cases.DetailCaseFunc(e.Event.SourceId.String(), indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail case when index case %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: CaseIndexEventHandlerName,
		}
	}
	if err := IndexCases([]domain.Case{detail.Case}, indexRobot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index case %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: CaseIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: CaseIndexEventHandlerName}
}
