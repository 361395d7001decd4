package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"infinite-experiment/hangar/internal/compliance"
	"infinite-experiment/hangar/internal/db/repositories"
	"infinite-experiment/hangar/internal/db/testdb"
	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testUser     = "11111111-1111-1111-1111-111111111111"
	testAircraft = "22222222-2222-2222-2222-222222222222"
)

// Mock counter provider
type mockCounterReader struct {
	getCountersFunc func(ctx context.Context, userID, aircraftID string) (*compliance.Counters, error)
	invalidated     []string
}

func (m *mockCounterReader) GetCounters(ctx context.Context, userID, aircraftID string) (*compliance.Counters, error) {
	return m.getCountersFunc(ctx, userID, aircraftID)
}

func (m *mockCounterReader) Invalidate(userID, aircraftID string) {
	m.invalidated = append(m.invalidated, aircraftID)
}

func staticCounters(c compliance.Counters) *mockCounterReader {
	return &mockCounterReader{
		getCountersFunc: func(ctx context.Context, userID, aircraftID string) (*compliance.Counters, error) {
			snapshot := c
			return &snapshot, nil
		},
	}
}

func unavailableCounters() *mockCounterReader {
	return &mockCounterReader{
		getCountersFunc: func(ctx context.Context, userID, aircraftID string) (*compliance.Counters, error) {
			return nil, errors.New("counter backend down")
		},
	}
}

// fixture wires every service onto one in-memory database
type fixture struct {
	db            *gorm.DB
	clock         compliance.FixedClock
	counters      *mockCounterReader
	notifications *repositories.NotificationRepository
	subscriptions *repositories.SubscriptionRepository
	directives    *repositories.DirectiveRepository
	history       *repositories.DirectiveHistoryRepository
	port          *repositories.ComplianceRepository
	logs          *repositories.MaintenanceLogRepository
	aircraft      *repositories.AircraftRepository

	notificationSvc *NotificationService
	complianceSvc   *DirectiveComplianceService
	directiveSvc    *DirectiveService
	logSvc          *MaintenanceLogService
	alertSvc        *AlertService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	gdb := testdb.Open(t)

	f := &fixture{
		db:            gdb,
		clock:         compliance.FixedClock(now),
		counters:      staticCounters(compliance.Counters{}),
		notifications: repositories.NewNotificationRepository(gdb),
		subscriptions: repositories.NewSubscriptionRepository(gdb),
		directives:    repositories.NewDirectiveRepository(gdb),
		history:       repositories.NewDirectiveHistoryRepository(gdb),
		port:          repositories.NewComplianceRepository(gdb, nil),
		logs:          repositories.NewMaintenanceLogRepository(gdb),
		aircraft:      repositories.NewAircraftRepository(gdb),
	}
	f.wire()
	return f
}

// wire (re)builds the services, so a test can swap a collaborator first
func (f *fixture) wire() {
	f.notificationSvc = NewNotificationService(f.notifications, f.subscriptions, f.clock, nil)
	f.complianceSvc = NewDirectiveComplianceService(f.directives, f.history, f.port, f.notifications, f.clock, nil)
	f.directiveSvc = NewDirectiveService(f.directives, f.history, f.port, f.notifications, f.counters, f.clock, nil)
	f.logSvc = NewMaintenanceLogService(f.logs, f.notifications, f.aircraft, f.counters, f.port, f.complianceSvc, nil)
	f.alertSvc = NewAlertService(f.notifications, f.aircraft, f.counters, compliance.Evaluator{}, f.clock, nil)
}

func (f *fixture) open(t *testing.T, parent repositories.ParentColumn, parentID string) []gormModels.Notification {
	t.Helper()
	ns, err := f.notifications.ListByParent(context.Background(), testUser, parent, parentID, false)
	require.NoError(t, err)
	return ns
}

func (f *fixture) seedAircraft(t *testing.T, id string, hobbs float64) {
	t.Helper()
	require.NoError(t, f.db.Create(&gormModels.Aircraft{ID: id, UserID: testUser, TailNumber: "N" + id[:4], Hobbs: hobbs}).Error)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func assertDay(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Format("2006-01-02"), got.UTC().Format("2006-01-02"))
}

func hobbsAt(v float64) compliance.Counters {
	return compliance.Counters{Hobbs: v}
}

func tachAt(v float64) compliance.Counters {
	return compliance.Counters{Tach: v}
}
