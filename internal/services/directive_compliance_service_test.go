package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/db/repositories"
	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingHistoryStore rejects appends
type failingHistoryStore struct {
	HistoryStore
	err error
}

func (f failingHistoryStore) Append(ctx context.Context, entry *gormModels.DirectiveHistory) error {
	return f.err
}

func createDirective(t *testing.T, f *fixture, d *gormModels.Directive, due DueInput) *gormModels.Directive {
	t.Helper()
	if d.AircraftID == "" {
		d.AircraftID = testAircraft
	}
	if d.Number == "" {
		d.Number = "AD 2023-12-05"
	}
	res, err := f.directiveSvc.CreateDirective(context.Background(), testUser, d, due)
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	return res.Directive
}

func compliedOn(on time.Time) *gormModels.ComplianceEvent {
	return &gormModels.ComplianceEvent{
		ComplianceDate:   on,
		ComplianceStatus: constants.ComplianceComplied,
	}
}

func TestSaveDirectiveCompliance_AnchoredRecurrence(t *testing.T) {
	f := newFixture(t, day(2024, 3, 2))
	ctx := context.Background()

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "Fuel selector valve",
		InitialDueType:  constants.DueTypeByDate,
		ComplianceScope: constants.ScopeRecurring,
		RepeatMonths:    ptr(12),
	}, DueInput{Date: ptr(day(2023, 6, 1))})

	generated := f.open(t, repositories.ParentDirective, d.ID)
	require.Len(t, generated, 1)
	assertDay(t, day(2023, 6, 1), generated[0].InitialDate)

	res, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID: d.ID,
		Event:       compliedOn(day(2024, 3, 1)),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.False(t, res.DirectiveCompleted)

	require.NotNil(t, res.CompletedNotification)
	assert.Equal(t, generated[0].ID, res.CompletedNotification.ID)
	require.NotNil(t, res.NextNotification)
	assertDay(t, day(2025, 3, 1), res.NextNotification.InitialDate)

	open := f.open(t, repositories.ParentDirective, d.ID)
	require.Len(t, open, 1)
	assert.Equal(t, res.NextNotification.ID, open[0].ID)
	assert.False(t, open[0].UserModified)

	require.NotNil(t, res.Status)
	assert.Equal(t, constants.SummaryRecurringCurrent, res.Status.ComplianceStatus)
	assertDay(t, day(2024, 3, 1), res.Status.FirstComplianceDate)
	assertDay(t, day(2024, 3, 1), res.Status.LastComplianceDate)

	record, err := f.complianceSvc.GetDirectiveCompliance(ctx, testUser, d.ID)
	require.NoError(t, err)
	assert.Len(t, record.Events, 1)
	require.Len(t, record.History, 2)
	assert.Equal(t, constants.HistoryCreate, record.History[0].Action)
	assert.Equal(t, constants.HistoryCompliance, record.History[1].Action)
}

func TestSaveDirectiveCompliance_AnchoredCounter(t *testing.T) {
	f := newFixture(t, day(2024, 3, 2))
	f.counters = staticCounters(tachAt(1000))
	f.wire()
	ctx := context.Background()

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "Exhaust inspection",
		InitialDueType:  constants.DueTypeByTotalTime,
		CounterType:     constants.CounterTach,
		ComplianceScope: constants.ScopeRecurring,
		RepeatHours:     ptr(100.0),
	}, DueInput{Hours: ptr(1100.0), Mode: constants.DueHoursAbsolute})

	res, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID: d.ID,
		Event: &gormModels.ComplianceEvent{
			ComplianceDate:   day(2024, 3, 1),
			ComplianceStatus: constants.ComplianceComplied,
			CounterType:      constants.CounterTach,
			CounterValue:     ptr(1180.0),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.NextNotification)
	assert.Equal(t, constants.DueBasisCounter, res.NextNotification.DueBasis)
	assert.Equal(t, constants.CounterTach, res.NextNotification.CounterType)
	require.NotNil(t, res.NextNotification.InitialCounterValue)
	assert.Equal(t, 1280.0, *res.NextNotification.InitialCounterValue)
	assert.Equal(t, 1180.0, *res.Status.LastCounterValue)
}

func TestSaveDirectiveCompliance_OneTimeCompletesDirective(t *testing.T) {
	f := newFixture(t, day(2024, 1, 10))
	ctx := context.Background()

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "Seat rail inspection",
		InitialDueType:  constants.DueTypeByDate,
		ComplianceScope: constants.ScopeOneTime,
	}, DueInput{Date: ptr(day(2024, 2, 1))})

	generated := f.open(t, repositories.ParentDirective, d.ID)
	require.Len(t, generated, 1)
	_, err := f.notificationSvc.UpdateNotification(ctx, testUser, generated[0].ID, &gormModels.Notification{
		Description: "Do it with the annual",
		DueBasis:    constants.DueBasisDate,
		InitialDate: ptr(day(2024, 3, 1)),
	})
	require.NoError(t, err)

	res, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID: d.ID,
		Event:       compliedOn(day(2024, 1, 9)),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.DirectiveCompleted)
	assert.Equal(t, int64(1), res.RemovedNotifications)
	assert.Nil(t, res.CompletedNotification, "the only linked row was frozen")

	stored, err := f.directives.GetByID(ctx, testUser, d.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DirectiveCompleted, stored.DirectiveStatus)

	all, err := f.notifications.ListByParent(ctx, testUser, repositories.ParentDirective, d.ID, true)
	require.NoError(t, err)
	assert.Empty(t, all, "directive completion removes frozen rows too")

	assert.Equal(t, constants.SummaryCompliedOnce, res.Status.ComplianceStatus)
}

func TestSaveDirectiveCompliance_ExplicitCompletion(t *testing.T) {
	f := newFixture(t, day(2024, 1, 10))
	ctx := context.Background()

	recurring := createDirective(t, f, &gormModels.Directive{
		Title:           "Magneto timing",
		InitialDueType:  constants.DueTypeByCalendar,
		ComplianceScope: constants.ScopeRecurring,
		RepeatMonths:    ptr(6),
	}, DueInput{Months: ptr(1)})

	res, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID:            recurring.ID,
		Event:                  compliedOn(day(2024, 1, 10)),
		MarkDirectiveCompleted: true,
	})
	require.NoError(t, err)
	assert.True(t, res.DirectiveCompleted)
	assert.Nil(t, res.NextNotification)
	assert.Empty(t, f.open(t, repositories.ParentDirective, recurring.ID))

	conditional := createDirective(t, f, &gormModels.Directive{
		Title:           "Inspect after prop strike",
		InitialDueType:  constants.DueTypeAtNextInspection,
		ComplianceScope: constants.ScopeConditional,
	}, DueInput{})

	res, err = f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID: conditional.ID,
		Event:       compliedOn(day(2024, 1, 10)),
	})
	require.NoError(t, err)
	assert.False(t, res.DirectiveCompleted, "conditional directives need explicit confirmation")
	require.NotNil(t, res.CompletedNotification)

	stored, err := f.directives.GetByID(ctx, testUser, conditional.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.DirectiveActive, stored.DirectiveStatus)
}

func TestSaveDirectiveCompliance_CompletionNotAllowed(t *testing.T) {
	f := newFixture(t, day(2024, 1, 10))
	ctx := context.Background()

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "Service letter",
		InitialDueType:  constants.DueTypeOther,
		ComplianceScope: constants.ScopeInformational,
	}, DueInput{})

	_, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID:            d.ID,
		Event:                  compliedOn(day(2024, 1, 10)),
		MarkDirectiveCompleted: true,
	})
	require.Error(t, err)
	assert.Equal(t, constants.ErrCodeCompletionNotAllow, ErrorCode(err))

	events, err := f.port.ListEvents(ctx, testUser, d.ID)
	require.NoError(t, err)
	assert.Empty(t, events, "validation fails before any write")
}

func TestSaveDirectiveCompliance_HistoryOnlyOnComplianceChanges(t *testing.T) {
	f := newFixture(t, day(2024, 3, 10))
	ctx := context.Background()

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "Alternator belt",
		InitialDueType:  constants.DueTypeOther,
		ComplianceScope: constants.ScopeConditional,
	}, DueInput{})

	historyLen := func() int {
		entries, err := f.history.ListByDirective(ctx, testUser, d.ID)
		require.NoError(t, err)
		return len(entries)
	}
	require.Equal(t, 1, historyLen())

	pending := &gormModels.ComplianceEvent{ComplianceDate: day(2024, 3, 1), ComplianceStatus: constants.ComplianceNotComplied}
	res, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{DirectiveID: d.ID, Event: pending})
	require.NoError(t, err)
	assert.Equal(t, constants.SummaryNotComplied, res.Status.ComplianceStatus)
	assert.Equal(t, 1, historyLen())

	edit := compliedOn(day(2024, 3, 1))
	edit.ID = pending.ID
	_, err = f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{DirectiveID: d.ID, Event: edit})
	require.NoError(t, err)
	assert.Equal(t, 2, historyLen(), "transition into Complied")

	notes := compliedOn(day(2024, 3, 1))
	notes.ID = pending.ID
	notes.OwnerNotes = "Belt tension checked"
	_, err = f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{DirectiveID: d.ID, Event: notes})
	require.NoError(t, err)
	assert.Equal(t, 2, historyLen(), "same date, no new entry")

	redated := compliedOn(day(2024, 3, 5))
	redated.ID = pending.ID
	res, err = f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{DirectiveID: d.ID, Event: redated})
	require.NoError(t, err)
	assert.Equal(t, 3, historyLen(), "date changed")
	assertDay(t, day(2024, 3, 5), res.Status.LastComplianceDate)
}

func TestSaveDirectiveCompliance_FrozenNotificationUntouched(t *testing.T) {
	f := newFixture(t, day(2024, 4, 1))
	ctx := context.Background()

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "ELT battery",
		InitialDueType:  constants.DueTypeByDate,
		ComplianceScope: constants.ScopeRecurring,
		RepeatMonths:    ptr(6),
	}, DueInput{Date: ptr(day(2024, 5, 1))})

	generated := f.open(t, repositories.ParentDirective, d.ID)
	require.Len(t, generated, 1)
	frozen, err := f.notificationSvc.UpdateNotification(ctx, testUser, generated[0].ID, &gormModels.Notification{
		Description: "Battery on order",
		DueBasis:    constants.DueBasisDate,
		InitialDate: ptr(day(2024, 5, 20)),
	})
	require.NoError(t, err)

	res, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID: d.ID,
		Event:       compliedOn(day(2024, 4, 1)),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Nil(t, res.CompletedNotification)
	assert.Nil(t, res.NextNotification, "the frozen row holds the date basis")

	stored, err := f.notifications.GetByID(ctx, testUser, frozen.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)
	assert.Equal(t, "Battery on order", stored.Description)
	assertDay(t, day(2024, 5, 20), stored.InitialDate)

	open := f.open(t, repositories.ParentDirective, d.ID)
	require.Len(t, open, 1)
	assert.Equal(t, frozen.ID, open[0].ID)

	edit := *d
	edit.Title = "ELT battery replacement"
	upd, err := f.directiveSvc.UpdateDirective(ctx, testUser, d.ID, &edit, DueInput{})
	require.NoError(t, err)
	assert.Empty(t, upd.Notifications.Created)
	assert.Empty(t, upd.Notifications.Deleted)

	open = f.open(t, repositories.ParentDirective, d.ID)
	require.Len(t, open, 1)
	assert.Equal(t, frozen.ID, open[0].ID)
}

func TestSaveDirectiveCompliance_SecondaryFailureKeepsEvent(t *testing.T) {
	f := newFixture(t, day(2024, 1, 10))
	ctx := context.Background()

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "Placard",
		InitialDueType:  constants.DueTypeBeforeNextFlight,
		ComplianceScope: constants.ScopeConditional,
	}, DueInput{})

	svc := NewDirectiveComplianceService(f.directives, failingHistoryStore{HistoryStore: f.history, err: errors.New("history offline")}, f.port, f.notifications, f.clock, nil)

	res, err := svc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID: d.ID,
		Event:       compliedOn(day(2024, 1, 10)),
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], constants.OpHistoryAppend)

	events, err := f.port.ListEvents(ctx, testUser, d.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, constants.SummaryCompliedOnce, res.Status.ComplianceStatus)
	assert.NotNil(t, res.CompletedNotification, "notification bookkeeping still runs")
}

func TestSaveDirectiveCompliance_PrimaryErrors(t *testing.T) {
	f := newFixture(t, day(2024, 1, 10))
	ctx := context.Background()

	_, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID: "99999999-9999-9999-9999-999999999999",
		Event:       compliedOn(day(2024, 1, 10)),
	})
	assert.Equal(t, constants.ErrCodeNotFound, ErrorCode(err))

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "Placard",
		InitialDueType:  constants.DueTypeOther,
		ComplianceScope: constants.ScopeOneTime,
	}, DueInput{})

	_, err = f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{
		DirectiveID: d.ID,
		Event:       &gormModels.ComplianceEvent{ComplianceStatus: constants.ComplianceComplied},
	})
	assert.Equal(t, constants.ErrCodeValidation, ErrorCode(err))
}

func TestDeleteComplianceEvent_SummaryTracksSurvivors(t *testing.T) {
	f := newFixture(t, day(2024, 12, 1))
	ctx := context.Background()

	d := createDirective(t, f, &gormModels.Directive{
		Title:           "Control cable tension",
		InitialDueType:  constants.DueTypeOther,
		ComplianceScope: constants.ScopeRecurring,
		RepeatMonths:    ptr(3),
	}, DueInput{})

	var ids []string
	for _, on := range []time.Time{day(2024, 6, 1), day(2024, 1, 1), day(2024, 9, 1)} {
		res, err := f.complianceSvc.SaveDirectiveCompliance(ctx, testUser, SaveComplianceInput{DirectiveID: d.ID, Event: compliedOn(on)})
		require.NoError(t, err)
		ids = append(ids, res.Event.ID)
	}

	status, err := f.port.GetStatus(ctx, testUser, d.ID)
	require.NoError(t, err)
	assertDay(t, day(2024, 1, 1), status.FirstComplianceDate)
	assertDay(t, day(2024, 9, 1), status.LastComplianceDate)

	del, err := f.complianceSvc.DeleteComplianceEvent(ctx, testUser, ids[1])
	require.NoError(t, err)
	assertDay(t, day(2024, 6, 1), del.Status.FirstComplianceDate)
	assertDay(t, day(2024, 9, 1), del.Status.LastComplianceDate)

	for _, id := range []string{ids[0], ids[2]} {
		del, err = f.complianceSvc.DeleteComplianceEvent(ctx, testUser, id)
		require.NoError(t, err)
	}
	assert.Equal(t, constants.SummaryNotComplied, del.Status.ComplianceStatus)
	assert.Nil(t, del.Status.FirstComplianceDate)
	assert.Nil(t, del.Status.LastComplianceDate)
	assert.Nil(t, del.Status.LastCounterValue)

	_, err = f.complianceSvc.DeleteComplianceEvent(ctx, testUser, ids[0])
	assert.Equal(t, constants.ErrCodeNotFound, ErrorCode(err))
}
