package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"infinite-experiment/hangar/internal/constants"
	"infinite-experiment/hangar/internal/db/testdb"
	gormModels "infinite-experiment/hangar/internal/models/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "11111111-1111-1111-1111-111111111111"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertDay(t *testing.T, want time.Time, got *time.Time) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, want.Format("2006-01-02"), got.UTC().Format("2006-01-02"))
}

func seedDirective(t *testing.T, repo *DirectiveRepository, scope constants.ComplianceScope) *gormModels.Directive {
	t.Helper()
	d := &gormModels.Directive{
		UserID:          testUser,
		AircraftID:      "22222222-2222-2222-2222-222222222222",
		Number:          "AD 2024-01-01",
		InitialDueType:  constants.DueTypeByDate,
		ComplianceScope: scope,
		DirectiveStatus: constants.DirectiveActive,
	}
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}

func complied(directiveID string, on time.Time) *gormModels.ComplianceEvent {
	return &gormModels.ComplianceEvent{
		UserID:           testUser,
		DirectiveID:      directiveID,
		ComplianceDate:   on,
		ComplianceStatus: constants.ComplianceComplied,
	}
}

func TestComplianceRepository_RecomputeAfterDelete(t *testing.T) {
	gdb := testdb.Open(t)
	ctx := context.Background()
	repo := NewComplianceRepository(gdb, nil)
	d := seedDirective(t, NewDirectiveRepository(gdb), constants.ScopeRecurring)

	a := complied(d.ID, day(2024, 1, 1))
	b := complied(d.ID, day(2024, 6, 1))
	c := complied(d.ID, day(2024, 9, 1))
	for _, e := range []*gormModels.ComplianceEvent{a, b, c} {
		out, err := repo.WithConsistencyRecompute(ctx, testUser, d.ID, func(w EventWriter) error {
			return w.CreateEvent(ctx, e)
		})
		require.NoError(t, err)
		require.NoError(t, out.Err)
	}

	status, err := repo.GetStatus(ctx, testUser, d.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assertDay(t, day(2024, 9, 1), status.LastComplianceDate)

	out, err := repo.WithConsistencyRecompute(ctx, testUser, d.ID, func(w EventWriter) error {
		return w.DeleteEvent(ctx, testUser, c.ID)
	})
	require.NoError(t, err)
	require.NoError(t, out.Err)

	assert.Equal(t, constants.SummaryRecurringCurrent, out.Status.ComplianceStatus)
	assertDay(t, day(2024, 1, 1), out.Status.FirstComplianceDate)
	assertDay(t, day(2024, 6, 1), out.Status.LastComplianceDate)
}

func TestComplianceRepository_RecomputeResetsWhenEmpty(t *testing.T) {
	gdb := testdb.Open(t)
	ctx := context.Background()
	repo := NewComplianceRepository(gdb, nil)
	d := seedDirective(t, NewDirectiveRepository(gdb), constants.ScopeOneTime)

	e := complied(d.ID, day(2024, 2, 1))
	_, err := repo.WithConsistencyRecompute(ctx, testUser, d.ID, func(w EventWriter) error {
		return w.CreateEvent(ctx, e)
	})
	require.NoError(t, err)

	out, err := repo.WithConsistencyRecompute(ctx, testUser, d.ID, func(w EventWriter) error {
		return w.DeleteEvent(ctx, testUser, e.ID)
	})
	require.NoError(t, err)
	require.NoError(t, out.Err)

	assert.Equal(t, constants.SummaryNotComplied, out.Status.ComplianceStatus)
	assert.Nil(t, out.Status.FirstComplianceDate)
	assert.Nil(t, out.Status.LastComplianceDate)
	assert.Nil(t, out.Status.LastCounterValue)

	var count int64
	gdb.Model(&gormModels.AircraftDirectiveStatus{}).Where("directive_id = ?", d.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestComplianceRepository_MutationErrorSkipsRecompute(t *testing.T) {
	gdb := testdb.Open(t)
	ctx := context.Background()
	repo := NewComplianceRepository(gdb, nil)
	d := seedDirective(t, NewDirectiveRepository(gdb), constants.ScopeRecurring)

	boom := errors.New("boom")
	_, err := repo.WithConsistencyRecompute(ctx, testUser, d.ID, func(w EventWriter) error {
		if err := w.CreateEvent(ctx, complied(d.ID, day(2024, 1, 1))); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	events, err := repo.ListEvents(ctx, testUser, d.ID)
	require.NoError(t, err)
	assert.Empty(t, events, "the failed mutation must roll back")

	status, err := repo.GetStatus(ctx, testUser, d.ID)
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestComplianceRepository_RecomputeErrorKeepsWrite(t *testing.T) {
	gdb := testdb.Open(t)
	ctx := context.Background()
	repo := NewComplianceRepository(gdb, nil)

	// No directive row, so the recompute cannot load its scope
	out, err := repo.WithConsistencyRecompute(ctx, testUser, "missing-directive", func(w EventWriter) error {
		return w.CreateEvent(ctx, complied("missing-directive", day(2024, 1, 1)))
	})
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, ErrNotFound)

	events, err := repo.ListEvents(ctx, testUser, "missing-directive")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestComplianceRepository_ComplianceLinksRoundTrip(t *testing.T) {
	gdb := testdb.Open(t)
	ctx := context.Background()
	repo := NewComplianceRepository(gdb, nil)

	e := complied("d-1", day(2024, 1, 1))
	e.ComplianceLinks = []gormModels.ComplianceLink{{Description: "SB 72-001", URL: "https://example.com/sb"}}
	require.NoError(t, repo.CreateEvent(ctx, e))

	got, err := repo.GetEvent(ctx, testUser, e.ID)
	require.NoError(t, err)
	require.Len(t, got.ComplianceLinks, 1)
	assert.Equal(t, "SB 72-001", got.ComplianceLinks[0].Description)
}
