package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/robobooks/internal/audit/domain"
	"github.com/smallbiznis/robobooks/internal/audit/repository"
	"github.com/smallbiznis/robobooks/internal/clock"
	obscontext "github.com/smallbiznis/robobooks/internal/observability/context"
	"github.com/smallbiznis/robobooks/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var auditStart = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (auditdomain.Service, *clock.FakeClock, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(auditStart)
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake, orgcontext.WithOrgID(context.Background(), snowflake.ID(42))
}

func TestRecordMasksSensitiveMetadata(t *testing.T) {
	svc, _, ctx := setupService(t)
	ctx = obscontext.WithRequestID(ctx, "req-1")

	require.NoError(t, svc.Record(ctx, auditdomain.Entry{
		Action:     "customer.create",
		TargetType: "customer",
		TargetID:   "7",
		Metadata: map[string]any{
			"name":  "Acme Traders",
			"gstin": "29AAPFU0939F1ZV",
			"email": "billing@acme.in",
		},
	}))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	entry := resp.AuditLogs[0]
	assert.Equal(t, "customer.create", entry.Action)
	assert.Equal(t, string(auditdomain.ActorTypeAPI), entry.ActorType)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, snowflake.ID(42), entry.OrgID)
	assert.Equal(t, "Acme Traders", entry.Metadata["name"])
	assert.Equal(t, "****F1ZV", entry.Metadata["gstin"])
	assert.NotEqual(t, "billing@acme.in", entry.Metadata["email"])
}

func TestRecordWithoutRequestIsSystemActor(t *testing.T) {
	svc, _, ctx := setupService(t)

	require.NoError(t, svc.Record(ctx, auditdomain.Entry{Action: "quote.expire"}))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, string(auditdomain.ActorTypeSystem), resp.AuditLogs[0].ActorType)
	assert.Equal(t, "unknown", resp.AuditLogs[0].TargetType)
}

func TestRecordValidation(t *testing.T) {
	svc, _, ctx := setupService(t)

	err := svc.Record(ctx, auditdomain.Entry{Action: "  "})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = svc.Record(context.Background(), auditdomain.Entry{Action: "quote.create"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidOrganization)
}

func TestListFiltersAndPages(t *testing.T) {
	svc, fake, ctx := setupService(t)

	for _, entry := range []auditdomain.Entry{
		{Action: "quote.create", TargetType: "quote", TargetID: "1"},
		{Action: "quote.update", TargetType: "quote", TargetID: "1"},
		{Action: "quote.update", TargetType: "quote", TargetID: "1"},
		{Action: "customer.create", TargetType: "customer", TargetID: "7"},
	} {
		require.NoError(t, svc.Record(ctx, entry))
		fake.Advance(time.Hour)
	}

	otherOrg := orgcontext.WithOrgID(context.Background(), snowflake.ID(43))
	require.NoError(t, svc.Record(otherOrg, auditdomain.Entry{Action: "quote.create", TargetType: "quote"}))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{TargetType: "quote", TargetID: "1"})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 3)

	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{Action: "quote.update", PageSize: 1})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.True(t, resp.HasMore)
	first := resp.AuditLogs[0].ID

	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{Action: "quote.update", PageSize: 1, PageToken: resp.NextPageToken})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.False(t, resp.HasMore)
	assert.Less(t, int64(resp.AuditLogs[0].ID), int64(first))

	startAt := auditStart.Add(2 * time.Hour)
	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{StartAt: &startAt})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 2)
	assert.Equal(t, "customer.create", resp.AuditLogs[0].Action)
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc, _, ctx := setupService(t)

	startAt := auditStart
	endAt := auditStart.Add(-time.Hour)
	_, err := svc.List(ctx, auditdomain.ListAuditLogRequest{StartAt: &startAt, EndAt: &endAt})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
