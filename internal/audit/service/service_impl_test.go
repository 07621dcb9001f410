package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/washworks/fleetwash/internal/actorcontext"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	auditrepo "github.com/washworks/fleetwash/internal/audit/repository"
	"github.com/washworks/fleetwash/internal/netcontext"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setup(t *testing.T) (auditdomain.Service, *gorm.DB, *snowflake.Node, context.Context, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`CREATE TABLE IF NOT EXISTS audit_entries (
		id BIGINT PRIMARY KEY,
		network_id BIGINT NOT NULL,
		session_id BIGINT NOT NULL,
		action TEXT NOT NULL,
		previous_status TEXT NOT NULL DEFAULT '',
		new_status TEXT NOT NULL DEFAULT '',
		actor_type TEXT NOT NULL,
		actor_id TEXT,
		metadata TEXT,
		ip_address TEXT,
		user_agent TEXT,
		created_at TIMESTAMP NOT NULL
	)`).Error
	require.NoError(t, err)

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)

	svc := New(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: auditrepo.Provide()})

	networkID := node.Generate()
	ctx := netcontext.WithNetworkID(context.Background(), int64(networkID))
	return svc, db, node, ctx, networkID
}

func TestAppendResolvesActorFromContext(t *testing.T) {
	svc, db, node, ctx, networkID := setup(t)

	sessionID := node.Generate()
	ctx = actorcontext.WithActor(ctx, "driver", "driver-7")
	ctx = actorcontext.WithRequestID(ctx, "req-123")

	err := svc.Append(ctx, db, networkID, auditdomain.Record{
		SessionID:      sessionID,
		Action:         "session.authorize",
		PreviousStatus: "CREATED",
		NewStatus:      "AUTHORIZED",
		Metadata:       map[string]any{"discount_percent": 10},
	})
	require.NoError(t, err)

	var row struct {
		Action    string
		ActorType string
		ActorID   string
		Metadata  string
	}
	err = db.Raw(`SELECT action, actor_type, actor_id, metadata FROM audit_entries WHERE session_id = ?`, sessionID).
		Scan(&row).Error
	require.NoError(t, err)
	assert.Equal(t, "session.authorize", row.Action)
	assert.Equal(t, "DRIVER", row.ActorType)
	assert.Equal(t, "driver-7", row.ActorID)
	assert.Contains(t, row.Metadata, "req-123")
	assert.Contains(t, row.Metadata, "discount_percent")
}

func TestAppendDefaultsToSystemActor(t *testing.T) {
	svc, db, node, ctx, networkID := setup(t)

	sessionID := node.Generate()
	err := svc.Append(ctx, db, networkID, auditdomain.Record{
		SessionID: sessionID,
		Action:    "session.lock",
	})
	require.NoError(t, err)

	var actorType string
	err = db.Raw(`SELECT actor_type FROM audit_entries WHERE session_id = ?`, sessionID).Scan(&actorType).Error
	require.NoError(t, err)
	assert.Equal(t, "SYSTEM", actorType)
}

func TestAppendValidation(t *testing.T) {
	svc, db, node, ctx, networkID := setup(t)

	err := svc.Append(ctx, db, networkID, auditdomain.Record{SessionID: node.Generate()})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)

	err = svc.Append(ctx, db, networkID, auditdomain.Record{Action: "session.create"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidSession)

	err = svc.Append(ctx, db, 0, auditdomain.Record{SessionID: node.Generate(), Action: "session.create"})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidNetwork)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, db, node, ctx, networkID := setup(t)

	repo := auditrepo.Provide()
	sessionID := node.Generate()
	base := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	actions := []string{"session.create", "session.authorize", "session.start", "session.complete", "session.lock"}
	for i, action := range actions {
		entry := auditdomain.AuditEntry{
			ID:        node.Generate(),
			NetworkID: networkID,
			SessionID: sessionID,
			Action:    action,
			ActorType: auditdomain.ActorTypeSystem,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Insert(ctx, db, &entry))
	}

	resp, err := svc.List(ctx, auditdomain.ListRequest{SessionID: sessionID.String()})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 5)
	assert.Equal(t, "session.lock", resp.Entries[0].Action)
	assert.Equal(t, "session.create", resp.Entries[4].Action)
	assert.False(t, resp.HasMore)

	page := auditdomain.ListRequest{SessionID: sessionID.String()}
	page.PageSize = 2
	resp, err = svc.List(ctx, page)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "session.lock", resp.Entries[0].Action)
	assert.Equal(t, "session.complete", resp.Entries[1].Action)
	require.True(t, resp.HasMore)
	require.NotEmpty(t, resp.NextPageToken)

	next := auditdomain.ListRequest{SessionID: sessionID.String()}
	next.PageSize = 2
	next.PageToken = resp.NextPageToken
	resp, err = svc.List(ctx, next)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "session.start", resp.Entries[0].Action)
	assert.Equal(t, "session.authorize", resp.Entries[1].Action)
}

func TestListFiltersByAction(t *testing.T) {
	svc, db, node, ctx, networkID := setup(t)

	repo := auditrepo.Provide()
	sessionID := node.Generate()
	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	for i, action := range []string{"session.create", "session.reject"} {
		entry := auditdomain.AuditEntry{
			ID:        node.Generate(),
			NetworkID: networkID,
			SessionID: sessionID,
			Action:    action,
			ActorType: auditdomain.ActorTypeUser,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Insert(ctx, db, &entry))
	}

	resp, err := svc.List(ctx, auditdomain.ListRequest{Action: "session.reject"})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "session.reject", resp.Entries[0].Action)
}

func TestListRejectsBadPageToken(t *testing.T) {
	svc, _, _, ctx, _ := setup(t)

	req := auditdomain.ListRequest{}
	req.PageToken = "not-a-cursor"
	_, err := svc.List(ctx, req)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)
}
