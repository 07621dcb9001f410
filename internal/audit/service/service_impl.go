package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/washworks/fleetwash/internal/actorcontext"
	auditdomain "github.com/washworks/fleetwash/internal/audit/domain"
	"github.com/washworks/fleetwash/internal/netcontext"
	"github.com/washworks/fleetwash/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func New(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Append(ctx context.Context, db *gorm.DB, networkID snowflake.ID, record auditdomain.Record) error {
	action := strings.TrimSpace(record.Action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	if record.SessionID == 0 {
		return auditdomain.ErrInvalidSession
	}
	if networkID == 0 {
		return auditdomain.ErrInvalidNetwork
	}
	if db == nil {
		db = s.db
	}

	actorType, actorID := resolveActor(ctx)

	payload := map[string]any{}
	for key, value := range record.Metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}
	if requestID := actorcontext.RequestIDFromContext(ctx); requestID != "" {
		payload["request_id"] = requestID
	}

	entry := auditdomain.AuditEntry{
		ID:             s.genID.Generate(),
		NetworkID:      networkID,
		SessionID:      record.SessionID,
		Action:         action,
		PreviousStatus: record.PreviousStatus,
		NewStatus:      record.NewStatus,
		ActorType:      actorType,
		ActorID:        actorID,
		Metadata:       datatypes.JSONMap(payload),
		CreatedAt:      time.Now().UTC(),
	}
	if ip := actorcontext.IPAddressFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}
	if ua := actorcontext.UserAgentFromContext(ctx); ua != "" {
		entry.UserAgent = &ua
	}

	if err := s.repo.Insert(ctx, db, &entry); err != nil {
		s.log.Warn("failed to append audit entry", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) (auditdomain.ListResponse, error) {
	networkID, ok := netcontext.NetworkIDFromContext(ctx)
	if !ok || networkID == 0 {
		return auditdomain.ListResponse{}, auditdomain.ErrInvalidNetwork
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListResponse{}, auditdomain.ErrInvalidTimeRange
	}

	var sessionID snowflake.ID
	if strings.TrimSpace(req.SessionID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(req.SessionID))
		if err != nil || parsed == 0 {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidSession
		}
		sessionID = parsed
	}

	var cursor *auditdomain.AuditCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339, decoded.CreatedAt)
		if err != nil {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return auditdomain.ListResponse{}, auditdomain.ErrInvalidPageToken
		}
		cursor = &auditdomain.AuditCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		NetworkID: networkID,
		SessionID: sessionID,
		Action:    req.Action,
		ActorType: req.ActorType,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Cursor:    cursor,
		Limit:     int(pageSize),
	})
	if err != nil {
		return auditdomain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(item *auditdomain.AuditEntry) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	entries := make([]auditdomain.AuditEntry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, *item)
	}

	resp := auditdomain.ListResponse{Entries: entries}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func resolveActor(ctx context.Context) (auditdomain.ActorType, *string) {
	actorType, actorID := actorcontext.ActorFromContext(ctx)

	resolved := auditdomain.ActorType(strings.ToUpper(strings.TrimSpace(actorType)))
	if !auditdomain.ValidActorType(resolved) {
		resolved = auditdomain.ActorTypeSystem
	}

	trimmed := strings.TrimSpace(actorID)
	if trimmed == "" {
		return resolved, nil
	}
	return resolved, &trimmed
}
