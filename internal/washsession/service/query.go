package service

import (
	"context"
	"strings"

	sessiondomain "github.com/washworks/fleetwash/internal/washsession/domain"
)

func (s *Service) Get(ctx context.Context, id string) (*sessiondomain.Response, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	sessionID, err := parseID(id)
	if err != nil || sessionID == 0 {
		return nil, sessiondomain.ErrInvalidID
	}

	session, err := s.repo.FindByID(ctx, s.db, networkID, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, sessiondomain.ErrNotFound
	}
	return s.respond(ctx, session)
}

func (s *Service) List(ctx context.Context, req sessiondomain.ListRequest) ([]sessiondomain.Response, error) {
	networkID, err := s.networkIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	filter := sessiondomain.ListFilter{
		NetworkID: networkID,
		Limit:     req.Limit,
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = sessiondomain.Status(strings.ToUpper(status))
	}
	if strings.TrimSpace(req.PartnerID) != "" {
		partnerID, err := parseID(req.PartnerID)
		if err != nil || partnerID == 0 {
			return nil, sessiondomain.ErrInvalidPartner
		}
		filter.PartnerID = partnerID
	}

	sessions, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]sessiondomain.Response, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, *s.toResponse(&sessions[i], nil))
	}
	return resp, nil
}
