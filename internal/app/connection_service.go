package app

import (
	"context"
	"strings"

	"taxpro/internal/common"
	"taxpro/internal/domain/connection"
	"taxpro/internal/domain/notification"
	"taxpro/internal/domain/profile"
)

type ConnectionService struct {
	repo     connection.Repository
	profiles profile.Repository
	notifier notification.Notifier
}

func NewConnectionService(repo connection.Repository, profiles profile.Repository, notifier notification.Notifier) *ConnectionService {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &ConnectionService{repo: repo, profiles: profiles, notifier: notifier}
}

// CreateConnectionResult reports whether Create returned a request that
// already existed for the pair instead of inserting a new one.
type CreateConnectionResult struct {
	Connection    *connection.Request
	AlreadyExists bool
}

func (s *ConnectionService) Create(ctx context.Context, requesterID, recipientID common.UUID) (*CreateConnectionResult, error) {
	if requesterID == recipientID {
		return nil, common.NewValidationError("cannot connect to yourself", map[string]string{"recipientProfileId": "must differ from requester"})
	}
	if _, err := s.profiles.GetByID(ctx, requesterID); err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindOpenBetween(ctx, requesterID, recipientID)
	if err == nil {
		return &CreateConnectionResult{Connection: existing, AlreadyExists: true}, nil
	}
	if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	created, err := s.repo.Insert(ctx, connection.Request{
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      connection.StatusPending,
	})
	if err != nil {
		if common.Is(err, common.CodeConflict) {
			// lost the insert race; the store kept the other request
			existing, findErr := s.repo.FindOpenBetween(ctx, requesterID, recipientID)
			if findErr != nil {
				return nil, findErr
			}
			return &CreateConnectionResult{Connection: existing, AlreadyExists: true}, nil
		}
		return nil, err
	}
	return &CreateConnectionResult{Connection: created}, nil
}

func (s *ConnectionService) Decide(ctx context.Context, connectionID common.UUID, decision connection.Status, actorID common.UUID) (*connection.Request, error) {
	action, ok := connection.DecisionAction(decision)
	if !ok {
		return nil, common.NewValidationError("invalid decision", map[string]string{"decision": "decision must be accepted or rejected"})
	}
	updated, err := s.apply(ctx, connectionID, action, actorID)
	if err != nil {
		return nil, err
	}
	if updated.Status == connection.StatusAccepted {
		s.notifier.Notify(ctx, notification.New(notification.KindConnectionAccepted, updated.RequesterID, map[string]string{
			"connection_id":        updated.ID.String(),
			"recipient_profile_id": updated.RecipientID.String(),
		}))
	}
	return updated, nil
}

func (s *ConnectionService) Withdraw(ctx context.Context, connectionID, actorID common.UUID) (*connection.Request, error) {
	return s.apply(ctx, connectionID, connection.ActionWithdraw, actorID)
}

// apply checks the actor before the status so a wrong party is always
// Forbidden, whatever state the request is in.
func (s *ConnectionService) apply(ctx context.Context, connectionID common.UUID, action connection.Action, actorID common.UUID) (*connection.Request, error) {
	req, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	switch connection.ActorSide(action) {
	case connection.SideRecipient:
		if actorID != req.RecipientID {
			return nil, common.NewError(common.CodeForbidden, "only the recipient can "+string(action)+" this connection", nil)
		}
	case connection.SideRequester:
		if actorID != req.RequesterID {
			return nil, common.NewError(common.CodeForbidden, "only the requester can "+string(action)+" this connection", nil)
		}
	}
	next, ok := connection.Next(req.Status, action)
	if !ok {
		return nil, common.NewError(common.CodeInvalidTransition, "cannot "+string(action)+" a connection that is "+string(req.Status), nil)
	}
	return s.repo.UpdateStatus(ctx, req.ID, req.Status, next.To)
}

func (s *ConnectionService) Get(ctx context.Context, connectionID, actorID common.UUID) (*connection.Request, error) {
	req, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !req.Involves(actorID) {
		return nil, common.NewError(common.CodeForbidden, "connection belongs to other profiles", nil)
	}
	return req, nil
}

func (s *ConnectionService) List(ctx context.Context, actorID common.UUID, status string) ([]connection.Request, error) {
	var filter connection.Status
	if strings.TrimSpace(status) != "" {
		parsed, ok := connection.ParseStatus(status)
		if !ok {
			return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be pending, accepted, rejected, or withdrawn"})
		}
		filter = parsed
	}
	return s.repo.ListByProfile(ctx, actorID, filter)
}
