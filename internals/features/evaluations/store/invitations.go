package store

import (
	"context"
	"errors"

	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AcceptInput struct {
	Token        string
	ActorID      uuid.UUID
	EnterpriseID uuid.UUID
	ModelType    model.ModelType
}

// AcceptInvitation flips a PENDING invitation to ACCEPTED and links a NEW evaluation.
// Accepting an already accepted invitation returns the linked evaluation unchanged.
func (s *Store) AcceptInvitation(ctx context.Context, in AcceptInput) (*model.InvitationModel, *model.EvaluationModel, error) {
	var (
		inv model.InvitationModel
		ev  model.EvaluationModel
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("token = ?", in.Token).Take(&inv).Error; err != nil {
			return notFound(err, "invitation not found")
		}
		if inv.ActorID != in.ActorID {
			return apperror.AccessDenied("this invitation belongs to another actor")
		}

		now := s.now()
		switch inv.Status {
		case model.InvitationAccepted, model.InvitationCompleted:
			if inv.EvaluationID == nil {
				return apperror.Conflict("invitation has no evaluation attached")
			}
			return tx.Where("id_evaluation = ?", *inv.EvaluationID).Take(&ev).Error
		case model.InvitationExpired:
			return apperror.Conflict("invitation has expired")
		}
		if inv.IsExpiredAt(now) {
			return apperror.Conflict("invitation has expired")
		}

		enterprise := in.EnterpriseID
		if inv.EnterpriseID != nil {
			enterprise = *inv.EnterpriseID
		}
		ev = model.EvaluationModel{
			ActorID:      inv.ActorID,
			EnterpriseID: enterprise,
			ModelType:    in.ModelType,
			Status:       model.EvaluationNew,
		}
		if err := tx.Create(&ev).Error; err != nil {
			return err
		}

		res := tx.Model(&model.InvitationModel{}).
			Where("id_invitation = ? AND statut = ?", inv.InvitationID, model.InvitationPending).
			Updates(map[string]any{
				"statut":           model.InvitationAccepted,
				"date_acceptation": now,
				"id_evaluation":    ev.EvaluationID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("invitation was accepted concurrently")
		}
		inv.Status = model.InvitationAccepted
		inv.AcceptedAt = &now
		inv.EvaluationID = &ev.EvaluationID
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &inv, &ev, nil
}

func (s *Store) CreateInvitation(ctx context.Context, inv *model.InvitationModel) error {
	return s.db.WithContext(ctx).Create(inv).Error
}

// ExpirePendingInvitations marks overdue PENDING invitations EXPIRED.
func (s *Store) ExpirePendingInvitations(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.InvitationModel{}).
		Where("statut = ? AND date_expiration < ?", model.InvitationPending, s.now()).
		Update("statut", model.InvitationExpired)
	return res.RowsAffected, res.Error
}

func (s *Store) FindInvitationByToken(ctx context.Context, token string) (*model.InvitationModel, error) {
	var inv model.InvitationModel
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("invitation not found")
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
