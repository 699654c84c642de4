package service

import (
	"context"
	"errors"
	"strings"

	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/enterprises/dto"
	"maturity_backend/internals/features/enterprises/model"
	"maturity_backend/internals/features/evaluations/store"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnterpriseService struct {
	db    *gorm.DB
	store *store.Store
}

func NewEnterpriseService(db *gorm.DB) *EnterpriseService {
	return &EnterpriseService{db: db, store: store.New(db)}
}

// List returns the enterprises the principal may see, newest first.
func (s *EnterpriseService) List(ctx context.Context, p scope.Principal, q dto.ListQuery, offset, limit int) ([]dto.EnterpriseDTO, int64, error) {
	db := s.db.WithContext(ctx).Model(&model.EnterpriseModel{}).
		Scopes(p.ScopeQuery("id_entreprise", ""))
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		db = db.Where("LOWER(nom) LIKE ?", "%"+term+"%")
	}
	if q.Sector != "" {
		db = db.Where("secteur = ?", q.Sector)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.EnterpriseModel
	if err := db.Order("date_creation DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]dto.EnterpriseDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ToEnterpriseDTO(r))
	}
	return out, total, nil
}

func (s *EnterpriseService) Get(ctx context.Context, p scope.Principal, id uuid.UUID) (dto.EnterpriseDTO, error) {
	if err := p.EnsureEnterprise(id); err != nil {
		return dto.EnterpriseDTO{}, err
	}
	var row model.EnterpriseModel
	err := s.db.WithContext(ctx).Where("id_entreprise = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.EnterpriseDTO{}, apperror.NotFound("enterprise %s not found", id)
	}
	if err != nil {
		return dto.EnterpriseDTO{}, err
	}
	return dto.ToEnterpriseDTO(row), nil
}

// FonctionRollup is the function → theme analysis of the enterprise's completed evaluations.
func (s *EnterpriseService) FonctionRollup(ctx context.Context, p scope.Principal, id uuid.UUID) (store.EnterpriseRollup, error) {
	if _, err := s.Get(ctx, p, id); err != nil {
		return store.EnterpriseRollup{}, err
	}
	return s.store.EnterpriseRollup(ctx, id)
}
