package dto

import (
	"maturity_backend/internals/features/evaluations/scoring"
	"maturity_backend/internals/features/referential/model"

	"github.com/google/uuid"
)

type LevelItem struct {
	ScoreMin       *float64 `json:"score_min" validate:"required,gte=0,lte=5"`
	ScoreMax       *float64 `json:"score_max" validate:"required,gte=0,lte=5"`
	Label          string   `json:"niveau" validate:"required,max=120"`
	Description    string   `json:"description" validate:"omitempty,max=4000"`
	Recommendation string   `json:"recommandations" validate:"omitempty,max=4000"`
}

// ReplaceLevelsRequest replaces a whole grid. An empty list clears it.
type ReplaceLevelsRequest struct {
	Levels []LevelItem `json:"niveaux" validate:"omitempty,dive"`
}

func (r ReplaceLevelsRequest) Ranges() []scoring.Range {
	out := make([]scoring.Range, 0, len(r.Levels))
	for _, l := range r.Levels {
		out = append(out, scoring.Range{
			Min:            *l.ScoreMin,
			Max:            *l.ScoreMax,
			Label:          l.Label,
			Description:    l.Description,
			Recommendation: l.Recommendation,
		})
	}
	return out
}

type LevelDTO struct {
	LevelID        uuid.UUID `json:"id_niveau"`
	ScoreMin       float64   `json:"score_min"`
	ScoreMax       float64   `json:"score_max"`
	Label          string    `json:"niveau"`
	Description    string    `json:"description,omitempty"`
	Recommendation string    `json:"recommandations,omitempty"`
}

func ToLevelDTOs(rows []model.MaturityLevelModel) []LevelDTO {
	out := make([]LevelDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, LevelDTO{
			LevelID:        r.LevelID,
			ScoreMin:       r.ScoreMin,
			ScoreMax:       r.ScoreMax,
			Label:          r.Label,
			Description:    r.Description,
			Recommendation: r.Recommendation,
		})
	}
	return out
}

type QuestionDTO struct {
	QuestionID uuid.UUID `json:"id_question"`
	Text       string    `json:"texte"`
	Weight     float64   `json:"ponderation"`
	ScaleMax   float64   `json:"echelle_max"`
	Order      int       `json:"ordre"`
}

type ThemeDTO struct {
	ThemeID   uuid.UUID     `json:"id_thematique"`
	Name      string        `json:"nom"`
	Order     int           `json:"ordre"`
	Questions []QuestionDTO `json:"questions"`
}

// FonctionDTO is one function of the questionnaire with the questions the model uses.
type FonctionDTO struct {
	FonctionID  uuid.UUID     `json:"id_fonction"`
	Name        string        `json:"nom"`
	Description string        `json:"description,omitempty"`
	Order       int           `json:"ordre"`
	Themes      []ThemeDTO    `json:"thematiques,omitempty"`
	Questions   []QuestionDTO `json:"questions,omitempty"`
}

func ToQuestionDTO(q model.QuestionModel) QuestionDTO {
	return QuestionDTO{
		QuestionID: q.QuestionID,
		Text:       q.Text,
		Weight:     q.Weight,
		ScaleMax:   q.EffectiveScaleMax(),
		Order:      q.Order,
	}
}
