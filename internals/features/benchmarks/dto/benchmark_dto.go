package dto

import "github.com/google/uuid"

const (
	SourceAPI       = "api"
	SourceSimulated = "simulated"
)

type FonctionComparison struct {
	FonctionID    uuid.UUID `json:"id_fonction"`
	Name          string    `json:"nom"`
	Score         *float64  `json:"score"`
	SectorAverage float64   `json:"moyenne_secteur"`
	Gap           *float64  `json:"ecart,omitempty"`
}

// BenchmarkDTO compares an enterprise's completed evaluations with its sector.
// Source tells whether the sector figures came from the API or were simulated.
type BenchmarkDTO struct {
	EnterpriseID  uuid.UUID            `json:"id_entreprise"`
	Sector        string               `json:"secteur"`
	Source        string               `json:"source"`
	SampleSize    int                  `json:"taille_echantillon"`
	Evaluations   int64                `json:"nb_evaluations"`
	GlobalScore   *float64             `json:"score_global"`
	SectorAverage float64              `json:"moyenne_secteur"`
	Fonctions     []FonctionComparison `json:"fonctions"`
}
