package scoring

import "github.com/google/uuid"

/*
=========================================================
	HIERARCHY INPUT
	STANDARD model: questions hang off themes.
	GLOBAL model: questions hang directly off the function.
	A function may carry both; its direct questions then act
	as one extra child next to its themes.
=========================================================
*/

type QuestionInput struct {
	ID       uuid.UUID
	Weight   float64
	ScaleMax float64
}

type ThemeInput struct {
	ID        uuid.UUID
	Name      string
	Questions []QuestionInput
	Ranges    []Range
}

type FonctionInput struct {
	ID        uuid.UUID
	Name      string
	Weight    *float64
	Themes    []ThemeInput
	Questions []QuestionInput
	Ranges    []Range
}

type Hierarchy struct {
	Fonctions []FonctionInput
}

/* ===== OUTPUT ===== */

type ThemeScore struct {
	ID         uuid.UUID `json:"id_thematique"`
	Name       string    `json:"nom"`
	Score      float64   `json:"score"`
	Percentage float64   `json:"pourcentage"`
	Answered   int       `json:"nb_reponses"`
	Total      int       `json:"nb_questions"`
	Level      *Level    `json:"niveau,omitempty"`
}

type FonctionScore struct {
	ID         uuid.UUID    `json:"id_fonction"`
	Name       string       `json:"nom"`
	Score      float64      `json:"score"`
	Percentage float64      `json:"pourcentage"`
	Answered   int          `json:"nb_reponses"`
	Total      int          `json:"nb_questions"`
	Level      *Level       `json:"niveau,omitempty"`
	Themes     []ThemeScore `json:"thematiques"`

	raw float64
}

type Tree struct {
	Score      float64         `json:"score_global"`
	Percentage float64         `json:"pourcentage"`
	Answered   int             `json:"nb_reponses"`
	Total      int             `json:"nb_questions"`
	Level      *Level          `json:"niveau,omitempty"`
	Fonctions  []FonctionScore `json:"fonctions"`
}

// BuildTree scores every node from the answered values (question id → raw value).
// Rounding is applied on output only; parents aggregate unrounded child scores.
func BuildTree(h Hierarchy, values map[uuid.UUID]float64) Tree {
	tree := Tree{Fonctions: make([]FonctionScore, 0, len(h.Fonctions))}
	globalChildren := make([]Child, 0, len(h.Fonctions))

	for _, f := range h.Fonctions {
		fs := scoreFonction(f, values)
		tree.Fonctions = append(tree.Fonctions, fs)
		globalChildren = append(globalChildren, Child{
			Score:    fs.raw,
			Answered: fs.Answered,
			Total:    fs.Total,
			Weight:   f.Weight,
		})
	}

	global := AggregateNodes(globalChildren)
	tree.Answered, tree.Total = global.Answered, global.Total
	if global.HasScore() {
		tree.Score = Round2(global.Score)
		tree.Percentage = Percentage(global.Score)
		lvl := LevelFor(global.Score, nil)
		tree.Level = &lvl
	}
	return tree
}

func scoreFonction(f FonctionInput, values map[uuid.UUID]float64) FonctionScore {
	fs := FonctionScore{ID: f.ID, Name: f.Name, Themes: make([]ThemeScore, 0, len(f.Themes))}

	children := make([]Child, 0, len(f.Themes)+1)
	for _, t := range f.Themes {
		ns := AggregateQuestions(answersFor(t.Questions, values))
		ts := ThemeScore{ID: t.ID, Name: t.Name, Answered: ns.Answered, Total: ns.Total}
		if ns.HasScore() {
			ts.Score = Round2(ns.Score)
			ts.Percentage = Percentage(ns.Score)
			lvl := LevelFor(ns.Score, t.Ranges)
			ts.Level = &lvl
		}
		fs.Themes = append(fs.Themes, ts)
		children = append(children, Child{Score: ns.Score, Answered: ns.Answered, Total: ns.Total})
	}
	if len(f.Questions) > 0 {
		ns := AggregateQuestions(answersFor(f.Questions, values))
		children = append(children, Child{Score: ns.Score, Answered: ns.Answered, Total: ns.Total})
	}

	ns := AggregateNodes(children)
	fs.Answered, fs.Total = ns.Answered, ns.Total
	if ns.HasScore() {
		fs.raw = ns.Score
		fs.Score = Round2(ns.Score)
		fs.Percentage = Percentage(ns.Score)
		lvl := LevelFor(ns.Score, f.Ranges)
		fs.Level = &lvl
	}
	return fs
}

func answersFor(qs []QuestionInput, values map[uuid.UUID]float64) []Answer {
	out := make([]Answer, 0, len(qs))
	for _, q := range qs {
		a := Answer{QuestionID: q.ID, ScaleMax: q.ScaleMax, Weight: q.Weight}
		if v, ok := values[q.ID]; ok {
			v := v
			a.Value = &v
		}
		out = append(out, a)
	}
	return out
}
