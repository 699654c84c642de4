package scoring

import "github.com/google/uuid"

// Answer is one question of a node with its (optional) raw value.
type Answer struct {
	QuestionID uuid.UUID
	Value      *float64
	ScaleMax   float64
	Weight     float64
}

// NodeScore is the result of aggregating one node. Score is meaningless when Answered == 0.
type NodeScore struct {
	Score    float64
	Answered int
	Total    int
}

func (n NodeScore) HasScore() bool { return n.Answered > 0 }

// AggregateQuestions computes Σ(normalized*weight) / Σ(weight), over answered questions only.
// Non-positive weights count as 1.
func AggregateQuestions(answers []Answer) NodeScore {
	out := NodeScore{Total: len(answers)}
	var sum, weights float64
	for _, a := range answers {
		if a.Value == nil {
			continue
		}
		w := a.Weight
		if w <= 0 {
			w = 1
		}
		sum += Normalize(*a.Value, a.ScaleMax) * w
		weights += w
		out.Answered++
	}
	if weights > 0 {
		out.Score = sum / weights
	}
	return out
}

// Child is an already aggregated node feeding its parent.
// Weight nil means no explicit weight (counts as 1).
type Child struct {
	Score    float64
	Answered int
	Total    int
	Weight   *float64
}

// AggregateNodes is the plain mean of children that have at least one answer,
// weighted when children carry explicit weights. Unanswered children are skipped
// for the score but still counted in Total.
func AggregateNodes(children []Child) NodeScore {
	var out NodeScore
	var sum, weights float64
	for _, c := range children {
		out.Total += c.Total
		if c.Answered == 0 {
			continue
		}
		w := 1.0
		if c.Weight != nil {
			w = *c.Weight
		}
		if w <= 0 {
			continue
		}
		sum += c.Score * w
		weights += w
		out.Answered += c.Answered
	}
	if weights > 0 {
		out.Score = sum / weights
	}
	return out
}
