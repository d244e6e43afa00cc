// Package advice builds mentoring prompts and fallback narratives. The
// external text generator consumes the prompt; everything in this package
// is deterministic and side-effect free.
package advice

import "github.com/edurisk/student-risk-hub/internal/domain/prediction"

// Persona configures the mentoring voice for a risk tier.
type Persona struct {
	// Name of the mentoring role, e.g. "Crisis Intervention Mentor".
	Name string

	// Focus is the thematic goal of the advice.
	Focus string

	// Tone describes how the advice should read.
	Tone string

	// Action is the routing-action label attached to the tier.
	Action string
}

// PersonaFor maps a risk category to its persona. The switch is exhaustive
// over the three known tiers; anything else routes to the medium tier.
func PersonaFor(risk prediction.RiskCategory) Persona {
	switch risk {
	case prediction.RiskHigh:
		return Persona{
			Name:   "Crisis Intervention Mentor",
			Focus:  "stabilizing the student's situation and securing immediate academic support",
			Tone:   "urgent, compassionate, and direct",
			Action: "immediate_intervention",
		}
	case prediction.RiskLow:
		return Persona{
			Name:   "Enrichment Advisor",
			Focus:  "stretching an already successful student toward their full potential",
			Tone:   "encouraging, ambitious, and growth-oriented",
			Action: "enrichment",
		}
	case prediction.RiskMedium:
		return Persona{
			Name:   "Academic Coach",
			Focus:  "building consistent study habits and closing specific gaps",
			Tone:   "practical, supportive, and motivating",
			Action: "focused_coaching",
		}
	default:
		return Persona{
			Name:   "Academic Coach",
			Focus:  "building consistent study habits and closing specific gaps",
			Tone:   "practical, supportive, and motivating",
			Action: "focused_coaching",
		}
	}
}
