package advice

import "github.com/edurisk/student-risk-hub/internal/domain/prediction"

// FallbackAdvice returns the locally generated mentoring message used when
// the text generator fails, times out, or returns nothing. Keyed by risk
// tier; the unknown case routes to the medium-tier text like PersonaFor.
func FallbackAdvice(risk prediction.RiskCategory) string {
	switch risk {
	case prediction.RiskHigh:
		return "## Immediate Support Needed\n\n" +
			"Your recent grades show you are at serious risk of failing this course, " +
			"and that calls for action this week, not next month.\n\n" +
			"**Next steps:**\n" +
			"1. Meet your teacher or academic advisor within the next few days and ask for a recovery plan.\n" +
			"2. Block out short, daily study sessions; consistency matters more than marathon cramming.\n" +
			"3. Lean on the support around you: family, classmates, or school tutoring.\n\n" +
			"Falling behind is recoverable. Students in your position turn things around every term, " +
			"and the sooner you start, the easier it is."
	case prediction.RiskLow:
		return "## Keep Building on Your Success\n\n" +
			"Your grades show you are on track, which makes this the right moment to stretch further.\n\n" +
			"**Next steps:**\n" +
			"1. Pick one topic you find genuinely interesting and go deeper than the syllabus requires.\n" +
			"2. Offer to help a classmate; explaining material is the fastest way to master it.\n" +
			"3. Keep your current routine; it is clearly working.\n\n" +
			"Strong results are a foundation, not a ceiling. Aim a little higher this term."
	default:
		return "## Focused Effort Will Pay Off\n\n" +
			"Your performance is solid in places but inconsistent, and a few targeted changes " +
			"can move you clearly out of the risk zone.\n\n" +
			"**Next steps:**\n" +
			"1. Identify the one subject or topic costing you the most points and schedule extra time for it.\n" +
			"2. Review attendance and cut avoidable absences; missed classes compound quickly.\n" +
			"3. Set a small weekly goal and check it off; momentum builds motivation.\n\n" +
			"You are closer to the top of the scale than the bottom. Steady, focused work gets you there."
	}
}
