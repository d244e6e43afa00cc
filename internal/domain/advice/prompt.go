package advice

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
	"github.com/edurisk/student-risk-hub/internal/domain/shared"
	"github.com/edurisk/student-risk-hub/internal/domain/student"
)

// MaxCustomPromptLength caps the optional free-text instruction, in runes.
const MaxCustomPromptLength = 500

// educationLevels translates Medu/Fedu codes to descriptive phrases.
var educationLevels = [5]string{
	"no formal education",
	"primary education (4th grade)",
	"5th to 9th grade",
	"secondary education",
	"higher education",
}

// jobTypes translates job codes to descriptive phrases.
var jobTypes = map[string]string{
	"at_home":  "works at home",
	"health":   "works in healthcare",
	"other":    "has another occupation",
	"services": "works in civil services",
	"teacher":  "works as a teacher",
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeCustomPrompt strips markup from the optional user instruction and
// enforces the length cap. An over-long instruction is a validation error,
// not something to truncate silently.
func SanitizeCustomPrompt(raw string) (string, error) {
	cleaned := htmlTagPattern.ReplaceAllString(raw, "")
	cleaned = strings.TrimSpace(cleaned)

	if utf8.RuneCountInString(cleaned) > MaxCustomPromptLength {
		return "", shared.WrapError("advice", "Validate", shared.ErrValueOutOfRange,
			fmt.Sprintf("customPrompt exceeds maximum length of %d characters", MaxCustomPromptLength), nil)
	}

	return cleaned, nil
}

// BuildPrompt composes the structured prompt handed to the text generator.
// The output is deterministic for identical inputs: section order, factor
// order, and phrasing never vary between calls.
func BuildPrompt(
	rec student.Record,
	estimatedGrade int,
	risk prediction.RiskCategory,
	attributions []prediction.Attribution,
	customPrompt string,
) string {
	persona := PersonaFor(risk)

	var b strings.Builder

	fmt.Fprintf(&b, "You are a %s. Your focus is %s. Your tone is %s.\n\n",
		persona.Name, persona.Focus, persona.Tone)

	b.WriteString("Student profile:\n")
	fmt.Fprintf(&b, "- Predicted final grade: %d out of 20\n", estimatedGrade)
	fmt.Fprintf(&b, "- Risk level: %s (%s)\n", risk.String(), risk.Descriptor())
	fmt.Fprintf(&b, "- First period grade: %d/20, second period grade: %d/20\n", rec.G1, rec.G2)
	fmt.Fprintf(&b, "- Past class failures: %d\n", rec.Failures)
	fmt.Fprintf(&b, "- Absences: %d\n", rec.Absences)
	fmt.Fprintf(&b, "- Weekly study time: level %d of 4\n", rec.Studytime)
	fmt.Fprintf(&b, "- Mother: %s, %s\n", jobPhrase(rec.Mjob), educationPhrase(rec.Medu))
	fmt.Fprintf(&b, "- Father: %s, %s\n", jobPhrase(rec.Fjob), educationPhrase(rec.Fedu))
	fmt.Fprintf(&b, "- Extra school support: %s, family support: %s, paid classes: %s\n",
		yesNoPhrase(rec.Schoolsup), yesNoPhrase(rec.Famsup), yesNoPhrase(rec.Paid))
	fmt.Fprintf(&b, "- Internet at home: %s, wants higher education: %s\n",
		yesNoPhrase(rec.Internet), yesNoPhrase(rec.Higher))

	if len(attributions) > 0 {
		b.WriteString("\nKey factors driving this prediction:\n")
		for _, a := range attributions {
			fmt.Fprintf(&b, "* **%s**: Impact %.2f\n", a.Feature, a.Importance)
		}
	}

	if customPrompt != "" {
		b.WriteString("\nThe student has a specific request. Prioritize addressing it while keeping your persona:\n")
		fmt.Fprintf(&b, "%q\n", customPrompt)
	}

	b.WriteString("\nWrite a mentoring message in Markdown with three sections: ")
	b.WriteString("an honest assessment of where the student stands, ")
	b.WriteString("two or three concrete actions for the next two weeks, ")
	b.WriteString("and an encouraging closing note.")

	return b.String()
}

func educationPhrase(level int) string {
	if level < 0 || level >= len(educationLevels) {
		return "education level unknown"
	}
	return educationLevels[level]
}

func jobPhrase(job string) string {
	if phrase, ok := jobTypes[job]; ok {
		return phrase
	}
	return "occupation unknown"
}

func yesNoPhrase(v string) string {
	if v == "yes" {
		return "yes"
	}
	return "no"
}
