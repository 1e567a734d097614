package recipe

import (
	"regexp"
	"strings"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/models"
)

const importedName = "Imported Recipe"

var (
	bulletPrefix = regexp.MustCompile(`^[\s\-\*•\d.]+`)
	recipeLabel  = regexp.MustCompile(`(?i)recipe:?`)
	servesLine   = regexp.MustCompile(`(?i)\b(?:serves|servings:?|yield:?)\s*(\d+)`)
)

// ParseText reads a pasted recipe. The first line, or an earlier line naming
// a "recipe", is the title. Lines after an ingredients header are parsed as
// ingredients and lines after an instructions, directions, method or steps
// header become the instructions.
func ParseText(text string) *models.Recipe {
	r := &models.Recipe{Name: importedName, Servings: defaultServings}

	var (
		lines        []string
		instructions []string
		named        bool
		section      string
	)
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimSpace(l))
		}
	}

	for i, line := range lines {
		lower := strings.ToLower(line)

		if !named && (i == 0 || strings.Contains(lower, "recipe")) {
			if name := strings.TrimSpace(recipeLabel.ReplaceAllString(line, "")); name != "" {
				r.Name = name
			}
			named = true
			continue
		}
		if m := servesLine.FindStringSubmatch(line); m != nil && section != "instructions" {
			r.Servings = leadingInt(m[1])
			continue
		}

		header := len(strings.Fields(line)) <= 3
		switch {
		case header && strings.Contains(lower, "ingredient"):
			section = "ingredients"
			continue
		case header && (strings.Contains(lower, "instruction") || strings.Contains(lower, "direction") ||
			strings.Contains(lower, "method") || strings.Contains(lower, "step")):
			section = "instructions"
			continue
		}

		cleaned := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if cleaned == "" {
			continue
		}
		switch section {
		case "ingredients":
			// Keep the leading quantity that the bullet pattern strips.
			r.Ingredients = append(r.Ingredients, ingredient.ParseLine(stripBullet(line)))
		case "instructions":
			instructions = append(instructions, cleaned)
		}
	}

	r.Instructions = strings.Join(instructions, "\n")
	return Normalize(r)
}

// stripBullet removes list markers but keeps a leading quantity.
func stripBullet(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*• \t")
	return strings.TrimSpace(line)
}
