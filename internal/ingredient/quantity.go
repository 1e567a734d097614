package ingredient

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Kerhoff/hearth/internal/models"
)

var unicodeFractions = map[rune]float64{
	'¼': 0.25, '½': 0.5, '¾': 0.75,
	'⅓': 1.0 / 3, '⅔': 2.0 / 3,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
}

var (
	mixedFraction  = regexp.MustCompile(`^(\d+)[\s-]+(\d+)/(\d+)$`)
	simpleFraction = regexp.MustCompile(`^(\d+)/(\d+)$`)
	leadingNumber  = regexp.MustCompile(`^\d+(\.\d+)?`)
	ingredientLine = regexp.MustCompile(`^([\d./\s-]+)?\s*(?:([a-zA-Z]+)\s+)?(.+)$`)
)

// ParseQuantity reads "2", "1.5", "1/2", "1 1/2", "1-1/2" or a unicode
// fraction such as "1½". The second result is false when nothing numeric
// could be read.
func ParseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if r := []rune(s); len(r) > 0 {
		if frac, ok := unicodeFractions[r[len(r)-1]]; ok {
			head := strings.TrimSpace(string(r[:len(r)-1]))
			if head == "" {
				return frac, true
			}
			w, err := strconv.ParseFloat(head, 64)
			if err != nil {
				return 0, false
			}
			return w + frac, true
		}
	}

	if m := mixedFraction.FindStringSubmatch(s); m != nil {
		w, _ := strconv.ParseFloat(m[1], 64)
		n, _ := strconv.ParseFloat(m[2], 64)
		d, _ := strconv.ParseFloat(m[3], 64)
		if d == 0 {
			return 0, false
		}
		return w + n/d, true
	}
	if m := simpleFraction.FindStringSubmatch(s); m != nil {
		n, _ := strconv.ParseFloat(m[1], 64)
		d, _ := strconv.ParseFloat(m[2], 64)
		if d == 0 {
			return 0, false
		}
		return n / d, true
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}
	if lead := leadingNumber.FindString(s); lead != "" {
		v, _ := strconv.ParseFloat(lead, 64)
		return v, true
	}
	return 0, false
}

var knownUnits = map[string]bool{
	"cup": true, "cups": true, "tbsp": true, "tsp": true, "oz": true,
	"lb": true, "lbs": true, "g": true, "kg": true, "ml": true, "l": true,
	"clove": true, "cloves": true, "piece": true, "pieces": true,
	"slice": true, "slices": true, "can": true, "cans": true,
	"package": true, "packages": true, "pinch": true,
}

// ParseLine turns a free-text ingredient line such as "2 cups flour" into an
// Ingredient with a guessed category. A word in the unit position that is not
// a known unit is kept as part of the name.
func ParseLine(line string) models.Ingredient {
	line = strings.TrimSpace(normalizeFractions(line))
	m := ingredientLine.FindStringSubmatch(line)
	if m == nil {
		return models.Ingredient{Name: line, Category: GuessCategory(line)}
	}

	ing := models.Ingredient{}
	if q := strings.TrimSpace(m[1]); q != "" {
		if v, ok := ParseQuantity(q); ok {
			ing.Quantity = &v
		}
	}

	name := strings.TrimSpace(m[3])
	if word := m[2]; word != "" {
		if knownUnits[strings.ToLower(word)] {
			unit := strings.ToLower(word)
			ing.Unit = &unit
		} else {
			name = word + " " + name
		}
	}
	ing.Name = name
	ing.Category = GuessCategory(name)
	return ing
}

// normalizeFractions rewrites unicode vulgar fractions into ascii so the line
// pattern can read them: "1½ cups" becomes "1 1/2 cups".
func normalizeFractions(s string) string {
	var b strings.Builder
	for _, r := range s {
		frac, ok := unicodeFractions[r]
		if !ok {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
		b.WriteString(asciiFraction(frac))
	}
	return strings.TrimSpace(b.String())
}

func asciiFraction(v float64) string {
	switch v {
	case 0.25:
		return "1/4"
	case 0.5:
		return "1/2"
	case 0.75:
		return "3/4"
	case 0.125:
		return "1/8"
	case 0.375:
		return "3/8"
	case 0.625:
		return "5/8"
	case 0.875:
		return "7/8"
	case 1.0 / 3:
		return "1/3"
	}
	return "2/3"
}

// Amount is a quantity decoded from loosely typed JSON: a number, a numeric
// string such as "1 1/2" or "2 lbs", or null. Text that holds no number, such
// as "a few", decodes to zero, which reads as no quantity.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*a = Amount(x)
	case string:
		q, ok := ParseQuantity(x)
		// "1 1/2 cups" keeps the longest numeric prefix.
		fields := strings.Fields(x)
		for n := len(fields) - 1; !ok && n > 0; n-- {
			q, ok = ParseQuantity(strings.Join(fields[:n], " "))
		}
		if !ok {
			q = 0
		}
		*a = Amount(q)
	case nil:
	default:
		return fmt.Errorf("invalid quantity %s", string(b))
	}
	return nil
}

// Ptr returns a pointer to the amount as float64, or nil when a is nil or
// zero.
func (a *Amount) Ptr() *float64 {
	if a == nil || *a == 0 {
		return nil
	}
	v := float64(*a)
	return &v
}
