package recipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/Kerhoff/hearth/internal/ingredient"
	"github.com/Kerhoff/hearth/internal/models"
)

// ErrNoRecipe is returned when a page carries nothing that looks like a
// recipe.
var ErrNoRecipe = errors.New("no recipe found on page")

// Clipper imports recipes from web pages.
type Clipper struct {
	client *resty.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper(timeout time.Duration) *Clipper {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "hearth-recipe-clipper/1.0").
		SetHeader("Accept", "text/html")
	return &Clipper{client: c}
}

// Clip fetches url and extracts a recipe. schema.org JSON-LD is preferred,
// then microdata, then the page heading alone.
func (c *Clipper) Clip(ctx context.Context, url string) (*models.Recipe, error) {
	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch recipe page: status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe page: %w", err)
	}

	r, err := Extract(doc)
	if err != nil {
		return nil, err
	}
	r.SourceURL = url
	return r, nil
}

// Extract reads a recipe from a parsed page.
func Extract(doc *goquery.Document) (*models.Recipe, error) {
	if r := fromJSONLD(doc); r != nil {
		return Normalize(r), nil
	}
	if r := fromMicrodata(doc); r != nil {
		return Normalize(r), nil
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return Normalize(&models.Recipe{Name: h1}), nil
	}
	return nil, ErrNoRecipe
}

func fromJSONLD(doc *goquery.Document) *models.Recipe {
	var found map[string]interface{}
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var v interface{}
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return true
		}
		found = findRecipeNode(v)
		return found == nil
	})
	if found == nil {
		return nil
	}

	r := &models.Recipe{
		Name:         text(found["name"]),
		Instructions: howToText(found["recipeInstructions"]),
		Servings:     yield(found["recipeYield"]),
		PrepTime:     duration(found["prepTime"]),
		CookTime:     duration(found["cookTime"]),
		Category:     text(found["recipeCategory"]),
	}
	if r.CookTime == nil && r.PrepTime == nil {
		r.CookTime = duration(found["totalTime"])
	}
	for _, line := range stringList(found["recipeIngredient"]) {
		r.Ingredients = append(r.Ingredients, ingredient.ParseLine(line))
	}
	return r
}

// findRecipeNode walks JSON-LD looking for an object typed Recipe, including
// inside arrays and @graph containers.
func findRecipeNode(v interface{}) map[string]interface{} {
	switch x := v.(type) {
	case []interface{}:
		for _, item := range x {
			if n := findRecipeNode(item); n != nil {
				return n
			}
		}
	case map[string]interface{}:
		if isRecipeType(x["@type"]) {
			return x
		}
		if g, ok := x["@graph"]; ok {
			return findRecipeNode(g)
		}
	}
	return nil
}

func isRecipeType(v interface{}) bool {
	for _, t := range stringList(v) {
		if t == "Recipe" {
			return true
		}
	}
	return false
}

func fromMicrodata(doc *goquery.Document) *models.Recipe {
	lines := doc.Find(`[itemprop="recipeIngredient"], [itemprop="ingredients"]`)
	if lines.Length() == 0 {
		return nil
	}

	scope := doc.Find(`[itemtype*="schema.org/Recipe"]`).First()
	name := strings.TrimSpace(scope.Find(`[itemprop="name"]`).First().Text())
	if name == "" {
		name = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	r := &models.Recipe{Name: name}
	lines.Each(func(_ int, s *goquery.Selection) {
		if line := strings.Join(strings.Fields(s.Text()), " "); line != "" {
			r.Ingredients = append(r.Ingredients, ingredient.ParseLine(line))
		}
	})
	var steps []string
	doc.Find(`[itemprop="recipeInstructions"]`).Each(func(_ int, s *goquery.Selection) {
		if step := strings.TrimSpace(s.Text()); step != "" {
			steps = append(steps, step)
		}
	})
	r.Instructions = strings.Join(steps, "\n")
	if y, ok := doc.Find(`[itemprop="recipeYield"]`).First().Attr("content"); ok {
		r.Servings = leadingInt(y)
	} else {
		r.Servings = leadingInt(doc.Find(`[itemprop="recipeYield"]`).First().Text())
	}
	return r
}

func text(v interface{}) string {
	if s := stringList(v); len(s) > 0 {
		return strings.TrimSpace(s[0])
	}
	return ""
}

// stringList flattens a JSON-LD value that may be a string or a list of
// strings.
func stringList(v interface{}) []string {
	switch x := v.(type) {
	case string:
		return []string{x}
	case []interface{}:
		var out []string
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// howToText flattens recipeInstructions given as a string, a list of
// strings, HowToStep objects or HowToSection objects.
func howToText(v interface{}) string {
	var steps []string
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch x := v.(type) {
		case string:
			if s := strings.TrimSpace(x); s != "" {
				steps = append(steps, s)
			}
		case []interface{}:
			for _, item := range x {
				walk(item)
			}
		case map[string]interface{}:
			if items, ok := x["itemListElement"]; ok {
				walk(items)
				return
			}
			walk(x["text"])
		}
	}
	walk(v)
	return strings.Join(steps, "\n")
}

func yield(v interface{}) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case string:
		return leadingInt(x)
	case []interface{}:
		for _, item := range x {
			if n := yield(item); n > 0 {
				return n
			}
		}
	}
	return 0
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:\d+(?:\.\d+)?S)?)?$`)

// ParseDuration converts an ISO-8601 duration such as PT1H30M to minutes.
func ParseDuration(s string) (int, bool) {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil || s == "P" || s == "PT" {
		return 0, false
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	return days*24*60 + hours*60 + minutes, true
}

func duration(v interface{}) *int {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	n, ok := ParseDuration(s)
	if !ok || n == 0 {
		return nil
	}
	return &n
}
