package llm

import (
	"fmt"
	"strings"
)

const itemsInstruction = `You turn household requests into JSON. Answer with {"items": [...]} only.
Each item has a "type": one of "event", "todo", "task", "reminder", "shopping", "complete" or "list".
Fields:
- "title": short title with dates, times and filler words removed
- "date": ISO date YYYY-MM-DD when a day is mentioned, resolved against today's date
- "time": {"hours": 0-23, "minutes": 0-59} when a time of day is mentioned
- "default_time": "HH:MM" for todos without an explicit time, normally "20:00"
- "location": place name for events
- "recurring", "frequency" ("daily", "weekly" or "monthly")
- "quantity", "unit", "category" for shopping items
- "query": text identifying the task for "complete"
Use "reminder" when the user asks to be reminded.`

const recipeInstruction = `You extract a recipe as JSON with the fields
"name", "ingredients" (list of {"name", "quantity", "unit", "category"}),
"instructions" (string), "servings", "prepTime" and "cookTime" (minutes) and "category".
Quantities are numbers or null. Answer with the JSON object only.`

func buildPrompt(req Request) string {
	var b strings.Builder
	if req.IsRecipe {
		b.WriteString(recipeInstruction)
	} else {
		b.WriteString(itemsInstruction)
	}
	b.WriteString("\n\n")
	if req.Today != "" {
		fmt.Fprintf(&b, "Today is %s.\n", req.Today)
	}
	if req.IsDocument {
		if req.Filename != "" {
			fmt.Fprintf(&b, "The following is the text of the document %q. Extract every item in it.\n", req.Filename)
		} else {
			b.WriteString("The following is the text of a document. Extract every item in it.\n")
		}
	}
	b.WriteString("Input:\n")
	b.WriteString(req.Transcript)
	return b.String()
}
