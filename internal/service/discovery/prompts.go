package discovery

import (
	"fmt"

	"aitool-hub/internal/domain"
)

const toolShape = `{"name": string, "domain": string, "category": string, "description": string, ` +
	`"pricingModel": "Free"|"Freemium"|"Paid", "features": [string], "rating": number 0-5, "trendScore": number 0-100}`

func toolPrompt(kind domain.ListKind, limit int) string {
	subject := "AI tools that are trending right now"
	if kind == domain.ListLatest {
		subject = "AI tools launched in the last 30 days"
	}
	return fmt.Sprintf(`List %d %s.
Respond with a STRICT JSON ARRAY only, no prose and no markdown.
Each element must have exactly this shape:
%s`, limit, subject, toolShape)
}

func videoPrompt(limit int) string {
	return fmt.Sprintf(`List %d popular video tutorials that teach people how to use AI tools.
Respond with a STRICT JSON ARRAY only, no prose and no markdown.
Each element must have exactly this shape:
{"title": string, "description": string, "category": string, "searchQuery": string, "duration": "mm:ss"}`, limit)
}
