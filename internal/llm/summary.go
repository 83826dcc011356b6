package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/fininsight/pkg/models"
)

const systemPrompt = "You are a concise, accurate financial markets explainer."

// BuildPrompt renders the narration request for a profile. Each section is
// embedded as JSON so the model sees exactly what the user sees.
func BuildPrompt(p *models.CountryFinancialProfile) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a financial markets assistant. Given the structured JSON data below, ")
	sb.WriteString("write a concise (2-3 paragraphs) explanation of this country's currency and ")
	sb.WriteString("stock market landscape. Include:\n")
	sb.WriteString("- The official currency (name + code)\n")
	sb.WriteString("- How 1 unit of that currency compares to USD, INR, GBP, and EUR (relative strength)\n")
	sb.WriteString("- The major stock exchanges and indices and what they broadly represent\n\n")
	sb.WriteString("Avoid repeating raw numbers exhaustively; instead, interpret them qualitatively. ")
	sb.WriteString("If a section reports an error, say the data is unavailable rather than guessing.\n\n")

	fmt.Fprintf(&sb, "Country: %s\n", p.Country)
	fmt.Fprintf(&sb, "Currency JSON: %s\n", compactJSON(p.Currency))
	fmt.Fprintf(&sb, "Exchange rates JSON: %s\n", compactJSON(p.ExchangeRates))
	fmt.Fprintf(&sb, "Stock profile JSON: %s\n", compactJSON(p.Stocks))

	return Prompt{System: systemPrompt, User: sb.String()}
}

// Summarize narrates p with n. Narration errors are returned as-is; the
// profile itself is never modified.
func Summarize(ctx context.Context, n Narrator, p *models.CountryFinancialProfile) (*models.ProfileSummary, error) {
	text, err := n.Summarize(ctx, BuildPrompt(p))
	if err != nil {
		return nil, err
	}
	text = cleanText(text)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", n.Name(), ErrEmptyResponse)
	}
	return &models.ProfileSummary{
		Country:     p.Country,
		Provider:    n.Name(),
		Model:       n.Model(),
		Summary:     text,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // "S&P 500" stays readable
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}

var (
	htmlTag   = regexp.MustCompile(`(?i)</?(p|br|div|span|b|i|strong|em|ul|ol|li|h[1-6])\b[^>]*>`)
	brTag     = regexp.MustCompile(`(?i)<br\s*/?>`)
	closePTag = regexp.MustCompile(`(?i)</p>`)
)

// cleanText strips HTML markup some models wrap their answers in. Plain
// text and markdown pass through unchanged apart from trimming.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !htmlTag.MatchString(s) {
		return s
	}

	// Keep paragraph and line breaks as newlines before flattening.
	s = brTag.ReplaceAllString(s, "\n")
	s = closePTag.ReplaceAllString(s, "</p>\n\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
