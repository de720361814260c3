package utils

import (
	"strings"
)

// ExtractDomainFromEmail returns the lowercased domain part of an address,
// tolerating "Name <user@domain>" forms.
func ExtractDomainFromEmail(email string) string {
	if email == "" {
		return ""
	}

	email = strings.TrimSpace(email)

	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			email = email[startIdx:endIdx]
		}
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// StripHTMLTags derives a plain-text alternative from HTML content.
// This is deliberately not an HTML parser: it drops tags, decodes a handful
// of common entities and collapses whitespace. Good enough for the
// text/plain fallback part of an outbound message.
func StripHTMLTags(html string) string {
	var b strings.Builder
	b.Grow(len(html))

	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}

	text := b.String()
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	text = replacer.Replace(text)

	return strings.Join(strings.Fields(text), " ")
}
