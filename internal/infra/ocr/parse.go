package ocr

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

// Parsed is the decoded model answer.
type Parsed struct {
	Names        []string
	Language     string
	UsedFallback bool
}

type visionAnswer struct {
	Ingredients *[]json.RawMessage `json:"ingredients"`
	Language    string             `json:"language"`
}

// ParseResponse decodes a model reply. It accepts a JSON object, optionally
// wrapped in markdown fences or prose, and falls back to the first
// bracketed list in the text. Anything else is domain.ErrParseFailure.
func ParseResponse(content string) (Parsed, error) {
	text := stripFences(content)

	if obj, ok := outermost(text, '{', '}'); ok {
		var ans visionAnswer
		if err := json.Unmarshal([]byte(obj), &ans); err == nil && ans.Ingredients != nil {
			return Parsed{
				Names:    CleanNames(decodeNames(*ans.Ingredients)),
				Language: strings.TrimSpace(ans.Language),
			}, nil
		}
	}

	if list, ok := outermost(text, '[', ']'); ok {
		var names []string
		if err := json.Unmarshal([]byte(list), &names); err != nil {
			names = splitTopLevel(list[1:len(list)-1], ",")
		}
		return Parsed{Names: CleanNames(names), UsedFallback: true}, nil
	}

	return Parsed{}, fmt.Errorf("%w: no ingredient list in reply %q", domain.ErrParseFailure, preview(content))
}

// decodeNames accepts ["a","b"] as well as [{"name":"a"}].
func decodeNames(raw []json.RawMessage) []string {
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			names = append(names, s)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(r, &obj); err == nil && obj.Name != "" {
			names = append(names, obj.Name)
		}
	}
	return names
}

func stripFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// outermost returns the span from the first open to the last close rune.
func outermost(s string, opening, closing byte) (string, bool) {
	i := strings.IndexByte(s, opening)
	j := strings.LastIndexByte(s, closing)
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}

// CleanNames trims names, drops empties and removes case-insensitive
// duplicates, keeping the first spelling and position.
func CleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimFunc(n, func(r rune) bool {
			return unicode.IsSpace(r) || r == '"' || r == '\'' || r == '*' || r == '.' || r == '•'
		})
		n = strings.Join(strings.Fields(n), " ")
		if n == "" {
			continue
		}
		k := domain.CacheKey(n)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, n)
	}
	return out
}

// SplitIngredientText splits raw label text into names. Text before an
// "Ingredients:" heading is dropped; commas and semicolons inside
// parentheses do not split.
func SplitIngredientText(text string) []string {
	lower := strings.ToLower(text)
	for _, heading := range []string{"ingredients:", "ingredient:", "ingrédients:", "inci:"} {
		if i := strings.Index(lower, heading); i >= 0 {
			text = text[i+len(heading):]
			break
		}
	}
	text = strings.NewReplacer("\r", " ", "\n", " ").Replace(text)
	return CleanNames(splitTopLevel(text, ",;"))
}

func splitTopLevel(s, seps string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch {
		case r == '(' || r == '[':
			depth++
		case (r == ')' || r == ']') && depth > 0:
			depth--
		case depth == 0 && strings.ContainsRune(seps, r):
			parts = append(parts, s[start:i])
			start = i + len(string(r))
		}
	}
	return append(parts, s[start:])
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
