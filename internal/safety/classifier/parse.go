package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

var (
	codePattern      = regexp.MustCompile(`(?i)\b(EUH|H)(\d{3})([A-Za-z]{0,2})\b`)
	percentPattern   = regexp.MustCompile(`\(\s*[\d.]+\s*%\s*\)`)
	bracketPattern   = regexp.MustCompile(`\s*\[[^\]]*\]\s*$`)
	pictogramPattern = regexp.MustCompile(`(?i)GHS0?(\d)`)
)

// CodeNumber returns the numeric part of a plain H code ("H350i" -> 350).
func CodeNumber(code string) (int, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !strings.HasPrefix(c, "H") || len(c) < 4 {
		return 0, false
	}
	n, err := strconv.Atoi(c[1:4])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseCode extracts every hazard code from raw text, including combined
// forms such as "H300+H310+H330". Codes are upper-cased; suffix letters
// keep their provider casing ("H350i", "H360FD").
func ParseCode(raw string) []string {
	matches := codePattern.FindAllStringSubmatch(raw, -1)
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, strings.ToUpper(m[1])+m[2]+m[3])
	}
	return codes
}

// ParseStatement parses provider text like
// "H225 (100%): Highly Flammable liquid and vapor [Danger Flammable liquids]"
// into one statement per code. Text without a code yields nil.
func ParseStatement(raw string) []domain.HazardStatement {
	head, text, found := strings.Cut(raw, ":")
	if !found {
		head = raw
		text = ""
	}

	codes := ParseCode(head)
	if len(codes) == 0 {
		return nil
	}

	text = bracketPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	statements := make([]domain.HazardStatement, 0, len(codes))
	for _, code := range codes {
		statements = append(statements, domain.HazardStatement{
			Code:      code,
			Statement: text,
			Category:  domain.CategoryForCode(code),
		})
	}
	return statements
}

// StripNotificationPercent removes "(97.3%)" style notification ratios.
func StripNotificationPercent(s string) string {
	return strings.TrimSpace(percentPattern.ReplaceAllString(s, ""))
}

var pictogramNames = map[string]string{
	"explosive":            "GHS01",
	"exploding bomb":       "GHS01",
	"flammable":            "GHS02",
	"flame":                "GHS02",
	"oxidizer":             "GHS03",
	"oxidizing":            "GHS03",
	"flame over circle":    "GHS03",
	"compressed gas":       "GHS04",
	"gas cylinder":         "GHS04",
	"corrosive":            "GHS05",
	"corrosion":            "GHS05",
	"acute toxic":          "GHS06",
	"toxic":                "GHS06",
	"skull and crossbones": "GHS06",
	"irritant":             "GHS07",
	"exclamation mark":     "GHS07",
	"health hazard":        "GHS08",
	"environmental hazard": "GHS09",
	"environment":          "GHS09",
}

// NormalizePictogram maps GHS ids, pictogram names and icon URLs to the
// canonical "GHSxx" id. Unrecognized input is returned trimmed.
func NormalizePictogram(raw string) string {
	s := strings.TrimSpace(raw)
	if m := pictogramPattern.FindStringSubmatch(s); m != nil {
		return "GHS0" + m[1]
	}
	if id, ok := pictogramNames[strings.ToLower(s)]; ok {
		return id
	}
	return s
}

// PictogramName returns the display name for a canonical pictogram id.
func PictogramName(id string) string {
	switch id {
	case "GHS01":
		return "Explosive"
	case "GHS02":
		return "Flammable"
	case "GHS03":
		return "Oxidizer"
	case "GHS04":
		return "Compressed Gas"
	case "GHS05":
		return "Corrosive"
	case "GHS06":
		return "Acute Toxic"
	case "GHS07":
		return "Irritant"
	case "GHS08":
		return "Health Hazard"
	case "GHS09":
		return "Environmental Hazard"
	default:
		return id
	}
}
