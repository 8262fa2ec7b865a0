package pubchem

import (
	"strings"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
	"github.com/taj0207/IngredientCheck/internal/safety/classifier"
)

// PUG REST search reply.
type cidList struct {
	IdentifierList struct {
		CID []int `json:"CID"`
	} `json:"IdentifierList"`
}

// PUG View record, reduced to the fields the GHS section uses.
type pugView struct {
	Record *record `json:"Record"`
}

type record struct {
	RecordNumber int         `json:"RecordNumber"`
	RecordTitle  string      `json:"RecordTitle"`
	Section      []section   `json:"Section"`
	Reference    []reference `json:"Reference"`
}

type section struct {
	TOCHeading  string        `json:"TOCHeading"`
	Section     []section     `json:"Section"`
	Information []information `json:"Information"`
}

type information struct {
	ReferenceNumber int    `json:"ReferenceNumber"`
	Name            string `json:"Name"`
	Value           struct {
		StringWithMarkup []stringWithMarkup `json:"StringWithMarkup"`
	} `json:"Value"`
}

type stringWithMarkup struct {
	String string   `json:"String"`
	Markup []markup `json:"Markup"`
}

type markup struct {
	URL   string `json:"URL"`
	Type  string `json:"Type"`
	Extra string `json:"Extra"`
}

type reference struct {
	ReferenceNumber int    `json:"ReferenceNumber"`
	SourceName      string `json:"SourceName"`
}

const ghsHeading = "GHS Classification"

// findSection returns the first section with the given heading, depth first.
func findSection(sections []section, heading string) *section {
	for i := range sections {
		if strings.EqualFold(sections[i].TOCHeading, heading) {
			return &sections[i]
		}
		if s := findSection(sections[i].Section, heading); s != nil {
			return s
		}
	}
	return nil
}

// ghsData is the merged content of every notification in the GHS section.
type ghsData struct {
	statements      []domain.HazardStatement
	classifications []domain.GHSClassification
	sources         []string
	notClassified   bool
}

// extractGHS merges pictograms, signal words and statements reported by
// all references. The strongest signal word wins.
func extractGHS(rec *record, ghs *section) ghsData {
	var (
		out        ghsData
		signal     = domain.SignalNone
		pictograms []domain.GHSClassification
		seenCode   = map[string]bool{}
		seenPicto  = map[string]bool{}
		refs       = map[int]bool{}
	)

	for _, info := range ghs.Information {
		switch strings.ToLower(strings.TrimSpace(info.Name)) {
		case "pictogram(s)", "pictograms":
			refs[info.ReferenceNumber] = true
			for _, swm := range info.Value.StringWithMarkup {
				for _, m := range swm.Markup {
					if !strings.EqualFold(m.Type, "Icon") {
						continue
					}
					id := classifier.NormalizePictogram(m.URL)
					if id == "" || seenPicto[id] {
						continue
					}
					seenPicto[id] = true
					desc := strings.TrimSpace(m.Extra)
					if desc == "" {
						desc = classifier.PictogramName(id)
					}
					pictograms = append(pictograms, domain.GHSClassification{Pictogram: id, Description: desc})
				}
			}
		case "signal":
			refs[info.ReferenceNumber] = true
			for _, swm := range info.Value.StringWithMarkup {
				signal = strongerSignal(signal, domain.ParseSignalWord(swm.String))
			}
		case "ghs hazard statements":
			refs[info.ReferenceNumber] = true
			for _, swm := range info.Value.StringWithMarkup {
				if isNotClassified(swm.String) {
					out.notClassified = true
					continue
				}
				for _, st := range classifier.ParseStatement(classifier.StripNotificationPercent(swm.String)) {
					if seenCode[st.Code] {
						continue
					}
					seenCode[st.Code] = true
					out.statements = append(out.statements, st)
				}
			}
		}
	}

	for i := range pictograms {
		pictograms[i].SignalWord = signal
	}
	if len(pictograms) == 0 && signal != domain.SignalNone {
		pictograms = append(pictograms, domain.GHSClassification{SignalWord: signal})
	}
	out.classifications = pictograms

	seenSource := map[string]bool{}
	for _, ref := range rec.Reference {
		if !refs[ref.ReferenceNumber] || ref.SourceName == "" || seenSource[ref.SourceName] {
			continue
		}
		seenSource[ref.SourceName] = true
		out.sources = append(out.sources, ref.SourceName)
	}
	return out
}

func strongerSignal(a, b domain.SignalWord) domain.SignalWord {
	rank := func(s domain.SignalWord) int {
		switch s {
		case domain.SignalDanger:
			return 2
		case domain.SignalWarning:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

func isNotClassified(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "not classified") || strings.Contains(l, "not meeting ghs hazard criteria")
}
