package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/taj0207/IngredientCheck/internal/core/domain"
)

func printScan(out io.Writer, result *domain.ScanResult) error {
	fmt.Fprintf(out, "Overall: %s  (%d ingredients, %d of concern, %d unknown)\n",
		strings.ToUpper(result.OverallSeverity().String()),
		result.IngredientCount(),
		result.ConcernCount(),
		result.UnknownCount(),
	)
	meta := result.Extraction
	fmt.Fprintf(out, "Read by %s", meta.Provider)
	if meta.FailedOver {
		fmt.Fprint(out, " (failover)")
	}
	fmt.Fprintf(out, " in %s\n\n", meta.Latency)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INGREDIENT\tSEVERITY\tHAZARDS\tREGULATORY")
	for _, ing := range result.Ingredients() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ing.Name, ing.Severity(), hazardCodes(ing.Safety), regulatoryLevel(ing.Safety))
	}
	return w.Flush()
}

func printResolve(out io.Writer, names []string, results map[string]domain.SafetyInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSEVERITY\tHAZARDS\tREGULATORY\tSOURCES")
	for _, name := range names {
		info, ok := results[name]
		if !ok {
			fmt.Fprintf(w, "%s\t%s\t-\t-\tno data\n", name, domain.SeverityUnknown)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, info.Severity, hazardCodes(&info), regulatoryLevel(&info), strings.Join(info.Sources, ", "))
	}
	return w.Flush()
}

func hazardCodes(info *domain.SafetyInfo) string {
	if info == nil || len(info.HazardStatements) == 0 {
		return "-"
	}
	codes := make([]string, 0, len(info.HazardStatements))
	for _, h := range info.HazardStatements {
		codes = append(codes, h.Code)
	}
	return strings.Join(codes, " ")
}

func regulatoryLevel(info *domain.SafetyInfo) string {
	if info == nil || info.Regulatory.Level == "" || info.Regulatory.Level == domain.RegulatoryNone {
		return "-"
	}
	return string(info.Regulatory.Level)
}
