package app

import (
	"fmt"
	"sort"
	"strings"

	"kickpredict/domain/campaign"
	"kickpredict/domain/ratetable"
	"kickpredict/domain/run"

	"github.com/montanaflynn/stats"
)

// RenderTrainingReport writes a markdown summary of a run: data quality,
// holdout metrics, goal distribution and the learned rate tables.
func RenderTrainingReport(m *run.Manifest, tables ratetable.Set, records []campaign.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Training run %s\n\n", m.RunID)
	fmt.Fprintf(&b, "- Source: `%s`\n", m.Source)
	fmt.Fprintf(&b, "- Created: %s\n", m.CreatedAt)
	fmt.Fprintf(&b, "- Feature schema: %s\n", m.Fingerprint.SchemaVersion)
	fmt.Fprintf(&b, "- Tables fingerprint: `%s`\n\n", m.Fingerprint.TablesHash.Short())

	b.WriteString("## Dataset\n\n")
	b.WriteString("| Rows | Rate basis | Kept | Dropped |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n\n", m.Clean.Total, m.Clean.RateBasis, m.Clean.Kept, m.Clean.DroppedTotal())
	if len(m.Clean.Dropped) > 0 {
		b.WriteString("| Drop reason | Rows |\n|---|---:|\n")
		for _, reason := range sortedReasons(m.Clean.Dropped) {
			fmt.Fprintf(&b, "| %s | %d |\n", reason, m.Clean.Dropped[reason])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Holdout evaluation\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Train rows | %d |\n", m.Metrics.TrainSize)
	fmt.Fprintf(&b, "| Holdout rows | %d |\n", m.Metrics.HoldoutSize)
	fmt.Fprintf(&b, "| Accuracy | %.4f |\n", m.Metrics.Accuracy)
	fmt.Fprintf(&b, "| ROC AUC | %.4f |\n", m.Metrics.AUC)
	fmt.Fprintf(&b, "| Success rate | %.2f%% |\n\n", m.Metrics.SuccessRate*100)

	if summary := goalSummary(records); summary != "" {
		b.WriteString("## Goal distribution (USD)\n\n")
		b.WriteString(summary)
	}

	writeTable(&b, "Mean goal by main category", tables.ByCategory)
	writeTable(&b, "Mean goal by country", tables.ByCountry)

	return b.String()
}

func goalSummary(records []campaign.Record) string {
	goals := make(stats.Float64Data, 0, len(records))
	for _, r := range records {
		goals = append(goals, r.USDGoalReal)
	}
	if len(goals) == 0 {
		return ""
	}

	median, err := stats.Median(goals)
	if err != nil {
		return ""
	}
	mean, _ := stats.Mean(goals)
	p90, _ := stats.Percentile(goals, 90)
	maxGoal, _ := stats.Max(goals)

	var b strings.Builder
	b.WriteString("| Mean | Median | P90 | Max |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %.2f | %.2f | %.2f | %.2f |\n\n", mean, median, p90, maxGoal)
	return b.String()
}

func writeTable(b *strings.Builder, title string, t *ratetable.Table) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if t.Len() == 0 {
		b.WriteString("_empty_\n\n")
		return
	}
	entries := t.Entries()
	keys := t.Keys()
	sort.SliceStable(keys, func(i, j int) bool { return entries[keys[i]] > entries[keys[j]] })

	b.WriteString("| Key | Mean goal |\n|---|---:|\n")
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | %.2f |\n", k, entries[k])
	}
	b.WriteString("\n")
}
