package main

import (
	"fmt"
	"strings"

	"prose-server/internal/types"
)

// Metric threshold levels, used as CSS class suffixes on the sidebar bars.
const (
	levelGood = "good"
	levelWarn = "warn"
	levelBad  = "bad"
)

// Target grade band for technical writing.
const (
	targetGradeMin = 9
	targetGradeMax = 11
)

func fleschLevel(v float64) string {
	switch {
	case v >= 70:
		return levelGood
	case v >= 50:
		return levelWarn
	default:
		return levelBad
	}
}

// gradeIndexLevel covers gunning fog, SMOG and ARI, which share thresholds.
func gradeIndexLevel(v float64) string {
	switch {
	case v <= 12:
		return levelGood
	case v <= 16:
		return levelWarn
	default:
		return levelBad
	}
}

func passiveVoiceLevel(v float64) string {
	switch {
	case v <= 15:
		return levelGood
	case v <= 25:
		return levelWarn
	default:
		return levelBad
	}
}

func sentenceLengthLevel(v float64) string {
	switch {
	case v >= 15 && v <= 20:
		return levelGood
	case v <= 25:
		return levelWarn
	default:
		return levelBad
	}
}

func complexWordsLevel(v float64) string {
	switch {
	case v <= 20:
		return levelGood
	case v <= 30:
		return levelWarn
	default:
		return levelBad
	}
}

// statMetric is one sidebar row.
type statMetric struct {
	label string
	value string
	level string
	// fraction in [0,1] for the bar width
	fraction float64
}

// RenderStatisticsSidebar renders the readability metrics with
// threshold-coloured bars, the grade badge and the smart recommendations.
func RenderStatisticsSidebar(a *types.Analysis) string {
	var sb strings.Builder
	sb.WriteString(`<div class="stats-sidebar">`)
	fmt.Fprintf(&sb, `<div class="overall-score score-%s"><span class="score-value">%.0f</span><span class="score-label">Overall Score</span></div>`,
		scoreLevel(a.OverallScore), a.OverallScore)

	if s := a.Statistics; s != nil {
		sb.WriteString(`<div class="stats-counts">`)
		fmt.Fprintf(&sb, `<span class="stat-count">%d words</span><span class="stat-count">%d sentences</span>`,
			s.WordCount, s.SentenceCount)
		sb.WriteString(`</div>`)

		metrics := []statMetric{
			{"Flesch Reading Ease", fmt.Sprintf("%.1f", s.FleschReadingEase), fleschLevel(s.FleschReadingEase), clampFraction(s.FleschReadingEase / 100)},
			{"Gunning Fog Index", fmt.Sprintf("%.1f", s.GunningFogIndex), gradeIndexLevel(s.GunningFogIndex), clampFraction(s.GunningFogIndex / 20)},
			{"SMOG Index", fmt.Sprintf("%.1f", s.SMOGIndex), gradeIndexLevel(s.SMOGIndex), clampFraction(s.SMOGIndex / 20)},
			{"Automated Readability", fmt.Sprintf("%.1f", s.AutomatedReadabilityIndex), gradeIndexLevel(s.AutomatedReadabilityIndex), clampFraction(s.AutomatedReadabilityIndex / 20)},
			{"Passive Voice", fmt.Sprintf("%.1f%%", s.PassiveVoicePercentage), passiveVoiceLevel(s.PassiveVoicePercentage), clampFraction(s.PassiveVoicePercentage / 100)},
			{"Avg Sentence Length", fmt.Sprintf("%.1f", s.AvgSentenceLength), sentenceLengthLevel(s.AvgSentenceLength), clampFraction(s.AvgSentenceLength / 40)},
			{"Complex Words", fmt.Sprintf("%.1f%%", s.ComplexWordsPercentage), complexWordsLevel(s.ComplexWordsPercentage), clampFraction(s.ComplexWordsPercentage / 100)},
		}
		sb.WriteString(`<div class="stats-metrics">`)
		for _, m := range metrics {
			fmt.Fprintf(&sb, `<div class="stat-metric level-%s"><div class="stat-metric-head"><span class="stat-label">%s</span><span class="stat-value">%s</span></div>`,
				m.level, m.label, m.value)
			fmt.Fprintf(&sb, `<div class="stat-bar"><div class="stat-bar-fill" style="width: %.0f%%"></div></div></div>`,
				m.fraction*100)
		}
		sb.WriteString(`</div>`)
	}

	if t := a.TechnicalWritingMetrics; t != nil {
		badge := "grade-miss"
		if t.MeetsTargetGrade {
			badge = "grade-met"
		}
		fmt.Fprintf(&sb, `<div class="grade-badge %s"><span class="grade-value">Grade %.1f</span><span class="grade-category">%s</span><span class="grade-target">Target: %d&ndash;%d</span></div>`,
			badge, t.EstimatedGradeLevel, EscapeHTML(t.GradeLevelCategory), targetGradeMin, targetGradeMax)
	}

	sb.WriteString(renderRecommendations(a))
	sb.WriteString(`</div>`)
	return sb.String()
}

func scoreLevel(score float64) string {
	switch {
	case score >= 80:
		return levelGood
	case score >= 60:
		return levelWarn
	default:
		return levelBad
	}
}

func clampFraction(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// renderRecommendations derives the smart-recommendations list from the same
// thresholds that colour the bars.
func renderRecommendations(a *types.Analysis) string {
	s := a.Statistics
	if s == nil {
		return ""
	}
	var recs []string
	if fleschLevel(s.FleschReadingEase) == levelBad {
		recs = append(recs, "Reading ease is low. Prefer short words and direct phrasing.")
	}
	if gradeIndexLevel(s.GunningFogIndex) == levelBad {
		recs = append(recs, "Gunning Fog is high. Break up dense sentences.")
	}
	if passiveVoiceLevel(s.PassiveVoicePercentage) != levelGood {
		recs = append(recs, "Reduce passive voice. Name the actor in each sentence.")
	}
	if sentenceLengthLevel(s.AvgSentenceLength) == levelBad {
		recs = append(recs, "Average sentence length exceeds 25 words. Split long sentences.")
	}
	if complexWordsLevel(s.ComplexWordsPercentage) != levelGood {
		recs = append(recs, "Many complex words. Swap in simpler alternatives where meaning allows.")
	}
	if len(recs) == 0 {
		return `<div class="recommendations"><div class="footer-heading">Recommendations</div><p class="rec-ok">All readability metrics are on target.</p></div>`
	}
	var sb strings.Builder
	sb.WriteString(`<div class="recommendations"><div class="footer-heading">Recommendations</div><ul>`)
	for _, rec := range recs {
		fmt.Fprintf(&sb, `<li>%s</li>`, rec)
	}
	sb.WriteString(`</ul></div>`)
	return sb.String()
}
