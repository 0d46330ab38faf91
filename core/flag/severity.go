package flag

// Severity is a coarse classification of a matched flag. It is keyed off the
// rule's threshold, not the measured distance from it; a rule drawn at a
// drastic threshold signals a drastic condition whenever it fires. Coarse,
// but it is what the dashboard has always shown.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// colorRanks orders display colors from least to most severe.
var colorRanks = map[Color]int{
	ColorGreen:  1,
	ColorBlue:   2,
	ColorYellow: 3,
	ColorOrange: 4,
	ColorRed:    5,
}

// RepresentativeColor reduces the matched flags of one category to the single
// color shown on the student row: the worst color wins.
func RepresentativeColor(results []Result) (Color, bool) {
	var best Color
	var bestRank int
	for _, res := range results {
		if rank := colorRanks[res.Color]; rank > bestRank {
			best = res.Color
			bestRank = rank
		}
	}
	return best, bestRank > 0
}

// RepresentativeColors reduces per category. Flags in distinct categories are
// all retained (the views stack their icons); reduction only happens within
// a category.
func RepresentativeColors(byCategory map[Category][]Result) map[Category]Color {
	colors := make(map[Category]Color, len(byCategory))
	for cat, results := range byCategory {
		if color, ok := RepresentativeColor(results); ok {
			colors[cat] = color
		}
	}
	return colors
}

// severityFor derives a flag's severity from its rule's threshold.
func severityFor(rule Rule) Severity {
	t := float64(rule.Criteria.Threshold)
	switch rule.Category {
	case CategoryAttendance:
		switch {
		case t < 80:
			return SeverityHigh
		case t < 90:
			return SeverityMedium
		}
	case CategoryGrades:
		switch {
		case t < 1.5:
			return SeverityHigh
		case t < 2.5:
			return SeverityMedium
		}
	case CategoryDiscipline:
		switch {
		case t > 5:
			return SeverityHigh
		case t > 2:
			return SeverityMedium
		}
	case CategoryIReadyReading, CategoryIReadyMath:
		switch {
		case t < 450:
			return SeverityHigh
		case t < 500:
			return SeverityMedium
		}
	case CategoryFASTMath, CategoryFASTELA, CategoryFASTScience, CategoryFASTWriting:
		switch {
		case t < 275:
			return SeverityHigh
		case t < 300:
			return SeverityMedium
		}
	}
	return SeverityLow
}
