package convo

import (
	"regexp"

	"touchline/internal/core/phrase"
	"touchline/internal/core/question"
)

// pronoun cues that make a question refer back to the previous turn
var pronounCues = []string{"that", "those", "it", "them", "this", "these"}

// quantity phrases that imply "of the thing we were just discussing"
var quantityCues = []string{"how many", "how much"}

// temporal connective immediately followed by a season-like token,
// e.g. "in 2019/20", "during the 2018-2019 season"
var reTemporalCue = regexp.MustCompile(`(^| )(in|during|for)( the)? (\d{4}/\d{2}|\d{4}-\d{4})( |$)`)

// Referential reports whether normalized question text carries a cue
// that justifies back-filling from the previous turn
func Referential(text string) bool {
	if phrase.ContainsAny(text, pronounCues...) {
		return true
	}
	if phrase.ContainsAny(text, quantityCues...) {
		return true
	}
	return reTemporalCue.MatchString(text)
}

// Merge back-fills a new analysis from the previous turn when the
// question is referential and the analysis is missing entities or
// metrics; present values are never overwritten, and the time range
// is never back-filled; a temporal cue's own season token already
// set it during analysis
func Merge(a question.Analysis, prev Turn) question.Analysis {
	if !Referential(a.Question) {
		return a
	}
	filled := false
	if len(a.Entities) == 0 && len(prev.Analysis.Entities) > 0 {
		a.Entities = append([]question.Entity(nil), prev.Analysis.Entities...)
		filled = true
	}
	if len(a.Metrics) == 0 && len(prev.Analysis.Metrics) > 0 {
		a.Metrics = append([]string(nil), prev.Analysis.Metrics...)
		filled = true
	}
	if filled {
		a = question.Reclassify(a)
	}
	return a
}
