// Package followup classifies whether a query continues the prior
// conversation topic or opens a new one.
package followup

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"egov-bot/internal/textutil"
)

// rule pairs a pattern with the verdict it produces when matched.
type rule struct {
	name    string
	pattern *regexp.Regexp
	verdict bool
}

// rules are evaluated in order with first-match-wins semantics. The order is
// a behavioral contract: the anaphoric exceptions ("thủ tục này/trên",
// "giấy phép này/trên") must be tested before the specific-procedure markers,
// because those markers would otherwise classify the same text as a new
// topic. Reordering changes behavior.
var rules = []rule{
	{name: "anaphoric procedure", pattern: regexp.MustCompile(`thủ\s*tục\s+(này|trên)`), verdict: true},
	{name: "anaphoric permit", pattern: regexp.MustCompile(`giấy\s*phép\s+(này|trên)`), verdict: true},
	{name: "named procedure", pattern: regexp.MustCompile(`(^|[^\p{L}])thủ\s*tục\s+\p{L}+`), verdict: false},
	{name: "registration", pattern: regexp.MustCompile(`(^|[^\p{L}])đăng\s*k(ý|i)([^\p{L}]|$)`), verdict: false},
	{name: "permit keyword", pattern: regexp.MustCompile(`(^|[^\p{L}])giấy\s*phép([^\p{L}]|$)`), verdict: false},
}

// IsFollowUp reports whether the query should be treated as a continuation
// of the previous topic.
//
// Near-empty queries are not follow-ups (defensive default). A query naming
// a specific procedure, a registration or a permit starts a new topic unless
// it only refers back to "this/that procedure" or "this/that permit".
// Everything else defaults to a follow-up: short, ambiguous turns are the
// common case in a multi-turn chat.
func IsFollowUp(query string) bool {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < 2 {
		return false
	}

	normalized := textutil.Normalize(query)
	for _, r := range rules {
		if r.pattern.MatchString(normalized) {
			return r.verdict
		}
	}
	return true
}
