package evidence

// Keyword tables for the extraction gates. Kept as named data so each gate
// is unit-testable without running the full extraction pipeline. Matching is
// case-insensitive substring containment, which also covers Hebrew
// inflections (a stem like "השתפר" matches "השתפרה").

// experientialKeywords mark a unit as a first-hand usage statement.
var experientialKeywords = []string{
	// English
	"update", "updated", "upgrade", "upgraded", "installed", "install",
	"battery", "performance", "bug", "issue", "problem", "crash",
	"working fine", "works fine", "works great", "recommend", "lag",
	"drain", "overheat", "fixed", "improved", "smooth",
	// Hebrew
	"עדכנתי", "עדכון", "שדרגתי", "התקנתי", "סוללה", "ביצועים",
	"באג", "בעיה", "בעיות", "עובד", "מומלץ", "קורס", "מהירות", "התחממות",
}

// exclusionKeywords mark announcement/rumor/spec-sheet content. Presence of
// any of these disqualifies a unit as a user report regardless of what else
// it contains.
var exclusionKeywords = []string{
	// English
	"announced", "announcement", "rumor", "rumour", "leak", "leaked",
	"spec sheet", "specifications", "release date", "unveiled",
	"launch date", "eligible devices", "rollout schedule", "beta program",
	"press release",
	// Hebrew
	"הוכרז", "שמועה", "הודלף", "מפרט", "תאריך השקה",
}

// genericMarkers flag boilerplate/meta-commentary phrasing. A unit carrying
// one of these and no experiential keyword is rejected as generic.
var genericMarkers = []string{
	"community discussions", "available information", "reviews and articles",
	"search results", "according to", "for more information", "click here",
	"read more", "learn more", "various sources", "stay tuned",
	"in this article", "this article", "we will cover", "frequently asked",
	"terms of service", "privacy policy",
	"מידע זמין", "דיונים בקהילה", "למידע נוסף", "קראו עוד",
}

// positiveWords and negativeWords drive sentiment counting.
var positiveWords = []string{
	// English
	"good", "great", "fine", "smooth", "fast", "faster", "stable",
	"better", "improved", "excellent", "fixed", "happy", "love",
	"recommend", "perfect", "solid", "no issues", "no problems",
	// Hebrew
	"טוב", "מעולה", "השתפר", "מצוין", "חלק", "יציב", "מהיר", "מומלץ", "תקין",
}

var negativeWords = []string{
	// English
	"bad", "worse", "slow", "slower", "lag", "laggy", "drain", "drains",
	"bug", "bugs", "issue", "issues", "problem", "problems", "crash",
	"crashes", "broken", "freeze", "freezes", "stuck", "overheat",
	"terrible", "awful", "annoying", "regret",
	// Hebrew
	"גרוע", "בעיה", "בעיות", "באג", "נורא", "איטי", "מתרוקנת", "קורס", "נתקע",
}

// categoryGroup is one entry in the ordered experience-category table.
// Derivation is first-match-wins, so ordering is part of the contract.
type categoryGroup struct {
	category string
	keywords []string
}

var categoryGroups = []categoryGroup{
	{"battery_issues", []string{
		"battery", "drain", "drains", "charging", "סוללה", "מתרוקנת", "טעינה",
	}},
	{"performance_issues", []string{
		"slow", "slower", "lag", "laggy", "performance", "sluggish",
		"speed", "ביצועים", "איטי", "מהירות",
	}},
	{"positive", []string{
		"works fine", "working fine", "works great", "no issues",
		"no problems", "smooth", "improved", "better", "fixed",
		"עובד טוב", "השתפר", "תקין", "חלק",
	}},
	{"stability_issues", []string{
		"crash", "crashes", "freeze", "freezes", "reboot", "stuck",
		"unstable", "קורס", "נתקע", "קריסה",
	}},
	{"recommendation", []string{
		"recommend", "worth", "should update", "wait for", "hold off",
		"מומלץ", "כדאי", "שווה",
	}},
}
