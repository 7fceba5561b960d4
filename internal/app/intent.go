package app

import "strings"

// actionKeywords route a question to the student-creation conversational
// flow instead of retrieval answering.
var actionKeywords = []string{"create", "add", "new", "register", "submit", "student"}

// IsActionRequest reports whether the question asks for an action rather
// than information. Plain substring match, case-insensitive.
func IsActionRequest(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range actionKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
