package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsActionRequest(t *testing.T) {
	cases := []struct {
		question string
		want     bool
	}{
		{"I want to create a student", true},
		{"CREATE a student record", true},
		{"please add Mary to grade 10", true},
		{"register this kid", true},
		{"submit the form", true},
		{"tell me about the new semester dates", true},
		{"how many students are enrolled", true},
		{"what does the document say about grading", false},
		{"explain the attendance policy", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsActionRequest(tc.question), "question: %q", tc.question)
	}
}
