package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStudentDataAllValid(t *testing.T) {
	result := ValidateStudentData(StudentData{
		Name:  "Mary Jane",
		ID:    "12345",
		Grade: "Grade 10",
		Email: "mary@example.com",
	})
	assert.True(t, result.Valid())
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateStudentDataErrors(t *testing.T) {
	cases := []struct {
		name    string
		data    StudentData
		wantSub string
	}{
		{"short name", StudentData{Name: "X"}, "at least 2 characters"},
		{"non-numeric id", StudentData{ID: "12a45"}, "only numbers"},
		{"wrong id length", StudentData{ID: "1234"}, "exactly 5 digits"},
		{"bad grade", StudentData{Grade: "Grade 13"}, "invalid grade"},
		{"bad email", StudentData{Email: "not-an-email"}, "invalid email"},
		{"email without domain dot", StudentData{Email: "a@b"}, "invalid email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ValidateStudentData(tc.data)
			require.False(t, result.Valid())
			assert.Contains(t, result.Errors[0], tc.wantSub)
		})
	}
}

func TestValidateStudentDataNameWarning(t *testing.T) {
	result := ValidateStudentData(StudentData{Name: "R2D2"})
	assert.True(t, result.Valid(), "digits in a name warn but do not fail")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "only contain letters")
}

func TestValidateStudentDataSkipsEmptyFields(t *testing.T) {
	result := ValidateStudentData(StudentData{})
	assert.True(t, result.Valid())
}

func TestStudentRequirementsListsRules(t *testing.T) {
	text := StudentRequirements()
	assert.Contains(t, text, "Student Name")
	assert.Contains(t, text, "5-digit")
	assert.Contains(t, text, "KG, Grade 1-12")
	assert.Contains(t, text, "Email")
}

func TestCreateStudentPostsPayload(t *testing.T) {
	var received StudentData
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/students", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(CreateStudentResult{
			Success:   true,
			StudentID: received.ID,
			Message:   "Student created successfully",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.CreateStudent(context.Background(), StudentData{
		Name:  "Mary Jane",
		ID:    "12345",
		Grade: "Grade 10",
		Email: "mary@example.com",
		Phone: "555-0100",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "12345", result.StudentID)
	assert.Equal(t, "Mary Jane", received.Name)
	assert.Equal(t, "555-0100", received.Phone)
}

func TestCreateStudentRejectsInvalidDataLocally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid data must not reach the API")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.CreateStudent(context.Background(), StudentData{
		Name:  "Mary",
		ID:    "12",
		Grade: "Grade 10",
		Email: "mary@example.com",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "exactly 5 digits")
}

func TestCreateStudentRequiresAllFields(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	result, err := client.CreateStudent(context.Background(), StudentData{Name: "Mary"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "required")
}
