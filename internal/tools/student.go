// Package tools holds the student-creation helpers behind the conversational
// data-entry flow. The chat flow only narrates these rules to the model; the
// client below is for direct API use.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// StudentData is the payload collected by the conversational flow.
type StudentData struct {
	Name    string `json:"name"`
	ID      string `json:"student_id"`
	Grade   string `json:"grade"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

var validGrades = []string{
	"KG", "Grade 1", "Grade 2", "Grade 3", "Grade 4", "Grade 5", "Grade 6",
	"Grade 7", "Grade 8", "Grade 9", "Grade 10", "Grade 11", "Grade 12",
}

// ValidationResult lists hard errors and soft warnings separately; only
// errors make the data invalid.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// ValidateStudentData checks each provided field against the creation rules.
// Empty fields are skipped so partial data can be validated as it arrives.
func ValidateStudentData(data StudentData) ValidationResult {
	var result ValidationResult

	if data.Name != "" {
		if len([]rune(data.Name)) < 2 {
			result.Errors = append(result.Errors, "student name must be at least 2 characters")
		}
		for _, r := range data.Name {
			if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
				result.Warnings = append(result.Warnings, "student name should only contain letters")
				break
			}
		}
	}

	if data.ID != "" {
		if !isDigits(data.ID) {
			result.Errors = append(result.Errors, "student ID must contain only numbers")
		} else if len(data.ID) != 5 {
			result.Errors = append(result.Errors, fmt.Sprintf("student ID must be exactly 5 digits (got %d)", len(data.ID)))
		}
	}

	if data.Grade != "" && !isValidGrade(data.Grade) {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid grade, must be one of: %s", strings.Join(validGrades, ", ")))
	}

	if data.Email != "" && !isValidEmail(data.Email) {
		result.Errors = append(result.Errors, "invalid email format")
	}

	return result
}

// StudentRequirements describes the required fields and rules, in the form
// shown to users asking what is needed.
func StudentRequirements() string {
	return `Student Creation Requirements:

Required Fields:
1. Student Name: Full name (minimum 2 characters, letters only)
2. Student ID: Unique 5-digit number (e.g., 12345)
3. Grade/Class: One of [KG, Grade 1-12]
4. Email: Valid email address

Optional Fields:
5. Phone: Contact phone number
6. Address: Student's address

Validation Rules:
- Student ID must be unique (5 digits, numeric only)
- Email must be in valid format (contains @ and domain)
- Grade must match ClassCare standards
- Name should contain only letters and spaces`
}

// Client posts validated students to the external ClassCare student API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type CreateStudentResult struct {
	Success   bool   `json:"success"`
	StudentID string `json:"student_id"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

// CreateStudent validates then posts the student. Validation failures are
// returned as a structured result, not an error; errors mean the API itself
// was unreachable or rejected the request.
func (c *Client) CreateStudent(ctx context.Context, data StudentData) (*CreateStudentResult, error) {
	validation := ValidateStudentData(data)
	if data.Name == "" || data.ID == "" || data.Grade == "" || data.Email == "" {
		validation.Errors = append(validation.Errors, "name, student ID, grade, and email are all required")
	}
	if !validation.Valid() {
		return &CreateStudentResult{
			Success: false,
			Error:   strings.Join(validation.Errors, "; "),
		}, nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal student payload failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/students", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build student request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("student creation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var result CreateStudentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode student response failed: %w", err)
	}
	if resp.StatusCode >= 300 && result.Error == "" {
		result.Success = false
		result.Error = fmt.Sprintf("student API returned status %d", resp.StatusCode)
	}
	return &result, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isValidGrade(grade string) bool {
	for _, g := range validGrades {
		if g == grade {
			return true
		}
	}
	return false
}

func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".")
}
