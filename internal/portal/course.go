package portal

import (
	"fmt"
	"regexp"
	"unicode"

	"mygcc-backend/internal/failure"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// CourseCode is a course code split into its parts, ex. "COMP 141 A".
type CourseCode struct {
	Subject string
	Number  string
	Section string
}

// ParseCourseCode splits a course code at its letter/digit boundaries, any
// other characters are ignored. Codes that do not split into exactly a
// subject, a number and a section name a class that does not exist.
func ParseCourseCode(code string) (CourseCode, error) {
	sanitized := nonAlphanumeric.ReplaceAllString(code, "")

	var parts []string
	start := 0
	for i := 1; i <= len(sanitized); i++ {
		if i == len(sanitized) || unicode.IsDigit(rune(sanitized[i])) != unicode.IsDigit(rune(sanitized[i-1])) {
			parts = append(parts, sanitized[start:i])
			start = i
		}
	}
	if len(parts) != 3 || unicode.IsDigit(rune(parts[0][0])) {
		return CourseCode{}, failure.Newf(failure.KindClassDoesNotExist, "malformed course code '%s'", code)
	}

	return CourseCode{
		Subject: parts[0],
		Number:  parts[1],
		Section: parts[2],
	}, nil
}

func (c CourseCode) String() string {
	return fmt.Sprintf("%s %s %s", c.Subject, c.Number, c.Section)
}

// CourseURL returns the path of a course's home in the academics area, with a
// trailing slash.
func (c *Client) CourseURL(code string) (string, error) {
	parsed, err := ParseCourseCode(code)
	if err != nil {
		return "", err
	}

	section := parsed.Section
	if len(section) > 1 {
		section = section[:1] + "____L"
	}
	return fmt.Sprintf(
		"/ICS/Academics/%s/%s_%s/%d_%s-%s_%s-%s/",
		parsed.Subject,
		parsed.Subject, parsed.Number,
		c.Term.Year, c.Term.Number,
		parsed.Subject, parsed.Number,
		section,
	), nil
}

func (c *Client) courseURLWithSuffix(code, suffix string) (string, error) {
	base, err := c.CourseURL(code)
	if err != nil {
		return "", err
	}
	return base + suffix, nil
}

func (c *Client) CourseworkURL(code string) (string, error) {
	return c.courseURLWithSuffix(code, "Coursework.jnz")
}

func (c *Client) CollaborationURL(code string) (string, error) {
	return c.courseURLWithSuffix(code, "Collaboration.jnz?portlet=Coursemates")
}

func (c *Client) FilesURL(code string) (string, error) {
	return c.courseURLWithSuffix(code, "Main_Page.jnz?portlet=Handouts&screen=MainView&screenType=next&viewType=Card")
}
