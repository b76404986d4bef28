package htmlutil

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func mustDocument(t testing.TB, markup string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestOwnText(t *testing.T) {
	doc := mustDocument(t, `<table><tr><td><a href="x.pdf">Syllabus</a>
		(PDF,&nbsp;120 KB)</td></tr></table>`)
	require.Equal(t, "(PDF, 120 KB)", OwnText(doc.Find("td")))
}

func TestClean(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "  hello\n\t world  ", expected: "hello world"},
		{in: " $12.50 ", expected: "$12.50"},
		{in: "a\u200bb", expected: "ab"},
		{in: "", expected: ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, Clean(test.in))
	}
}

func TestSubstringBetween(t *testing.T) {
	value, ok := SubstringBetween("ASP.NET_SessionId=abc123; path=/; HttpOnly", "ASP.NET_SessionId=", ";")
	require.True(t, ok)
	require.Equal(t, "abc123", value)

	value, ok = SubstringBetween("My profile and settings - Jane Doe, #123456", "#", "")
	require.True(t, ok)
	require.Equal(t, "123456", value)

	_, ok = SubstringBetween("no marker here", ".ASPXAUTH=", ";")
	require.False(t, ok)

	_, ok = SubstringBetween(".ASPXAUTH=abc", ".ASPXAUTH=", ";")
	require.False(t, ok)
}

func TestGetAnchors(t *testing.T) {
	doc := mustDocument(t, `<div>
		<a href="Handouts/Syllabus.pdf"> Syllabus </a>
		<a href="https://example.com/abs">Absolute</a>
	</div>`)
	base, err := url.Parse("https://my.gcc.edu/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/")
	require.NoError(t, err)

	anchors := GetAnchors(context.Background(), base, doc.Find("a"))
	require.Equal(t, []Anchor{
		{Name: "Syllabus", Href: "https://my.gcc.edu/ICS/Academics/COMP/COMP_141/2018_10-COMP_141-A/Handouts/Syllabus.pdf"},
		{Name: "Absolute", Href: "https://example.com/abs"},
	}, anchors)
}
