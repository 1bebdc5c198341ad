package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageDefaults(t *testing.T) {
	page := NewPage("12345-6789")

	assert.Contains(t, page, "(Graduate Record)")
	assert.Contains(t, page, "(12345-6789)")
	assert.Contains(t, page, "(Total Units Earned: 0.000)")
	assert.NotContains(t, page, "Undergrad")
}

func TestNewPageWithOptions(t *testing.T) {
	page := NewPage("12345-6789",
		WithMilestones(MarkerQualifier),
		WithTerm("Fall 2020", Course("PHY", "621", 3, "A")),
		WithCredits(24, 6),
	)

	assert.Contains(t, page, MarkerQualifier)
	assert.Contains(t, page, "(Fall 2020-Physics)\n(PHY621)(Course PHY 621)(LEC)(3.000)(A)")
	assert.Contains(t, page, "(Transfer Credit: 6.000)")

	// Terms keep their order so the last header is the current term.
	page = NewPage("12345-6789",
		WithTerm("Spring 2020"),
		WithTerm("Fall 2020"),
	)
	assert.Less(t, strings.Index(page, "Spring 2020"), strings.Index(page, "Fall 2020"))
}

func TestNewPageVariants(t *testing.T) {
	assert.Contains(t, NewPage("12345-6789", AsUndergraduate()), "Undergrad")
	assert.NotContains(t, NewPage("12345-6789", WithoutSummary()), "Credit Summary")
	assert.Contains(t, NewPage("12345-6789", WithProgram("Chemistry"), WithTerm("Fall 2020")), "(Fall 2020-Chemistry)")
	assert.Contains(t, NewPage("12345-6789", WithRaw("(PHY999)(broken")), "(PHY999)(broken")
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "a\fb", JoinPages("a", "b"))
}
