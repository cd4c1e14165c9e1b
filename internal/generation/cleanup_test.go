package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_StripsMarkdownArtifacts(t *testing.T) {
	in := "## The First Door\n\n" +
		"- Mira carries a restless mind that keeps its own hours and refuses " +
		"every schedule anyone has ever proposed for it, including her own, " +
		"which she revises nightly and abandons by morning without guilt.\n\n" +
		"*Her* attention is **not** a `spotlight`."

	out := Clean(in)
	assert.NotContains(t, out, "#")
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "`")
	assert.NotContains(t, out, "- Mira")
	assert.Contains(t, out, "Mira carries a restless mind")
}

func TestClean_RemovesLeakedScaffolding(t *testing.T) {
	in := proseParagraph + "\n\n" +
		"=== MODE RULES ===\n" +
		"NARRATIVE TRIGGER (the spine): something internal\n" +
		"SUBJECTS: Mira\n\n" +
		proseParagraph

	out := Clean(in)
	assert.NotContains(t, out, "===")
	assert.NotContains(t, out, "NARRATIVE TRIGGER")
	assert.NotContains(t, out, "SUBJECTS:")
	assert.Contains(t, out, "Mira carries a restless mind")
}

func TestClean_NormalizesDashes(t *testing.T) {
	out := Clean("The chart is blunt — almost rude – about this.")
	assert.NotContains(t, out, "—")
	assert.NotContains(t, out, "–")
	assert.Contains(t, out, "blunt, almost rude, about this")
}

func TestClean_FixesPronounsAfterPrepositions(t *testing.T) {
	out := Clean("A gift for they both, left between he and the world.")
	assert.Contains(t, out, "for them both")
	assert.Contains(t, out, "between him and")
}

func TestClean_RemovesHouseDefinitions(t *testing.T) {
	in := "The seventh house rules partnership and open enemies. " +
		"What matters here is that Saturn sits in it and charges rent."
	out := Clean(in)
	assert.NotContains(t, out, "seventh house rules")
	assert.Contains(t, out, "Saturn sits in it")
}

func TestClean_MergesShortParagraphs(t *testing.T) {
	in := proseParagraph + "\n\nA short afterthought.\n\n" + proseParagraph
	out := Clean(in)

	paragraphs := strings.Split(out, "\n\n")
	require.Len(t, paragraphs, 2)
	assert.Contains(t, paragraphs[0], "A short afterthought.")
}

func TestClean_MergesShortParagraphAfterTitleForward(t *testing.T) {
	in := "The First Door\n\nShe opens the door slowly.\n\n" + proseParagraph
	out := Clean(in)

	paragraphs := strings.Split(out, "\n\n")
	require.Len(t, paragraphs, 2)
	assert.Equal(t, "The First Door", paragraphs[0])
	assert.True(t, strings.HasPrefix(paragraphs[1], "She opens the door slowly."))
	assert.Contains(t, paragraphs[1], "Mira carries a restless mind")
}

func TestClean_CapsTitleLines(t *testing.T) {
	titles := []string{
		"The First Door", "The Second Door", "The Third Door", "The Fourth Door",
		"The Fifth Door", "The Sixth Door", "The Seventh Door", "The Eighth Door",
	}
	var b strings.Builder
	for _, title := range titles {
		b.WriteString(title + "\n\n" + proseParagraph + "\n\n")
	}

	out := Clean(b.String())
	assert.Contains(t, out, "The Sixth Door")
	assert.NotContains(t, out, "The Seventh Door")
	assert.NotContains(t, out, "The Eighth Door")
}

func TestClean_ProtectsScoreBlockAndFooter(t *testing.T) {
	in := proseParagraph + "\n\n" +
		"SCORES:\nChemistry: 82\nStability: 74\n\n" +
		FooterMarker + " Sun in Leo."

	out := Clean(in)
	assert.Contains(t, out, "SCORES:\nChemistry: 82")
	assert.Contains(t, out, FooterMarker+" Sun in Leo.")
}

func TestClean_Idempotent(t *testing.T) {
	in := "## Title\n\n" + proseParagraph + " — truly.\n\nA gift for they both.\n\n" + proseParagraph
	once := Clean(in)
	assert.Equal(t, once, Clean(once))
}

func TestExtractFooter_SplitsTrailingSignature(t *testing.T) {
	footer := FooterMarker + " Sun in Leo, Moon in Pisces."
	body, got := ExtractFooter(proseParagraph + "\n\n" + footer)
	assert.Equal(t, proseParagraph, body)
	assert.Equal(t, footer, got)
}

func TestExtractFooter_NoMarkerMeansNoFooter(t *testing.T) {
	body, footer := ExtractFooter(proseParagraph)
	assert.Equal(t, proseParagraph, body)
	assert.Empty(t, footer)
}

func TestExtractFooter_MidSentenceMentionIsBody(t *testing.T) {
	in := "She reads the " + FooterMarker + " line aloud and laughs."
	body, footer := ExtractFooter(in)
	assert.Equal(t, in, body)
	assert.Empty(t, footer)
}

func TestExtractFooter_Idempotent(t *testing.T) {
	footer := FooterMarker + " Sun in Leo."
	body, got := ExtractFooter(proseParagraph + "\n\n" + footer)

	body2, got2 := ExtractFooter(body + "\n\n" + got)
	assert.Equal(t, body, body2)
	assert.Equal(t, got, got2)
}
