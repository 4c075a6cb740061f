package llm

import (
	"fmt"
	"strings"

	"github.com/avolkov/byline/internal/model"
)

// OutlineSystem is the system prompt for outline generation
const OutlineSystem = `You are a journalist's research assistant producing article outlines. You work only from the numbered sources you are given and you never invent facts or sources.`

// DraftSystem is the system prompt for draft generation
const DraftSystem = `You are a professional journalist writing articles for publication. You output only the article markdown itself, starting with the headline heading. You never add preamble, meta-commentary or explanations.`

// FormatSources renders the ranked sources as numbered blocks for a prompt.
// Excerpts are already bounded at evidence construction, so prompt size grows
// linearly with the number of sources.
func FormatSources(sources model.RankedSourceList) string {
	if len(sources) == 0 {
		return "No sources provided."
	}

	var b strings.Builder
	for _, s := range sources {
		date := "undated"
		if s.PublishedAt != nil {
			date = s.PublishedAt.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "Source [%d] (%s, relevance %.2f)\n", s.Citation, s.Origin, s.RelevanceScore)
		fmt.Fprintf(&b, "Title: %s\n", s.Title)
		if s.Publisher != "" {
			fmt.Fprintf(&b, "Publisher: %s\n", s.Publisher)
		}
		fmt.Fprintf(&b, "Date: %s\nLocator: %s\n", date, s.Locator)
		fmt.Fprintf(&b, "Excerpt: %s\n\n", s.Excerpt)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildOutlinePrompt constructs the single synthesis prompt for an outline
func BuildOutlinePrompt(task model.OutlineTask, sources model.RankedSourceList) string {
	keyFacts := "None provided"
	if len(task.KeyFacts) > 0 {
		var lines []string
		for _, fact := range task.KeyFacts {
			lines = append(lines, "- "+fact)
		}
		keyFacts = strings.Join(lines, "\n")
	}

	return fmt.Sprintf(`Create a detailed markdown outline for this article.

ARTICLE:
- Headline: %s
- Thesis: %s
- Key facts to incorporate:
%s

SOURCES (cite by number, e.g. [2]):
%s

STRUCTURE:
## Headline, ## Introduction (hook, context, thesis, why now), 3-5 body
sections with key points and the claims each section should make, ## Conclusion
(synthesis, implications), ## Sources Used.

RULES:
- Use only the numbered sources above. Never invent facts or sources.
- Attach a citation marker [N] to every claim, statistic and quote.
- Make each section actionable: state what to cover and which sources support it.
- If the sources cannot support the thesis, say so plainly.`,
		task.Headline, task.Thesis, keyFacts, FormatSources(sources))
}

// BuildDraftPrompt constructs the single synthesis prompt for a full draft
func BuildDraftPrompt(task model.DraftTask, sources model.RankedSourceList) string {
	return fmt.Sprintf(`Write the complete article now. Output only the article markdown, starting with "# %s".

ARTICLE:
- Headline: %s
- Thesis: %s
- Target length: %d words

OUTLINE TO FOLLOW:
%s

SOURCES (cite by number, e.g. [2]):
%s

RULES:
- Follow the outline structure; use its section headings as ## headings.
- Expand outline guidance into real prose; drop placeholder notes and word-count hints.
- Use only the numbered sources above. Never invent facts, statistics or quotes.
- Every factual claim, statistic and quote needs an inline [N] citation placed
  before the period, e.g. "Detection accuracy reached 95%% [1]."
- Cite at least three distinct sources; reuse the same number for repeat citations.
- Keep sentences near 15-20 words and paragraphs to 2-4 sentences.
- No clickbait, no hype, no uncited claims.`,
		task.Headline, task.Headline, task.Thesis, task.TargetWordCount, task.Outline, FormatSources(sources))
}

// CitationFixNote builds the corrective instruction appended for the single
// allowed re-synthesis after invalid citations are found
func CitationFixNote(invalid []int, sourceCount int) string {
	nums := make([]string, 0, len(invalid))
	for _, n := range invalid {
		nums = append(nums, fmt.Sprintf("[%d]", n))
	}
	return fmt.Sprintf(`

CORRECTION REQUIRED:
Your previous answer cited %s, which do not exist. Only sources [1] through [%d] were provided. Rewrite the text citing only those sources, and remove any claim you cannot support from them.`,
		strings.Join(nums, ", "), sourceCount)
}
