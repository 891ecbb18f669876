package prompt

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/medrag/internal/domain"
)

// Prompt is the composed request for the generation model: fixed system
// instructions plus a user message carrying context and the query.
type Prompt struct {
	System string
	User   string
}

// Composer builds prompts within a context character budget.
type Composer struct {
	maxContextChars int
}

// NewComposer creates a composer. maxContextChars bounds the retrieved
// context block; whole passages are dropped from the tail when it would
// overflow, never cut mid-chunk.
func NewComposer(maxContextChars int) *Composer {
	return &Composer{maxContextChars: maxContextChars}
}

// Compose assembles the prompt for an in-scope query. Passages must already
// be in descending score order; an empty slice produces the no-context
// notice instead of a context block.
func (c *Composer) Compose(query string, passages []domain.Passage) Prompt {
	return Prompt{
		System: systemInstructions + "\n\n" + Disclaimer,
		User: fmt.Sprintf(
			"Context Information:\n%s\n\nUser Question: %s\n\n"+
				"Please provide a helpful response based on the context above. "+
				"Remember to include the disclaimer and only provide general health information.",
			c.contextBlock(passages), query,
		),
	}
}

func (c *Composer) contextBlock(passages []domain.Passage) string {
	if len(passages) == 0 {
		return noContextNotice
	}

	var b strings.Builder
	for i, p := range passages {
		block := fmt.Sprintf("Source %d (%s, relevance: %.2f):\n%s\n",
			i+1, p.Chunk.Source, p.Score, p.Chunk.Text)
		// Drop the remaining, lower-scoring passages once the budget is hit.
		// The top passage is always kept.
		if i > 0 && b.Len()+len(block) > c.maxContextChars {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block)
	}
	return b.String()
}
