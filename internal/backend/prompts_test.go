// internal/backend/prompts_test.go
package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkforge/storyassist/internal/models"
)

func TestContextSection(t *testing.T) {
	t.Run("blank context renders nothing", func(t *testing.T) {
		assert.Empty(t, contextSection(nil))
		assert.Empty(t, contextSection(&models.StoryContext{}))
	})

	t.Run("filled fields render uppercased labels", func(t *testing.T) {
		section := contextSection(&models.StoryContext{
			Genre:             "mystery",
			TargetAudienceAge: "adults",
		})

		assert.Contains(t, section, "STORY CONTEXT:")
		assert.Contains(t, section, "GENRE: mystery")
		assert.Contains(t, section, "TARGET AUDIENCE AGE: adults")
		assert.NotContains(t, section, "SYNOPSIS")
	})
}

func TestDescribePromptFallsBackToCurrentText(t *testing.T) {
	prompt := describePrompt(generateRequest{
		Instruction: "Describe the following text/concept in more detail",
		CurrentText: "The lighthouse.",
	})
	assert.Contains(t, prompt, "The lighthouse.")
}

func TestContextElementPromptUnknownType(t *testing.T) {
	prompt := contextElementPrompt("weather", generateRequest{CurrentText: "text"})
	assert.Contains(t, prompt, "Develop the weather element for this story:")
}

func TestTrimToTokenBudget(t *testing.T) {
	t.Run("zero budget leaves text alone", func(t *testing.T) {
		assert.Equal(t, "hello", trimToTokenBudget("hello", "gpt-4o", 0))
	})

	t.Run("short text passes through", func(t *testing.T) {
		assert.Equal(t, "hello world", trimToTokenBudget("hello world", "gpt-4o", 6000))
	})
}
