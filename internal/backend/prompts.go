// internal/backend/prompts.go
package backend

import (
	"fmt"
	"strings"

	"github.com/inkforge/storyassist/internal/models"
)

const writeSystemPrompt = `You are a professional creative writing assistant. Your task is to generate high-quality story content that matches the user's genre and audience. Use vocabulary and themes appropriate for the target audience. Be descriptive and engaging while maintaining narrative coherence with the existing content.`

const rewriteSystemPrompt = `You are a professional editor and writer. Your task is to rewrite the provided text according to the user's instructions. Maintain the essence of the original while improving it as requested. Return only the rewritten text, with no commentary.`

const describeSystemPrompt = `You are a descriptive writing expert. Your task is to create rich, detailed descriptions that engage the reader's senses and imagination. Focus on showing rather than telling, and use vivid, specific language.`

const brainstormSystemPrompt = `You are a creative writing consultant specialized in brainstorming ideas for authors. Generate innovative, engaging, and coherent suggestions that could enhance a story. Focus on originality while maintaining narrative plausibility.`

const storyBibleSystemPrompt = `You are a story development consultant. Your task is to help authors organize their thoughts and develop comprehensive story elements for their creative projects.`

const branchesSystemPrompt = `You are an interactive story expert, specializing in creating meaningful and diverse story branches. Each branch should take the story in a noticeably different direction. Respond with JSON only, in the shape {"branches": [{"id": "", "title": "", "summary": "", "content": ""}]}, and nothing else.`

// storyBiblePrompts maps a context element type to its development prompt
var storyBiblePrompts = map[string]string{
	"braindump":           "Organize and expand on these initial thoughts for a story:",
	"genre":               "Describe the conventions, tropes, and expectations of this genre:",
	"style":               "Analyze and suggest improvements for this writing style:",
	"synopsis":            "Create a comprehensive synopsis based on this information:",
	"characters":          "Develop character profiles based on these descriptions:",
	"worldbuilding":       "Create detailed world-building elements based on this information:",
	"outline":             "Develop a structured outline based on these story elements:",
	"target_audience_age": "Suggest an appropriate target audience and age range for this story:",
}

// contextSection renders the story context block appended to every prompt
// that carries one
func contextSection(ctx *models.StoryContext) string {
	if ctx.IsBlank() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nSTORY CONTEXT:\n")
	for _, field := range models.ContextFields {
		value, _ := ctx.Field(field)
		if strings.TrimSpace(value) == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", strings.ToUpper(strings.ReplaceAll(field, "_", " ")), value)
	}
	return sb.String()
}

func writePrompt(req generateRequest) string {
	return fmt.Sprintf(`Based on the following context, continue the story or create new content as requested.

EXISTING CONTENT:
%s

USER REQUEST:
%s%s

Please generate high-quality, coherent story content that flows naturally from the existing text.`,
		req.CurrentText, req.Instruction, contextSection(req.StoryContext))
}

func rewritePrompt(req generateRequest) string {
	return fmt.Sprintf(`ORIGINAL TEXT:
%s

REWRITE INSTRUCTIONS:
%s%s

Please rewrite the text following the instructions while maintaining the core message.`,
		req.Selection, req.Instruction, contextSection(req.StoryContext))
}

func describePrompt(req generateRequest) string {
	subject := req.Selection
	if subject == "" {
		subject = req.CurrentText
	}
	return fmt.Sprintf(`%s

TEXT TO DESCRIBE:
%s%s

Please provide a rich, engaging description that would enhance a story.`,
		req.Instruction, subject, contextSection(req.StoryContext))
}

func brainstormPrompt(req generateRequest) string {
	return fmt.Sprintf(`Brainstorm creative ideas related to the following:

%s

CURRENT TEXT:
%s%s

Please provide a variety of fresh ideas, plot possibilities, character concepts, settings, or narrative twists that could enhance the story.`,
		req.Instruction, req.CurrentText, contextSection(req.StoryContext))
}

func contextElementPrompt(elementType string, req generateRequest) string {
	lead, ok := storyBiblePrompts[elementType]
	if !ok {
		lead = fmt.Sprintf("Develop the %s element for this story:", elementType)
	}
	return fmt.Sprintf(`%s

%s

CURRENT STORY TEXT:
%s%s

Please provide structured, detailed information that will help develop this story element.`,
		lead, req.Instruction, req.CurrentText, contextSection(req.StoryContext))
}

func branchesPrompt(req generateRequest) string {
	return fmt.Sprintf(`%s

CURRENT SCENARIO:
%s%s

Generate 3-4 distinct story branches. Each branch needs a short title, a one-or-two sentence summary, and the full content of the alternative continuation.`,
		req.Instruction, req.CurrentText, contextSection(req.StoryContext))
}
