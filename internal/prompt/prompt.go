// Package prompt builds the generation prompt for the answering pipeline.
//
// A Prompt is a per-request value: Compose returns a fresh instance bound
// to the caller's history text, and Render fills the retrieval context and
// question at generation time. Nothing here is shared or mutated across
// requests, so concurrent requests for the same language can never corrupt
// each other's prompts.
package prompt

import "strings"

// Slot markers filled by Render.
const (
	contextSlot  = "{context}"
	questionSlot = "{question}"
)

// contextLabel anchors where the optional chat-history block is inserted.
const contextLabel = "Context:"

// instruction is the fixed base template. The "respond in the same
// language as the question" clause is a behavioral contract the model is
// asked to honor; the pipeline does not enforce it.
const instruction = `You are a knowledgeable assistant helping with menstrual health education.

Use the following context and chat history to answer the question. Be factual, clear, concise, and respond in the same language as the question.

Context:
{context}

Question: {question}

Helpful Answer:`

// Prompt is a composed template with open context and question slots.
type Prompt struct {
	template string
}

// Compose returns a fresh Prompt bound to historyText. Non-empty history
// is inserted as a "Chat History:" block immediately before the Context
// label; empty history leaves the base template verbatim.
func Compose(historyText string) *Prompt {
	tmpl := instruction
	if historyText != "" {
		block := "Chat History:\n" + historyText + "\n\n" + contextLabel
		tmpl = strings.Replace(tmpl, contextLabel, block, 1)
	}
	return &Prompt{template: tmpl}
}

// Render fills the context and question slots and returns the final
// prompt text handed to the model.
func (p *Prompt) Render(contextText, question string) string {
	out := strings.Replace(p.template, contextSlot, contextText, 1)
	return strings.Replace(out, questionSlot, question, 1)
}

// Template exposes the composed template text. Used by tests and logging.
func (p *Prompt) Template() string {
	return p.template
}
