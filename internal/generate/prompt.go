package generate

import (
	"fmt"
	"strings"
)

// Method selects how a summary prompt is framed.
type Method string

const (
	ZeroShot       Method = "zero_shot"
	FewShot        Method = "few_shot"
	ChainOfThought Method = "chain_of_thought"
)

// Kind selects abstractive or extractive summaries.
type Kind string

const (
	Abstractive Kind = "abstractive"
	Extractive  Kind = "extractive"
	KindNone    Kind = "none"
)

// Sampling settings per stage.
const (
	SummaryTemperature    = 0.2
	RefineTemperature     = 0.3
	EvaluationTemperature = 0.1
	EvaluationMaxLength   = 24000
)

// Combo is one section-wise method/kind pair.
type Combo struct {
	Method Method
	Kind   Kind
}

// Combos lists the section-wise pairs in batch order.
var Combos = []Combo{
	{FewShot, Extractive},
	{ZeroShot, Extractive},
	{FewShot, Abstractive},
	{ZeroShot, Abstractive},
}

const separator = "------------"

const (
	abstractiveTask = "Write a concise summary of the following:"
	extractiveTask  = "Write a concise extractive summary of the following by selecting the key sentences " +
		"that carry the main point of the text. Copy those sentences verbatim, without paraphrasing or rewording:"
)

const extractiveExample = `"Text"
The city council approved the new bike lane plan on Monday after a two-hour debate. The plan adds twelve miles of protected lanes over three years. Several shop owners on Main Street objected to losing parking spaces. The council agreed to review parking in the affected blocks next spring. Construction on the first segment starts in July.
"Summary"
The city council approved the new bike lane plan on Monday after a two-hour debate. The plan adds twelve miles of protected lanes over three years. Construction on the first segment starts in July.`

const abstractiveExample = `"Text"
Researchers at a coastal lab tracked water temperature at forty reef sites for a decade. They found the warmest months now arrive three weeks earlier than in the first year of the study. Reefs that warmed fastest lost the most coral cover, while sites with strong currents stayed cooler and kept most of their coral. The team says currents could help decide where restoration money goes.
"Summary"
A ten-year study of forty reefs found peak warming arriving three weeks earlier. Fast-warming reefs lost the most coral, while current-cooled sites held up, which could guide restoration funding.`

// SummaryPrompt builds a section-wise summary prompt.
func SummaryPrompt(method Method, kind Kind, text string) (string, error) {
	var task, example string
	switch kind {
	case Abstractive:
		task, example = abstractiveTask, abstractiveExample
	case Extractive:
		task, example = extractiveTask, extractiveExample
	default:
		return "", fmt.Errorf("unsupported summary kind %q", kind)
	}

	var sb strings.Builder
	sb.WriteString("Your job is to produce summaries\n\n")
	switch method {
	case ZeroShot:
		sb.WriteString(task)
	case FewShot:
		sb.WriteString("Here is a training example of the summarization task:\n")
		sb.WriteString(separator + "\n" + example + "\n" + separator + "\n\n")
		sb.WriteString("Now, " + lowerFirst(task))
	default:
		return "", fmt.Errorf("unsupported summary method %q", method)
	}
	sb.WriteString("\n\n" + separator + "\n" + text + "\n" + separator + "\n")
	return sb.String(), nil
}

// BasePrompt starts a chain-of-thought run.
func BasePrompt(text string) string {
	p, _ := SummaryPrompt(ZeroShot, Abstractive, text)
	return p
}

// RefinePrompt asks the model to fold more context into an existing summary.
func RefinePrompt(current, text string) string {
	return "Your job is to produce a final summary\n\n" +
		"We have provided an existing summary up to a certain point: " + current + "\n" +
		"We have the opportunity to refine the existing summary (only if needed) with some more context below.\n" +
		separator + "\n" + text + "\n" + separator + "\n" +
		"Given the new context, refine the original summary.\n" +
		"If the context isn't useful, return the original summary."
}

// EvaluationPrompt asks for a similarity score between two summaries.
func EvaluationPrompt(groundTruth, predicted string) string {
	return "Your job is to score a predicted summary against a reference summary for quality and similarity in meaning.\n\n" +
		"Reference summary of a research paper: " + groundTruth + "\n" +
		"Predicted summary:\n" +
		separator + "\n" + predicted + "\n" + separator + "\n" +
		"Score the predicted summary on a scale of 0.00 to 1.00. Identical summaries score 1.00 and " +
		"completely unrelated summaries score 0.00. Answer with the score."
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
