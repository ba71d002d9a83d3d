package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"ai-verifier/internal/provider"
)

// Provider is the fixed arbiter for both judge operations.
const Provider = provider.Mistral

var (
	// ErrIncompleteAnswers is returned when an AnswerSet lacks one of the provider keys.
	ErrIncompleteAnswers = errors.New("answers must include Groq, Gemini and Mistral")
	// ErrUnexpectedJudgeOutput is returned when the judge reply is neither a match nor a mismatch.
	ErrUnexpectedJudgeOutput = errors.New("unexpected judge output")
)

// AnswerSet maps provider names to the answer each one gave.
type AnswerSet map[string]string

// Missing lists the provider keys absent from the set.
func (a AnswerSet) Missing() []string {
	var missing []string
	for _, name := range provider.Names {
		if _, ok := a[string(name)]; !ok {
			missing = append(missing, string(name))
		}
	}
	return missing
}

// MatchVerdict is the normalized outcome of a semantic comparison.
type MatchVerdict string

const (
	Match    MatchVerdict = "✅ Match"
	Mismatch MatchVerdict = "❌ Mismatch"
)

// IsMatch reports whether the verdict is a match.
func (v MatchVerdict) IsMatch() bool { return v == Match }

// Judge asks a single provider to arbitrate between answers.
type Judge struct {
	provider provider.Client
}

// New creates a judge backed by p.
func New(p provider.Client) *Judge {
	return &Judge{provider: p}
}

// Provider returns the name of the provider acting as judge.
func (j *Judge) Provider() provider.Name {
	return j.provider.Name()
}

// VerifyMajority asks the judge to pick the most trustworthy of the three answers.
// Answers are embedded verbatim. The reply is returned as-is apart from trimming.
func (j *Judge) VerifyMajority(ctx context.Context, question string, answers AnswerSet) (string, error) {
	if missing := answers.Missing(); len(missing) > 0 {
		return "", fmt.Errorf("%w: missing %s", ErrIncompleteAnswers, strings.Join(missing, ", "))
	}
	prompt, err := render(majorityTmpl, majorityData{
		Question: question,
		Groq:     answers[string(provider.Groq)],
		Gemini:   answers[string(provider.Gemini)],
		Mistral:  answers[string(provider.Mistral)],
	})
	if err != nil {
		return "", err
	}

	final, err := j.provider.Ask(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("judge query failed: %w", err)
	}
	return strings.TrimSpace(final), nil
}

// SemanticMatch asks the judge whether answer means the same as final.
func (j *Judge) SemanticMatch(ctx context.Context, answer, final string) (MatchVerdict, error) {
	prompt, err := render(semanticTmpl, semanticData{Answer: answer, Final: final})
	if err != nil {
		return "", err
	}

	out, err := j.provider.Ask(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("judge query failed: %w", err)
	}
	return ParseVerdict(out)
}

// ParseVerdict accepts only a bare verdict marker: "match" or "mismatch", case-insensitive,
// optionally led by its own emoji and followed by punctuation. Anything else, including
// sentences that merely contain either word, is rejected.
func ParseVerdict(out string) (MatchVerdict, error) {
	word := strings.Trim(strings.TrimSpace(out), "*`\"' ")
	emoji := ""
	for _, e := range []string{"✅", "❌"} {
		if rest, ok := strings.CutPrefix(word, e); ok {
			emoji, word = e, strings.TrimSpace(rest)
			break
		}
	}
	word = strings.ToLower(strings.TrimRight(word, ".!"))

	switch {
	case word == "match" && emoji != "❌":
		return Match, nil
	case word == "mismatch" && emoji != "✅":
		return Mismatch, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnexpectedJudgeOutput, strings.TrimSpace(out))
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
