package ai

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
)

type grammarRule struct {
	pattern     *regexp.Regexp
	replacement string
	tip         string
}

var grammarRules = []grammarRule{
	{regexp.MustCompile(`(?i)\bi are\b`), "I am", "Use 'am' with 'I'"},
	{regexp.MustCompile(`(?i)\bhe are\b`), "he is", "Use 'is' with 'he'"},
	{regexp.MustCompile(`(?i)\bshe are\b`), "she is", "Use 'is' with 'she'"},
	{regexp.MustCompile(`(?i)\bthey is\b`), "they are", "Use 'are' with 'they'"},
	{regexp.MustCompile(`(?i)\bwe is\b`), "we are", "Use 'are' with 'we'"},
	{regexp.MustCompile(`(?i)\bdid not went\b`), "did not go", "After 'did', use the base form of the verb"},
	{regexp.MustCompile(`(?i)\bmore better\b`), "better", "Don't use 'more' with comparative adjectives"},
}

// GrammarResult is the outcome of the pattern based grammar check
type GrammarResult struct {
	Original  string
	Corrected string
	Tips      []string
}

// Changed reports whether any rule rewrote the sentence.
func (g GrammarResult) Changed() bool {
	return !strings.EqualFold(strings.TrimSpace(g.Original), strings.TrimSpace(g.Corrected))
}

// String renders the result for a chat message
func (g GrammarResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Original:\n%s\n\n", g.Original)
	if !g.Changed() {
		b.WriteString("✅ No obvious errors found!")
		return b.String()
	}
	fmt.Fprintf(&b, "✅ Corrected:\n%s", g.Corrected)
	if len(g.Tips) > 0 {
		b.WriteString("\n\n💡 Tips:")
		for _, tip := range g.Tips {
			b.WriteString("\n• " + tip)
		}
	}
	return b.String()
}

// CheckGrammar catches a handful of common learner mistakes.
// It is not a grammar checker.
func CheckGrammar(sentence string) GrammarResult {
	res := GrammarResult{Original: sentence, Corrected: sentence}
	for _, rule := range grammarRules {
		if rule.pattern.MatchString(res.Corrected) {
			res.Corrected = rule.pattern.ReplaceAllString(res.Corrected, rule.replacement)
			res.Tips = append(res.Tips, rule.tip)
		}
	}
	return res
}

// RuleTutor answers without any network access
type RuleTutor struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRuleTutor creates a tutor with its own random source
func NewRuleTutor(src rand.Source) *RuleTutor {
	return &RuleTutor{rnd: rand.New(src)}
}

var encouragements = []string{
	"👍 Good sentence! Try adding more details.",
	"✅ Nice try! Try using an adjective to make it more interesting.",
	"🌟 Good effort! Can you continue the story?",
	"📝 Keep writing, practice is the key to fluency! 💪",
}

// Reply implements Tutor
func (t *RuleTutor) Reply(_ context.Context, mode, text string) (string, error) {
	if mode == "grammar" {
		return CheckGrammar(text).String(), nil
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(lower, "how are you"):
		return "I'm great, thanks for asking! 😊 Now your turn: how are you doing?", nil
	case containsAny(lower, "hello", "hi ", "hey", "good morning", "good evening") || lower == "hi":
		return "👋 Hello! How are you today? Try to answer in a full sentence!", nil
	case containsAny(lower, "my name", "i am", "i'm"):
		return "👍 Great introduction! Try expanding it: \"My name is ... I am from ... I am learning ...\"", nil
	case hasAnyPrefix(lower, "what", "where", "when"):
		return "🤔 Good question! Remember that questions use auxiliary verbs: What *is*..., Where *do*..., When *did*...", nil
	}

	if g := CheckGrammar(text); g.Changed() {
		return "📝 Tutor feedback:\n" + g.String(), nil
	}

	t.mu.Lock()
	reply := encouragements[t.rnd.Intn(len(encouragements))]
	t.mu.Unlock()
	return reply, nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// FallbackTutor asks primary first and answers with fallback when it fails
type FallbackTutor struct {
	Primary  Tutor
	Fallback Tutor
	OnError  func(error)
}

// Reply implements Tutor
func (f *FallbackTutor) Reply(ctx context.Context, mode, text string) (string, error) {
	if f.Primary != nil {
		reply, err := f.Primary.Reply(ctx, mode, text)
		if err == nil {
			return reply, nil
		}
		if f.OnError != nil {
			f.OnError(err)
		}
	}
	return f.Fallback.Reply(ctx, mode, text)
}
