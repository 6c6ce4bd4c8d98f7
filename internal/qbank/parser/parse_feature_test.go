package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
)

// TestParserFeatures runs the parser scenarios under testdata/features via godog.
func TestParserFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "parser",
		ScenarioInitializer: initializeParserScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("testdata", "features")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

type parserState struct {
	text   string
	key    *string
	opts   Options
	result Result
}

func initializeParserScenario(ctx *godog.ScenarioContext) {
	s := &parserState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*s = parserState{}
		return ctx, nil
	})

	ctx.Step(`^the source text:$`, s.sourceText)
	ctx.Step(`^the answer key:$`, s.answerKey)
	ctx.Step(`^the default subject is "([^"]+)"$`, s.defaultSubject)
	ctx.Step(`^I parse it$`, s.parse)
	ctx.Step(`^the strategy is "([^"]+)"$`, s.strategyIs)
	ctx.Step(`^(\d+) questions? (?:is|are) produced$`, s.questionsProduced)
	ctx.Step(`^question (\d+) has stem "([^"]*)"$`, s.questionStem)
	ctx.Step(`^question (\d+) stem starts with "([^"]*)"$`, s.questionStemPrefix)
	ctx.Step(`^question (\d+) has answer "([^"]+)"$`, s.questionAnswer)
	ctx.Step(`^question (\d+) is a (single|multiple) answer question$`, s.questionType)
	ctx.Step(`^question (\d+) has explanation "([^"]*)"$`, s.questionExplanation)
	ctx.Step(`^question (\d+) has subject "([^"]+)"$`, s.questionSubject)
	ctx.Step(`^there is a "([^"]+)" failure for block (\d+)$`, s.failureForBlock)
	ctx.Step(`^there is a "([^"]+)" warning$`, s.warningPresent)
	ctx.Step(`^the answer key matched (\d+) of (\d+)$`, s.keyMatched)
}

func (s *parserState) sourceText(doc *godog.DocString) error {
	s.text = doc.Content
	return nil
}

func (s *parserState) answerKey(doc *godog.DocString) error {
	key := doc.Content
	s.key = &key
	return nil
}

func (s *parserState) defaultSubject(subject string) error {
	s.opts.DefaultSubject = subject
	return nil
}

func (s *parserState) parse() error {
	var err error
	if s.key != nil {
		s.result, err = ParseWithKey(s.text, *s.key, s.opts)
	} else {
		s.result, err = Parse(s.text, s.opts)
	}
	return err
}

func (s *parserState) strategyIs(want string) error {
	if got := string(s.result.Diagnostics.Strategy); got != want {
		return fmt.Errorf("strategy %q, want %q", got, want)
	}
	return nil
}

func (s *parserState) questionsProduced(n int) error {
	if got := len(s.result.Questions); got != n {
		return fmt.Errorf("%d questions, want %d (failures %+v)", got, n, s.result.Diagnostics.Failures)
	}
	return nil
}

func (s *parserState) question(n int) (Question, error) {
	if n < 1 || n > len(s.result.Questions) {
		return Question{}, fmt.Errorf("no question %d among %d", n, len(s.result.Questions))
	}
	return s.result.Questions[n-1], nil
}

func (s *parserState) questionStem(n int, want string) error {
	q, err := s.question(n)
	if err != nil {
		return err
	}
	if q.Stem != want {
		return fmt.Errorf("stem %q, want %q", q.Stem, want)
	}
	return nil
}

func (s *parserState) questionStemPrefix(n int, prefix string) error {
	q, err := s.question(n)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(q.Stem, prefix) {
		return fmt.Errorf("stem %q does not start with %q", q.Stem, prefix)
	}
	return nil
}

func (s *parserState) questionAnswer(n int, want string) error {
	q, err := s.question(n)
	if err != nil {
		return err
	}
	if got := q.Answer(); got != want {
		return fmt.Errorf("answer %q, want %q", got, want)
	}
	return nil
}

func (s *parserState) questionType(n int, want string) error {
	q, err := s.question(n)
	if err != nil {
		return err
	}
	if string(q.Type) != want {
		return fmt.Errorf("type %q, want %q", q.Type, want)
	}
	return nil
}

func (s *parserState) questionExplanation(n int, want string) error {
	q, err := s.question(n)
	if err != nil {
		return err
	}
	if q.Explanation != want {
		return fmt.Errorf("explanation %q, want %q", q.Explanation, want)
	}
	return nil
}

func (s *parserState) questionSubject(n int, want string) error {
	q, err := s.question(n)
	if err != nil {
		return err
	}
	if q.Subject != want {
		return fmt.Errorf("subject %q, want %q", q.Subject, want)
	}
	return nil
}

func (s *parserState) failureForBlock(kind string, block int) error {
	for _, f := range s.result.Diagnostics.Failures {
		if string(f.Kind) == kind && f.Block == block {
			return nil
		}
	}
	return fmt.Errorf("no %s failure for block %d in %+v", kind, block, s.result.Diagnostics.Failures)
}

func (s *parserState) warningPresent(kind string) error {
	for _, w := range s.result.Diagnostics.Warnings {
		if string(w.Kind) == kind {
			return nil
		}
	}
	return fmt.Errorf("no %s warning in %+v", kind, s.result.Diagnostics.Warnings)
}

func (s *parserState) keyMatched(matched, total int) error {
	m := s.result.Diagnostics.AnswerKey
	if m == nil {
		return fmt.Errorf("no answer key summary")
	}
	if m.Matched != matched || m.Total != total {
		return fmt.Errorf("matched %d of %d, want %d of %d", m.Matched, m.Total, matched, total)
	}
	return nil
}
