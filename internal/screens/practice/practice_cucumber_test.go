//go:build cucumber

package practice

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/cucumber/godog"

	"github.com/ccnaprep/ccnaprep/internal/bank"
	"github.com/ccnaprep/ccnaprep/internal/feedback"
	"github.com/ccnaprep/ccnaprep/internal/logging"
	"github.com/ccnaprep/ccnaprep/internal/verify"
)

// TestPracticeVerificationScenarios runs the practice verification feature.
func TestPracticeVerificationScenarios(t *testing.T) {
	featurePath := filepath.Join("..", "..", "..", "features", "practice_verification.feature")
	suite := godog.TestSuite{
		Name:                "practice-verification",
		ScenarioInitializer: InitializePracticeScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{featurePath},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializePracticeScenario wires steps for practice scenarios.
func InitializePracticeScenario(ctx *godog.ScenarioContext) {
	state := &practiceScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if state.screen != nil {
			state.screen.Close()
		}
		return ctx, nil
	})

	ctx.Step(`^a practice session with these questions:$`, state.givenQuestions)
	ctx.Step(`^the server answers (\w+) with correct "(true|false)" and letters "([^"]*)"$`, state.givenServerAnswers)
	ctx.Step(`^the server does not answer (\w+) in time$`, state.givenServerHangs)
	ctx.Step(`^I select "([A-E])" on (\w+)$`, state.whenISelect)
	ctx.Step(`^I check "([^"]*)" on (\w+) and confirm$`, state.whenICheckAndConfirm)
	ctx.Step(`^I retry (\w+)$`, state.whenIRetry)
	ctx.Step(`^the badge on (\w+) shows success$`, state.thenBadgeSuccess)
	ctx.Step(`^the badge on (\w+) shows failure listing "([^"]*)"$`, state.thenBadgeFailureListing)
	ctx.Step(`^the badge on (\w+) offers a retry because of a timeout$`, state.thenBadgeTimeoutRetry)
	ctx.Step(`^option "([A-E])" on (\w+) is marked (correct|wrong)$`, state.thenOptionMarked)
	ctx.Step(`^(\w+) is locked$`, state.thenLocked)
	ctx.Step(`^(\w+) is not attempted$`, state.thenNotAttempted)
	ctx.Step(`^the score is "([^"]*)"$`, state.thenScore)
	ctx.Step(`^the request for (\w+) was sent (\d+) times with the same answer$`, state.thenSentTimes)
	ctx.Step(`^the second request for (\w+) used a newer generation$`, state.thenNewerGeneration)
}

type serverReply struct {
	result verify.Result
	hang   bool
}

type practiceScenarioState struct {
	mu          sync.Mutex
	questions   []bank.Question
	replies     map[string]serverReply
	payloads    map[string][]verify.Payload
	generations map[string][]uint64
	screen      *PracticeScreen
}

// reset clears scenario state.
func (s *practiceScenarioState) reset() {
	s.questions = nil
	s.replies = make(map[string]serverReply)
	s.payloads = make(map[string][]verify.Payload)
	s.generations = make(map[string][]uint64)
	s.screen = nil
}

// Verify plays the fake server.
func (s *practiceScenarioState) Verify(ctx context.Context, p verify.Payload) (verify.Result, error) {
	s.mu.Lock()
	s.payloads[p.QuestionID] = append(s.payloads[p.QuestionID], p)
	reply := s.replies[p.QuestionID]
	s.mu.Unlock()
	if reply.hang {
		<-ctx.Done()
		return verify.Result{}, ctx.Err()
	}
	return reply.result, nil
}

func splitLetters(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *practiceScenarioState) givenQuestions(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		q := bank.Question{ID: row.Cells[0].Value, Kind: bank.Kind(row.Cells[1].Value), Text: "Question " + row.Cells[0].Value}
		for _, l := range splitLetters(row.Cells[2].Value) {
			q.Options = append(q.Options, bank.Option{Letter: l, Text: "Option " + l})
		}
		s.questions = append(s.questions, q)
	}
	s.screen = New(Options{
		Questions: s.questions,
		Verifier:  s,
		Logger:    logging.Discard(),
		Timings:   Timings{Timeout: 50 * time.Millisecond},
	})
	return nil
}

func (s *practiceScenarioState) givenServerAnswers(id, correct, letters string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[id] = serverReply{result: verify.Result{Correct: correct == "true", CorrectLetters: splitLetters(letters)}}
	return nil
}

func (s *practiceScenarioState) givenServerHangs(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[id] = serverReply{hang: true}
	return nil
}

// show navigates to question id, bypassing the answer-before-next rule.
func (s *practiceScenarioState) show(id string) (*feedback.Panel, error) {
	p, i, ok := s.screen.deck.PanelFor(id)
	if !ok {
		return nil, fmt.Errorf("unknown question %s", id)
	}
	s.screen.deck.Nav.Show(i)
	return p, nil
}

// drive feeds msg to the screen and runs resulting verification commands
// to completion.
func (s *practiceScenarioState) drive(msg tea.Msg) error {
	_, cmd := s.screen.Update(msg)
	for cmd != nil {
		next := cmd()
		settled, ok := next.(verifySettledMsg)
		if !ok {
			return nil
		}
		s.mu.Lock()
		id := settled.Settlement.Ticket.QuestionID
		s.generations[id] = append(s.generations[id], settled.Settlement.Ticket.Generation)
		s.mu.Unlock()
		_, cmd = s.screen.Update(settled)
	}
	return nil
}

func keyFor(letter string) tea.KeyPressMsg {
	r := rune(strings.ToLower(letter)[0])
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func (s *practiceScenarioState) whenISelect(letter, id string) error {
	if _, err := s.show(id); err != nil {
		return err
	}
	return s.drive(keyFor(letter))
}

func (s *practiceScenarioState) whenICheckAndConfirm(letters, id string) error {
	if _, err := s.show(id); err != nil {
		return err
	}
	for _, l := range splitLetters(letters) {
		if err := s.drive(keyFor(l)); err != nil {
			return err
		}
	}
	return s.drive(tea.KeyPressMsg{Code: tea.KeyEnter})
}

func (s *practiceScenarioState) whenIRetry(id string) error {
	if _, err := s.show(id); err != nil {
		return err
	}
	return s.drive(keyFor("r"))
}

func (s *practiceScenarioState) badge(id string) (feedback.Badge, error) {
	p, _, ok := s.screen.deck.PanelFor(id)
	if !ok {
		return feedback.Badge{}, fmt.Errorf("unknown question %s", id)
	}
	return p.Badge, nil
}

func (s *practiceScenarioState) thenBadgeSuccess(id string) error {
	b, err := s.badge(id)
	if err != nil {
		return err
	}
	if b.Kind != feedback.BadgeSuccess {
		return fmt.Errorf("badge = %+v, want success", b)
	}
	return nil
}

func (s *practiceScenarioState) thenBadgeFailureListing(id, letters string) error {
	b, err := s.badge(id)
	if err != nil {
		return err
	}
	if b.Kind != feedback.BadgeFailure || !strings.HasSuffix(b.Text, letters) {
		return fmt.Errorf("badge = %+v, want failure listing %q", b, letters)
	}
	return nil
}

func (s *practiceScenarioState) thenBadgeTimeoutRetry(id string) error {
	b, err := s.badge(id)
	if err != nil {
		return err
	}
	if b.Kind != feedback.BadgeRetry || !strings.HasPrefix(b.Text, feedback.TextTimeout) {
		return fmt.Errorf("badge = %+v, want timeout retry", b)
	}
	return nil
}

func (s *practiceScenarioState) thenOptionMarked(letter, id, mark string) error {
	p, _, ok := s.screen.deck.PanelFor(id)
	if !ok {
		return fmt.Errorf("unknown question %s", id)
	}
	for _, o := range p.Options {
		if o.Letter != letter {
			continue
		}
		if (mark == "correct" && !o.Correct) || (mark == "wrong" && !o.Wrong) {
			return fmt.Errorf("option %s = %+v, want %s", letter, o, mark)
		}
		return nil
	}
	return fmt.Errorf("question %s has no option %s", id, letter)
}

func (s *practiceScenarioState) thenLocked(id string) error {
	p, _, ok := s.screen.deck.PanelFor(id)
	if !ok || !p.Locked {
		return fmt.Errorf("%s is not locked", id)
	}
	return nil
}

func (s *practiceScenarioState) thenNotAttempted(id string) error {
	st, _ := s.screen.coord.States().Lookup(id)
	if st.Attempted || st.Pending {
		return fmt.Errorf("state of %s = %+v, want neither attempted nor pending", id, st)
	}
	return nil
}

func (s *practiceScenarioState) thenScore(want string) error {
	if got := s.screen.Status(); got != "Score "+want {
		return fmt.Errorf("status = %q, want score %q", got, want)
	}
	return nil
}

func (s *practiceScenarioState) thenSentTimes(id string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sent := s.payloads[id]
	if len(sent) != n {
		return fmt.Errorf("%s sent %d times, want %d", id, len(sent), n)
	}
	for _, p := range sent[1:] {
		if !slices.Equal(p.Letters, sent[0].Letters) {
			return fmt.Errorf("payload changed: %v then %v", sent[0].Letters, p.Letters)
		}
	}
	return nil
}

func (s *practiceScenarioState) thenNewerGeneration(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	gens := s.generations[id]
	if len(gens) < 2 || gens[1] <= gens[0] {
		return fmt.Errorf("generations of %s = %v, want increasing", id, gens)
	}
	return nil
}
