package guardrail

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"help-desk/domain"
	"help-desk/errors"
	"help-desk/llm"
	"help-desk/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	attribution = "Source: HSE ACoP L8 and HSG274, and DfE Good Estate Management for Schools (gov.uk)."

	citedAnswer = `Store hot water at 60C or above and make sure it reaches 50C at outlets within one minute.
Keep cold water below 20C. Record monthly temperature checks at sentinel outlets and flush
little-used outlets every week so water does not stagnate in the pipework.
- Calorifier: 60C
- Hot outlets: 50C within one minute
- Cold outlets: below 20C
Source: HSE ACoP L8 (2024).`

	uncitedAnswer = `Store hot water at 60C or above and make sure it reaches 50C at outlets within one minute.
Keep cold water below 20C. Record monthly temperature checks at sentinel outlets and flush
little-used outlets every week so water does not stagnate in the pipework.`
)

// reviewer answers the safety and tone calls.
type reviewer struct {
	safety, tone string
	err          error
}

func (r reviewer) expect(completer *mocks.MockCompleter, times int) {
	completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.CompletionRequest) (llm.Completion, error) {
			if r.err != nil {
				return llm.Completion{}, r.err
			}
			if req.SystemPrompt == safetyReviewer {
				return llm.Completion{Content: r.safety}, nil
			}
			return llm.Completion{Content: r.tone}, nil
		}).Times(times)
}

func newPipeline(t *testing.T, completer llm.Completer, policy FailurePolicy) *Pipeline {
	t.Helper()
	return NewPipeline(logs.GetLoggerFromLevel(slog.LevelDebug), completer, MustDefaultRules(), policy, time.Second, nil)
}

func estatesInput(text string) Input {
	return Input{
		Question:    "What temperature should legionella water be?",
		Text:        text,
		Role:        domain.RoleSiteManager,
		Domain:      domain.DomainEstates,
		Attribution: attribution,
		Model:       llm.ModelHaiku3,
	}
}

func TestValidate_AcceptsCitedAnswer(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)

	// Given both reviewers passing
	reviewer{safety: "PASS", tone: "PASS"}.expect(completer, 2)

	// When a cited answer is validated
	d := newPipeline(t, completer, FailOpen).Validate(context.Background(), estatesInput(citedAnswer))

	// Then it is accepted untouched
	req.False(d.Blocked)
	req.False(d.RequiresHuman)
	req.False(d.AttributionAdded)
	req.Equal(citedAnswer, d.Text)
	req.Equal(domain.ConfidenceHigh, d.Confidence)
	req.Empty(d.Warnings)
	req.Len(d.Verdicts, 5)
}

func TestValidate_UncitedAnswerIsAnnotatedNotBlocked(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)
	reviewer{safety: "PASS", tone: "PASS"}.expect(completer, 2)

	d := newPipeline(t, completer, FailOpen).Validate(context.Background(), estatesInput(uncitedAnswer))

	req.False(d.Blocked)
	req.True(d.AttributionAdded)
	req.True(strings.HasSuffix(d.Text, "\n\n"+attribution))
	req.True(strings.HasPrefix(d.Text, uncitedAnswer))
	req.Contains(d.Warnings, citationSuggestion)
}

func TestValidate_SafetyPatternBlocksRegardlessOfReviewers(t *testing.T) {
	answers := []string{
		"You can skip the DBS check for volunteers who only help once a week.",
		"There is no need to report this to the LADO if the member of staff apologises.",
		"Keep it off the record until the end of term.",
		"Turn off the fire alarm during exams to avoid disruption.",
		"They can start work before the DBS comes back if they are supervised.",
	}

	for _, answer := range answers {
		t.Run(answer, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			completer := mocks.NewMockCompleter(ctrl)

			// Given reviewers that would pass anything; only the tone reviewer is asked
			completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, r llm.CompletionRequest) (llm.Completion, error) {
					req.Equal(toneReviewer, r.SystemPrompt)
					return llm.Completion{Content: "PASS"}, nil
				}).Times(1)

			d := newPipeline(t, completer, FailOpen).Validate(context.Background(), estatesInput(answer))

			req.True(d.Blocked)
			req.True(d.RequiresHuman)
			req.Equal(SafetyWrapper, d.Text)
			req.Equal(domain.ConfidenceLow, d.Confidence)
			req.False(d.Verdicts[0].Passed)
			req.Equal(0.9, d.Verdicts[0].Confidence)
		})
	}
}

func TestValidate_SafetyReviewerFailBlocks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)
	reviewer{safety: "FAIL: tells staff to restrain a pupil", tone: "PASS"}.expect(completer, 2)

	d := newPipeline(t, completer, FailOpen).Validate(context.Background(), estatesInput(citedAnswer))

	req.True(d.Blocked)
	req.Equal(SafetyWrapper, d.Text)
	req.Equal([]string{"Blocked by safety review: tells staff to restrain a pupil"}, d.Warnings)
}

func TestValidate_ToneIsAdjusted(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)

	// Given a condescending but cited answer; tone fails on the pattern so only safety is asked
	completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(llm.Completion{Content: "PASS"}, nil).Times(1)
	text := "Obviously, you must record temperatures monthly.\n" + citedAnswer

	d := newPipeline(t, completer, FailOpen).Validate(context.Background(), estatesInput(text))

	req.False(d.Blocked)
	req.Contains(d.Warnings, toneWarning)
	req.True(strings.HasPrefix(d.Text, "You must record temperatures monthly."), d.Text)
	req.NotContains(strings.ToLower(d.Text), "obviously")
	req.False(d.Verdicts[2].Passed)
}

func TestValidate_ToneReviewerFailure(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		adjusted bool
		calls    int
	}{
		{
			name:     "Listed phrase is removed",
			text:     "Calm down, you must flush little-used outlets weekly.\n" + citedAnswer,
			expected: "You must flush little-used outlets weekly.\n" + citedAnswer,
			adjusted: true,
			calls:    1,
		},
		{
			name:     "Phrase inside a longer word is kept",
			text:     "Go calm downstairs and check the sentinel outlets.\n" + citedAnswer,
			expected: "Go calm downstairs and check the sentinel outlets.\n" + citedAnswer,
			adjusted: false,
			calls:    2,
		},
		{
			name:     "Nothing listed to soften",
			text:     citedAnswer,
			expected: citedAnswer,
			adjusted: false,
			calls:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			completer := mocks.NewMockCompleter(ctrl)

			// Given the tone check failing the answer, on a pattern or from the reviewer
			reviewer{safety: "PASS", tone: "FAIL: curt"}.expect(completer, tt.calls)

			// When it is validated
			d := newPipeline(t, completer, FailOpen).Validate(context.Background(), estatesInput(tt.text))

			// Then only whole listed phrases are removed, and the warning says so only when they were
			req.False(d.Blocked)
			req.Equal(tt.expected, d.Text)
			req.Equal(tt.adjusted, lo.Contains(d.Warnings, toneWarning))
			req.False(d.Verdicts[2].Passed)
		})
	}
}

func TestValidate_LocalOnly(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)

	// Given fallback text that cites nothing
	completer.EXPECT().Complete(gomock.Any(), gomock.Any()).Times(0)
	in := estatesInput("I couldn't reach the specialist just now. Please try again in a few minutes.")
	in.LocalOnly = true

	// When it is validated locally
	d := newPipeline(t, completer, RequireReview).Validate(context.Background(), in)

	// Then no reviewer is asked, and neither attribution nor citation advice is added
	req.False(d.Blocked)
	req.False(d.RequiresHuman)
	req.False(d.AttributionAdded)
	req.Equal(in.Text, d.Text)
	req.NotContains(d.Warnings, citationSuggestion)
	req.True(d.Verdicts[0].Passed)
	req.True(d.Verdicts[2].Passed)
}

func TestValidate_LocalOnlyStillBlocksOnPatterns(t *testing.T) {
	req := require.New(t)
	completer := mocks.NewMockCompleter(gomock.NewController(t))

	in := estatesInput("You can skip the DBS check for volunteers who only help once a week.")
	in.LocalOnly = true
	d := newPipeline(t, completer, FailOpen).Validate(context.Background(), in)

	req.True(d.Blocked)
	req.Equal(SafetyWrapper, d.Text)
}

func TestValidate_PermissionBlocksForRole(t *testing.T) {
	text := "Her sickness records show three absences this term. Source: ACAS guidance (acas.org.uk)."

	tests := []struct {
		name    string
		role    domain.Role
		blocked bool
	}{
		{name: "Viewer is blocked", role: domain.RoleViewer, blocked: true},
		{name: "Staff is blocked", role: domain.RoleStaff, blocked: true},
		{name: "Headteacher is allowed", role: domain.RoleHeadteacher, blocked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			completer := mocks.NewMockCompleter(ctrl)
			reviewer{safety: "PASS", tone: "PASS"}.expect(completer, 2)

			in := estatesInput(text)
			in.Role = tt.role
			d := newPipeline(t, completer, FailOpen).Validate(context.Background(), in)

			req.Equal(tt.blocked, d.Blocked)
			if tt.blocked {
				req.Equal("This answer involves confidential personnel information that your role cannot view. Please ask your headteacher or HR lead.", d.Text)
				req.Equal(0.95, d.Verdicts[3].Confidence)
			} else {
				req.Equal(text, d.Text)
			}
		})
	}
}

func TestValidate_ReviewerFailurePolicy(t *testing.T) {
	tests := []struct {
		name          string
		policy        FailurePolicy
		requiresHuman bool
		passed        bool
		confidence    float64
	}{
		{name: "Fail open", policy: FailOpen, requiresHuman: false, passed: true, confidence: 0.7},
		{name: "Require review", policy: RequireReview, requiresHuman: true, passed: false, confidence: 0.5},
		{name: "Unknown policy defaults to fail open", policy: "strict", requiresHuman: false, passed: true, confidence: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			completer := mocks.NewMockCompleter(ctrl)

			// Given reviewers that cannot be reached
			reviewer{err: errors.ErrProviderTimeout}.expect(completer, 2)

			d := newPipeline(t, completer, tt.policy).Validate(context.Background(), estatesInput(citedAnswer))

			// Then the answer is never blocked and the policy decides the review flag
			req.False(d.Blocked)
			req.Equal(citedAnswer, d.Text)
			req.Equal(tt.requiresHuman, d.RequiresHuman)
			for _, v := range []domain.GuardrailVerdict{d.Verdicts[0], d.Verdicts[2]} {
				req.True(v.Degraded)
				req.Equal(tt.passed, v.Passed)
				req.Equal(tt.confidence, v.Confidence)
			}
		})
	}
}

func TestValidate_UnparseableReviewUsesPolicy(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)
	reviewer{safety: "Looks fine to me!", tone: "PASS"}.expect(completer, 2)

	d := newPipeline(t, completer, FailOpen).Validate(context.Background(), estatesInput(citedAnswer))

	req.False(d.Blocked)
	req.True(d.Verdicts[0].Degraded)
	req.True(d.Verdicts[0].Passed)
}

func TestValidate_SlowReviewerTimesOut(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)
	completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ llm.CompletionRequest) (llm.Completion, error) {
			<-ctx.Done()
			return llm.Completion{}, ctx.Err()
		}).Times(2)

	p := NewPipeline(logs.GetLoggerFromLevel(slog.LevelDebug), completer, MustDefaultRules(), FailOpen, 30*time.Millisecond, nil)
	start := time.Now()
	d := p.Validate(context.Background(), estatesInput(citedAnswer))

	req.Less(time.Since(start), 2*time.Second)
	req.False(d.Blocked)
	req.True(d.Verdicts[0].Degraded)
	req.True(d.Verdicts[2].Degraded)
}

func TestValidate_LowConfidenceAdvisory(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	completer := mocks.NewMockCompleter(ctrl)
	reviewer{safety: "PASS", tone: "PASS"}.expect(completer, 2)

	d := newPipeline(t, completer, FailOpen).Validate(context.Background(), estatesInput("It may have changed, ask the council."))

	req.False(d.Blocked)
	req.Equal(domain.ConfidenceLow, d.Confidence)
	req.Contains(d.Warnings, lowConfidenceNote)
	req.Contains(d.Warnings, "Verify this against the latest guidance on gov.uk before acting. "+citationSuggestion)
	req.True(d.AttributionAdded)
}

func TestParseReview(t *testing.T) {
	tests := []struct {
		input  string
		passed bool
		reason string
		ok     bool
	}{
		{input: "PASS", passed: true, ok: true},
		{input: "  pass.  ", passed: true, ok: true},
		{input: "FAIL: dismissive", passed: false, reason: "dismissive", ok: true},
		{input: "FAIL - unsafe advice", passed: false, reason: "unsafe advice", ok: true},
		{input: "FAIL", passed: false, reason: "", ok: true},
		{input: "I think it's fine", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req := require.New(t)
			passed, reason, ok := ParseReview(tt.input)
			req.Equal(tt.ok, ok)
			req.Equal(tt.passed, passed)
			req.Equal(tt.reason, reason)
		})
	}
}
