package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/config"
)

// --- Mock types ---

type MockRule struct {
	mock.Mock
}

func (m *MockRule) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRule) Check(ctx *Context, c *card.Card) []Finding {
	args := m.Called(ctx, c)
	if findings, ok := args.Get(0).([]Finding); ok {
		return findings
	}
	return nil
}

// --- Tests ---

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	mockRule := new(MockRule)
	mockRule.On("Name").Return("test-rule")

	reg.Register(mockRule)

	got, ok := reg.Get("test-rule")
	assert.True(t, ok)
	assert.Equal(t, mockRule, got)

	// Ensure a missing rule returns false
	_, ok = reg.Get("missing")
	assert.False(t, ok)

	mockRule.AssertExpectations(t)
}

func TestRegistry_AllIsSorted(t *testing.T) {
	reg := NewRegistry()

	for _, name := range []string{"zebra", "alpha", "middle"} {
		r := new(MockRule)
		r.On("Name").Return(name)
		reg.Register(r)
	}

	all := reg.All()
	names := make([]string, 0, len(all))
	for _, r := range all {
		names = append(names, r.Name())
	}

	assert.Equal(t, []string{"alpha", "middle", "zebra"}, names)
}

func TestRegistry_RunnerCallsRules(t *testing.T) {
	c := &card.Card{ID: "x.md"}

	mockRule := new(MockRule)
	mockRule.On("Name").Return("custom")
	mockRule.On("Check", mock.Anything, c).Return([]Finding{
		{Rule: "custom", Severity: SeverityInfo, CardID: "x.md", Message: "hi"},
	}).Once()

	reg := NewRegistry()
	reg.Register(mockRule)

	runner := NewRunner(t.TempDir(), config.LintConfig{}, reg)
	findings := runner.Lint(c)

	assert.Len(t, findings, 1)
	assert.Equal(t, "custom", findings[0].Rule)

	mockRule.AssertExpectations(t)
}

func TestBuiltin(t *testing.T) {
	reg := Builtin()

	for _, name := range []string{
		"artifact-link", "citation", "config-path", "input-size",
		"metric-filled", "metric-range", "table-shape", "unique-variant",
	} {
		_, ok := reg.Get(name)
		assert.True(t, ok, "missing builtin rule %s", name)
	}
}
