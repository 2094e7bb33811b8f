// Package gate implements the evaluation harness: a configurable, weighted
// check set over a batch of candidate files, producing one immutable
// pass/fail report per run.
package gate

import "time"

// Canonical check names. Weights and the required/optional split are keyed
// by these.
const (
	CheckSyntax      = "syntax_validation"
	CheckPolicy      = "policy_compliance"
	CheckImports     = "import_validation"
	CheckExecution   = "execution_test"
	CheckPerformance = "performance_test"
	CheckCoverage    = "coverage_analysis"
	CheckApproval    = "hitl_approval"
)

// Config controls which checks run, how their scores combine, and the
// sandbox limits. Strict raises the pass threshold to 1.0 without touching
// the configured value.
type Config struct {
	RequiredChecks   []string           `mapstructure:"required_checks"`
	OptionalChecks   []string           `mapstructure:"optional_checks"`
	Weights          map[string]float64 `mapstructure:"scoring_weights"`
	DefaultWeight    float64            `mapstructure:"default_weight"`
	PassThreshold    float64            `mapstructure:"pass_threshold"`
	Strict           bool               `mapstructure:"strict"`
	SandboxTimeout   time.Duration      `mapstructure:"sandbox_timeout"`
	MaxExecutionTime time.Duration      `mapstructure:"max_execution_time"`
	Parallelism      int                `mapstructure:"parallelism"`
}

// DefaultConfig returns the standard check set and weight table.
func DefaultConfig() *Config {
	return &Config{
		RequiredChecks: []string{CheckSyntax, CheckPolicy, CheckImports, CheckExecution},
		OptionalChecks: []string{CheckPerformance, CheckCoverage, CheckApproval},
		Weights: map[string]float64{
			CheckSyntax:      0.30,
			CheckPolicy:      0.25,
			CheckImports:     0.15,
			CheckExecution:   0.20,
			CheckPerformance: 0.05,
			CheckCoverage:    0.05,
		},
		DefaultWeight:    0.05,
		PassThreshold:    0.8,
		SandboxTimeout:   30 * time.Second,
		MaxExecutionTime: 5 * time.Second,
		Parallelism:      4,
	}
}

// threshold is the effective pass threshold after strict mode.
func (c *Config) threshold() float64 {
	if c.Strict {
		return 1.0
	}
	return c.PassThreshold
}

func (c *Config) weight(checkName string) float64 {
	if w, ok := c.Weights[checkName]; ok {
		return w
	}
	return c.DefaultWeight
}

func (c *Config) isRequired(checkName string) bool {
	for _, name := range c.RequiredChecks {
		if name == checkName {
			return true
		}
	}
	return false
}
