package cdaengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueBuilder(t *testing.T) {
	issue := ErrorIssue("CODE-MISSING").
		Message("code element has neither code nor nullFlavor").
		At("/ClinicalDocument/code").
		Context("element", "code").
		Phase("codes").
		Build()

	assert.Equal(t, "CODE-MISSING", issue.Code)
	assert.Equal(t, SeverityError, issue.Severity)
	assert.Equal(t, "/ClinicalDocument/code", issue.XPath)
	assert.Equal(t, "code", issue.Context["element"])
	assert.Equal(t, "codes", issue.Phase)
	assert.True(t, issue.IsError())
	assert.False(t, issue.IsWarning())

	warn := WarningIssue("CODE-NO-SYSTEM").Build()
	assert.True(t, warn.IsWarning())
	assert.False(t, warn.IsError())

	fatal := NewIssue(SeverityFatal, "X").Build()
	assert.True(t, fatal.IsError())
}

func TestIssueString(t *testing.T) {
	issue := ErrorIssue("ID-MISSING-ROOT").
		Message("id element has no root attribute").
		At("/ClinicalDocument/id").
		Build()

	s := issue.String()
	assert.Equal(t, "error [ID-MISSING-ROOT]: id element has no root attribute at /ClinicalDocument/id", s)

	noPath := ErrorIssue("X").Message("m").Build()
	assert.Equal(t, "error [X]: m", noPath.String())
}

func TestResultAddIssue(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Valid)

	r.AddWarning("W", "warning", "/a")
	assert.True(t, r.Valid)
	assert.True(t, r.HasWarnings())
	assert.False(t, r.HasErrors())

	r.AddError("E", "error", "/b")
	assert.False(t, r.Valid)
	assert.True(t, r.HasErrors())
	assert.Equal(t, 1, r.ErrorCount())
	assert.Equal(t, 1, r.WarningCount())

	issues := r.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "E", issues[0].Code)
	assert.Equal(t, "W", issues[1].Code)
}

func TestResultPooling(t *testing.T) {
	r := AcquireResult()
	r.AddError("E", "error", "/a")
	r.JobID = "job-1"
	r.Release()

	// A fresh acquire comes back reset regardless of reuse.
	r2 := AcquireResult()
	defer r2.Release()
	assert.True(t, r2.Valid)
	assert.Zero(t, r2.ErrorCount())
	assert.Zero(t, r2.WarningCount())
	assert.Empty(t, r2.JobID)
}

func TestResultMerge(t *testing.T) {
	a := NewResult()
	a.AddWarning("W1", "w", "/a")
	a.Statistics.ElementsValidated = 5
	a.Statistics.RulesChecked = 10

	b := NewResult()
	b.AddError("E1", "e", "/b")
	b.Statistics.ElementsValidated = 3
	b.Statistics.RulesChecked = 4

	a.Merge(b)
	assert.False(t, a.Valid)
	assert.Equal(t, 1, a.ErrorCount())
	assert.Equal(t, 1, a.WarningCount())
	assert.Equal(t, 8, a.Statistics.ElementsValidated)
	assert.Equal(t, 14, a.Statistics.RulesChecked)

	a.Merge(nil)
	assert.Equal(t, 1, a.ErrorCount())
}

func TestResultClone(t *testing.T) {
	r := NewResult()
	r.AddError("E", "e", "/a")
	r.JobID = "job-9"

	clone := r.Clone()
	assert.False(t, clone.Valid)
	assert.Equal(t, "job-9", clone.JobID)
	require.Equal(t, 1, clone.ErrorCount())

	clone.AddError("E2", "e2", "/b")
	assert.Equal(t, 1, r.ErrorCount())
}
