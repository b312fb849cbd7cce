package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/actioncheck/internal/models"
)

func sampleReport(diagnostics ...models.Diagnostic) *Report {
	return &Report{
		RunID:       "9f1c7e2a-0000-4000-8000-000000000000",
		Project:     "/srv/site",
		Diagnostics: diagnostics,
		Summary: Summary{
			Handles:     2,
			Routes:      12,
			Templates:   3,
			References:  7,
			Diagnostics: len(diagnostics),
		},
	}
}

var deleteDiagnostic = models.NewInvalidActionInput(models.TemplateReference{
	Route: "blog/posts/delete",
	File:  "templates/blog/_entry.twig",
	Line:  14,
})

func TestReporterFormats(t *testing.T) {
	assert.Equal(t, []string{"github", "json", "text"}, ReporterFormats())

	_, err := NewReporter("xml", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github, json, text")
}

func TestTextReporter(t *testing.T) {
	reporter, err := NewReporter("text", false)
	require.NoError(t, err)

	t.Run("clean run", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, reporter.Report(&buf, sampleReport()))
		assert.Equal(t, "OK 7 reference(s) in 3 template(s) match 12 route(s)\n", buf.String())
	})

	t.Run("invalid references", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, reporter.Report(&buf, sampleReport(deleteDiagnostic)))
		assert.Equal(t,
			"templates/blog/_entry.twig:14: Action route \"blog/posts/delete\" does not match any controller action. [craftcms.invalidActionInput]\n"+
				"\nFound 1 invalid action route(s) in 1 template(s)\n",
			buf.String())
	})
}

func TestJSONReporter(t *testing.T) {
	reporter, err := NewReporter("json", false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, reporter.Report(&buf, sampleReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "9f1c7e2a-0000-4000-8000-000000000000", decoded["runId"])
	assert.Equal(t, []any{}, decoded["diagnostics"])

	buf.Reset()
	require.NoError(t, reporter.Report(&buf, sampleReport(deleteDiagnostic)))
	var withDiagnostics struct {
		Diagnostics []models.Diagnostic `json:"diagnostics"`
		Summary     Summary             `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &withDiagnostics))
	assert.Equal(t, []models.Diagnostic{deleteDiagnostic}, withDiagnostics.Diagnostics)
	assert.Equal(t, 1, withDiagnostics.Summary.Diagnostics)
}

func TestGitHubReporter(t *testing.T) {
	reporter, err := NewReporter("github", true)
	require.NoError(t, err)

	diag := deleteDiagnostic
	diag.File = "templates/a,b:c.twig"
	diag.Message = "50% broken\nreally"

	var buf bytes.Buffer
	require.NoError(t, reporter.Report(&buf, sampleReport(diag)))
	assert.Equal(t,
		"::error file=templates/a%2Cb%3Ac.twig,line=14,title=craftcms.invalidActionInput::50%25 broken%0Areally\n",
		buf.String())
}
