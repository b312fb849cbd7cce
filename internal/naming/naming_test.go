package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"single word", "Index", "index"},
		{"already lower", "index", "index"},
		{"two words", "SaveEntry", "save-entry"},
		{"get all", "GetAll", "get-all"},
		{"acronym run", "CSPSources", "csp-sources"},
		{"acronym only", "CSP", "csp"},
		{"acronym in middle", "XMLHttpRequest", "xml-http-request"},
		{"trailing acronym", "ExportCSV", "export-csv"},
		{"digits", "Step2Save", "step2-save"},
		{"lower camel", "saveEntry", "save-entry"},
		{"existing separators trimmed", "-Foo-", "foo"},
		{"unicode upper", "ÜberAction", "über-action"},
		{"unicode mid word", "SaveÉtat", "save-état"},
		{"kebab input", "save-entry", "save-entry"},
		{"caseless capital", "aℂ", "aℂ"},
		{"caseless capital before word", "SaveℂEntry", "saveℂ-entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"", "SaveEntry", "CSPSources", "GetAll", "XMLHttpRequest", "ÜberAction", "a-B-c", "--X--",
		"aℂ", "Bℂ", "aℂBc", "ℂℂb", "İstanbul", "ǅemo", "ΣίσυφοςΆθλος", "ÀÉÎõü",
	}

	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}

func TestControllerID(t *testing.T) {
	assert.Equal(t, "entries", ControllerID(`craft\controllers\EntriesController`))
	assert.Equal(t, "csp-sources", ControllerID(`craft\controllers\CspSourcesController`))
	assert.Equal(t, "posts", ControllerID(`modules\blog\controllers\PostsController`))
	assert.Equal(t, "posts", ControllerID("PostsController"))
	// no suffix to strip
	assert.Equal(t, "dashboard", ControllerID(`app\Dashboard`))
}

func TestActionID(t *testing.T) {
	assert.Equal(t, "save-entry", ActionID("actionSaveEntry"))
	assert.Equal(t, "get-all", ActionID("actionGetAll"))
	assert.Equal(t, "index", ActionID("actionIndex"))
	assert.Equal(t, "index", ActionID("Index"))
}

func TestQualifiesAsAction(t *testing.T) {
	assert.True(t, QualifiesAsAction("actionIndex"))
	assert.True(t, QualifiesAsAction("actionSaveEntry"))
	assert.False(t, QualifiesAsAction("action"))
	assert.False(t, QualifiesAsAction("actions"))
	assert.False(t, QualifiesAsAction("beforeAction"))
	assert.False(t, QualifiesAsAction("Action"))
}

func TestTrimNamespace(t *testing.T) {
	assert.Equal(t, `modules\shop\controllers`, TrimNamespace(`\modules\shop\controllers\`))
	assert.Equal(t, `craft\controllers`, TrimNamespace(`craft\controllers`))
	assert.Empty(t, TrimNamespace(`\`))
}

func TestControllerNamespace(t *testing.T) {
	assert.Equal(t, `modules\recruitee\controllers`, ControllerNamespace(`modules\recruitee\RecruiteeConnector`))
	assert.Equal(t, `craft\redactor\controllers`, ControllerNamespace(`\craft\redactor\Plugin`))
	assert.Equal(t, `Module\controllers`, ControllerNamespace("Module"))
}

func TestShortNameAndNamespace(t *testing.T) {
	assert.Equal(t, "PostsController", ShortName(`modules\blog\controllers\PostsController`))
	assert.Equal(t, `modules\blog\controllers`, NamespaceOf(`modules\blog\controllers\PostsController`))
	assert.Equal(t, "", NamespaceOf("Global"))
}
