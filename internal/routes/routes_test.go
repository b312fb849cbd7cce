package routes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/actioncheck/internal/models"
)

type stubReflection struct {
	name     string
	defaults map[string]any
}

func (s stubReflection) Name() string                { return s.name }
func (s stubReflection) IsAbstract() bool            { return false }
func (s stubReflection) IsSubclassOf(string) bool    { return true }
func (s stubReflection) PublicMethodNames() []string { return nil }
func (s stubReflection) DefaultValueOf(property string) (any, bool) {
	value, ok := s.defaults[property]
	return value, ok
}

// stubReflector serves default action values by class; classes it does not
// know fail to reflect.
type stubReflector map[string]any

func (s stubReflector) Reflect(class string) (models.ClassReflection, error) {
	value, ok := s[class]
	if !ok {
		return nil, fmt.Errorf("class %s not found", class)
	}
	defaults := map[string]any{}
	if value != nil {
		defaults[models.DefaultActionProperty] = value
	}
	return stubReflection{name: class, defaults: defaults}, nil
}

func TestBuild_CoreController(t *testing.T) {
	idx := Build(
		models.HandleMap{"": models.CoreNamespace},
		models.ControllerActions{`craft\controllers\EntriesController`: {"actionSaveEntry"}},
		nil,
	)

	assert.Equal(t, []string{"entries/save-entry"}, idx.Routes())
}

func TestBuild_ModuleWithIndexShorthand(t *testing.T) {
	idx := Build(
		models.HandleMap{"": models.CoreNamespace, "blog": `modules\blog\controllers`},
		models.ControllerActions{`modules\blog\controllers\PostsController`: {"actionIndex", "actionView"}},
		nil,
	)

	assert.True(t, idx.Contains("blog/posts/index"))
	assert.True(t, idx.Contains("blog/posts"))
	assert.True(t, idx.Contains("blog/posts/view"))
	assert.False(t, idx.Contains("posts/index"))
	assert.Equal(t, 3, idx.Len())
}

func TestBuild_DeclaredDefaultAction(t *testing.T) {
	const class = `craft\controllers\EntriesController`
	withShorthand := []string{"entries", "entries/save-entry", "entries/view"}
	withoutShorthand := []string{"entries/save-entry", "entries/view"}

	tests := []struct {
		name      string
		reflector models.Reflector
		want      []string
	}{
		{"declared default gets the shorthand", stubReflector{class: "saveEntry"}, withShorthand},
		{"declared kebab-case default", stubReflector{class: "save-entry"}, withShorthand},
		{"empty default falls back to index", stubReflector{class: ""}, withoutShorthand},
		{"non-string default falls back to index", stubReflector{class: int64(3)}, withoutShorthand},
		{"undeclared default falls back to index", stubReflector{class: nil}, withoutShorthand},
		{"reflection failure falls back to index", stubReflector{}, withoutShorthand},
		{"no reflector falls back to index", nil, withoutShorthand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Build(
				models.HandleMap{"": models.CoreNamespace},
				models.ControllerActions{class: {"actionSaveEntry", "actionView"}},
				tt.reflector,
			)

			assert.Equal(t, tt.want, idx.Routes())
		})
	}
}

func TestBuild_DefaultActionOverridesIndex(t *testing.T) {
	idx := Build(
		models.HandleMap{"": models.CoreNamespace},
		models.ControllerActions{`craft\controllers\EntriesController`: {"actionIndex", "actionSaveEntry"}},
		stubReflector{`craft\controllers\EntriesController`: "save-entry"},
	)

	assert.Equal(t, []string{"entries", "entries/index", "entries/save-entry"}, idx.Routes())
	// the shorthand points at save-entry, index only has its full route
	assert.True(t, idx.Contains("entries/index"))
}

func TestBuild_OverlappingNamespaces(t *testing.T) {
	idx := Build(
		models.HandleMap{
			"shop":    `modules\shop\controllers`,
			"reports": `modules\shop\controllers\admin`,
		},
		models.ControllerActions{`modules\shop\controllers\admin\SalesController`: {"actionExport"}},
		nil,
	)

	assert.Equal(t, []string{"reports/sales/export", "shop/sales/export"}, idx.Routes())
}

func TestBuild_PrefixNeedsSeparator(t *testing.T) {
	idx := Build(
		models.HandleMap{"blog": `modules\blog\controllers`},
		models.ControllerActions{`modules\blog\controllersExtra\PostsController`: {"actionView"}},
		nil,
	)

	assert.Zero(t, idx.Len())
}

func TestBuild_FullyQualifiedNamespaces(t *testing.T) {
	idx := Build(
		models.HandleMap{
			"store": `\modules\shop\controllers`,
			"cart":  `modules\cart\controllers\`,
		},
		models.ControllerActions{
			`modules\shop\controllers\OrdersController`: {"actionList"},
			`\modules\cart\controllers\ItemsController`: {"actionAdd"},
		},
		stubReflector{`modules\shop\controllers\OrdersController`: "list"},
	)

	assert.Equal(t, []string{"cart/items/add", "store/orders", "store/orders/list"}, idx.Routes())
}

func TestIndex(t *testing.T) {
	idx := NewIndex("b", "a")
	idx.Add("a")

	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains("b"))
	assert.False(t, idx.Contains("c"))
	assert.Equal(t, []string{"a", "b"}, idx.Routes())
}

func TestMerge(t *testing.T) {
	collected := models.ControllerActions{
		`a\AController`: {"actionCollected"},
	}
	discovered := models.ControllerActions{
		`a\AController`: {"actionDiscovered"},
		`b\BController`: {"actionB"},
	}

	merged := Merge(collected, discovered)

	assert.Equal(t, models.ControllerActions{
		`a\AController`: {"actionCollected"},
		`b\BController`: {"actionB"},
	}, merged)

	merged[`b\BController`][0] = "changed"
	assert.Equal(t, "actionB", discovered[`b\BController`][0])
}

func TestMergeCollected(t *testing.T) {
	merged := MergeCollected(
		models.ControllerActions{`a\AController`: {"actionOne", "actionTwo"}},
		models.ControllerActions{`a\AController`: {"actionTwo", "actionThree"}, `b\BController`: {"actionB"}},
		nil,
	)

	assert.Equal(t, models.ControllerActions{
		`a\AController`: {"actionOne", "actionTwo", "actionThree"},
		`b\BController`: {"actionB"},
	}, merged)
}
