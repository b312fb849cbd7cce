package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/actioncheck/internal/testutil"
)

const site = `
-- composer.json --
{"autoload": {"psr-4": {"modules\\": "modules/"}}}
-- config/app.php --
<?php

return [
    'modules' => [
        'blog' => modules\blog\Blog::class,
    ],
];
-- vendor/composer/autoload_psr4.php --
<?php

$vendorDir = dirname(__DIR__);
$baseDir = dirname($vendorDir);

return array(
    'modules\\' => array($baseDir . '/modules'),
    'craft\\' => array($vendorDir . '/craftcms/cms/src'),
);
-- vendor/craftcms/cms/src/web/Controller.php --
<?php
namespace craft\web;

abstract class Controller extends \yii\web\Controller
{
}
-- vendor/craftcms/cms/src/controllers/EntriesController.php --
<?php
namespace craft\controllers;

use craft\web\Controller;

class EntriesController extends Controller
{
    public function actionIndex() {}
    public function actionSaveEntry() {}
}
-- modules/blog/controllers/PostsController.php --
<?php
namespace modules\blog\controllers;

class PostsController extends \craft\web\Controller
{
    public function actionSave() {}
}
-- templates/entries/_edit.twig --
{{ actionInput('entries/save-entry') }}
{{ actionInput('blog/posts/save') }}
`

const brokenTemplate = `
-- templates/blog/_entry.twig --
<form method="post">
    {{ actionInput('blog/posts/delete') }}
</form>
`

type result struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestCheck(t *testing.T) {
	t.Run("clean project", func(t *testing.T) {
		root := testutil.WriteProject(t, site)

		res := execute(t, "check", "--project", root)
		assert.Equal(t, exitOK, res.code, res.stderr)
		assert.Equal(t, "OK 2 reference(s) in 1 template(s) match 4 route(s)\n", res.stdout)
		assert.Contains(t, res.stderr, "Check complete")
	})

	t.Run("invalid reference", func(t *testing.T) {
		root := testutil.WriteProject(t, site)
		testutil.WriteArchive(t, root, brokenTemplate)

		res := execute(t, "check", "--project", root, "--quiet")
		assert.Equal(t, exitDiagnostics, res.code, res.stderr)
		assert.Contains(t, res.stdout,
			filepath.Join("templates", "blog", "_entry.twig")+`:2: Action route "blog/posts/delete" does not match any controller action. [craftcms.invalidActionInput]`)
		assert.Empty(t, res.stderr)
	})

	t.Run("json report", func(t *testing.T) {
		root := testutil.WriteProject(t, site)
		testutil.WriteArchive(t, root, brokenTemplate)

		res := execute(t, "check", "--project", root, "--format", "json", "-q")
		require.Equal(t, exitDiagnostics, res.code, res.stderr)

		var report struct {
			RunID       string `json:"runId"`
			Diagnostics []struct {
				Route string `json:"route"`
				Line  int    `json:"line"`
			} `json:"diagnostics"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
		assert.NotEmpty(t, report.RunID)
		require.Len(t, report.Diagnostics, 1)
		assert.Equal(t, "blog/posts/delete", report.Diagnostics[0].Route)
		assert.Equal(t, 2, report.Diagnostics[0].Line)
	})

	t.Run("format from environment", func(t *testing.T) {
		root := testutil.WriteProject(t, site)
		testutil.WriteArchive(t, root, brokenTemplate)
		t.Setenv("ACTIONCHECK_FORMAT", "github")

		res := execute(t, "check", "--project", root, "-q")
		assert.Equal(t, exitDiagnostics, res.code, res.stderr)
		assert.Contains(t, res.stdout, "::error file=")
	})

	t.Run("settings file", func(t *testing.T) {
		root := testutil.WriteProject(t, site)
		testutil.WriteArchive(t, root, brokenTemplate+`
-- .actioncheck.yaml --
templatePaths:
  - templates/entries
`)

		res := execute(t, "check", "--project", root)
		assert.Equal(t, exitOK, res.code, res.stderr)
	})

	t.Run("unknown format", func(t *testing.T) {
		root := testutil.WriteProject(t, site)

		res := execute(t, "check", "--project", root, "--format", "xml")
		assert.Equal(t, exitError, res.code)
		assert.Contains(t, res.stderr, "Configuration Error")
		assert.Empty(t, res.stdout)
	})

	t.Run("missing settings file", func(t *testing.T) {
		root := testutil.WriteProject(t, site)

		res := execute(t, "check", "--project", root, "--config", filepath.Join(root, "nope.yaml"))
		assert.Equal(t, exitError, res.code)
		assert.Contains(t, res.stderr, "Configuration Error")
	})
}

func TestRoutes(t *testing.T) {
	root := testutil.WriteProject(t, site)

	res := execute(t, "routes", "--project", root, "-q")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "blog/posts/save\nentries\nentries/index\nentries/save-entry\n", res.stdout)
}

func TestHandles(t *testing.T) {
	root := testutil.WriteProject(t, site)

	res := execute(t, "handles", "--project", root, "--format", "json", "-q",
		"--handle", `shop=modules\shop\controllers`)
	require.Equal(t, exitOK, res.code, res.stderr)

	var handles map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &handles))
	assert.Equal(t, map[string]string{
		"":     `craft\controllers`,
		"blog": `modules\blog\controllers`,
		"shop": `modules\shop\controllers`,
	}, handles)
}

func TestCollect(t *testing.T) {
	root := testutil.WriteProject(t, site)
	output := filepath.Join(t.TempDir(), "collected.json")

	res := execute(t, "collect", filepath.Join(root, "modules"), "--project", root, "-o", output)
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Wrote 1 controller(s)")

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"modules\\blog\\controllers\\PostsController": ["actionSave"]}`, string(content))

	res = execute(t, "check", "--project", root, "--collected", output, "-q")
	assert.Equal(t, exitOK, res.code, res.stderr)
}

func TestVersionAndUsage(t *testing.T) {
	res := execute(t, "version")
	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, "actioncheck dev\n", res.stdout)

	res = execute(t, "frobnicate")
	assert.Equal(t, exitError, res.code)
	assert.Contains(t, res.stderr, "Error:")

	res = execute(t, "collect")
	assert.Equal(t, exitError, res.code)
}
