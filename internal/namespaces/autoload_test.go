package namespaces

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/testutil"
)

func TestLoadAutoload_DumpedTable(t *testing.T) {
	root := testutil.WriteProject(t, `
-- vendor/composer/autoload_psr4.php --
<?php

// autoload_psr4.php @generated by Composer

$vendorDir = dirname(__DIR__);
$baseDir = dirname($vendorDir);

return array(
    'yii\\debug\\' => array($vendorDir . '/yiisoft/yii2-debug/src'),
    'modules\\' => array($baseDir . '/modules'),
    'craft\\' => array($vendorDir . '/craftcms/cms/src', $baseDir . '/extra'),
);
-- composer.json --
{"autoload": {"psr-4": {"ignored\\": "ignored/"}}}
`)

	autoload, err := LoadAutoload(root)
	require.NoError(t, err)

	assert.Equal(t, models.AutoloadMap{
		`yii\debug\`: {filepath.Join(root, "vendor", "yiisoft", "yii2-debug", "src")},
		`modules\`:   {filepath.Join(root, "modules")},
		`craft\`:     {filepath.Join(root, "vendor", "craftcms", "cms", "src"), filepath.Join(root, "extra")},
	}, autoload)
}

func TestLoadAutoload_ComposerFallback(t *testing.T) {
	root := testutil.WriteProject(t, `
-- composer.json --
{
  "require": {"craftcms/cms": "^5.0"},
  "autoload": {
    "psr-4": {
      "modules\\": "modules/",
      "app": ["src/", "lib"]
    }
  },
  "autoload-dev": {
    "psr-4": {"tests\\": "tests/"}
  }
}
`)

	autoload, err := LoadAutoload(root)
	require.NoError(t, err)

	assert.Equal(t, models.AutoloadMap{
		`modules\`: {filepath.Join(root, "modules")},
		`app\`:     {filepath.Join(root, "src"), filepath.Join(root, "lib")},
		`tests\`:   {filepath.Join(root, "tests")},
	}, autoload)
}

func TestLoadAutoload_Missing(t *testing.T) {
	autoload, err := LoadAutoload(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, autoload)

	autoload, err = LoadAutoload("")
	require.NoError(t, err)
	assert.Empty(t, autoload)
}

func TestLoadAutoload_InvalidManifest(t *testing.T) {
	root := testutil.WriteProject(t, `
-- composer.json --
{ not json
`)

	_, err := LoadAutoload(root)
	assert.Error(t, err)
}
