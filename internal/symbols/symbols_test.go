package symbols

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/testutil"
)

const blogModule = `
-- vendor/craftcms/cms/src/web/Controller.php --
<?php
namespace craft\web;

abstract class Controller extends \yii\web\Controller
{
    public function asJson($data) {}
}
-- modules/blog/controllers/PostsController.php --
<?php
namespace modules\blog\controllers;

use craft\web\Controller;
use yii\web\Response;

class PostsController extends Controller
{
    public $defaultAction = 'list-all';
    protected array|bool|int $allowAnonymous = ['list-all'];

    public function actionListAll(): Response
    {
        return $this->asJson(['ok' => true]);
    }

    public function actionView(int $id): Response {}

    protected function actionHidden() {}

    public function actions(): array
    {
        return [];
    }

    public function beforeAction($action): bool
    {
        return true;
    }
}
-- modules/blog/controllers/BaseController.php --
<?php
namespace modules\blog\controllers;

use craft\web\Controller;

abstract class BaseController extends Controller
{
    public $defaultAction = 'create';

    public function actionShared() {}
}
-- modules/blog/controllers/CommentsController.php --
<?php
namespace modules\blog\controllers;

use modules\blog\traits\Paginates;

class CommentsController extends BaseController
{
    use Paginates;

    public function actionCreate() {}
}
-- modules/blog/traits/Paginates.php --
<?php
namespace modules\blog\traits;

trait Paginates
{
    public function actionPage(int $page) {}
    private function actionSecret() {}
}
-- modules/blog/controllers/HelperController.php --
<?php
namespace modules\blog\controllers;

class HelperController
{
    public function actionNope() {}
}
-- modules/blog/controllers/EmptyController.php --
<?php
namespace modules\blog\controllers;

class EmptyController extends \yii\web\Controller
{
    public function init(): void {}
}
-- modules/blog/controllers/OrphanController.php --
<?php
namespace modules\blog\controllers;

class OrphanController extends \missing\Base
{
    public function actionLost() {}
}
-- modules/blog/controllers/MismatchController.php --
<?php
namespace modules\blog\controllers;

class Misnamed extends \yii\web\Controller
{
    public function actionGo() {}
}
-- modules/blog/controllers/README.md --
not php
`

func blogProject(t *testing.T) (string, models.AutoloadMap) {
	root := testutil.WriteProject(t, blogModule)
	return root, models.AutoloadMap{
		`modules\`: {filepath.Join(root, "modules")},
		`craft\`:   {filepath.Join(root, "vendor", "craftcms", "cms", "src")},
	}
}

func TestSourceReflector_Reflect(t *testing.T) {
	_, autoload := blogProject(t)
	reflector := NewSourceReflector(autoload)

	posts, err := reflector.Reflect(`modules\blog\controllers\PostsController`)
	require.NoError(t, err)

	assert.Equal(t, `modules\blog\controllers\PostsController`, posts.Name())
	assert.False(t, posts.IsAbstract())
	assert.True(t, posts.IsSubclassOf(`yii\web\Controller`))
	assert.True(t, posts.IsSubclassOf(`\craft\web\Controller`))
	assert.False(t, posts.IsSubclassOf(`yii\base\Module`))
	assert.Equal(t, []string{"actionListAll", "actionView", "actions", "beforeAction", "asJson"}, posts.PublicMethodNames())

	value, ok := posts.DefaultValueOf("defaultAction")
	assert.True(t, ok)
	assert.Equal(t, "list-all", value)

	_, ok = posts.DefaultValueOf("layout")
	assert.False(t, ok)
}

func TestSourceReflector_InheritedMembers(t *testing.T) {
	_, autoload := blogProject(t)
	reflector := NewSourceReflector(autoload)

	comments, err := reflector.Reflect(`\modules\blog\controllers\CommentsController`)
	require.NoError(t, err)

	assert.Equal(t, []string{"actionCreate", "actionPage", "actionShared", "asJson"}, comments.PublicMethodNames())

	value, ok := comments.DefaultValueOf("defaultAction")
	assert.True(t, ok)
	assert.Equal(t, "create", value)

	base, err := reflector.Reflect(`modules\blog\controllers\BaseController`)
	require.NoError(t, err)
	assert.True(t, base.IsAbstract())
}

func TestSourceReflector_Failures(t *testing.T) {
	_, autoload := blogProject(t)
	reflector := NewSourceReflector(autoload)

	_, err := reflector.Reflect(`other\Thing`)
	require.Error(t, err)
	var checkErr errors.CheckError
	require.ErrorAs(t, err, &checkErr)
	assert.Equal(t, errors.ReflectionErrorCode, checkErr.ErrorCode())

	_, err = reflector.Reflect(`modules\blog\controllers\MismatchController`)
	assert.Error(t, err)

	assert.True(t, reflector.ClassExists(`modules\blog\traits\Paginates`))
	assert.False(t, reflector.ClassExists(`modules\blog\Missing`))
}

func TestSourceReflector_CyclicHierarchy(t *testing.T) {
	root := testutil.WriteProject(t, `
-- src/A.php --
<?php
namespace loop;
class A extends B { public function actionA() {} }
-- src/B.php --
<?php
namespace loop;
class B extends A { public function actionB() {} }
`)
	reflector := NewSourceReflector(models.AutoloadMap{`loop\`: {filepath.Join(root, "src")}})

	a, err := reflector.Reflect(`loop\A`)
	require.NoError(t, err)

	assert.False(t, a.IsSubclassOf(`yii\web\Controller`))
	assert.Equal(t, []string{"actionA", "actionB"}, a.PublicMethodNames())
}

func TestSourceReflector_LongestPrefixFirst(t *testing.T) {
	root := testutil.WriteProject(t, `
-- generic/blog/Plugin.php --
<?php
namespace modules\blog;
class Plugin {}
-- specific/Plugin.php --
<?php
namespace modules\blog;
class Plugin {}
`)
	reflector := NewSourceReflector(models.AutoloadMap{
		`modules\`:      {filepath.Join(root, "generic")},
		`modules\blog\`: {filepath.Join(root, "specific")},
	})

	path, ok := reflector.FileOf(`modules\blog\Plugin`)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "specific", "Plugin.php"), path)
}

func TestDiscoverer_Discover(t *testing.T) {
	root, autoload := blogProject(t)

	result := NewDiscoverer(NewSourceReflector(autoload), nil).Discover(models.HandleMap{
		"":     models.CoreNamespace,
		"blog": `modules\blog\controllers`,
	}, autoload)

	assert.Equal(t, models.ControllerActions{
		`modules\blog\controllers\PostsController`:    {"actionListAll", "actionView"},
		`modules\blog\controllers\CommentsController`: {"actionCreate", "actionPage", "actionShared"},
	}, result.Controllers)
	assert.Equal(t, []string{filepath.Join(root, "modules", "blog", "controllers")}, result.Directories)

	// MismatchController.php declares another class
	assert.Equal(t, 1, result.Issues.Count())
	assert.True(t, result.Issues.HasCode(errors.ReflectionErrorCode))
}

func TestDiscoverer_NoMatchingPrefix(t *testing.T) {
	_, autoload := blogProject(t)

	result := NewDiscoverer(NewSourceReflector(autoload), nil).Discover(models.HandleMap{
		"shop": `shop\controllers`,
	}, autoload)

	assert.Empty(t, result.Controllers)
	assert.Empty(t, result.Directories)
	assert.True(t, result.Issues.IsEmpty())
}

func TestNamespaceDirectories(t *testing.T) {
	root := testutil.WriteProject(t, `
-- a/blog/controllers/.keep --
-- b/controllers/.keep --
-- fallback/modules/blog/controllers/.keep --
`)
	autoload := models.AutoloadMap{
		`modules\`:      {filepath.Join(root, "a"), filepath.Join(root, "missing")},
		`modules\blog\`: {filepath.Join(root, "b")},
		``:              {filepath.Join(root, "fallback")},
		`other\`:        {filepath.Join(root, "a")},
	}

	dirs := NamespaceDirectories(`modules\blog\controllers`, autoload)

	assert.Equal(t, []string{
		filepath.Join(root, "fallback", "modules", "blog", "controllers"),
		filepath.Join(root, "a", "blog", "controllers"),
		filepath.Join(root, "b", "controllers"),
	}, dirs)
}

func TestCollector_Collect(t *testing.T) {
	root, autoload := blogProject(t)
	reflector := NewSourceReflector(autoload)

	result, err := NewCollector(reflector, nil).Collect(context.Background(), []string{
		filepath.Join(root, "modules"),
		filepath.Join(root, "does-not-exist"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ControllerActions{
		`modules\blog\controllers\PostsController`:    {"actionListAll", "actionView"},
		`modules\blog\controllers\CommentsController`: {"actionCreate", "actionPage", "actionShared"},
		`modules\blog\controllers\Misnamed`:           {"actionGo"},
	}, result.Controllers)
	assert.Equal(t, []string{filepath.Join(root, "modules")}, result.Directories)
}

func TestCollector_Cancelled(t *testing.T) {
	root, autoload := blogProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCollector(NewSourceReflector(autoload), nil).Collect(ctx, []string{root})
	assert.ErrorIs(t, err, context.Canceled)
}
