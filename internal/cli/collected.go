package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/routes"
	"github.com/toyz/actioncheck/internal/utils"
)

// LoadCollected reads collected controller action files, each a JSON object
// mapping controller classes to action method names, and unions them.
func LoadCollected(paths []string) (models.ControllerActions, error) {
	batches := make([]models.ControllerActions, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFileSystemError("read collected data", path, err)
		}

		var batch models.ControllerActions
		if err := json.Unmarshal(content, &batch); err != nil {
			return nil, errors.Wrap(errors.ConfigurationErrorCode, "invalid collected data",
				utils.WrapParseError(path, err)).WithLocation(errors.SourceLocation{File: path})
		}
		batches = append(batches, batch)
	}
	return routes.MergeCollected(batches...), nil
}

// WriteCollected writes controller actions in the collected data format
func WriteCollected(w io.Writer, actions models.ControllerActions) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if actions == nil {
		actions = models.ControllerActions{}
	}
	return encoder.Encode(actions)
}
