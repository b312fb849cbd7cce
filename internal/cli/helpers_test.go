package cli

import (
	"io"

	"github.com/toyz/actioncheck/internal/utils"
)

func newTestDiagnostics(w io.Writer) *utils.DiagnosticSystem {
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticDebug)
	diagnostics.SetOutput(w)
	return diagnostics
}
