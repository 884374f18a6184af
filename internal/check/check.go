// Package check runs startup diagnostics: the external encoder must be
// resolvable and the scratch directory writable before the daemon accepts
// export requests.
package check

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/backmassage/rendercut/internal/config"
)

// Run verifies the runtime environment described by cfg. It fails fast so
// a broken setup surfaces at startup instead of mid-export.
func Run(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.EncoderBinary); err != nil {
		return fmt.Errorf("encoder binary %q not found: %w", cfg.EncoderBinary, err)
	}

	if err := os.MkdirAll(cfg.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("cannot create scratch directory %s: %w", cfg.ScratchDir, err)
	}
	probe := filepath.Join(cfg.ScratchDir, ".writecheck")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return fmt.Errorf("scratch directory %s is not writable: %w", cfg.ScratchDir, err)
	}
	os.Remove(probe)
	return nil
}
