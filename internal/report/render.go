package report

import (
	"context"
	"fmt"
	"log"
	"os/exec"
)

// RenderQuarto renders a .qmd file to each requested format with the
// external quarto CLI. A missing binary is an error the caller can choose
// to report without aborting; individual format failures are logged so the
// remaining formats still render.
func RenderQuarto(ctx context.Context, logger *log.Logger, path string, formats []string) error {
	if _, err := exec.LookPath("quarto"); err != nil {
		return fmt.Errorf("quarto CLI not found, install Quarto to render reports: %w", err)
	}
	for _, format := range formats {
		cmd := exec.CommandContext(ctx, "quarto", "render", path, "--to", format)
		out, err := cmd.CombinedOutput()
		if err != nil {
			logger.Printf("quarto render failed (%s) for %s: %v\n%s", format, path, err, out)
			continue
		}
		logger.Printf("Rendered %s to %s.", path, format)
	}
	return nil
}
