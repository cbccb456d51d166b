package notebook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrConversion wraps any failure of the external converter.
var ErrConversion = errors.New("notebook conversion failed")

// Converter turns an uploaded notebook file into standalone HTML.
type Converter interface {
	Convert(ctx context.Context, inputPath string) (string, error)
}

// NBConvert shells out to jupyter nbconvert. The conversion runs with a
// bounded deadline; intermediate files are removed afterwards.
type NBConvert struct {
	outputDir string
	timeout   time.Duration
}

// NewNBConvert prepares the converter and its scratch directory.
func NewNBConvert(outputDir string, timeout time.Duration) (*NBConvert, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create notebook output dir: %w", err)
	}
	return &NBConvert{outputDir: outputDir, timeout: timeout}, nil
}

// Convert renders the notebook at inputPath to HTML and returns the markup.
func (n *NBConvert) Convert(ctx context.Context, inputPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	outputName := fmt.Sprintf("%s.html", uuid.NewString())
	outputPath := filepath.Join(n.outputDir, outputName)

	cmd := exec.CommandContext(ctx, "jupyter", "nbconvert", "--to", "html",
		inputPath, "--output-dir", n.outputDir, "--output", outputName)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("%w: %v: %s", ErrConversion, err, out)
	}
	defer os.Remove(outputPath)

	html, err := os.ReadFile(outputPath)
	if err != nil {
		return "", fmt.Errorf("%w: read output: %v", ErrConversion, err)
	}
	return string(html), nil
}
