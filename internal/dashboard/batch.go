package dashboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/proofchain/internal/proofs"
)

// Reporter receives batch progress. progress.Reporter satisfies it.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// RegisterFiles registers every file matching pattern (which may use **) as
// a file output for prompt, one at a time in path order. It stops at the
// first failure and returns the receipts completed so far. rep may be nil.
func (d *Dashboard) RegisterFiles(ctx context.Context, pattern, prompt string, rep Reporter) ([]*Receipt, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, ErrNoFile
	}

	if rep != nil {
		rep.Start(len(matches))
		defer rep.Finish()
	}

	var receipts []*Receipt
	for i, path := range matches {
		if rep != nil {
			rep.Update(i, filepath.Base(path))
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return receipts, fmt.Errorf("read %s: %w", path, err)
		}
		rc, err := d.Register(ctx, RegisterInput{
			Prompt:     prompt,
			OutputType: proofs.OutputFile,
			FileName:   filepath.Base(path),
			File:       data,
		})
		if err != nil {
			return receipts, fmt.Errorf("%s: %w", path, err)
		}
		receipts = append(receipts, rc)
		if rep != nil {
			rep.Update(i+1, filepath.Base(path))
		}
	}
	return receipts, nil
}
