package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/calvinalkan/recview/internal/config"
	"github.com/calvinalkan/recview/pkg/recfile"
	"github.com/calvinalkan/recview/pkg/recview"
)

type recordView = recview.View[recview.Records[recfile.Header], recfile.Value]

// resolvePath makes path relative to the effective working directory.
func resolvePath(cfg *config.Config, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(cfg.EffectiveCwd, path)
}

// openRecords opens the record file and builds its view. The caller must
// close the returned file once it is done with the view.
func openRecords(cfg *config.Config, path string) (*recfile.File, recordView, error) {
	f, err := recfile.Open(resolvePath(cfg, path))
	if err != nil {
		return nil, recordView{}, err
	}

	view, err := f.View()
	if err != nil {
		return nil, recordView{}, errors.Join(err, f.Close())
	}

	return f, view, nil
}

// withRecords runs fn against the view of the file at path and closes it.
func withRecords(cfg *config.Config, path string, fn func(f *recfile.File, view recordView) error) (err error) {
	f, view, err := openRecords(cfg, path)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = fmt.Errorf("close: %w", closeErr)
		}
	}()

	return fn(f, view)
}
