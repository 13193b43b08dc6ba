package pipeline

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"reelforge/internal/logging"
	"reelforge/internal/services"
	"reelforge/internal/textutil"
)

// lockOutput takes an exclusive, non-blocking lock keyed by the output path so
// two invocations never write the same file.
func (o *Orchestrator) lockOutput(output string) (func(), error) {
	dir := filepath.Join(o.cfg.Paths.WorkDir, "locks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, StageProbe, "lock", "create lock directory", err)
	}
	lock := flock.New(filepath.Join(dir, textutil.Token(output)+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, StageProbe, "lock", "acquire output lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, StageProbe, "lock", output, errOutputBusy)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("failed to release output lock", logging.String("path", lock.Path()), logging.Error(err))
		}
	}, nil
}
