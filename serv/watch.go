package serv

import (
	"os"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// startConfigWatcher re-executes the process when a config file in
// the config directory changes. Development only; the service
// disables it in production.
func startConfigWatcher(s *Service) error {
	binary := os.Args[0]
	if !filepath.IsAbs(binary) {
		var err error
		if binary, err = os.Executable(); err != nil {
			return errors.Wrap(err, "cannot get path to binary")
		}
	}

	dir, err := filepath.Abs(s.conf.cpath)
	if err != nil {
		return err
	}

	st, err := os.Stat(dir)
	if err != nil {
		return errors.Wrap(err, "os.Stat")
	}
	if !st.IsDir() {
		return errors.Errorf("not a directory: %q; can only watch directories", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "cannot setup watcher")
	}
	defer watcher.Close() //nolint: errcheck

	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "cannot add %q to watcher", dir)
	}

	for {
		select {
		case err := <-watcher.Errors:
			s.log.Warnf("config watcher: %v", err)

		case event := <-watcher.Events:
			if event.Op != fsnotify.Create && event.Op != fsnotify.Write {
				continue
			}

			ext := path.Ext(event.Name)
			if ext != ".json" && ext != ".toml" && ext != ".yaml" && ext != ".yml" {
				continue
			}

			// Check the new config parses before restarting on it.
			cf := s.conf.RelPath(GetConfigName())
			if _, err := readInConfig(cf, nil); err != nil {
				s.log.Error(err)
				continue
			}

			s.log.Infof("reloading, config file changed: %s", event.Name)

			// Wait for writes to finish.
			time.Sleep(500 * time.Millisecond)

			if err := syscall.Exec(binary, os.Args, os.Environ()); err != nil {
				s.log.Fatal(err)
			}
		}
	}
}
