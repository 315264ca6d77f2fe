package speech

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 300 * time.Millisecond

// WatchDir reloads the voice list whenever files with one of the given
// extensions appear in or disappear from dir. It stops when the speaker is
// closed.
func (s *Speaker) WatchDir(dir string, exts ...string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer w.Close() //nolint:errcheck

		var (
			timer  *time.Timer
			expire <-chan time.Time
		)
		for {
			select {
			case <-s.base.Done():
				if timer != nil {
					timer.Stop()
				}
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !matchesExt(ev.Name, exts) || ev.Op == fsnotify.Chmod {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
				} else {
					timer.Reset(watchDebounce)
				}
				expire = timer.C

			case <-expire:
				expire = nil
				if err := s.Refresh(s.base); err != nil {
					log.Warn("Unable to reload voices", "dir", dir, "error", err)
					continue
				}
				log.Info("Voices reloaded", "dir", dir, "count", len(s.Voices()))

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Debug("Watcher error", "dir", dir, "error", err)
			}
		}
	}()
	return nil
}

func matchesExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
