package inbox

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watch observes an agent's mailbox and invokes handler for each message
// appended after the call. It returns a cancel function that stops the
// watcher and waits for the delivery goroutine to drain.
//
// Watch is a pure observer: it reads the log but never flips read flags, so
// it composes with ConsumeUnread. Mailbox documents are replaced by rename,
// which fsnotify reports as create events on the parent directory; the
// watcher therefore watches the directory and filters for the agent's file.
func (ib *Inbox) Watch(agentName string, handler func(Message)) (cancel func(), err error) {
	if err := ib.Init(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(ib.dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	// Snapshot synchronously so any send after Watch returns is seen.
	seen := 0
	if messages, err := ib.readLog(agentName); err == nil {
		seen = len(messages)
	}

	target := filepath.Base(ib.path(agentName))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
					continue
				}
				messages, err := ib.readLog(agentName)
				if err != nil {
					continue
				}
				if len(messages) > seen {
					for _, msg := range messages[seen:] {
						handler(msg)
					}
					seen = len(messages)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() {
		_ = watcher.Close()
		wg.Wait()
	}, nil
}
