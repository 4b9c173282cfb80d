package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/j-veylop/dhikr-tally/internal/logger"
	"github.com/j-veylop/dhikr-tally/internal/metrics"
)

// ErrNoTranscriber is reported for audio files when no transcription
// endpoint is configured.
var ErrNoTranscriber = errors.New("no transcription endpoint configured")

// debounceInterval lets a writer finish a file before it is picked up.
const debounceInterval = 100 * time.Millisecond

// Transcript is the outcome of processing one inbox file.
type Transcript struct {
	Err  error
	ID   string
	File string
	Text string
}

// Inbox watches a directory for recordings and transcripts. Text files
// (*.txt) are read as transcripts. Audio files (*.wav, *.m4a) are sent to
// the transcriber. Every processed file is removed.
type Inbox struct {
	watcher     *fsnotify.Watcher
	transcriber *Transcriber
	ctx         context.Context
	cancel      context.CancelFunc
	events      chan Transcript
	timers      map[string]*time.Timer
	dir         string
	wg          sync.WaitGroup
	mu          sync.Mutex
	closeOnce   sync.Once
}

// NewInbox starts watching dir. transcriber may be nil, in which case audio
// files produce ErrNoTranscriber. Files already present are processed.
func NewInbox(dir string, transcriber *Transcriber) (*Inbox, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create inbox directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to watch inbox: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	in := &Inbox{
		watcher:     watcher,
		transcriber: transcriber,
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan Transcript, 32),
		timers:      make(map[string]*time.Timer),
		dir:         dir,
	}

	in.wg.Add(1)
	go in.watchLoop()

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("failed to scan inbox", "dir", dir, "error", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			in.schedule(filepath.Join(dir, e.Name()))
		}
	}

	return in, nil
}

// Events returns the channel of processed transcripts.
func (in *Inbox) Events() <-chan Transcript {
	return in.events
}

// Dir returns the watched directory.
func (in *Inbox) Dir() string {
	return in.dir
}

func (in *Inbox) watchLoop() {
	defer in.wg.Done()

	for {
		select {
		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				in.schedule(event.Name)
			}

		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			in.send(Transcript{ID: uuid.NewString(), Err: err})

		case <-in.ctx.Done():
			return
		}
	}
}

// schedule debounces processing of path per file.
func (in *Inbox) schedule(path string) {
	if !accepted(path) {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if in.ctx.Err() != nil {
		return
	}
	if t, ok := in.timers[path]; ok {
		t.Stop()
	}
	in.timers[path] = time.AfterFunc(debounceInterval, func() {
		in.mu.Lock()
		delete(in.timers, path)
		in.mu.Unlock()
		in.process(path)
	})
}

func accepted(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".wav", ".m4a":
		return true
	default:
		return false
	}
}

// process claims path by renaming it, then reads or transcribes it.
func (in *Inbox) process(path string) {
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(path))
	claimed := filepath.Join(in.dir, ".claim-"+id+ext)

	if err := os.Rename(path, claimed); err != nil {
		// Already claimed by an earlier event.
		if !os.IsNotExist(err) {
			logger.Warn("failed to claim inbox file", "file", path, "error", err)
		}
		return
	}
	defer func() {
		if err := os.Remove(claimed); err != nil && !os.IsNotExist(err) {
			logger.Error("failed to remove inbox file", "file", claimed, "error", err)
		}
	}()

	t := Transcript{ID: id, File: filepath.Base(path)}

	switch ext {
	case ".txt":
		data, err := os.ReadFile(claimed)
		if err != nil {
			t.Err = fmt.Errorf("failed to read transcript: %w", err)
		} else {
			t.Text = strings.TrimSpace(string(data))
		}
	default:
		if in.transcriber == nil {
			t.Err = ErrNoTranscriber
			break
		}
		text, err := in.transcriber.TranscribeAs(in.ctx, claimed, t.File)
		if err != nil {
			t.Err = err
		} else {
			t.Text = strings.TrimSpace(text)
		}
	}

	if t.Err != nil {
		metrics.RecordTranscript(metrics.OutcomeFailed)
		logger.Warn("voice inbox file failed", "file", t.File, "error", t.Err)
	} else {
		logger.Debug("voice transcript", "file", t.File, "text", t.Text)
	}
	in.send(t)
}

// send delivers t without blocking, dropping the oldest pending transcript
// when the channel is full.
func (in *Inbox) send(t Transcript) {
	select {
	case in.events <- t:
	default:
		select {
		case <-in.events:
		default:
		}
		select {
		case in.events <- t:
		default:
		}
	}
}

// Close stops the watcher and pending timers.
func (in *Inbox) Close() error {
	var err error
	in.closeOnce.Do(func() {
		in.cancel()

		in.mu.Lock()
		for _, t := range in.timers {
			t.Stop()
		}
		in.timers = map[string]*time.Timer{}
		in.mu.Unlock()

		err = in.watcher.Close()
		in.wg.Wait()
	})
	return err
}
