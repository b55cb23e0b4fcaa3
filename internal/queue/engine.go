package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/narrator/internal/store"
	"github.com/dgnsrekt/narrator/internal/synth"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrJobNotPending     = errors.New("job is not pending")
	ErrJobNotFailed      = errors.New("job is not failed")
	ErrAlreadyProcessing = errors.New("job is already processing")
)

// Synthesizer produces audio for a job's transcript.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice synth.Voice, onProgress synth.ProgressFunc) ([]byte, error)
}

// Config tunes the engine's processing loop.
type Config struct {
	// CycleDelay is the pause between finishing one job and claiming
	// the next.
	CycleDelay time.Duration
	// FailureDelay is the pause after a failed job before the loop
	// continues.
	FailureDelay time.Duration
	// ArtifactTTL is the retention applied to produced audio.
	ArtifactTTL time.Duration
}

// DefaultConfig returns the engine's standard timing.
func DefaultConfig() Config {
	return Config{
		CycleDelay:   time.Second,
		FailureDelay: 2 * time.Second,
		ArtifactTTL:  store.QueueArtifactTTL,
	}
}

// Observer receives a queue snapshot after every mutation.
type Observer func(Snapshot)

// Engine holds the job list and processes pending jobs one at a time,
// oldest first. All methods are safe for concurrent use.
type Engine struct {
	synthesizer Synthesizer
	store       store.Store
	cfg         Config

	mu        sync.Mutex
	jobs      []*Job
	observers map[int]Observer
	nextObsID int

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine and starts its processing loop. Call Close to
// stop it.
func New(synthesizer Synthesizer, st store.Store, cfg Config) *Engine {
	if cfg.CycleDelay <= 0 {
		cfg.CycleDelay = time.Second
	}
	if cfg.FailureDelay <= 0 {
		cfg.FailureDelay = 2 * time.Second
	}
	if cfg.ArtifactTTL <= 0 {
		cfg.ArtifactTTL = store.QueueArtifactTTL
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		synthesizer: synthesizer,
		store:       st,
		cfg:         cfg,
		observers:   make(map[int]Observer),
		wake:        make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
	}

	e.wg.Add(1)
	go e.run()
	return e
}

// Close stops the processing loop and waits for any in-flight job to
// unwind.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// EnqueueRequest describes a job to add.
type EnqueueRequest struct {
	Title      string
	Transcript string
	Language   string
	// Modifications describe edits already applied to the transcript.
	Modifications []string
	SourceURL     string
	UserID        string
}

// Enqueue adds a pending job and returns its id. The voice is resolved
// from the request language immediately, so later table changes do not
// affect queued jobs. Enqueue never blocks on processing.
func (e *Engine) Enqueue(req EnqueueRequest) string {
	voice := ResolveVoice(req.Language)
	job := &Job{
		ID:                 uuid.NewString(),
		Title:              req.Title,
		Transcript:         req.Transcript,
		OriginalTitle:      req.Title,
		OriginalTranscript: req.Transcript,
		Language:           req.Language,
		Voice:              voice.Name,
		VoiceLocale:        voice.Locale,
		Modifications:      append([]string(nil), req.Modifications...),
		Status:             StatusPending,
		CreatedAt:          time.Now(),
		SourceURL:          req.SourceURL,
		UserID:             req.UserID,
	}

	e.mu.Lock()
	e.jobs = append(e.jobs, job)
	e.mu.Unlock()

	log.Debug("Job enqueued", "id", job.ID, "title", job.Title, "voice", job.Voice)
	e.notify()
	e.kick()
	return job.ID
}

// List returns a copy of every job, oldest first.
func (e *Engine) List() []Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked().Jobs
}

// Get returns the job with the given id.
func (e *Engine) Get(id string) (Job, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if job := e.findLocked(id); job != nil {
		return job.clone(), true
	}
	return Job{}, false
}

// Stats returns current queue counts.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked()
}

// Update applies an edit to a pending job's title or transcript,
// recording the modification. Empty fields leave the current value.
func (e *Engine) Update(id, title, transcript, modification string) error {
	e.mu.Lock()
	job := e.findLocked(id)
	if job == nil {
		e.mu.Unlock()
		return ErrJobNotFound
	}
	if job.Status != StatusPending {
		e.mu.Unlock()
		return ErrJobNotPending
	}
	if title != "" {
		job.Title = title
	}
	if transcript != "" {
		job.Transcript = transcript
	}
	if modification != "" {
		job.Modifications = append(job.Modifications, modification)
	}
	e.mu.Unlock()

	e.notify()
	return nil
}

// Process moves a pending job to the front of the queue and wakes the
// loop so it is claimed next.
func (e *Engine) Process(id string) error {
	e.mu.Lock()
	job := e.findLocked(id)
	switch {
	case job == nil:
		e.mu.Unlock()
		return ErrJobNotFound
	case job.Status == StatusProcessing:
		e.mu.Unlock()
		return ErrAlreadyProcessing
	case job.Status != StatusPending:
		e.mu.Unlock()
		return ErrJobNotPending
	}

	for i, j := range e.jobs {
		if j.ID == id {
			e.jobs = append(e.jobs[:i], e.jobs[i+1:]...)
			e.jobs = append([]*Job{job}, e.jobs...)
			break
		}
	}
	e.mu.Unlock()

	e.notify()
	e.kick()
	return nil
}

// Retry returns a failed job to pending with its progress and error
// cleared.
func (e *Engine) Retry(id string) error {
	e.mu.Lock()
	job := e.findLocked(id)
	if job == nil {
		e.mu.Unlock()
		return ErrJobNotFound
	}
	if job.Status != StatusFailed {
		e.mu.Unlock()
		return ErrJobNotFailed
	}
	job.Status = StatusPending
	job.Progress = 0
	job.Error = ""
	e.mu.Unlock()

	log.Debug("Job retried", "id", id)
	e.notify()
	e.kick()
	return nil
}

// Remove deletes a job in any state. Removing the in-flight job lets
// its synthesis finish in the background and silently drops the result.
func (e *Engine) Remove(id string) error {
	e.mu.Lock()
	idx := -1
	for i, j := range e.jobs {
		if j.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return ErrJobNotFound
	}
	e.jobs = append(e.jobs[:idx], e.jobs[idx+1:]...)
	e.mu.Unlock()

	e.notify()
	return nil
}

// ClearCompleted removes every completed job.
func (e *Engine) ClearCompleted() int {
	return e.clearWhere(func(j *Job) bool { return j.Status == StatusCompleted })
}

// ClearAll removes every job unconditionally. Clearing the in-flight
// job behaves like Remove: the synthesis finishes in the background and
// its result is silently dropped.
func (e *Engine) ClearAll() int {
	return e.clearWhere(func(*Job) bool { return true })
}

func (e *Engine) clearWhere(drop func(*Job) bool) int {
	e.mu.Lock()
	kept := e.jobs[:0]
	removed := 0
	for _, j := range e.jobs {
		if drop(j) {
			removed++
			continue
		}
		kept = append(kept, j)
	}
	e.jobs = kept
	e.mu.Unlock()

	if removed > 0 {
		e.notify()
	}
	return removed
}

// Subscribe registers an observer and returns its unsubscribe function.
// The observer immediately receives the current snapshot.
func (e *Engine) Subscribe(obs Observer) func() {
	e.mu.Lock()
	id := e.nextObsID
	e.nextObsID++
	e.observers[id] = obs
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	obs(snapshot)

	return func() {
		e.mu.Lock()
		delete(e.observers, id)
		e.mu.Unlock()
	}
}

// run is the processing loop. One job is in flight at a time.
func (e *Engine) run() {
	defer e.wg.Done()

	for {
		job := e.claimNext()
		if job == nil {
			select {
			case <-e.wake:
				continue
			case <-e.ctx.Done():
				return
			}
		}

		delay := e.processJob(job)
		if !e.sleep(delay) {
			return
		}
	}
}

// claimNext marks the oldest pending job as processing and returns a
// copy of it. Nil when nothing is pending.
func (e *Engine) claimNext() *Job {
	e.mu.Lock()
	var claimed *Job
	for _, j := range e.jobs {
		if j.Status == StatusPending {
			j.Status = StatusProcessing
			j.Progress = 10
			copied := j.clone()
			claimed = &copied
			break
		}
	}
	e.mu.Unlock()

	if claimed != nil {
		log.Debug("Processing job", "id", claimed.ID, "title", claimed.Title)
		e.notify()
	}
	return claimed
}

// processJob synthesizes and persists one job, writing the outcome back
// by id. It returns how long the loop should pause before the next
// claim.
func (e *Engine) processJob(job *Job) time.Duration {
	// The voice was fixed at enqueue time; never re-resolve it here.
	voice := synth.Voice{Name: job.Voice, Locale: job.VoiceLocale}
	e.setProgress(job.ID, 30)

	data, err := e.synthesizer.Synthesize(e.ctx, job.Transcript, voice, func(done, total int) {
		if total <= 0 {
			return
		}
		e.setProgress(job.ID, 30+30*done/total)
	})
	if err != nil {
		// A shutdown mid-synthesis returns the job to pending so a
		// later run can pick it up.
		if e.ctx.Err() != nil {
			e.mu.Lock()
			if j := e.findLocked(job.ID); j != nil && j.Status == StatusProcessing {
				j.Status = StatusPending
				j.Progress = 0
			}
			e.mu.Unlock()
			return e.cfg.CycleDelay
		}
		e.failJob(job.ID, err)
		return e.cfg.FailureDelay
	}
	e.setProgress(job.ID, 60)

	artifact := store.NewArtifact(job.Title, data, voice.Name, job.Transcript, e.cfg.ArtifactTTL)
	e.setProgress(job.ID, 80)

	// A job removed mid-flight drops its result without persisting.
	if _, ok := e.Get(job.ID); !ok {
		log.Debug("Job removed during processing, dropping result", "id", job.ID)
		return e.cfg.CycleDelay
	}

	if err := e.store.SaveAudioFile(e.ctx, job.UserID, artifact); err != nil {
		e.failJob(job.ID, err)
		return e.cfg.FailureDelay
	}

	e.mu.Lock()
	if j := e.findLocked(job.ID); j != nil {
		j.Status = StatusCompleted
		j.Progress = 100
		j.Error = ""
		j.ProcessedAt = time.Now()
		j.Audio = &artifact
	}
	e.mu.Unlock()

	log.Info("Job completed", "id", job.ID, "title", job.Title, "size", artifact.Size)
	e.notify()
	return e.cfg.CycleDelay
}

func (e *Engine) setProgress(id string, progress int) {
	e.mu.Lock()
	job := e.findLocked(id)
	if job == nil || job.Status != StatusProcessing {
		e.mu.Unlock()
		return
	}
	if progress > job.Progress {
		job.Progress = progress
	}
	e.mu.Unlock()

	e.notify()
}

func (e *Engine) failJob(id string, err error) {
	e.mu.Lock()
	if job := e.findLocked(id); job != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	}
	e.mu.Unlock()

	log.Warn("Job failed", "id", id, "error", err)
	e.notify()
}

// sleep pauses for d, returning early on a wake signal. False means the
// engine is shutting down.
func (e *Engine) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-e.wake:
		return true
	case <-e.ctx.Done():
		return false
	}
}

// kick nudges the loop without blocking.
func (e *Engine) kick() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) findLocked(id string) *Job {
	for _, j := range e.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (e *Engine) statsLocked() Stats {
	stats := Stats{Total: len(e.jobs)}
	for _, j := range e.jobs {
		switch j.Status {
		case StatusPending:
			stats.Pending++
		case StatusProcessing:
			stats.Processing++
		case StatusCompleted:
			stats.Completed++
		case StatusFailed:
			stats.Failed++
		}
	}
	return stats
}

func (e *Engine) snapshotLocked() Snapshot {
	jobs := make([]Job, len(e.jobs))
	for i, j := range e.jobs {
		jobs[i] = j.clone()
	}
	return Snapshot{Jobs: jobs, Stats: e.statsLocked()}
}

// notify delivers the current snapshot to every observer. Observers run
// outside the lock; a slow observer delays notifications, not queue
// operations.
func (e *Engine) notify() {
	e.mu.Lock()
	snapshot := e.snapshotLocked()
	observers := make([]Observer, 0, len(e.observers))
	for _, obs := range e.observers {
		observers = append(observers, obs)
	}
	e.mu.Unlock()

	for _, obs := range observers {
		obs(snapshot)
	}
}
