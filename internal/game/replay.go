package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/koacards/koa-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const replayFormatVersion = 1

// Replay is the ordered event log of one combat, with a cursor for stepping
// through it.
type Replay struct {
	CombatID     string
	Enemy        string
	Events       []rules.Event
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(combatID, enemy string) *Replay {
	return &Replay{
		CombatID: combatID,
		Enemy:    enemy,
		Events:   make([]rules.Event, 0),
	}
}

// Record appends an event.
func (r *Replay) Record(evt rules.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Events = append(r.Events, evt)
}

// Start rewinds the cursor.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the event under the cursor and advances it.
func (r *Replay) Next() (rules.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Events) {
		evt := r.Events[r.CurrentIndex]
		r.CurrentIndex++
		return evt, true
	}
	return rules.Event{}, false
}

// Previous moves the cursor back and returns the event there.
func (r *Replay) Previous() (rules.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Events[r.CurrentIndex], true
	}
	return rules.Event{}, false
}

// Skip moves the cursor by count events, clamped to the log.
func (r *Replay) Skip(count int) (rules.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Events) == 0 {
		return rules.Event{}, false
	}
	newIndex := r.CurrentIndex + count
	if newIndex >= len(r.Events) {
		newIndex = len(r.Events) - 1
	}
	if newIndex < 0 {
		newIndex = 0
	}
	r.CurrentIndex = newIndex
	return r.Events[r.CurrentIndex], true
}

// Size returns the number of recorded events.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Events)
}

// Filter returns the recorded events of the given type.
func (r *Replay) Filter(eventType rules.EventType) []rules.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []rules.Event
	for _, evt := range r.Events {
		if evt.Type == eventType {
			matched = append(matched, evt)
		}
	}
	return matched
}

// SaveToFile writes the replay as gzipped gob to <directory>/<combat id>.replay.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", r.CombatID))
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := gob.NewEncoder(gzipWriter)
	metadata := replayMetadata{
		CombatID:   r.CombatID,
		Enemy:      r.Enemy,
		Timestamp:  time.Now(),
		Version:    replayFormatVersion,
		EventCount: len(r.Events),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range r.Events {
		if err := encoder.Encode(&r.Events[i]); err != nil {
			return fmt.Errorf("failed to encode event %d: %w", i, err)
		}
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, combatID string) (*Replay, error) {
	filename := filepath.Join(directory, fmt.Sprintf("%s.replay", combatID))

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)
	var metadata replayMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != replayFormatVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", metadata.Version)
	}

	replay := NewReplay(metadata.CombatID, metadata.Enemy)
	for i := 0; i < metadata.EventCount; i++ {
		var evt rules.Event
		if err := decoder.Decode(&evt); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", i, err)
		}
		replay.Events = append(replay.Events, evt)
	}
	return replay, nil
}

type replayMetadata struct {
	CombatID   string
	Enemy      string
	Timestamp  time.Time
	Version    int
	EventCount int
}

// ReplayRecorder keeps the replay of every combat attached to it.
// A combat's replay is restarted each time the combat starts.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	saveDir string
}

// NewReplayRecorder creates a recorder saving to saveDir. An empty saveDir
// keeps replays in memory only.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// Attach starts recording the combat's events. It returns a function that
// detaches the recorder.
func (rr *ReplayRecorder) Attach(c *Combat) func() {
	combatID := c.ID()
	handle := c.Events().Subscribe(func(evt rules.Event) {
		if evt.Type == rules.EventCombatStarted {
			rr.begin(combatID, evt.TargetID)
		}
		rr.record(combatID, evt)
	})
	return func() { c.Events().Unsubscribe(handle) }
}

func (rr *ReplayRecorder) begin(combatID, enemy string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[combatID] = NewReplay(combatID, enemy)
	rr.logger.Debug("started replay recording",
		zap.String("combat_id", combatID),
		zap.String("enemy", enemy),
	)
}

func (rr *ReplayRecorder) record(combatID string, evt rules.Event) {
	rr.mu.RLock()
	replay := rr.replays[combatID]
	rr.mu.RUnlock()

	if replay == nil {
		return
	}
	replay.Record(evt)
}

// GetReplay returns the replay recorded for a combat.
func (rr *ReplayRecorder) GetReplay(combatID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	replay, exists := rr.replays[combatID]
	return replay, exists
}

// SaveReplay writes a combat's replay to disk.
func (rr *ReplayRecorder) SaveReplay(combatID string) error {
	if rr.saveDir == "" {
		return nil
	}
	replay, exists := rr.GetReplay(combatID)
	if !exists {
		return fmt.Errorf("no replay found for combat %s", combatID)
	}
	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	rr.logger.Info("saved replay to disk",
		zap.String("combat_id", combatID),
		zap.Int("event_count", replay.Size()),
		zap.String("directory", rr.saveDir),
	)
	return nil
}

// LoadReplay reads a saved replay.
func (rr *ReplayRecorder) LoadReplay(combatID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, combatID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("loaded replay from disk",
		zap.String("combat_id", combatID),
		zap.Int("event_count", replay.Size()),
	)
	return replay, nil
}

// ClearReplay drops a replay from memory.
func (rr *ReplayRecorder) ClearReplay(combatID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, combatID)
}
