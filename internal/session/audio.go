package session

import "sync"

// AudioPlayer plays session sounds. Calls are fire-and-forget: the machine
// never waits for playback and ignores its outcome.
type AudioPlayer interface {
	// Loop starts looping src as the ambient sound.
	Loop(src string)
	// StopLoop stops the ambient sound, if any.
	StopLoop()
	// PlayOnce plays src a single time.
	PlayOnce(src string)
}

type nopPlayer struct{}

func (nopPlayer) Loop(string)     {}
func (nopPlayer) StopLoop()       {}
func (nopPlayer) PlayOnce(string) {}

// AudioCues is what a remote client should be playing right now.
type AudioCues struct {
	Ambient *string `json:"ambient"`
	// Alarm is the last one-shot sound; AlarmSeq increases each time it fires
	// so clients can tell a new alarm from one they already played.
	Alarm    *string `json:"alarm"`
	AlarmSeq int     `json:"alarm_seq"`
}

// CuePlayer records playback requests for clients that do the actual playing.
type CuePlayer struct {
	mu   sync.Mutex
	cues AudioCues
}

// NewCuePlayer returns a CuePlayer with nothing playing.
func NewCuePlayer() *CuePlayer {
	return &CuePlayer{}
}

func (p *CuePlayer) Loop(src string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues.Ambient = &src
}

func (p *CuePlayer) StopLoop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues.Ambient = nil
}

func (p *CuePlayer) PlayOnce(src string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues.Alarm = &src
	p.cues.AlarmSeq++
}

// Cues returns a copy of the current cues.
func (p *CuePlayer) Cues() AudioCues {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.cues
	if out.Ambient != nil {
		v := *out.Ambient
		out.Ambient = &v
	}
	if out.Alarm != nil {
		v := *out.Alarm
		out.Alarm = &v
	}
	return out
}
