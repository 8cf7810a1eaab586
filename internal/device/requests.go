package device

import "sync"

// ToneRequest describes a pending tone playback.
type ToneRequest struct {
	Frequency  int
	DurationMS int
}

// DefaultRequestedVolume is reported until the host requests a change.
const DefaultRequestedVolume = 0.85

// Requests holds the one-shot flags the host arms and the firmware glue
// consumes. Each Take method observes and clears its flag atomically, so
// an armed flag is seen true exactly once. Safe for concurrent use.
type Requests struct {
	mu              sync.Mutex
	unmute          bool
	volumeChange    bool
	requestedVolume float64
	tone            bool
	toneRequest     ToneRequest
	playback        bool
}

// NewRequests returns a request set with nothing armed.
func NewRequests() *Requests {
	return &Requests{requestedVolume: DefaultRequestedVolume}
}

// SetUnmute arms the unmute flag.
func (r *Requests) SetUnmute() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unmute = true
}

// TakeUnmute observes and clears the unmute flag.
func (r *Requests) TakeUnmute() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.unmute
	r.unmute = false
	return v
}

// SetVolume arms a volume change with the requested level.
func (r *Requests) SetVolume(volume float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requestedVolume = volume
	r.volumeChange = true
}

// TakeVolume observes and clears the volume flag. The returned level is
// the most recently requested volume regardless of the flag.
func (r *Requests) TakeVolume() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	armed := r.volumeChange
	r.volumeChange = false
	return r.requestedVolume, armed
}

// SetTone arms a tone playback request.
func (r *Requests) SetTone(tone ToneRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toneRequest = tone
	r.tone = true
}

// TakeTone observes and clears the tone flag.
func (r *Requests) TakeTone() (ToneRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	armed := r.tone
	r.tone = false
	return r.toneRequest, armed
}

// SetPlayback arms the playback-occurred flag.
func (r *Requests) SetPlayback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playback = true
}

// TakePlayback observes and clears the playback flag.
func (r *Requests) TakePlayback() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.playback
	r.playback = false
	return v
}
