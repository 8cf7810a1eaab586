package device

import "sync"

// VoicePhase is the numeric voice assistant phase code shared with the
// host and the LED controller.
type VoicePhase int

const (
	PhaseIdle      VoicePhase = 1
	PhaseWaiting   VoicePhase = 2
	PhaseListening VoicePhase = 3
	PhaseThinking  VoicePhase = 4
	PhaseReplying  VoicePhase = 5
	PhaseError     VoicePhase = 11
)

// PhaseFromName maps a host phase name to its code. Unrecognized names
// fall back to idle.
func PhaseFromName(name string) VoicePhase {
	switch name {
	case "idle":
		return PhaseIdle
	case "waiting":
		return PhaseWaiting
	case "listening":
		return PhaseListening
	case "thinking":
		return PhaseThinking
	case "replying":
		return PhaseReplying
	case "error":
		return PhaseError
	default:
		return PhaseIdle
	}
}

// Factory defaults.
const (
	DefaultWakeWord    = "Okay Nabu"
	DefaultSensitivity = "Moderately sensitive"
)

// WakeWordOptions is the fixed list of wake words the device offers.
var WakeWordOptions = []string{"Okay Nabu", "Hey Jarvis", "Hey Mycroft", "Stop"}

// State holds the persistent device settings the host can update.
type State struct {
	mu          sync.RWMutex
	wakeWord    string
	sensitivity string
	phase       VoicePhase
}

// NewState returns the factory default state.
func NewState() *State {
	return &State{
		wakeWord:    DefaultWakeWord,
		sensitivity: DefaultSensitivity,
		phase:       PhaseIdle,
	}
}

// WakeWord returns the active wake word.
func (s *State) WakeWord() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wakeWord
}

// SetWakeWord updates the active wake word.
func (s *State) SetWakeWord(w string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wakeWord = w
}

// Sensitivity returns the wake word sensitivity label.
func (s *State) Sensitivity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sensitivity
}

// SetSensitivity updates the wake word sensitivity label.
func (s *State) SetSensitivity(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sensitivity = v
}

// Phase returns the current voice assistant phase.
func (s *State) Phase() VoicePhase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// SetPhase updates the voice assistant phase.
func (s *State) SetPhase(p VoicePhase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}
