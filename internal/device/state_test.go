package device

import "testing"

func TestStateDefaults(t *testing.T) {
	s := NewState()

	if s.WakeWord() != DefaultWakeWord {
		t.Errorf("WakeWord = %q, want %q", s.WakeWord(), DefaultWakeWord)
	}
	if s.Sensitivity() != DefaultSensitivity {
		t.Errorf("Sensitivity = %q, want %q", s.Sensitivity(), DefaultSensitivity)
	}
	if s.Phase() != PhaseIdle {
		t.Errorf("Phase = %d, want %d", s.Phase(), PhaseIdle)
	}
}

func TestPhaseFromName(t *testing.T) {
	cases := []struct {
		name string
		want VoicePhase
	}{
		{"idle", PhaseIdle},
		{"waiting", PhaseWaiting},
		{"listening", PhaseListening},
		{"thinking", PhaseThinking},
		{"replying", PhaseReplying},
		{"error", PhaseError},
		{"sleeping", PhaseIdle},
		{"", PhaseIdle},
	}
	for _, tc := range cases {
		if got := PhaseFromName(tc.name); got != tc.want {
			t.Errorf("PhaseFromName(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestPhaseCodes(t *testing.T) {
	// Codes are shared with the host and the LED controller.
	if PhaseIdle != 1 || PhaseWaiting != 2 || PhaseListening != 3 ||
		PhaseThinking != 4 || PhaseReplying != 5 || PhaseError != 11 {
		t.Error("Phase codes drifted from the protocol values")
	}
}

func TestStateUpdates(t *testing.T) {
	s := NewState()

	s.SetWakeWord("Stop")
	s.SetSensitivity("Slightly sensitive")
	s.SetPhase(PhaseError)

	if s.WakeWord() != "Stop" || s.Sensitivity() != "Slightly sensitive" || s.Phase() != PhaseError {
		t.Errorf("State = %q/%q/%d after updates", s.WakeWord(), s.Sensitivity(), s.Phase())
	}
}
