package device

import (
	"sync"
	"testing"
)

func TestRequestsTakeAndClear(t *testing.T) {
	r := NewRequests()

	if r.TakeUnmute() || r.TakePlayback() {
		t.Fatal("Fresh request set reported armed flags")
	}
	if _, armed := r.TakeVolume(); armed {
		t.Fatal("Fresh volume flag armed")
	}
	if _, armed := r.TakeTone(); armed {
		t.Fatal("Fresh tone flag armed")
	}

	r.SetUnmute()
	r.SetVolume(0.3)
	r.SetTone(ToneRequest{Frequency: 660, DurationMS: 50})
	r.SetPlayback()

	if !r.TakeUnmute() {
		t.Error("Unmute not observed")
	}
	if v, armed := r.TakeVolume(); !armed || v != 0.3 {
		t.Errorf("TakeVolume = %v/%v", v, armed)
	}
	if tone, armed := r.TakeTone(); !armed || tone.Frequency != 660 {
		t.Errorf("TakeTone = %+v/%v", tone, armed)
	}
	if !r.TakePlayback() {
		t.Error("Playback not observed")
	}

	// Second take observes nothing.
	if r.TakeUnmute() || r.TakePlayback() {
		t.Error("Flags observed twice")
	}
	if _, armed := r.TakeVolume(); armed {
		t.Error("Volume observed twice")
	}
	if _, armed := r.TakeTone(); armed {
		t.Error("Tone observed twice")
	}
}

func TestRequestsVolumePersistsAfterTake(t *testing.T) {
	r := NewRequests()

	if v, _ := r.TakeVolume(); v != DefaultRequestedVolume {
		t.Errorf("Initial volume = %v, want %v", v, DefaultRequestedVolume)
	}

	r.SetVolume(0.25)
	r.TakeVolume()

	if v, armed := r.TakeVolume(); armed || v != 0.25 {
		t.Errorf("Volume after take = %v/%v, want 0.25 unarmed", v, armed)
	}
}

func TestRequestsRearm(t *testing.T) {
	r := NewRequests()

	r.SetTone(ToneRequest{Frequency: 440, DurationMS: 500})
	r.TakeTone()
	r.SetTone(ToneRequest{Frequency: 880, DurationMS: 100})

	tone, armed := r.TakeTone()
	if !armed || tone.Frequency != 880 {
		t.Errorf("Rearmed tone = %+v/%v", tone, armed)
	}
}

func TestRequestsConcurrentTakeObservedOnce(t *testing.T) {
	r := NewRequests()

	const rounds = 200
	var observed int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for round := 0; round < rounds; round++ {
		r.SetPlayback()
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if r.TakePlayback() {
					mu.Lock()
					observed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
	}

	if observed != rounds {
		t.Errorf("Flag observed %d times over %d arms", observed, rounds)
	}
}
