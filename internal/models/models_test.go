package models

import "testing"

func TestTrack(t *testing.T) {
	t.Run("HasAudio", func(t *testing.T) {
		if (Track{AudioURL: "https://cdn.example.com/a.mp3"}).HasAudio() == false {
			t.Error("expected HasAudio for a populated URL")
		}
		if (Track{}).HasAudio() {
			t.Error("expected no audio for an empty URL")
		}
		if (Track{AudioURL: "   "}).HasAudio() {
			t.Error("expected no audio for a whitespace URL")
		}
	})

	t.Run("SearchQuery biases toward official audio", func(t *testing.T) {
		track := Track{Title: "Paint It Black", Artist: "The Rolling Stones"}
		want := "Paint It Black The Rolling Stones official audio"
		if got := track.SearchQuery(); got != want {
			t.Errorf("SearchQuery() = %q, want %q", got, want)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		valid := Track{ID: "t1", Title: "Song", Duration: 200}
		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid track, got %v", err)
		}

		cases := []struct {
			name  string
			track Track
		}{
			{"missing id", Track{Title: "Song"}},
			{"missing title", Track{ID: "t1"}},
			{"negative duration", Track{ID: "t1", Title: "Song", Duration: -1}},
		}
		for _, tc := range cases {
			if err := tc.track.Validate(); err == nil {
				t.Errorf("%s: expected validation error", tc.name)
			}
		}
	})
}

func TestPlaylistValidate(t *testing.T) {
	if err := (Playlist{ID: "p1", Name: "Mix"}).Validate(); err != nil {
		t.Errorf("expected valid playlist, got %v", err)
	}
	if err := (Playlist{Name: "Mix"}).Validate(); err == nil {
		t.Error("expected error for missing id")
	}
	if err := (Playlist{ID: "p1"}).Validate(); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestRepeatMode(t *testing.T) {
	t.Run("Next cycles off, all, one", func(t *testing.T) {
		if RepeatOff.Next() != RepeatAll {
			t.Error("expected off to cycle to all")
		}
		if RepeatAll.Next() != RepeatOne {
			t.Error("expected all to cycle to one")
		}
		if RepeatOne.Next() != RepeatOff {
			t.Error("expected one to cycle to off")
		}
	})

	t.Run("string form round-trips", func(t *testing.T) {
		for _, mode := range []RepeatMode{RepeatOff, RepeatAll, RepeatOne} {
			if got := ParseRepeatMode(mode.String()); got != mode {
				t.Errorf("ParseRepeatMode(%q) = %v, want %v", mode.String(), got, mode)
			}
		}
	})

	t.Run("unknown values fall back to off", func(t *testing.T) {
		if ParseRepeatMode("sideways") != RepeatOff {
			t.Error("expected fallback to off")
		}
	})
}
