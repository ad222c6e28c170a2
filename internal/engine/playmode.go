// Play-mode event table — ten named kinds from the mode controller, each
// with a fixed multi-axis delta.
package engine

import "github.com/talgya/companion/internal/emotion"

// PlayMode enumerates the play-mode event kinds.
type PlayMode uint8

const (
	PlayDanceMode PlayMode = iota
	PlayStaringContestWin
	PlayStaringContestLose
	PlayPeekaboo
	PlayHideAndSeekFound
	PlayHideAndSeekLost
	PlayCopycat
	PlayStoryTime
	PlayLullaby
	PlaySilentCompanion

	numPlayModes
)

var playModeNames = [numPlayModes]string{
	"dance_mode",
	"staring_contest_win",
	"staring_contest_lose",
	"peekaboo",
	"hide_and_seek_found",
	"hide_and_seek_lost",
	"copycat",
	"story_time",
	"lullaby",
	"silent_companion",
}

func (m PlayMode) String() string {
	if m < numPlayModes {
		return playModeNames[m]
	}
	return "unknown"
}

// ParsePlayMode resolves an event-kind name, as posted by the mode
// controller or the admin API.
func ParsePlayMode(name string) (PlayMode, bool) {
	for i, n := range playModeNames {
		if n == name {
			return PlayMode(i), true
		}
	}
	return 0, false
}

// axisDelta is one row of a fixed multi-axis delta table.
type axisDelta struct {
	valence    float64
	arousal    float64
	energy     float64
	attachment float64
	boredom    float64
}

var playModeDeltas = [numPlayModes]axisDelta{
	PlayDanceMode:          {arousal: 0.2, valence: 0.1, boredom: -0.4},
	PlayStaringContestWin:  {valence: 0.2, arousal: 0.15, attachment: 0.03},
	PlayStaringContestLose: {valence: -0.05, arousal: 0.1, boredom: -0.2},
	PlayPeekaboo:           {valence: 0.15, arousal: 0.12, boredom: -0.25, attachment: 0.01},
	PlayHideAndSeekFound:   {valence: 0.18, arousal: 0.1, boredom: -0.3, attachment: 0.02},
	PlayHideAndSeekLost:    {valence: -0.08, arousal: -0.05, boredom: 0.1},
	PlayCopycat:            {valence: 0.1, arousal: 0.08, boredom: -0.2},
	PlayStoryTime:          {valence: 0.08, arousal: -0.05, attachment: 0.02, boredom: -0.15},
	PlayLullaby:            {arousal: -0.15, valence: 0.05, attachment: 0.01},
	PlaySilentCompanion:    {arousal: -0.1, attachment: 0.02, boredom: -0.05},
}

func (m PlayMode) apply(s *emotion.State) {
	d := playModeDeltas[m]
	s.AdjustValence(d.valence)
	s.AdjustArousal(d.arousal)
	s.AdjustEnergy(d.energy)
	s.AdjustAttachment(d.attachment)
	s.AdjustBoredom(d.boredom)
}
