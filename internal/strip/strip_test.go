package strip

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const westernSample = `Chart for Michael, born 1988-03-14.
SUN:
Sun in Pisces, 23 degrees, twelfth house.
MOON:
Moon in Capricorn, 4 degrees.
TRANSITS:
Jupiter transiting the fourth house this month.
MAJOR ASPECTS:
Moon square Saturn (1.2 deg). Sun trine Pluto (2.8 deg).
HOUSE CUSPS:
1: 14 Aries, 2: 20 Taurus, 3: 18 Gemini.
ELEMENT BALANCE:
Water dominant, earth secondary, fire void.`

const chineseSample = `Four Pillars for Ana.
DAY MASTER:
Yin Water, moderately weak.
DOMINANT ELEMENTS:
Wood, Wood, Fire.
LUCK PILLARS:
2020-2030 Metal Rooster.
VOID ELEMENTS:
Metal.
PRIMARY TENSION AXIS:
Wood controlling Earth, unmetered.
ANNUAL PILLAR:
Fire Horse.`

func TestWestern_KeepsHighSignalSections(t *testing.T) {
	out := Western(westernSample)

	assert.Contains(t, out, "Sun in Pisces")
	assert.Contains(t, out, "Moon square Saturn")
	assert.Contains(t, out, "Water dominant")
	assert.Contains(t, out, "Chart for Michael") // preamble survives
	assert.NotContains(t, out, "Jupiter transiting")
	assert.NotContains(t, out, "14 Aries")
}

func TestChinese_KeepsElementalEconomy(t *testing.T) {
	out := Chinese(chineseSample)

	assert.Contains(t, out, "Yin Water")
	assert.Contains(t, out, "VOID ELEMENTS:")
	assert.Contains(t, out, "Wood controlling Earth")
	assert.NotContains(t, out, "Metal Rooster")
	assert.NotContains(t, out, "Fire Horse")
}

func TestAllSystems_OutputNeverLongerAndDeterministic(t *testing.T) {
	inputs := []string{westernSample, chineseSample, "", "no headers at all\njust prose"}

	for _, system := range []string{"western", "vedic", "chinese", "numerology", "kabbalah", "unknown"} {
		fn := ForSystem(system)
		for _, in := range inputs {
			first := fn(in)
			second := fn(in)
			assert.LessOrEqual(t, len(first), len(in), system)
			assert.Equal(t, first, second, system)
		}
	}
}

func TestOverlay_LabelsBothBlocks(t *testing.T) {
	out := Overlay(Chinese, chineseSample, chineseSample)

	assert.True(t, strings.HasPrefix(out, "PERSON1 CHART:\n"))
	assert.Contains(t, out, "\n\nPERSON2 CHART:\n")
	assert.Equal(t, 2, strings.Count(out, "DAY MASTER:"))
}

func TestGeneric_DropsOnlyKnownNoise(t *testing.T) {
	in := "IDENTITY:\nkept line\nTRANSITS:\ndropped line\nNOTES:\nalso kept"
	out := Generic(in)

	assert.Contains(t, out, "kept line")
	assert.Contains(t, out, "also kept")
	assert.NotContains(t, out, "dropped line")
}

func TestKabbalah_KeepsCorrectionAndVessels(t *testing.T) {
	in := `PRIMARY CORRECTION:
Learning to receive without repaying instantly.
DOMINANT SEPHIROT:
Gevurah, Hod, Yesod.
GEMATRIA WORK TABLE:
aleph=1 bet=2
VOID SEPHIROT:
Chesed.`
	out := Kabbalah(in)

	assert.Contains(t, out, "receive without repaying")
	assert.Contains(t, out, "Chesed")
	assert.NotContains(t, out, "aleph=1")
}
