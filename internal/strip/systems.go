package strip

// Western keeps the natal architecture (luminaries, angles, tight aspects,
// element balance) and drops transit weather and house-cusp tables.
func Western(raw string) string {
	return filterSections(raw, []string{
		"SUN", "MOON", "ASCENDANT", "CHART RULER",
		"MAJOR ASPECTS", "TIGHT ASPECTS",
		"ELEMENT BALANCE", "MODALITY BALANCE",
	}, nil)
}

// Vedic keeps lagna, moon nakshatra, the running dasha chapter, and formed
// yogas; divisional tables and transits are dropped.
func Vedic(raw string) string {
	return filterSections(raw, []string{
		"LAGNA", "LAGNA LORD",
		"MOON NAKSHATRA", "MOON SIGN",
		"CURRENT MAHADASHA", "CURRENT ANTARDASHA",
		"YOGAS", "RAHU", "KETU", "SATURN",
	}, nil)
}

// Chinese keeps the elemental economy: day master, dominant elements, void
// elements, and the primary tension axis. Luck pillars and annual sections
// are dropped.
func Chinese(raw string) string {
	return filterSections(raw, []string{
		"DAY MASTER",
		"DOMINANT ELEMENTS", "VOID ELEMENTS",
		"PRIMARY TENSION AXIS",
		"DAY PILLAR",
	}, nil)
}

// Numerology keeps the core numbers and karmic debts; personal year and
// month cycles are dropped.
func Numerology(raw string) string {
	return filterSections(raw, []string{
		"LIFE PATH", "EXPRESSION", "SOUL URGE",
		"KARMIC DEBT", "MASTER NUMBERS",
	}, nil)
}

// Kabbalah keeps the correction statement, dominant and void sephirot, and
// the tension axis; gematria work tables are dropped.
func Kabbalah(raw string) string {
	return filterSections(raw, []string{
		"PRIMARY CORRECTION", "CORRECTION",
		"DOMINANT SEPHIROT", "VOID SEPHIROT",
		"PRIMARY TENSION AXIS",
		"NAME ANALYSIS",
	}, nil)
}
