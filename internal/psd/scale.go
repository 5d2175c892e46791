package psd

import (
	"math"
	"strings"
)

// referenceImpedance is the 50 ohm load assumed by every scale tag.
const referenceImpedance = 50.0

// floorWatts keeps scaled output finite when a bin's raw power is
// exactly zero (e.g. a freshly repaired DC spike neighbor in an
// all-zero input).
const floorWatts = 1e-20

// Scale converts raw Welch output power to the unit named by tag,
// in place. Unknown tags fall back to "dbm".
func Scale(p []float64, tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for i, raw := range p {
		pw := raw / referenceImpedance
		if pw < floorWatts {
			pw = floorWatts
		}
		dbm := 10 * math.Log10(pw*1000)

		switch tag {
		case "dbuv":
			p[i] = dbm + 107
		case "dbmv":
			p[i] = dbm + 47
		case "w", "watts":
			p[i] = pw
		case "v", "volts":
			p[i] = math.Sqrt(pw * referenceImpedance)
		default: // "dbm" and anything unrecognized
			p[i] = dbm
		}
	}
}
