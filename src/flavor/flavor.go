// Package flavor holds Chad's reflex layer: the addressing normalizer,
// the roast trigger and the motel fortunes. None of it touches mystery
// state; cooldown bookkeeping stays with the engine.
package flavor

import (
	"math/rand"
	"regexp"
	"strings"
)

var (
	roastRe     = regexp.MustCompile(`(?i)(sts\b|over[-\s]?polic|too many rules|north\s*korea|rule\s*police)`)
	fortuneRe   = regexp.MustCompile(`(?i)^chad,\s*ask the motel\b`)
	addressedRe = regexp.MustCompile(`(?i)^chad[, ]`)
)

// RoastCooldownKey is the daily cooldown slot the roast fires under.
const RoastCooldownKey = "roast_daily"

// Normalize rewrites a leading @bot mention so "<@id> hello" reads the
// same as "chad, hello" to everything downstream.
func Normalize(content string, botUserID string) string {
	if botUserID == "" {
		return content
	}
	for _, prefix := range []string{"<@" + botUserID + ">", "<@!" + botUserID + ">"} {
		if strings.HasPrefix(content, prefix) {
			rest := strings.TrimSpace(strings.TrimPrefix(content, prefix))
			if rest == "" {
				return "chad,"
			}
			return "chad, " + rest
		}
	}
	return content
}

// IsAddressed reports whether the message opens with the bot's name.
func IsAddressed(text string) bool {
	return addressedRe.MatchString(text)
}

// IsRoastBait reports whether the message deserves the daily roast.
func IsRoastBait(text string) bool {
	return roastRe.MatchString(text)
}

// WantsFortune reports whether the message asks the motel for a fortune.
func WantsFortune(text string) bool {
	return fortuneRe.MatchString(text)
}

// Pick returns a random line from a pool, or "" for an empty pool.
func Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.Intn(len(pool))]
}
