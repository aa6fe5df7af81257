package chat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// FormatNearbyReply renders resolver output as the numbered list shown to
// the user.
func FormatNearbyReply(q types.QueryIntent, places []types.PlaceCandidate) string {
	label := q.Label()
	if len(places) == 0 {
		return fmt.Sprintf("I'm sorry, I couldn't find any %s near your location. Try asking again from a different area.", label)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s near you:\n\n", len(places), label)
	for i, p := range places {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. **%s** (%s)\n   Distance: %s km", i+1, p.Name, p.Category,
			strconv.FormatFloat(p.DistanceKm, 'f', -1, 64))
	}
	return b.String()
}
