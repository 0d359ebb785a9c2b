package chat

import "strings"

const dmPrefix = "dm_"

// DMChannelID derives the canonical channel id for a direct-message pair.
//
// There is no central allocation step for DM channels — either participant
// must compute the same id independently, so the two user ids are ordered
// lexicographically before concatenation. Commutative:
// DMChannelID(a, b) == DMChannelID(b, a). DMChannelID(a, a) is well-defined
// (the degenerate self-DM).
func DMChannelID(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return dmPrefix + userA + "_" + userB
}

// IsDMChannel reports whether channelID names a direct-message channel.
func IsDMChannel(channelID string) bool {
	return strings.HasPrefix(channelID, dmPrefix)
}

// DMParticipants extracts the two participant ids from a DM channel id.
// ok is false when channelID is not a well-formed DM id.
func DMParticipants(channelID string) (a, b string, ok bool) {
	if !IsDMChannel(channelID) {
		return "", "", false
	}
	rest := strings.TrimPrefix(channelID, dmPrefix)
	i := strings.LastIndex(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// IsDMMember reports whether userID is one of the two participants encoded
// in a DM channel id.
func IsDMMember(channelID, userID string) bool {
	a, b, ok := DMParticipants(channelID)
	return ok && (a == userID || b == userID)
}
