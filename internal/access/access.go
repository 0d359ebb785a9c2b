// Package access answers "may this user touch this channel?" for both the
// REST and websocket surfaces, so the two can't drift apart.
package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lalith-99/relay/internal/chat"
	"github.com/lalith-99/relay/internal/repository"
)

type Checker struct {
	members repository.MembershipRepository
}

func NewChecker(members repository.MembershipRepository) *Checker {
	return &Checker{members: members}
}

// CanAccess reports whether userID may read and write channelID.
//
// Two channel kinds, two rules:
//   - DM channels encode their own membership — the two participant ids
//     are part of the channel id, no directory lookup needed.
//   - Named channels check the membership table.
//
// A malformed channel id is simply "no access", not an error: the id came
// from the client.
func (c *Checker) CanAccess(ctx context.Context, channelID string, userID uuid.UUID) (bool, error) {
	if chat.IsDMChannel(channelID) {
		return chat.IsDMMember(channelID, userID.String()), nil
	}

	id, err := uuid.Parse(channelID)
	if err != nil {
		return false, nil
	}

	ok, err := c.members.IsMember(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("check channel access: %w", err)
	}
	return ok, nil
}
