package votes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tzrikka/votebot/pkg/command"
	"github.com/tzrikka/votebot/pkg/store"
)

// VoteIDTimeFormat is the timestamp suffix of vote IDs: MM/DD/YYYY-HH:MM:SS.
const VoteIDTimeFormat = "01/02/2006-15:04:05"

// VoteID combines a selection name and the time when its vote was opened.
func VoteID(selection string, t time.Time) string {
	return selection + "-" + t.Format(VoteIDTimeFormat)
}

// open starts a vote: it posts an announcement, and then each option as
// a separate message, seeded with a reaction for users to click on.
// Messages that were already posted aren't rolled back if a later step fails.
func (d *Dispatcher) open(ctx context.Context, req command.Request) Response {
	selection := req.Arg(0)
	if selection == "" {
		return errorResponse(errors.New("missing selection"))
	}

	l := zerolog.Ctx(ctx).With().Str("selection", selection).Logger()

	vo, err := d.options.Get(ctx, selection)
	if err != nil {
		l.Err(err).Msg("failed to read vote option")
		return errorResponse(err)
	}
	if vo == nil {
		return Response{Text: fmt.Sprintf("%s is not a valid selection", selection)}
	}

	voteID := VoteID(selection, d.clock.Now())
	l = l.With().Str("vote_id", voteID).Logger()

	text := fmt.Sprintf("<!here> %s has opened voting for `%s`. Please vote by clicking on an emoji! "+
		"To close voting, please enter `votebot close %s`", req.Envelope.UserName(), selection, voteID)
	announcement, err := d.chat.PostMessage(ctx, channel(req), text)
	if err != nil {
		return errorResponse(err)
	}

	timestamps := make([]string, 0, len(vo.Options))
	for _, opt := range vo.Options {
		posted, err := d.chat.PostMessage(ctx, channel(req), strings.TrimSpace(opt))
		if err != nil {
			return errorResponse(err)
		}
		timestamps = append(timestamps, posted.Timestamp)

		if err := d.chat.AddReaction(ctx, vo.Icon(), posted.Channel, posted.Timestamp); err != nil {
			return errorResponse(err)
		}

		if err := d.pause(ctx); err != nil {
			return errorResponse(err)
		}
	}

	ov := store.OpenVote{VoteID: voteID, Channel: announcement.Channel, LineTimestamps: timestamps}
	if err := d.openVotes.Put(ctx, ov); err != nil {
		l.Err(err).Msg("failed to write open vote")
		return errorResponse(err)
	}

	l.Info().Int("options", len(timestamps)).Msg("opened vote")
	return Response{}
}
