package votes

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tzrikka/votebot/pkg/command"
)

// Results maps each tally to the labels of the options that received it.
type Results map[int][]string

// close counts the reactions on each option message of an open vote,
// posts the results, and only then deletes the open vote. If anything
// fails before that, the vote remains open and closing can be retried.
func (d *Dispatcher) close(ctx context.Context, req command.Request) Response {
	arg := req.Arg(0)
	if arg == "" {
		return closeErrorResponse(errors.New("missing vote ID"))
	}

	voteID, err := url.QueryUnescape(arg)
	if err != nil {
		return closeErrorResponse(err)
	}

	l := zerolog.Ctx(ctx).With().Str("vote_id", voteID).Logger()

	ov, err := d.openVotes.Get(ctx, voteID)
	if err != nil {
		l.Err(err).Msg("failed to read open vote")
		return closeErrorResponse(err)
	}
	if ov == nil {
		return Response{Text: fmt.Sprintf("%s is not an open vote", voteID)}
	}

	results, total := Results{}, 0
	for _, ts := range ov.LineTimestamps {
		msg, err := d.chat.Reactions(ctx, ov.Channel, ts)
		if err != nil {
			return closeErrorResponse(err)
		}

		tally := -1 // The bot's own seeded reaction.
		for _, r := range msg.Reactions {
			tally += r.Count
		}

		results[tally] = append(results[tally], Label(msg.Text))
		total += tally
	}

	if _, err := d.chat.PostMessage(ctx, channel(req), FormatResults(req.Envelope.UserName(), voteID, results, total)); err != nil {
		return closeErrorResponse(err)
	}

	if err := d.openVotes.Delete(ctx, voteID); err != nil {
		l.Err(err).Msg("failed to delete open vote")
		return closeErrorResponse(err)
	}

	l.Info().Int("total", total).Msg("closed vote")
	return Response{}
}

// closeErrorResponse reports all failures the same way,
// without distinguishing Slack API errors from the rest.
func closeErrorResponse(err error) Response {
	return Response{Text: fmt.Sprintf("Error: %v", err)}
}

// Label extracts the name of an option from its message
// text, which follows the convention "name / desc1 / desc2".
func Label(text string) string {
	name, _, _ := strings.Cut(text, "/")
	return strings.TrimSpace(name)
}

// FormatResults lists the tallies in descending order, each with
// all the options that received it, and then the total number of votes.
func FormatResults(user, voteID string, results Results, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<!here> %s closed voting for %s! Results:\n```", user, voteID)

	tallies := slices.Sorted(maps.Keys(results))
	slices.Reverse(tallies)
	for _, t := range tallies {
		fmt.Fprintf(&sb, "%d vote(s) each for %s\n", t, strings.Join(results[t], ", "))
	}

	fmt.Fprintf(&sb, "Total votes: %d\n```", total)
	return sb.String()
}
