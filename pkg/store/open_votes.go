package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// OpenVote is a vote in progress: the channel where it takes place,
// and the timestamps of its option messages, in the same order as the options.
type OpenVote struct {
	VoteID         string
	Channel        string
	LineTimestamps []string
}

type openVoteRecord struct {
	Vote           *string `json:"vote"`
	Channel        *string `json:"channel"`
	LineTimestamps *string `json:"line_timestamps"`
}

// OpenVotes is the table of [OpenVote] records, keyed by vote ID.
// Records are created and deleted, but never updated.
type OpenVotes struct {
	t table
}

func NewOpenVotes(kv KV, root string) *OpenVotes {
	return &OpenVotes{t: newTable(kv, root, OpenVotesTable)}
}

// Get returns the open vote with the given ID, or nil if it doesn't exist.
func (o *OpenVotes) Get(ctx context.Context, voteID string) (*OpenVote, error) {
	b, err := o.t.get(ctx, voteID)
	if err != nil {
		return nil, fmt.Errorf("failed to read open vote: %w", err)
	}
	if b == nil {
		return nil, nil
	}

	r := openVoteRecord{}
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, &DecodeError{Table: OpenVotesTable, Key: voteID, Err: err}
	}

	switch {
	case r.Vote == nil:
		return nil, &DecodeError{Table: OpenVotesTable, Key: voteID, Field: "vote"}
	case r.Channel == nil:
		return nil, &DecodeError{Table: OpenVotesTable, Key: voteID, Field: "channel"}
	case r.LineTimestamps == nil:
		return nil, &DecodeError{Table: OpenVotesTable, Key: voteID, Field: "line_timestamps"}
	}

	ov := &OpenVote{VoteID: *r.Vote, Channel: *r.Channel}
	if *r.LineTimestamps != "" {
		ov.LineTimestamps = strings.Split(*r.LineTimestamps, Delimiter)
	}
	return ov, nil
}

// Put stores a new open vote.
func (o *OpenVotes) Put(ctx context.Context, ov OpenVote) error {
	ts := strings.Join(ov.LineTimestamps, Delimiter)
	b, err := json.Marshal(openVoteRecord{
		Vote:           &ov.VoteID,
		Channel:        &ov.Channel,
		LineTimestamps: &ts,
	})
	if err != nil {
		return err
	}

	if err := o.t.put(ctx, ov.VoteID, b); err != nil {
		return fmt.Errorf("failed to write open vote: %w", err)
	}
	return nil
}

// Delete removes an open vote. Deleting a vote that
// doesn't exist (e.g. closed concurrently) isn't an error.
func (o *OpenVotes) Delete(ctx context.Context, voteID string) error {
	deleted, err := o.t.delete(ctx, voteID)
	if err != nil {
		return fmt.Errorf("failed to delete open vote: %w", err)
	}
	if !deleted {
		zerolog.Ctx(ctx).Warn().Str("vote_id", voteID).Msg("open vote was already deleted")
	}
	return nil
}
