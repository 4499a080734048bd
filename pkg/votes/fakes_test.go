package votes

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/tzrikka/votebot/pkg/slack"
	"github.com/tzrikka/votebot/pkg/store"
)

type fakeOptions struct {
	vos map[string]store.VoteOption
	err error
}

func (f *fakeOptions) Get(_ context.Context, selection string) (*store.VoteOption, error) {
	if f.err != nil {
		return nil, f.err
	}
	vo, ok := f.vos[selection]
	if !ok {
		return nil, nil
	}
	return &vo, nil
}

func (f *fakeOptions) Scan(_ context.Context) ([]store.VoteOption, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Sorted by selection, like the etcd range read.
	var vos []store.VoteOption
	for _, sel := range slices.Sorted(maps.Keys(f.vos)) {
		vos = append(vos, f.vos[sel])
	}
	return vos, nil
}

type fakeOpenVotes struct {
	ovs     map[string]store.OpenVote
	puts    int
	deletes int
	err     error
}

func newFakeOpenVotes() *fakeOpenVotes {
	return &fakeOpenVotes{ovs: map[string]store.OpenVote{}}
}

func (f *fakeOpenVotes) Get(_ context.Context, voteID string) (*store.OpenVote, error) {
	if f.err != nil {
		return nil, f.err
	}
	ov, ok := f.ovs[voteID]
	if !ok {
		return nil, nil
	}
	return &ov, nil
}

func (f *fakeOpenVotes) Put(_ context.Context, ov store.OpenVote) error {
	if f.err != nil {
		return f.err
	}
	f.puts++
	f.ovs[ov.VoteID] = ov
	return nil
}

func (f *fakeOpenVotes) Delete(_ context.Context, voteID string) error {
	if f.err != nil {
		return f.err
	}
	f.deletes++
	delete(f.ovs, voteID)
	return nil
}

type post struct {
	channel string
	text    string
}

type reaction struct {
	name    string
	channel string
	ts      string
}

// fakeGateway records posted messages and reactions, and serves
// the reactions of posted messages (by timestamp) to close votes.
type fakeGateway struct {
	posts     []post
	reactions []reaction
	messages  map[string]slack.Message

	failPostAfter int // Fail the N-th post (1-based), 0 = never.
	reactErr      error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{messages: map[string]slack.Message{}}
}

func (f *fakeGateway) PostMessage(_ context.Context, channel, text string) (slack.Posted, error) {
	if f.failPostAfter > 0 && len(f.posts)+1 == f.failPostAfter {
		return slack.Posted{}, &slack.GatewayError{Method: "chat.postMessage", Err: fmt.Errorf("ratelimited")}
	}

	f.posts = append(f.posts, post{channel: channel, text: text})
	ts := fmt.Sprintf("1760790896.%06d", len(f.posts))
	f.messages[ts] = slack.Message{Text: text}
	return slack.Posted{Channel: "C123", Timestamp: ts}, nil
}

func (f *fakeGateway) AddReaction(_ context.Context, name, channel, ts string) error {
	if f.reactErr != nil {
		return f.reactErr
	}
	f.reactions = append(f.reactions, reaction{name: name, channel: channel, ts: ts})
	return nil
}

func (f *fakeGateway) Reactions(_ context.Context, channel, ts string) (slack.Message, error) {
	if channel != "C123" {
		return slack.Message{}, &slack.GatewayError{Method: "conversations.history", Err: fmt.Errorf("channel_not_found")}
	}
	msg, ok := f.messages[ts]
	if !ok {
		return slack.Message{}, &slack.GatewayError{Method: "conversations.history", Err: fmt.Errorf("message_not_found")}
	}
	return msg, nil
}

// react sets the reaction counts of a previously-posted message.
func (f *fakeGateway) react(ts string, rs ...slack.Reaction) {
	msg := f.messages[ts]
	msg.Reactions = rs
	f.messages[ts] = msg
}

var openTime = time.Date(2026, time.October, 18, 12, 34, 56, 0, time.UTC)

func lunchOptions() *fakeOptions {
	return &fakeOptions{vos: map[string]store.VoteOption{
		"lunch": {
			Selection: "lunch",
			IconEmoji: "taco",
			Options:   []string{"TacoTruck / street tacos", "Deli / sandwiches"},
		},
	}}
}
