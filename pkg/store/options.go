package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultIconEmoji is used to seed option messages
// when a vote option doesn't specify its own emoji.
const DefaultIconEmoji = "ballot_box_with_check"

// VoteOption is a votable selection, with one line per option.
// Each line follows the convention "name / description / ...".
type VoteOption struct {
	Selection string
	IconEmoji string
	Options   []string
}

// Icon returns the option's reaction emoji name, or [DefaultIconEmoji].
func (o VoteOption) Icon() string {
	if o.IconEmoji == "" {
		return DefaultIconEmoji
	}
	return o.IconEmoji
}

type optionRecord struct {
	Selection *string `json:"selection"`
	IconEmoji string  `json:"icon_emoji,omitempty"`
	Options   *string `json:"options"`
}

// Options is the read-mostly table of [VoteOption] definitions, keyed by selection.
type Options struct {
	t table
}

func NewOptions(kv KV, root string) *Options {
	return &Options{t: newTable(kv, root, OptionsTable)}
}

// Get returns the vote option with the given selection name,
// or nil if it doesn't exist.
func (o *Options) Get(ctx context.Context, selection string) (*VoteOption, error) {
	b, err := o.t.get(ctx, selection)
	if err != nil {
		return nil, fmt.Errorf("failed to read vote option: %w", err)
	}
	if b == nil {
		return nil, nil
	}

	vo, err := decodeOption(selection, b)
	if err != nil {
		return nil, err
	}
	return &vo, nil
}

// Scan returns all the vote options, sorted by selection name.
// There is no filtering or pagination.
func (o *Options) Scan(ctx context.Context) ([]VoteOption, error) {
	kvs, err := o.t.scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan vote options: %w", err)
	}

	vos := make([]VoteOption, 0, len(kvs))
	var errs []error
	for _, kv := range kvs {
		vo, err := decodeOption(o.t.id(kv), kv.Value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		vos = append(vos, vo)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return vos, nil
}

// Put creates or replaces a vote option. Votes never do this,
// it's meant for populating the table out-of-band.
func (o *Options) Put(ctx context.Context, vo VoteOption) error {
	if vo.Selection == "" {
		return errors.New("missing selection name")
	}
	if strings.Contains(vo.Selection, "/") {
		return fmt.Errorf("invalid selection name %q", vo.Selection)
	}

	opts := strings.Join(vo.Options, Delimiter)
	b, err := json.Marshal(optionRecord{
		Selection: &vo.Selection,
		IconEmoji: vo.IconEmoji,
		Options:   &opts,
	})
	if err != nil {
		return err
	}

	if err := o.t.put(ctx, vo.Selection, b); err != nil {
		return fmt.Errorf("failed to write vote option: %w", err)
	}
	return nil
}

func decodeOption(key string, b []byte) (VoteOption, error) {
	r := optionRecord{}
	if err := json.Unmarshal(b, &r); err != nil {
		return VoteOption{}, &DecodeError{Table: OptionsTable, Key: key, Err: err}
	}
	if r.Selection == nil {
		return VoteOption{}, &DecodeError{Table: OptionsTable, Key: key, Field: "selection"}
	}
	if r.Options == nil {
		return VoteOption{}, &DecodeError{Table: OptionsTable, Key: *r.Selection, Field: "options"}
	}

	return VoteOption{
		Selection: *r.Selection,
		IconEmoji: r.IconEmoji,
		Options:   strings.Split(*r.Options, Delimiter),
	}, nil
}
