package main

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/votebot/pkg/etcd"
	"github.com/tzrikka/votebot/pkg/http"
	"github.com/tzrikka/votebot/pkg/store"
)

// seedCommand writes a vote option to etcd. Votes only read vote options,
// so they need to be populated out-of-band, e.g. with this command.
// The etcd flags are inherited from the root command.
func seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Create or replace a vote option",
		ArgsUsage: `<selection> "<name / description>,<name / description>,..."`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "icon-emoji",
				Usage: "reaction emoji for the options (default: " + store.DefaultIconEmoji + ")",
			},
		},
		Action: seed,
	}
}

func seed(ctx context.Context, cmd *cli.Command) error {
	http.InitLog(cmd.Bool("dev"))

	if cmd.NArg() != 2 {
		return errors.New("expected 2 arguments: selection name and options")
	}

	vo, err := newVoteOption(cmd.Args().Get(0), cmd.Args().Get(1), cmd.String("icon-emoji"))
	if err != nil {
		return err
	}

	kv, err := etcd.Connect(cmd)
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := store.NewOptions(kv, cmd.String("etcd-key-prefix")).Put(ctx, vo); err != nil {
		return err
	}

	log.Info().Str("selection", vo.Selection).Int("options", len(vo.Options)).Msg("wrote vote option")
	return nil
}

// newVoteOption splits a delimited list of option lines, and drops empty lines.
func newVoteOption(selection, options, iconEmoji string) (store.VoteOption, error) {
	vo := store.VoteOption{Selection: selection, IconEmoji: iconEmoji}
	for _, opt := range strings.Split(options, store.Delimiter) {
		if opt = strings.TrimSpace(opt); opt != "" {
			vo.Options = append(vo.Options, opt)
		}
	}

	if len(vo.Options) == 0 {
		return vo, errors.New("no vote options")
	}
	return vo, nil
}
