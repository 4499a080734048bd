package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/votebot/pkg/etcd"
	"github.com/tzrikka/votebot/pkg/http"
	"github.com/tzrikka/votebot/pkg/slack"
	"github.com/tzrikka/votebot/pkg/thrippy"
	"github.com/tzrikka/votebot/pkg/votes"
	"github.com/tzrikka/xdg"
)

const (
	ConfigDirName  = "votebot"
	ConfigFileName = "config.toml"
)

func main() {
	buildInfo, _ := debug.ReadBuildInfo()
	configFilePath := configFile()

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "simple setup, but unsafe for production",
		},
	}
	flags = append(flags, http.Flags(configFilePath)...)
	flags = append(flags, slack.Flags(configFilePath)...)
	flags = append(flags, thrippy.Flags(configFilePath)...)
	flags = append(flags, etcd.Flags(configFilePath)...)
	flags = append(flags, votes.Flags(configFilePath)...)

	cmd := &cli.Command{
		Name:     "votebot",
		Usage:    "Let Slack users vote with emoji reactions, using slash commands",
		Version:  buildInfo.Main.Version,
		Flags:    flags,
		Action:   http.Start,
		Commands: []*cli.Command{seedCommand()},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// configFile returns the path to the app's configuration file.
// It also creates an empty file if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, err := xdg.CreateFile(xdg.ConfigHome, ConfigDirName, ConfigFileName)
	if err != nil {
		log.Fatal().Err(err).Caller().Send()
	}
	return altsrc.StringSourcer(path)
}
