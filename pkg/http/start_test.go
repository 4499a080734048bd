package http

import (
	"context"
	"testing"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/votebot/pkg/slack"
	"github.com/tzrikka/votebot/pkg/thrippy"
)

func TestLoadSecrets(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    thrippy.Secrets
		wantErr bool
	}{
		{
			name:    "nothing",
			wantErr: true,
		},
		{
			name:    "missing_verification_token",
			args:    []string{"--slack-bot-token", "xoxb-1"},
			wantErr: true,
		},
		{
			name: "flags",
			args: []string{"--slack-bot-token", " xoxb-1 ", "--slack-verification-token", "tok"},
			want: thrippy.Secrets{BotToken: "xoxb-1", VerificationToken: "tok"},
		},
		{
			name: "socket_mode",
			args: []string{"--slack-bot-token", "xoxb-1", "--slack-verification-token", "tok", "--slack-app-token", "xapp-1"},
			want: thrippy.Secrets{BotToken: "xoxb-1", VerificationToken: "tok", AppToken: "xapp-1"},
		},
		{
			name:    "invalid_link_id",
			args:    []string{"--thrippy-link-id", "111"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, env := range []string{"SLACK_BOT_API_TOKEN", "SLACK_CHANNEL_TOKEN", "SLACK_SIGNING_SECRET", "SLACK_APP_TOKEN", "THRIPPY_LINK_ID"} {
				t.Setenv(env, "")
			}

			path := altsrc.StringSourcer(t.TempDir() + "/config.toml")
			flags := append(slack.Flags(path), thrippy.Flags(path)...)
			flags = append(flags, &cli.BoolFlag{Name: "dev"})

			var got thrippy.Secrets
			var err error
			cmd := &cli.Command{
				Name:  "test",
				Flags: flags,
				Action: func(ctx context.Context, cmd *cli.Command) error {
					got, err = loadSecrets(ctx, cmd)
					return nil
				},
			}

			if runErr := cmd.Run(t.Context(), append([]string{"test"}, tt.args...)); runErr != nil {
				t.Fatalf("cmd.Run() error = %v", runErr)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadSecrets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("loadSecrets() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
