package thrippy

import (
	"crypto/tls"
	"fmt"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	DefaultServerAddr = "localhost:14460"
)

// Flags defines CLI flags to load secrets from a Thrippy server. These flags can
// also be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "thrippy-server-addr",
			Usage: "Thrippy gRPC server address",
			Value: DefaultServerAddr,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_SERVER_ADDR"),
				toml.TOML("thrippy.server_addr", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "thrippy-link-id",
			Usage: "optional Thrippy link ID with Slack credentials",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_LINK_ID"),
				toml.TOML("thrippy.link_id", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "thrippy-server-ca-cert",
			Usage: "optional CA certificate file to verify the Thrippy server",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_SERVER_CA_CERT"),
				toml.TOML("thrippy.server_ca_cert", configFilePath),
			),
		},
	}
}

// SecureCreds initializes gRPC client credentials, based on the CLI flags.
// In dev mode the connection is insecure, otherwise it uses TLS with either
// the system's root certificates or the given CA certificate file.
func SecureCreds(cmd *cli.Command) (credentials.TransportCredentials, error) {
	if cmd.Bool("dev") {
		return insecure.NewCredentials(), nil
	}

	ca := cmd.String("thrippy-server-ca-cert")
	if ca == "" {
		return credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}), nil
	}

	creds, err := credentials.NewClientTLSFromFile(ca, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load Thrippy server CA certificate: %w", err)
	}
	return creds, nil
}
