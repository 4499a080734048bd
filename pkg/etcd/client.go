// Package etcd connects to the etcd cluster that stores vote options and open votes.
package etcd

import (
	"fmt"

	"github.com/urfave/cli/v3"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Connect creates an etcd client based on the CLI flags defined in [Flags].
// The caller is responsible for closing it.
func Connect(cmd *cli.Command) (*clientv3.Client, error) {
	c, err := clientv3.New(clientv3.Config{
		Endpoints:   cmd.StringSlice("etcd-endpoint-urls"),
		DialTimeout: cmd.Duration("etcd-dial-timeout"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	return c, nil
}
