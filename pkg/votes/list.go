package votes

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tzrikka/votebot/pkg/command"
)

const listPrefix = "The following votes can be cast: "

// list posts the names of all the vote options to the requesting channel.
func (d *Dispatcher) list(ctx context.Context, req command.Request) Response {
	l := zerolog.Ctx(ctx)

	vos, err := d.options.Scan(ctx)
	if err != nil {
		l.Err(err).Msg("failed to list vote options")
		return errorResponse(err)
	}

	names := make([]string, 0, len(vos))
	for _, vo := range vos {
		names = append(names, vo.Selection)
	}

	if _, err := d.chat.PostMessage(ctx, channel(req), listPrefix+strings.Join(names, " , ")); err != nil {
		return errorResponse(err)
	}

	return Response{}
}
