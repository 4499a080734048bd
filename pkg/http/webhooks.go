package http

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/votebot/pkg/slack"
	"github.com/tzrikka/votebot/pkg/votes"
)

const (
	readTimeout = 3 * time.Second

	// Opening a vote posts each option with a pause after it,
	// so it may take much longer than Slack waits for a response.
	dispatchTimeout = 2 * time.Minute
	writeTimeout    = dispatchTimeout + readTimeout

	maxSize = 64 << 10 // 64 KiB.
)

// Dispatcher handles form-encoded slash command requests.
type Dispatcher interface {
	Handle(ctx context.Context, raw string) votes.Response
}

type httpServer struct {
	httpPort      int    // To initialize the HTTP server.
	signingSecret string // Optional, to verify inbound requests.

	dispatcher Dispatcher
}

func newHTTPServer(cmd *cli.Command, d Dispatcher, signingSecret string) *httpServer {
	return &httpServer{
		httpPort:      cmd.Int("webhook-port"),
		signingSecret: signingSecret,
		dispatcher:    d,
	}
}

func (s *httpServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", s.webhookHandler)
	mux.HandleFunc("POST /webhook", s.webhookHandler)
	mux.HandleFunc("GET /healthz", healthHandler)
	return mux
}

// run starts an HTTP server to expose webhooks.
// This is blocking, to keep the votebot server running.
func (s *httpServer) run() error {
	server := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(s.httpPort)),
		Handler:      s.routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	log.Info().Msgf("HTTP server listening on port %d", s.httpPort)
	err := server.ListenAndServe()
	if err != nil {
		log.Err(err).Send()
		return err
	}

	return nil
}

// webhookHandler checks and dispatches incoming slash command requests.
// Once a request is dispatched, the response is always a JSON object
// with a (possibly empty) "text" field, even if the command failed.
func (s *httpServer) webhookHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	l := log.With().Str("request_id", shortuuid.New()).Str("http_method", r.Method).
		Str("url_path", r.URL.EscapedPath()).Logger()
	l.Info().Msg("received HTTP request")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSize))
	if err != nil {
		l.Warn().Err(err).Msg("failed to read HTTP request body")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if statusCode := slack.CheckRequest(l, r.Header, body, s.signingSecret); statusCode != http.StatusOK {
		// Logging already done in [slack.CheckRequest].
		w.WriteHeader(statusCode)
		return
	}

	raw, ok := formParams(l, r.Header, body)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// Slack may give up waiting before the command is done,
	// but that shouldn't leave a vote half-open.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), dispatchTimeout)
	defer cancel()

	resp := s.dispatcher.Handle(l.WithContext(ctx), raw)

	w.Header().Set(slack.ContentTypeHeader, "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		l.Err(err).Msg("failed to write HTTP response")
	}
}

// socketHandler adapts a [Dispatcher] to slash commands that
// are received over a Slack Socket Mode connection.
func socketHandler(d Dispatcher) slack.CommandFunc {
	return func(ctx context.Context, form string) string {
		ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
		defer cancel()
		return d.Handle(ctx, form).Text
	}
}

// envelope is a request relayed by an API gateway,
// with the original form-encoded body as a single string.
type envelope struct {
	FormParams string `json:"formparams"`
}

// formParams returns the raw form-encoded slash command payload,
// either from the request body itself or from a JSON [envelope].
func formParams(l zerolog.Logger, h http.Header, body []byte) (string, bool) {
	mt, _, _ := mime.ParseMediaType(h.Get(slack.ContentTypeHeader))
	if mt != "application/json" {
		return string(body), true
	}

	e := envelope{}
	if err := json.Unmarshal(body, &e); err != nil {
		l.Warn().Err(err).Msg("bad request: invalid JSON envelope")
		return "", false
	}
	if e.FormParams == "" {
		l.Warn().Msg("bad request: missing form parameters in JSON envelope")
		return "", false
	}

	return e.FormParams, true
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(slack.ContentTypeHeader, "text/plain")
	_, _ = w.Write([]byte("ok"))
}
