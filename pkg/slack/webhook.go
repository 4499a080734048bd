package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	ContentTypeHeader = "Content-Type"
	timestampHeader   = "X-Slack-Request-Timestamp"
	signatureHeader   = "X-Slack-Signature"

	// The maximum shift/delay that we allow between an inbound request's
	// timestamp, and our current timestamp, to defend against replay attacks.
	// See https://docs.slack.dev/authentication/verifying-requests-from-slack.
	maxDifference = 5 * time.Minute

	// Slack API implementation detail.
	// See https://docs.slack.dev/authentication/verifying-requests-from-slack.
	slackSigVersion = "v0"
)

// CheckRequest verifies the headers and signature of an inbound slash command
// request. It returns [http.StatusOK] if the request is valid, or an HTTP status
// code to reject it with. An empty signing secret skips the signature checks.
func CheckRequest(l zerolog.Logger, h http.Header, body []byte, signingSecret string) int {
	statusCode := checkContentTypeHeader(l, h)
	if statusCode != http.StatusOK {
		return statusCode
	}

	if signingSecret == "" {
		return http.StatusOK
	}

	statusCode = checkTimestampHeader(l, h)
	if statusCode != http.StatusOK {
		return statusCode
	}

	return checkSignatureHeader(l, h, body, signingSecret)
}

func checkContentTypeHeader(l zerolog.Logger, h http.Header) int {
	v := h.Get(ContentTypeHeader)
	mt, _, err := mime.ParseMediaType(v)
	if err != nil || (mt != "application/x-www-form-urlencoded" && mt != "application/json") {
		l.Warn().Str("header", ContentTypeHeader).Str("got", v).
			Msg("bad request: unexpected header value")
		return http.StatusBadRequest
	}

	return http.StatusOK
}

func checkTimestampHeader(l zerolog.Logger, h http.Header) int {
	ts := h.Get(timestampHeader)
	if ts == "" {
		l.Warn().Str("header", timestampHeader).Msg("bad request: missing header")
		return http.StatusBadRequest
	}

	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		l.Warn().Str("header", timestampHeader).Str("got", ts).
			Msg("bad request: invalid header value")
		return http.StatusBadRequest
	}

	d := time.Since(time.Unix(secs, 0))
	if d.Abs() > maxDifference {
		l.Warn().Str("header", timestampHeader).Dur("difference", d).
			Msg("bad request: stale header value")
		return http.StatusBadRequest
	}

	return http.StatusOK
}

func checkSignatureHeader(l zerolog.Logger, h http.Header, body []byte, secret string) int {
	sig := h.Get(signatureHeader)
	if sig == "" {
		l.Warn().Str("header", signatureHeader).Msg("bad request: missing header")
		return http.StatusForbidden
	}

	ts := h.Get(timestampHeader)
	if !verifySignature(l, secret, ts, sig, body) {
		l.Warn().Str("signature", sig).Msg("signature verification failed")
		return http.StatusForbidden
	}

	return http.StatusOK
}

// verifySignature implements
// https://docs.slack.dev/authentication/verifying-requests-from-slack.
func verifySignature(l zerolog.Logger, signingSecret, ts, want string, body []byte) bool {
	mac := hmac.New(sha256.New, []byte(signingSecret))

	n, err := mac.Write(fmt.Appendf(nil, "%s:%s:", slackSigVersion, ts))
	if err != nil {
		l.Err(err).Msg("HMAC write error")
		return false
	}
	if n != len(ts)+4 {
		return false
	}

	if n, err := mac.Write(body); err != nil || n != len(body) {
		return false
	}

	got := fmt.Sprintf("%s=%s", slackSigVersion, hex.EncodeToString(mac.Sum(nil)))
	return hmac.Equal([]byte(got), []byte(want))
}
