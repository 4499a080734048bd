// Package slack is the chat gateway of votebot: it posts messages, adds
// reactions and reads them back using the [Slack Web API], verifies that
// inbound [slash command] requests were sent by Slack, and can also receive
// slash commands without a public endpoint, using [Socket Mode].
//
// [Slack Web API]: https://docs.slack.dev/apis/web-api
// [slash command]: https://docs.slack.dev/interactivity/implementing-slash-commands
// [Socket Mode]: https://docs.slack.dev/apis/events-api/using-socket-mode
package slack
