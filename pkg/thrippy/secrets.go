package thrippy

import "strings"

// Secrets are the credentials that votebot needs to interact with Slack.
type Secrets struct {
	BotToken          string
	VerificationToken string
	SigningSecret     string
	AppToken          string
}

// NewSecrets trims whitespace (e.g. trailing newlines in secret files).
func NewSecrets(botToken, verificationToken, signingSecret, appToken string) Secrets {
	return Secrets{
		BotToken:          strings.TrimSpace(botToken),
		VerificationToken: strings.TrimSpace(verificationToken),
		SigningSecret:     strings.TrimSpace(signingSecret),
		AppToken:          strings.TrimSpace(appToken),
	}
}

// Fill sets empty secrets using the credentials of a Thrippy link.
// Secrets which are already set locally take precedence.
func (s *Secrets) Fill(creds map[string]string) {
	fill(&s.BotToken, creds["bot_token"])
	fill(&s.VerificationToken, creds["verification_token"])
	fill(&s.SigningSecret, creds["signing_secret"])
	fill(&s.AppToken, creds["app_token"])
}

func fill(s *string, v string) {
	if *s == "" {
		*s = strings.TrimSpace(v)
	}
}
