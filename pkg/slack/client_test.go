package slack

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

// mockSlackServer responds to Slack API methods with canned JSON bodies,
// and records the form parameters of each request.
func mockSlackServer(t *testing.T, resps map[string]string, got map[string]map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse request form: %v", err)
		}
		method := r.URL.Path[1:]
		if got != nil {
			got[method] = map[string]string{}
			for k := range r.PostForm {
				got[method][k] = r.PostForm.Get(k)
			}
		}

		body, ok := resps[method]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if body == "429" {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestClientPostMessage(t *testing.T) {
	got := map[string]map[string]string{}
	s := mockSlackServer(t, map[string]string{
		"chat.postMessage": `{"ok":true,"channel":"C123","ts":"1700000000.000100"}`,
	}, got)
	defer s.Close()

	c := NewClient("xoxb-test", s.URL+"/")
	p, err := c.PostMessage(t.Context(), "#general", "hello")
	if err != nil {
		t.Fatalf("PostMessage() error = %v", err)
	}

	want := Posted{Channel: "C123", Timestamp: "1700000000.000100"}
	if p != want {
		t.Errorf("PostMessage() = %v, want %v", p, want)
	}

	params := got["chat.postMessage"]
	if params["channel"] != "#general" || params["text"] != "hello" || params["as_user"] != "true" {
		t.Errorf("chat.postMessage params = %v", params)
	}
}

func TestClientPostMessageErrors(t *testing.T) {
	tests := []struct {
		name string
		resp string
	}{
		{
			name: "api_error",
			resp: `{"ok":false,"error":"channel_not_found"}`,
		},
		{
			name: "rate_limited",
			resp: "429",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mockSlackServer(t, map[string]string{"chat.postMessage": tt.resp}, nil)
			defer s.Close()

			_, err := NewClient("xoxb-test", s.URL+"/").PostMessage(t.Context(), "#nowhere", "hello")
			ge := new(GatewayError)
			if !errors.As(err, &ge) {
				t.Fatalf("PostMessage() error = %v, want *GatewayError", err)
			}
			if ge.Method != "chat.postMessage" {
				t.Errorf("GatewayError.Method = %q, want %q", ge.Method, "chat.postMessage")
			}
		})
	}
}

func TestClientAddReaction(t *testing.T) {
	got := map[string]map[string]string{}
	s := mockSlackServer(t, map[string]string{"reactions.add": `{"ok":true}`}, got)
	defer s.Close()

	if err := NewClient("xoxb-test", s.URL+"/").AddReaction(t.Context(), "taco", "C123", "1.1"); err != nil {
		t.Fatalf("AddReaction() error = %v", err)
	}

	params := got["reactions.add"]
	if params["name"] != "taco" || params["channel"] != "C123" || params["timestamp"] != "1.1" {
		t.Errorf("reactions.add params = %v", params)
	}
}

func TestClientReactions(t *testing.T) {
	tests := []struct {
		name    string
		resp    string
		want    Message
		wantErr bool
	}{
		{
			name: "happy_path",
			resp: `{"ok":true,"messages":[{"type":"message","text":"TacoTruck / street tacos","ts":"1.1",
				"reactions":[{"name":"taco","count":2,"users":["U1","U2"]},{"name":"+1","count":1,"users":["U3"]}]}]}`,
			want: Message{
				Text:      "TacoTruck / street tacos",
				Reactions: []Reaction{{Name: "taco", Count: 2}, {Name: "+1", Count: 1}},
			},
		},
		{
			name: "no_reactions",
			resp: `{"ok":true,"messages":[{"type":"message","text":"Deli","ts":"1.1"}]}`,
			want: Message{Text: "Deli", Reactions: []Reaction{}},
		},
		{
			name:    "older_message",
			resp:    `{"ok":true,"messages":[{"type":"message","text":"Deli","ts":"1.0"}]}`,
			wantErr: true,
		},
		{
			name:    "no_messages",
			resp:    `{"ok":true,"messages":[]}`,
			wantErr: true,
		},
		{
			name:    "channel_not_found",
			resp:    `{"ok":false,"error":"channel_not_found"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mockSlackServer(t, map[string]string{"conversations.history": tt.resp}, nil)
			defer s.Close()

			got, err := NewClient("xoxb-test", s.URL+"/").Reactions(t.Context(), "C123", "1.1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Reactions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Reactions() = %v, want %v", got, tt.want)
			}
		})
	}
}
