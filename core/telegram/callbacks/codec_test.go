package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data    string
		unique  string
		payload string
	}{
		{"\fprod|42", "prod", "42"},
		{"\fcheckout", "checkout", ""},
		{"\fsubpg|3|1", "subpg", "3|1"},
		{"", "", ""},
	}
	for _, tc := range cases {
		unique, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
		if unique != tc.unique || payload != tc.payload {
			t.Fatalf("ParseCallbackData(%q) = (%q, %q), expected (%q, %q)",
				tc.data, unique, payload, tc.unique, tc.payload)
		}
	}
}

func TestJoinInt64RoundTrip(t *testing.T) {
	p := JoinInt64(7, 2, "|")
	if p != "7|2" {
		t.Fatalf("JoinInt64 = %q", p)
	}
}
