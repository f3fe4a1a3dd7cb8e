package browser

import (
	"testing"

	"github.com/emersion/go-imap/v2"
)

func TestLoggedIn(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.linkedin.com/feed/", true},
		{"https://www.linkedin.com/notifications/", true},
		{"https://www.linkedin.com/login", false},
		{"https://www.linkedin.com/checkpoint/challenge/xyz", false},
	}
	for _, tc := range cases {
		if got := loggedIn(tc.url); got != tc.want {
			t.Errorf("loggedIn(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestIsChallenge(t *testing.T) {
	if !isChallenge("https://www.linkedin.com/checkpoint/challenge/xyz") {
		t.Error("checkpoint URL should be a challenge")
	}
	if isChallenge("https://www.linkedin.com/feed/") {
		t.Error("feed URL is not a challenge")
	}
}

func TestExtractPIN(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Please use this verification code to complete your sign in: 481923", "481923"},
		{"Your code is 007123.", "007123"},
		{"no code here", ""},
		{"too short 12345 end", ""},
		{"too long 1234567 end", ""},
	}
	for _, tc := range cases {
		if got := extractPIN(tc.text); got != tc.want {
			t.Errorf("extractPIN(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestIsVerificationMail(t *testing.T) {
	bySubject := &imap.Envelope{Subject: "Here's your verification code"}
	if !isVerificationMail(bySubject) {
		t.Error("subject mentioning verification should match")
	}
	bySender := &imap.Envelope{
		Subject: "Hello",
		From:    []imap.Address{{Mailbox: "security-noreply", Host: "linkedin.com"}},
	}
	if !isVerificationMail(bySender) {
		t.Error("sender at linkedin.com should match")
	}
	neither := &imap.Envelope{
		Subject: "Weekly digest",
		From:    []imap.Address{{Mailbox: "news", Host: "example.com"}},
	}
	if isVerificationMail(neither) {
		t.Error("unrelated mail should not match")
	}
}
