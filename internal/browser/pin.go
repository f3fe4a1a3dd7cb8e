package browser

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// PINSource hands the login flow a one-time verification code.
type PINSource interface {
	FetchPIN(ctx context.Context) (string, error)
}

// PINFetcher polls an IMAP mailbox for the verification email and extracts
// the six-digit code from it.
type PINFetcher struct {
	addr     string
	username string
	password string
	logger   *slog.Logger

	pollInterval time.Duration
	maxPolls     int
}

func NewPINFetcher(addr, username, password string, logger *slog.Logger) *PINFetcher {
	return &PINFetcher{
		addr:         addr,
		username:     username,
		password:     password,
		logger:       logger,
		pollInterval: 10 * time.Second,
		maxPolls:     12,
	}
}

var pinRe = regexp.MustCompile(`\b(\d{6})\b`)

// FetchPIN polls the mailbox until a fresh verification email shows up.
// The challenge email can lag the challenge page by a minute or more.
func (p *PINFetcher) FetchPIN(ctx context.Context) (string, error) {
	since := time.Now().Add(-10 * time.Minute)
	for attempt := 0; attempt < p.maxPolls; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.pollInterval):
			}
		}
		pin, err := p.scanMailbox(ctx, since)
		if err != nil {
			return "", err
		}
		if pin != "" {
			return pin, nil
		}
		p.logger.Debug("no verification email yet", "attempt", attempt+1)
	}
	return "", fmt.Errorf("no verification email within %v", time.Duration(p.maxPolls)*p.pollInterval)
}

// scanMailbox checks unseen mail newer than since and returns the first PIN
// found, or "" when none of the messages carry one.
func (p *PINFetcher) scanMailbox(ctx context.Context, since time.Time) (string, error) {
	c, err := imapclient.DialTLS(p.addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	})
	if err != nil {
		return "", fmt.Errorf("imap dial: %w", err)
	}
	defer c.Close()

	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(p.username, p.password).Wait(); err != nil {
		return "", fmt.Errorf("imap login: %w", err)
	}
	if _, err := c.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return "", fmt.Errorf("imap select inbox: %w", err)
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   since,
	}
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return "", fmt.Errorf("imap search: %w", err)
	}
	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return "", nil
	}

	bodySection := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierText,
		Peek:      true,
	}
	fetchOptions := &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}
	msgs, err := c.Fetch(imap.UIDSetNum(uids...), fetchOptions).Collect()
	if err != nil {
		return "", fmt.Errorf("imap fetch: %w", err)
	}

	// Newest first.
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Envelope == nil || !isVerificationMail(msg.Envelope) {
			continue
		}
		if pin := extractPIN(string(msg.FindBodySection(bodySection))); pin != "" {
			p.logger.Info("verification PIN received", "subject", msg.Envelope.Subject)
			return pin, nil
		}
		// Subject lines sometimes carry the code directly.
		if pin := extractPIN(msg.Envelope.Subject); pin != "" {
			return pin, nil
		}
	}
	return "", nil
}

func isVerificationMail(env *imap.Envelope) bool {
	subject := strings.ToLower(env.Subject)
	if strings.Contains(subject, "verification") || strings.Contains(subject, "security code") {
		return true
	}
	for _, from := range env.From {
		if strings.Contains(strings.ToLower(from.Host), "linkedin") {
			return true
		}
	}
	return false
}

func extractPIN(text string) string {
	if m := pinRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}
