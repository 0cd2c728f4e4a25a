package service

import (
	"errors"
	"fmt"
	"time"
)

type recordingSender struct {
	sent []string
	fail bool
}

func (s *recordingSender) Send(to, subject, body string) error {
	if s.fail {
		return errors.New("smtp unreachable")
	}
	s.sent = append(s.sent, to)
	return nil
}

// newTestEmail returns an address unique across runs so reruns against a
// persistent test database do not trip the users.email constraint.
func newTestEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
