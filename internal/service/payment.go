package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StubCharger is the stand-in payment collaborator.  It accepts any
// non-empty token and fabricates a payment reference; real settlement
// is explicitly out of scope.  Tokens prefixed with "declined" are
// rejected, which gives manual testing a way to exercise the decline
// path end to end.
type StubCharger struct{}

// NewStubCharger returns the stub payment collaborator.
func NewStubCharger() StubCharger { return StubCharger{} }

func (StubCharger) Charge(ctx context.Context, token string, amountCents uint32) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("missing payment token")
	}
	if strings.HasPrefix(strings.ToLower(token), "declined") {
		return "", errors.New("card declined")
	}
	return fmt.Sprintf("PAY-%s", uuid.NewString()), nil
}
