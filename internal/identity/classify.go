// internal/identity/classify.go
package identity

import "strings"

// upstreamKinds maps known identity-service message literals to classified
// kinds. Matching on exact wording is fragile but is the contract the service
// actually offers; extend the table when upstream adds messages.
var upstreamKinds = map[string]ErrorKind{
	"Invalid login credentials":                KindInvalidCredentials,
	"Email not confirmed":                      KindEmailNotConfirmed,
	"Password should be at least 6 characters": KindWeakPassword,
	"User already registered":                  KindUserExists,
}

// Classify maps a raw identity-service error to its kind. Unrecognized
// messages default to unknown_error, except those containing a network-fetch
// indicator, which map to network_error.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	msg := err.Error()
	if kind, ok := upstreamKinds[msg]; ok {
		return kind
	}
	if strings.Contains(msg, "fetch") {
		return KindNetworkError
	}
	return KindUnknownError
}
