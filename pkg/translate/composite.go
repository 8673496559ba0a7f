package translate

import (
	"strings"

	"github.com/agentstation/syncbridge/pkg/errors"
)

// CompositeSeparator joins the remote state and reason into one external
// key. Split and Join are symmetric around it.
const CompositeSeparator = "+"

// JoinComposite joins a state and reason into a composite external key.
func JoinComposite(state, reason string) string {
	return state + CompositeSeparator + reason
}

// SplitComposite splits a composite external key into state and reason.
// A key without the separator is malformed and fatal for the artifact
// being translated.
func SplitComposite(key string) (state, reason string, err error) {
	state, reason, found := strings.Cut(key, CompositeSeparator)
	if !found {
		return "", "", errors.NewValidationError("status", key, "composite key missing separator "+CompositeSeparator)
	}
	return state, reason, nil
}
