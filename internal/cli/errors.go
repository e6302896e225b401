package cli

import (
	"errors"
	"fmt"

	"greenlight-cli/internal/api"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

var errSessionRejected = errors.New("the server rejected the session token; run `greenlight logout` then `greenlight login`")

// describe maps transport errors to CLI messages.
func describe(err error, kind, id string) error {
	switch {
	case errors.Is(err, api.ErrNotFound):
		return errNotFound(kind, id)
	case errors.Is(err, api.ErrUnauthorized):
		return errSessionRejected
	default:
		return err
	}
}
