package tui

import "greenlight-cli/internal/model"

type view int

const (
	viewLogin view = iota
	viewList
	viewDetail
	viewCreate
)

func (v view) String() string {
	switch v {
	case viewLogin:
		return "login"
	case viewList:
		return "list"
	case viewDetail:
		return "detail"
	case viewCreate:
		return "create"
	default:
		return "unknown"
	}
}

type loginDoneMsg struct{ err error }

type logoutDoneMsg struct{ err error }

type listFetchedMsg struct {
	applied bool
	err     error
}

// searchDebounceMsg fires SearchDebounce after a keystroke; only the newest seq refetches.
type searchDebounceMsg struct{ seq uint64 }

type listDeletedMsg struct {
	ids []string
	err error
}

type detailLoadedMsg struct {
	id  string
	err error
}

type detailSavedMsg struct {
	client model.Client
	err    error
}

type detailDeletedMsg struct {
	id  string
	err error
}

// detailAppendedMsg follows a note or tracking submission.
type detailAppendedMsg struct {
	added  bool
	client model.Client
	err    error
}

type docsDoneMsg struct {
	url string
	err error
}

type clientCreatedMsg struct {
	client model.Client
	err    error
}

type toastExpireMsg struct{ seq uint64 }
