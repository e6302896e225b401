// Package clientlist is the view-state behind the client list: the fetched
// collection, search and type filter (applied server-side), category tabs
// (applied locally), tab counts and the selection set.
package clientlist

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"greenlight-cli/internal/model"
)

// SearchDebounce is the quiet period after the last keystroke before a search fetch.
const SearchDebounce = 300 * time.Millisecond

type TypeFilter string

const (
	TypeAll     TypeFilter = "all"
	TypePerson  TypeFilter = "person"
	TypeCompany TypeFilter = "company"
)

var TypeFilters = []TypeFilter{TypeAll, TypePerson, TypeCompany}

func ParseTypeFilter(s string) (TypeFilter, error) {
	switch TypeFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeAll:
		return TypeAll, nil
	case TypePerson:
		return TypePerson, nil
	case TypeCompany:
		return TypeCompany, nil
	default:
		return "", fmt.Errorf("invalid type filter: %q (expected all|person|company)", s)
	}
}

type Tab string

const (
	TabActive     Tab = "active"
	TabBusiness   Tab = "business"
	TabIndividual Tab = "individual"
	TabProspect   Tab = "prospect"
	TabGroups     Tab = "groups"
	TabKC         Tab = "kc"
)

// Tabs is the display order.
var Tabs = []Tab{TabActive, TabBusiness, TabIndividual, TabProspect, TabGroups, TabKC}

func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TabActive, nil
	}
	for _, v := range Tabs {
		if v == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid tab: %q", s)
}

func (t Tab) Label() string {
	switch t {
	case TabActive:
		return "Active Clients"
	case TabBusiness:
		return "Business"
	case TabIndividual:
		return "Individual"
	case TabProspect:
		return "Prospects"
	case TabGroups:
		return "Groups"
	case TabKC:
		return "KC"
	default:
		return string(t)
	}
}

// MatchesTab reports whether c belongs under t. Groups and KC never match.
func MatchesTab(c model.Client, t Tab) bool {
	switch t {
	case TabBusiness:
		return c.Type == model.ClientTypeCompany
	case TabIndividual:
		return c.Type == model.ClientTypePerson
	case TabProspect:
		return c.Ownership.RelationshipType == model.RelationshipProspect
	case TabActive:
		return c.Ownership.RelationshipType != model.RelationshipProspect
	default:
		return false
	}
}

// Query is the server-side part of the list state.
type Query struct {
	Search string
	Type   TypeFilter
	// Limit and Skip page the server result; zero Limit means api.DefaultLimit.
	Limit int
	Skip  int
}

// State is safe for concurrent use. Fetches are tagged with a sequence number
// and only the newest one may replace the collection.
type State struct {
	mu sync.Mutex

	clients    []model.Client
	search     string
	typeFilter TypeFilter
	limit      int
	skip       int
	tab        Tab
	selected   map[string]bool

	latest  uint64
	loading bool
	loaded  bool
}

func New() *State {
	return &State{typeFilter: TypeAll, tab: TabActive, selected: map[string]bool{}}
}

func (s *State) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked()
}

func (s *State) queryLocked() Query {
	return Query{Search: s.search, Type: s.typeFilter, Limit: s.limit, Skip: s.skip}
}

// SetPage sets the server-side page; negative values are clamped to zero.
func (s *State) SetPage(limit, skip int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limit, s.skip = max(limit, 0), max(skip, 0)
}

// SetSearch reports whether the term changed (and so a fetch is due).
func (s *State) SetSearch(term string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == term {
		return false
	}
	s.search = term
	return true
}

func (s *State) SetTypeFilter(f TypeFilter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.typeFilter == f {
		return false
	}
	s.typeFilter = f
	return true
}

func (s *State) Tab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

func (s *State) SetTab(t Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = t
}

// BeginFetch issues a new sequence number; any in-flight fetch becomes stale.
func (s *State) BeginFetch() (uint64, Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	s.loading = true
	return s.latest, s.queryLocked()
}

// ApplyFetch installs a fetch result if seq is still the latest issued.
func (s *State) ApplyFetch(seq uint64, clients []model.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.latest {
		return false
	}
	s.clients = append([]model.Client(nil), clients...)
	s.loading = false
	s.loaded = true
	s.pruneSelection()
	return true
}

// FailFetch ends the loading state for seq, keeping the previous collection.
func (s *State) FailFetch(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.latest {
		return false
	}
	s.loading = false
	return true
}

func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *State) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *State) Clients() []model.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Client(nil), s.clients...)
}

func (s *State) Find(id string) (model.Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		if c.ID == id {
			return c, true
		}
	}
	return model.Client{}, false
}

// Visible is the current tab's subset, in collection order.
func (s *State) Visible() []model.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

func (s *State) visibleLocked() []model.Client {
	out := []model.Client{}
	for _, c := range s.clients {
		if MatchesTab(c, s.tab) {
			out = append(out, c)
		}
	}
	return out
}

// Counts is the per-tab count over the full (un-tabbed) collection.
func (s *State) Counts() map[Tab]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Tab]int, len(Tabs))
	for _, t := range Tabs {
		out[t] = 0
	}
	for _, c := range s.clients {
		for _, t := range Tabs {
			if MatchesTab(c, t) {
				out[t]++
			}
		}
	}
	return out
}

func (s *State) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[id] {
		delete(s.selected, id)
		return
	}
	s.selected[id] = true
}

func (s *State) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[id]
}

// Selected returns selected ids in collection order.
func (s *State) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for _, c := range s.clients {
		if s.selected[c.ID] {
			out = append(out, c.ID)
		}
	}
	return out
}

// SetAllVisible replaces the selection with every visible row (on) or clears it (off).
func (s *State) SetAllVisible(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = map[string]bool{}
	if !on {
		return
	}
	for _, c := range s.visibleLocked() {
		s.selected[c.ID] = true
	}
}

// AllVisibleSelected is the select-all checkbox state: false when nothing is visible.
func (s *State) AllVisibleSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	vis := s.visibleLocked()
	if len(vis) == 0 {
		return false
	}
	for _, c := range vis {
		if !s.selected[c.ID] {
			return false
		}
	}
	return true
}

func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = map[string]bool{}
}

// Insert prepends a newly created client.
func (s *State) Insert(c model.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = append([]model.Client{c}, s.clients...)
}

// Replace swaps in an updated client by id; unknown ids are ignored.
func (s *State) Replace(c model.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].ID == c.ID {
			s.clients[i] = c
			return
		}
	}
}

func (s *State) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.clients[:0]
	for _, c := range s.clients {
		if c.ID != id {
			out = append(out, c)
		}
	}
	s.clients = out
	delete(s.selected, id)
}

func (s *State) pruneSelection() {
	keep := make(map[string]bool, len(s.selected))
	for _, c := range s.clients {
		if s.selected[c.ID] {
			keep[c.ID] = true
		}
	}
	s.selected = keep
}
