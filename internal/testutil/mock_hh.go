// Package testutil provides testing utilities for the HH API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/Sternrassler/market-radar/pkg/client"
)

// MockHH is a configurable mock of the HeadHunter vacancy API serving
// GET /vacancies and GET /vacancies/{id}.
type MockHH struct {
	server *httptest.Server
	mu     sync.Mutex

	vacancies []client.Vacancy
	handlers  map[string]http.HandlerFunc

	// path -> remaining injected failures
	dropConnections map[string]int
	statusFailures  map[string][]int

	searchCount     int
	detailCount     int
	lastSearchQuery url.Values
	lastHeader      http.Header
}

// NewMockHH starts a mock server that lists the given vacancies in order.
// Keep-alives are disabled so every request uses a fresh connection, which
// keeps injected connection drops deterministic.
func NewMockHH(vacancies ...client.Vacancy) *MockHH {
	mock := &MockHH{
		vacancies:       vacancies,
		handlers:        make(map[string]http.HandlerFunc),
		dropConnections: make(map[string]int),
		statusFailures:  make(map[string][]int),
	}

	mock.server = httptest.NewUnstartedServer(http.HandlerFunc(mock.serve))
	mock.server.Config.SetKeepAlivesEnabled(false)
	mock.server.Start()

	return mock
}

// URL returns the mock server URL.
func (m *MockHH) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockHH) Close() {
	m.server.Close()
}

// SetHandler overrides the handler for an exact path.
func (m *MockHH) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// DropConnections makes the next n requests to path fail at the network
// level: the connection is closed without a response.
func (m *MockHH) DropConnections(path string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropConnections[path] += n
}

// FailWithStatus answers the next requests to path with the given statuses,
// one per request, before serving normally again.
func (m *MockHH) FailWithStatus(path string, statuses ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusFailures[path] = append(m.statusFailures[path], statuses...)
}

// SearchCount returns the number of requests to /vacancies.
func (m *MockHH) SearchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchCount
}

// DetailCount returns the number of requests to /vacancies/{id}.
func (m *MockHH) DetailCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detailCount
}

// LastSearchQuery returns the query string of the latest search request.
func (m *MockHH) LastSearchQuery() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSearchQuery
}

// LastHeader returns the headers of the latest request.
func (m *MockHH) LastHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastHeader
}

func (m *MockHH) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	m.mu.Lock()
	m.lastHeader = r.Header.Clone()
	if path == "/vacancies" {
		m.searchCount++
		m.lastSearchQuery = r.URL.Query()
	} else if strings.HasPrefix(path, "/vacancies/") {
		m.detailCount++
	}

	drop := m.dropConnections[path] > 0
	if drop {
		m.dropConnections[path]--
	}

	status := 0
	if queue := m.statusFailures[path]; len(queue) > 0 {
		status = queue[0]
		m.statusFailures[path] = queue[1:]
	}

	handler, hasHandler := m.handlers[path]
	m.mu.Unlock()

	if drop {
		dropConnection(w)
		return
	}
	if status != 0 {
		writeError(w, status, "injected_failure")
		return
	}
	if hasHandler {
		handler(w, r)
		return
	}

	switch {
	case path == "/vacancies":
		m.serveSearch(w, r)
	case strings.HasPrefix(path, "/vacancies/"):
		m.serveDetail(w, strings.TrimPrefix(path, "/vacancies/"))
	default:
		writeError(w, http.StatusNotFound, "not_found")
	}
}

func (m *MockHH) serveSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	perPage, err := strconv.Atoi(query.Get("per_page"))
	if err != nil || perPage <= 0 {
		perPage = 20
	}
	if perPage > client.MaxPerPage {
		writeError(w, http.StatusBadRequest, "bad_argument")
		return
	}
	page, _ := strconv.Atoi(query.Get("page"))

	m.mu.Lock()
	total := len(m.vacancies)
	items := make([]client.VacancyItem, 0, perPage)
	for i := page * perPage; i < total && i < (page+1)*perPage; i++ {
		v := m.vacancies[i]
		items = append(items, client.VacancyItem{ID: v.ID, Name: v.Name, Area: v.Area, Employer: v.Employer})
	}
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, client.SearchPage{
		Items:   items,
		Found:   total,
		Pages:   (total + perPage - 1) / perPage,
		Page:    page,
		PerPage: perPage,
	})
}

func (m *MockHH) serveDetail(w http.ResponseWriter, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.vacancies {
		if v.ID == id {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}
	writeError(w, http.StatusNotFound, "not_found")
}

func dropConnection(w http.ResponseWriter) {
	hijacker, ok := w.(http.Hijacker)
	if !ok {
		panic("testutil: response writer does not support hijacking")
	}
	conn, _, err := hijacker.Hijack()
	if err != nil {
		panic(fmt.Sprintf("testutil: hijack: %v", err))
	}
	conn.Close()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, errType string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"errors":[{"type":%q}],"request_id":"mock-%d"}`, errType, status)
}

// NewVacancy builds a full vacancy as returned by GET /vacancies/{id}.
func NewVacancy(id, name, descriptionHTML string, skills ...string) client.Vacancy {
	keySkills := make([]client.KeySkill, 0, len(skills))
	for _, s := range skills {
		keySkills = append(keySkills, client.KeySkill{Name: s})
	}
	return client.Vacancy{
		ID:           id,
		Name:         name,
		Description:  descriptionHTML,
		KeySkills:    keySkills,
		AlternateURL: "https://hh.ru/vacancy/" + id,
		Area:         &client.Area{ID: "1", Name: "Москва"},
		Employer:     &client.Employer{ID: "42", Name: "Example LLC"},
	}
}

// GenerateVacancies returns n vacancies with numeric ids starting at 100000,
// HTML descriptions and a varying number of key skills.
func GenerateVacancies(n int) []client.Vacancy {
	skillPool := []string{"Python", "Django", "PostgreSQL", "Docker", "Kubernetes"}
	out := make([]client.Vacancy, 0, n)
	for i := 0; i < n; i++ {
		id := strconv.Itoa(100000 + i)
		out = append(out, NewVacancy(
			id,
			fmt.Sprintf("Backend developer #%d", i+1),
			fmt.Sprintf("<p><strong>Responsibilities</strong></p><ul><li>Build services, APIs &amp; tools</li><li>Review code #%d</li></ul>", i+1),
			skillPool[:i%len(skillPool)]...,
		))
	}
	return out
}
