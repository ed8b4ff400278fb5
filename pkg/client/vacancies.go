package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// MaxPerPage is the largest page size the vacancy search accepts.
const MaxPerPage = 100

// SearchParams are the query parameters of GET /vacancies.
type SearchParams struct {
	Text string
	Area int

	// SearchField restricts where Text is matched ("name", "company_name", "description").
	SearchField string

	// Page is 0-indexed.
	Page    int
	PerPage int
}

// Encode converts the parameters into a query string.
func (p SearchParams) Encode() url.Values {
	values := url.Values{}
	if strings.TrimSpace(p.Text) != "" {
		values.Set("text", p.Text)
	}
	if p.Area > 0 {
		values.Set("area", strconv.Itoa(p.Area))
	}
	if strings.TrimSpace(p.SearchField) != "" {
		values.Set("search_field", p.SearchField)
	}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}

	perPage := p.PerPage
	if perPage <= 0 || perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	values.Set("per_page", strconv.Itoa(perPage))

	return values
}

// SearchPage is one page of vacancy search results.
type SearchPage struct {
	Items   []VacancyItem `json:"items"`
	Found   int           `json:"found"`
	Pages   int           `json:"pages"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// VacancyItem is the short vacancy representation returned by search.
type VacancyItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AlternateURL string    `json:"alternate_url,omitempty"`
	Area         *Area     `json:"area,omitempty"`
	Employer     *Employer `json:"employer,omitempty"`
}

// Vacancy is the full vacancy returned by GET /vacancies/{id}.
type Vacancy struct {
	ID string `json:"id"`

	Name string `json:"name"`

	// Description is HTML.
	Description string `json:"description"`

	KeySkills    []KeySkill `json:"key_skills"`
	AlternateURL string     `json:"alternate_url,omitempty"`
	Area         *Area      `json:"area,omitempty"`
	Employer     *Employer  `json:"employer,omitempty"`
}

// KeySkill is a single employer-specified skill.
type KeySkill struct {
	Name string `json:"name"`
}

// Area identifies a geographic search scope.
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Employer is the company that published the vacancy.
type Employer struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// SkillNames returns the key skill names in API order. The result is never nil.
func (v *Vacancy) SkillNames() []string {
	names := make([]string, 0, len(v.KeySkills))
	for _, skill := range v.KeySkills {
		if name := strings.TrimSpace(skill.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// searchEnvelope distinguishes a missing "items" key from an empty list.
type searchEnvelope struct {
	Items   *[]VacancyItem `json:"items"`
	Found   int            `json:"found"`
	Pages   int            `json:"pages"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// SearchVacancies fetches one page of GET /vacancies.
func (c *Client) SearchVacancies(ctx context.Context, params SearchParams) (*SearchPage, error) {
	const endpoint = "/vacancies"

	var envelope searchEnvelope
	if err := c.getJSON(ctx, endpoint, endpoint, params.Encode(), &envelope); err != nil {
		return nil, err
	}
	if envelope.Items == nil {
		hhErrorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		return nil, &MalformedResponseError{Endpoint: endpoint, Err: errors.New(`missing "items"`)}
	}
	if envelope.Pages < 0 || envelope.Found < 0 {
		hhErrorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		return nil, &MalformedResponseError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("negative counters (found=%d, pages=%d)", envelope.Found, envelope.Pages),
		}
	}

	return &SearchPage{
		Items:   *envelope.Items,
		Found:   envelope.Found,
		Pages:   envelope.Pages,
		Page:    envelope.Page,
		PerPage: envelope.PerPage,
	}, nil
}

// GetVacancy fetches GET /vacancies/{id}.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("vacancy id cannot be empty")
	}
	endpoint := "/vacancies/" + url.PathEscape(id)

	var vacancy Vacancy
	if err := c.getJSON(ctx, endpoint, "/vacancies/{id}", nil, &vacancy); err != nil {
		return nil, err
	}
	if vacancy.ID == "" {
		hhErrorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		return nil, &MalformedResponseError{Endpoint: endpoint, Err: errors.New(`missing "id"`)}
	}
	return &vacancy, nil
}
