// Package apiclient talks to the schedules API over HTTP for the wizard.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
	"github.com/trezcool/formazione/core/wizard"
)

const defaultTimeout = 30 * time.Second

// ErrUnauthorized is returned on 401 and 403 responses.
var ErrUnauthorized = errors.New("not authorized")

// APIError is a non 2xx response.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var (
	_ wizard.Gateway   = (*Client)(nil)
	_ wizard.Directory = (*Client)(nil)
)

// New builds a client for conf.API. httpClient may be nil.
func New(conf core.APIClientConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(conf.BaseURL, "/") + "/v1",
		token:   conf.Token,
		http:    httpClient,
	}
}

func (c *Client) CreateSchedule(ctx context.Context, p schedule.SchedulePayload) (schedule.ID, error) {
	var sch schedule.Schedule
	if err := c.do(ctx, http.MethodPost, "/schedules", nil, p, &sch); err != nil {
		return "", err
	}
	if sch.ID.IsZero() {
		return "", errors.New("create schedule: response carries no id")
	}
	return sch.ID, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, id schedule.ID, p schedule.SchedulePayload) error {
	return c.do(ctx, http.MethodPut, schedulePath(id), nil, p, nil)
}

func (c *Client) PatchSchedule(ctx context.Context, id schedule.ID, p schedule.SchedulePatch) error {
	return c.do(ctx, http.MethodPatch, schedulePath(id), nil, p, nil)
}

func (c *Client) GetSchedule(ctx context.Context, id schedule.ID) (schedule.Schedule, error) {
	var sch schedule.Schedule
	err := c.do(ctx, http.MethodGet, schedulePath(id), nil, nil, &sch)
	return sch, err
}

// EmployeesByCompanies returns no employee when companyIDs is empty.
func (c *Client) EmployeesByCompanies(ctx context.Context, companyIDs schedule.IDSet, search string) ([]schedule.Employee, error) {
	if companyIDs.Len() == 0 {
		return []schedule.Employee{}, nil
	}
	q := make(url.Values)
	for _, id := range companyIDs {
		q.Add("company_id", id.String())
	}
	if search = strings.TrimSpace(search); search != "" {
		q.Set("search", search)
	}
	var employees []schedule.Employee
	err := c.do(ctx, http.MethodGet, "/employees", q, nil, &employees)
	return employees, err
}

// LoadCatalog fetches the reference data the wizard picks from.
func (c *Client) LoadCatalog(ctx context.Context) (wizard.Catalog, error) {
	var cat wizard.Catalog
	if err := c.do(ctx, http.MethodGet, "/courses", nil, nil, &cat.Courses); err != nil {
		return cat, errors.Wrap(err, "loading courses")
	}
	if err := c.do(ctx, http.MethodGet, "/trainers", nil, nil, &cat.Trainers); err != nil {
		return cat, errors.Wrap(err, "loading trainers")
	}
	if err := c.do(ctx, http.MethodGet, "/companies", nil, nil, &cat.Companies); err != nil {
		return cat, errors.Wrap(err, "loading companies")
	}
	if err := c.do(ctx, http.MethodGet, "/employees", nil, nil, &cat.Employees); err != nil {
		return cat, errors.Wrap(err, "loading employees")
	}
	return cat, nil
}

func schedulePath(id schedule.ID) string {
	return "/schedules/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(decodeError(resp), "%s %s", method, path)
	}
	if out == nil {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}

// decodeError reads the API error body: {"error": msg} or a field -> message map.
func decodeError(resp *http.Response) error {
	b, _ := ioutil.ReadAll(io.LimitReader(resp.Body, 1<<16))

	msg := strings.TrimSpace(string(b))
	var fields map[string]string
	if err := json.Unmarshal(b, &fields); err == nil && len(fields) > 0 {
		if m, ok := fields["error"]; ok {
			msg = m
		} else {
			parts := make([]string, 0, len(fields))
			for k, v := range fields {
				parts = append(parts, k+": "+v)
			}
			sort.Strings(parts)
			msg = strings.Join(parts, "; ")
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrap(ErrUnauthorized, msg)
	case http.StatusNotFound:
		return errors.Wrap(schedule.ErrNotFound, msg)
	}
	return &APIError{Code: resp.StatusCode, Message: msg}
}
