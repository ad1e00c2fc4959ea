package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// HolidayCalendar excludes a fixed set of full calendar dates.
type HolidayCalendar struct {
	baseCalendar
	Location *time.Location

	mu       sync.RWMutex
	excluded map[[3]int]bool // [year, month, day]
}

// NewHolidayCalendar returns a calendar excluding the given dates (only the
// year/month/day components are significant).
func NewHolidayCalendar(loc *time.Location, dates ...time.Time) *HolidayCalendar {
	if loc == nil {
		loc = time.UTC
	}
	c := &HolidayCalendar{
		baseCalendar: baseCalendar{desc: "holiday"},
		Location:     loc,
		excluded:     make(map[[3]int]bool),
	}
	c.AddDates(dates...)
	return c
}

// AddDates excludes additional dates.
func (c *HolidayCalendar) AddDates(dates ...time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range dates {
		local := d.In(c.Location)
		c.excluded[[3]int{local.Year(), int(local.Month()), local.Day()}] = true
	}
}

func (c *HolidayCalendar) selfIncluded(instant time.Time) bool {
	t := instant.In(c.Location)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.excluded[[3]int{t.Year(), int(t.Month()), t.Day()}]
}

// IsTimeIncluded implements Calendar.
func (c *HolidayCalendar) IsTimeIncluded(instant time.Time) bool {
	return includedByChain(c, c.selfIncluded(instant), instant)
}

// GetNextIncludedTime implements Calendar.
func (c *HolidayCalendar) GetNextIncludedTime(after time.Time) time.Time {
	return nextIncludedByChain(c, c.selfIncluded, after, func(t time.Time) time.Time {
		loc := c.Location
		local := t.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	})
}

// holidayPreset is the wire format fetched from a remote holiday list, e.g.
// a company's shared "gh:org/holidays/2026.yaml" feed. Grounded on the
// teacher's middlewares/preset.go remote-YAML-over-HTTP pattern.
type holidayPreset struct {
	Dates []string `yaml:"dates"`
}

// FetchRemoteHolidays downloads a YAML document of the form
// `dates: ["2026-12-25", ...]` from url and merges the parsed dates into c.
// Results are not cached; every call fetches url again.
func (c *HolidayCalendar) FetchRemoteHolidays(ctx context.Context, client *http.Client, url string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("holiday calendar: build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("holiday calendar: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("holiday calendar: fetch %s: status %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("holiday calendar: read %s: %w", url, err)
	}

	var preset holidayPreset
	if err := yaml.Unmarshal(body, &preset); err != nil {
		return fmt.Errorf("holiday calendar: parse %s: %w", url, err)
	}

	dates := make([]time.Time, 0, len(preset.Dates))
	for _, raw := range preset.Dates {
		d, parseErr := time.ParseInLocation("2006-01-02", raw, c.Location)
		if parseErr != nil {
			return fmt.Errorf("holiday calendar: invalid date %q in %s: %w", raw, url, parseErr)
		}
		dates = append(dates, d)
	}

	c.AddDates(dates...)
	return nil
}
