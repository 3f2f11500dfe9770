// Package records defines the normalized output schema shared by every
// conference source: speakers, sponsors and the per-year documents that hold
// them on disk.
package records

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrInvalidRecord = errors.New("invalid record")

// Speaker is one (session, speaker) pairing.
type Speaker struct {
	Fullname string `json:"fullname"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	// Level is free-form and conference specific, usually left empty.
	Level string `json:"level"`
}

// NewSpeaker keeps every field as the source sent it, blank names and
// titles included.
func NewSpeaker(fullname, sessionType, title, level string) Speaker {
	return Speaker{
		Fullname: fullname,
		Type:     sessionType,
		Title:    title,
		Level:    level,
	}
}

type Sponsor struct {
	Name    string  `json:"name"`
	Website *string `json:"website"`
	Level   string  `json:"level"`
}

// NewSponsor keeps name and level verbatim. A nil website is stored as
// null, a sponsor without a level aggregates as having no value.
func NewSponsor(name string, website *string, level string) Sponsor {
	return Sponsor{Name: name, Website: website, Level: level}
}

// Levels maps a sponsorship tier name to its monetary value.
type Levels map[string]int64

// Lookup reports the value of a tier, ok is false for tiers that were not
// part of the conference's tier list.
func (l Levels) Lookup(level string) (value int64, ok bool) {
	value, ok = l[level]
	return value, ok
}

type SponsorDocument struct {
	Year     int       `json:"year"`
	Levels   Levels    `json:"levels"`
	Sponsors []Sponsor `json:"sponsors"`
}

type SpeakerDocument struct {
	Year     int       `json:"year"`
	Speakers []Speaker `json:"speakers"`
}

// YearFromStart extracts the year from the leading YYYY segment of an ISO
// date or timestamp, e.g. "2024-07-15T10:00:00" -> 2024.
func YearFromStart(start string) (int, error) {
	segment, _, _ := strings.Cut(strings.TrimSpace(start), "-")
	year, err := strconv.Atoi(segment)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: cannot derive year from start date %q", ErrInvalidRecord, start)
	}
	return year, nil
}

// DisplayCase upper-cases the first letter and lower-cases the rest,
// "talk" -> "Talk", "KEYNOTE" -> "Keynote".
func DisplayCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}
