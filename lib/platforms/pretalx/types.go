package pretalx

import (
	"github.com/tidwall/gjson"
)

// LocalizedString accepts either a plain string or a translation object such
// as {"en": "Talk", "de": "Vortrag"}. English wins, otherwise the first
// translation in document order is used.
type LocalizedString string

func (l *LocalizedString) UnmarshalJSON(b []byte) error {
	*l = LocalizedString(localized(gjson.ParseBytes(b)))
	return nil
}

func localized(value gjson.Result) string {
	if !value.IsObject() {
		if value.Type == gjson.Null {
			return ""
		}
		return value.String()
	}
	if en := value.Get("en"); en.Exists() {
		return en.String()
	}
	var first string
	value.ForEach(func(_, translation gjson.Result) bool {
		first = translation.String()
		return false
	})
	return first
}

type SubmissionType struct {
	ID   int64           `json:"id"`
	Name LocalizedString `json:"name"`
}

type Speaker struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SpeakerRef is a speaker code, older API versions inline the whole speaker
// object instead.
type SpeakerRef string

func (s *SpeakerRef) UnmarshalJSON(b []byte) error {
	value := gjson.ParseBytes(b)
	if value.IsObject() {
		*s = SpeakerRef(value.Get("code").String())
		return nil
	}
	*s = SpeakerRef(value.String())
	return nil
}

// TypeRef is a submission type id, or an expanded submission type object
// whose name is then known without a lookup.
type TypeRef struct {
	ID   int64
	Name string
}

func (t *TypeRef) UnmarshalJSON(b []byte) error {
	value := gjson.ParseBytes(b)
	if value.IsObject() {
		t.ID = value.Get("id").Int()
		t.Name = localized(value.Get("name"))
		return nil
	}
	t.ID = value.Int()
	return nil
}

type Submission struct {
	Code           string       `json:"code"`
	Title          string       `json:"title"`
	State          string       `json:"state"`
	Speakers       []SpeakerRef `json:"speakers"`
	SubmissionType TypeRef      `json:"submission_type"`
}

const StateConfirmed = "confirmed"

type Event struct {
	Slug     string          `json:"slug"`
	Name     LocalizedString `json:"name"`
	DateFrom string          `json:"date_from"`
	DateTo   string          `json:"date_to"`
}
