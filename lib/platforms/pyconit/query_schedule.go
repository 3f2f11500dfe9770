package pyconit

import (
	"context"
	"fmt"
	"strings"

	"confdata/internal/records"
)

const scheduleQuery = `query GetSchedule($code: String!) {
  conference(code: $code) {
    start
    days {
      day
      slots {
        items {
          type
          title
          speakers {
            fullName
          }
        }
      }
    }
  }
}`

type ScheduleSpeaker struct {
	FullName string `json:"fullName"`
}

type ScheduleItem struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Speakers []ScheduleSpeaker `json:"speakers"`
}

type ScheduleSlot struct {
	Items []ScheduleItem `json:"items"`
}

type ScheduleDay struct {
	Day   string         `json:"day"`
	Slots []ScheduleSlot `json:"slots"`
}

type ScheduleConference struct {
	Start string        `json:"start"`
	Days  []ScheduleDay `json:"days"`
}

type scheduleData struct {
	Conference *ScheduleConference `json:"conference"`
}

func (c *Client) GetSchedule(ctx context.Context, code string) (ScheduleConference, error) {
	data, err := graphqlQuery[conferenceCode, scheduleData](
		ctx, c.http, c.endpoint, "GetSchedule", scheduleQuery, conferenceCode{Code: code},
	)
	if err != nil {
		return ScheduleConference{}, err
	}
	if data.Conference == nil {
		return ScheduleConference{}, fmt.Errorf("%w: %s", ErrConferenceNotFound, code)
	}
	return *data.Conference, nil
}

// session item types that end up in the speakers document
var speakerItemTypes = map[string]struct{}{
	"training": {},
	"talk":     {},
	"keynote":  {},
}

// NormalizeSpeakers walks days -> slots -> items and emits one Speaker per
// (item, speaker) pair for trainings, talks and keynotes.
func NormalizeSpeakers(_ context.Context, conf ScheduleConference) (records.SpeakerDocument, error) {
	year, err := records.YearFromStart(conf.Start)
	if err != nil {
		return records.SpeakerDocument{}, err
	}

	speakers := []records.Speaker{}
	for _, day := range conf.Days {
		for _, slot := range day.Slots {
			for _, item := range slot.Items {
				if _, ok := speakerItemTypes[strings.ToLower(item.Type)]; !ok {
					continue
				}
				if len(item.Speakers) == 0 {
					continue
				}

				sessionType := records.DisplayCase(item.Type)
				for _, s := range item.Speakers {
					speakers = append(speakers, records.NewSpeaker(s.FullName, sessionType, item.Title, ""))
				}
			}
		}
	}

	return records.SpeakerDocument{
		Year:     year,
		Speakers: speakers,
	}, nil
}
