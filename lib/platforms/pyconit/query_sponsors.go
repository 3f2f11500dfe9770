package pyconit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"confdata/internal/records"
)

const sponsorsQuery = `query GetSponsors($code: String!) {
  conference(code: $code) {
    sponsorsByLevel {
      level
      sponsors {
        name
        link
      }
    }
    sponsorLevels {
      name
      price
    }
    start
  }
}`

// Price is a decimal the API serializes as a string, "15000.00".
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*p = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	*p = Price(raw)
	return nil
}

type SponsorLevel struct {
	Name  string `json:"name"`
	Price Price  `json:"price"`
}

type LevelSponsor struct {
	Name string  `json:"name"`
	Link *string `json:"link"`
}

type SponsorsByLevel struct {
	Level    string         `json:"level"`
	Sponsors []LevelSponsor `json:"sponsors"`
}

type SponsorsConference struct {
	SponsorsByLevel []SponsorsByLevel `json:"sponsorsByLevel"`
	SponsorLevels   []SponsorLevel    `json:"sponsorLevels"`
	Start           string            `json:"start"`
}

type conferenceCode struct {
	Code string `json:"code"`
}

type sponsorsData struct {
	Conference *SponsorsConference `json:"conference"`
}

func (c *Client) GetSponsors(ctx context.Context, code string) (SponsorsConference, error) {
	data, err := graphqlQuery[conferenceCode, sponsorsData](
		ctx, c.http, c.endpoint, "GetSponsors", sponsorsQuery, conferenceCode{Code: code},
	)
	if err != nil {
		return SponsorsConference{}, err
	}
	if data.Conference == nil {
		return SponsorsConference{}, fmt.Errorf("%w: %s", ErrConferenceNotFound, code)
	}
	return *data.Conference, nil
}

// ParsePrice converts a decimal price string to whole currency units,
// truncating the fractional part. Anything unparseable counts as 0.
func ParsePrice(price string) int64 {
	value, _ := parsePrice(price)
	return value
}

func parsePrice(price string) (int64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which no longer fits
	if value >= math.MaxInt64 || value < math.MinInt64 {
		return 0, false
	}
	return int64(value), true
}

// NormalizeSponsors flattens the level grouping into one sponsor list and
// resolves the tier price list into Levels.
func NormalizeSponsors(ctx context.Context, conf SponsorsConference) (records.SponsorDocument, error) {
	year, err := records.YearFromStart(conf.Start)
	if err != nil {
		return records.SponsorDocument{}, err
	}

	levels := make(records.Levels, len(conf.SponsorLevels))
	for _, level := range conf.SponsorLevels {
		value, ok := parsePrice(string(level.Price))
		if !ok {
			slog.WarnContext(ctx, "unparseable sponsor level price, using 0", "level", level.Name, "price", level.Price)
		}
		levels[level.Name] = value
	}

	sponsors := []records.Sponsor{}
	for _, group := range conf.SponsorsByLevel {
		for _, s := range group.Sponsors {
			sponsors = append(sponsors, records.NewSponsor(s.Name, s.Link, group.Level))
		}
	}

	return records.SponsorDocument{
		Year:     year,
		Levels:   levels,
		Sponsors: sponsors,
	}, nil
}
