package pretalx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"confdata/internal/records"
)

var ErrUnknownSpeaker = errors.New("submission references an unknown speaker")

// MissingSpeakerPolicy decides what happens to a submission speaker code that
// is not part of the event's speaker list.
type MissingSpeakerPolicy string

const (
	MissingSpeakerFail        MissingSpeakerPolicy = "fail"
	MissingSpeakerSkip        MissingSpeakerPolicy = "skip"
	MissingSpeakerPlaceholder MissingSpeakerPolicy = "placeholder"
)

func ParseMissingSpeakerPolicy(value string) (MissingSpeakerPolicy, error) {
	switch MissingSpeakerPolicy(value) {
	case "":
		return MissingSpeakerFail, nil
	case MissingSpeakerFail, MissingSpeakerSkip, MissingSpeakerPlaceholder:
		return MissingSpeakerPolicy(value), nil
	}
	return "", fmt.Errorf("unknown missing speaker policy %q (expected fail, skip or placeholder)", value)
}

// Normalize emits one Speaker per (confirmed submission, speaker) pair in the
// order they are first seen.
func Normalize(ctx context.Context, catalog Catalog, policy MissingSpeakerPolicy) ([]records.Speaker, error) {
	var out []records.Speaker
	seen := map[string]struct{}{}

	for _, submission := range catalog.Submissions {
		if submission.State != StateConfirmed {
			continue
		}

		sessionType := submission.SubmissionType.Name
		if sessionType == "" {
			name, ok := catalog.Types[submission.SubmissionType.ID]
			if !ok {
				slog.WarnContext(
					ctx, "unknown submission type",
					"submission", submission.Code,
					"type_id", submission.SubmissionType.ID,
				)
			}
			sessionType = name
		}

		for _, ref := range submission.Speakers {
			code := string(ref)
			key := fmt.Sprintf("%s-%s", submission.Code, code)
			if _, duplicate := seen[key]; duplicate {
				continue
			}

			fullname, ok := catalog.Speakers[code]
			if !ok {
				switch policy {
				case MissingSpeakerSkip:
					slog.WarnContext(ctx, "skipping unknown speaker", "submission", submission.Code, "speaker", code)
					continue
				case MissingSpeakerPlaceholder:
					slog.WarnContext(ctx, "using placeholder for unknown speaker", "submission", submission.Code, "speaker", code)
					fullname = code
				default:
					return nil, fmt.Errorf("%w: %s in submission %s", ErrUnknownSpeaker, code, submission.Code)
				}
			}

			seen[key] = struct{}{}
			out = append(out, records.NewSpeaker(fullname, sessionType, submission.Title, ""))
		}
	}

	return out, nil
}
