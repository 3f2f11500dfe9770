package pretalx

import (
	"context"
	"testing"

	"confdata/internal/records"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLocalizedString(t *testing.T) {
	testCases := []struct {
		raw      string
		expected LocalizedString
	}{
		{raw: `{"en": "Talk", "de": "Vortrag"}`, expected: "Talk"},
		{raw: `{"de": "Vortrag"}`, expected: "Vortrag"},
		{raw: `{"it": "Intervento", "de": "Vortrag"}`, expected: "Intervento"},
		{raw: `"Tutorial"`, expected: "Tutorial"},
		{raw: `{}`, expected: ""},
		{raw: `null`, expected: ""},
	}

	for _, test := range testCases {
		var value struct {
			Name LocalizedString `json:"name"`
		}
		err := json.Unmarshal([]byte(`{"name": `+test.raw+`}`), &value)
		require.NoError(t, err, test.raw)
		require.Equal(t, test.expected, value.Name, test.raw)
	}
}

func testCatalog() Catalog {
	return Catalog{
		Types: map[int64]string{1: "Talk", 2: "Tutorial"},
		Speakers: map[string]string{
			"SPK1": "Ada Lovelace",
			"SPK2": "Grace Hopper",
			"SPK3": "Alan Turing",
		},
		Submissions: []Submission{
			{
				Code:           "SUB1",
				Title:          "Engines of the future",
				State:          StateConfirmed,
				Speakers:       []SpeakerRef{"SPK1", "SPK2"},
				SubmissionType: TypeRef{ID: 1},
			},
			{
				Code:           "SUB2",
				Title:          "Rejected idea",
				State:          "rejected",
				Speakers:       []SpeakerRef{"SPK3"},
				SubmissionType: TypeRef{ID: 1},
			},
		},
	}
}

func TestNormalizeConfirmedPairs(t *testing.T) {
	out, err := Normalize(context.Background(), testCatalog(), MissingSpeakerFail)
	require.NoError(t, err)

	expected := []records.Speaker{
		{Fullname: "Ada Lovelace", Type: "Talk", Title: "Engines of the future"},
		{Fullname: "Grace Hopper", Type: "Talk", Title: "Engines of the future"},
	}
	if diff := cmp.Diff(expected, out); diff != "" {
		t.Fatalf("unexpected speakers (-want +got):\n%s", diff)
	}
}

func TestNormalizeKeepsBlankTitlesAndNames(t *testing.T) {
	catalog := testCatalog()
	catalog.Submissions[0].Title = ""
	catalog.Speakers["SPK2"] = ""

	out, err := Normalize(context.Background(), catalog, MissingSpeakerFail)
	require.NoError(t, err)

	expected := []records.Speaker{
		{Fullname: "Ada Lovelace", Type: "Talk", Title: ""},
		{Fullname: "", Type: "Talk", Title: ""},
	}
	if diff := cmp.Diff(expected, out); diff != "" {
		t.Fatalf("unexpected speakers (-want +got):\n%s", diff)
	}
}

func TestNormalizeDeduplicatesPairsWithinRun(t *testing.T) {
	catalog := testCatalog()
	catalog.Submissions[0].Speakers = []SpeakerRef{"SPK1", "SPK1"}
	catalog.Submissions = append(catalog.Submissions, Submission{
		Code:           "SUB3",
		Title:          "Second talk",
		State:          StateConfirmed,
		Speakers:       []SpeakerRef{"SPK1"},
		SubmissionType: TypeRef{ID: 2},
	})

	out, err := Normalize(context.Background(), catalog, MissingSpeakerFail)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "Tutorial", out[1].Type)
	require.Equal(t, "Ada Lovelace", out[1].Fullname)
}

func TestNormalizeInlineAndUnknownTypes(t *testing.T) {
	catalog := testCatalog()
	catalog.Submissions[0].SubmissionType = TypeRef{ID: 99, Name: "Lightning talk"}
	catalog.Submissions[1].State = StateConfirmed
	catalog.Submissions[1].SubmissionType = TypeRef{ID: 42}

	out, err := Normalize(context.Background(), catalog, MissingSpeakerFail)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, "Lightning talk", out[0].Type)
	require.Equal(t, "", out[2].Type)
}

func TestNormalizeMissingSpeaker(t *testing.T) {
	catalog := testCatalog()
	catalog.Submissions[0].Speakers = []SpeakerRef{"SPK1", "GHOST"}

	_, err := Normalize(context.Background(), catalog, MissingSpeakerFail)
	require.ErrorIs(t, err, ErrUnknownSpeaker)
	require.Contains(t, err.Error(), "GHOST")

	out, err := Normalize(context.Background(), catalog, MissingSpeakerSkip)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Ada Lovelace", out[0].Fullname)

	out, err = Normalize(context.Background(), catalog, MissingSpeakerPlaceholder)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "GHOST", out[1].Fullname)
}

func TestParseMissingSpeakerPolicy(t *testing.T) {
	policy, err := ParseMissingSpeakerPolicy("")
	require.NoError(t, err)
	require.Equal(t, MissingSpeakerFail, policy)

	policy, err = ParseMissingSpeakerPolicy("skip")
	require.NoError(t, err)
	require.Equal(t, MissingSpeakerSkip, policy)

	_, err = ParseMissingSpeakerPolicy("ignore")
	require.Error(t, err)
}
