package pipeline

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"confdata/internal/archive"
	"confdata/internal/records"
	"confdata/internal/runmetrics"
	"confdata/internal/store"
	"confdata/lib/platforms/pretalx"
	"confdata/lib/platforms/pyconit"

	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func serveBodies(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fakePretalx(t *testing.T, dateFrom string) *pretalx.Client {
	t.Helper()
	srv := serveBodies(t, map[string]string{
		"/api/event/": `{"slug": "demo", "name": "Demo", "date_from": "` + dateFrom + `"}`,
		"/api/event/submission-types/": `{"next": null, "results": [
			{"id": 1, "name": {"en": "Talk", "de": "Vortrag"}}
		]}`,
		"/api/event/speakers/": `{"next": null, "results": [
			{"code": "S1", "name": "Ada Lovelace"},
			{"code": "S2", "name": "Grace Hopper"}
		]}`,
		"/api/event/submissions/": `{"next": null, "results": [
			{"code": "A", "title": "Engines", "state": "confirmed", "speakers": ["S1", "S2"], "submission_type": 1},
			{"code": "B", "title": "Draft", "state": "submitted", "speakers": ["S1"], "submission_type": 1}
		]}`,
	})

	client, err := pretalx.NewClient(pretalx.ClientOptions{BaseUrl: srv.URL + "/api/event"})
	require.NoError(t, err)
	return client
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func readMetrics(t *testing.T, metrics *runmetrics.Recorder) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, metrics.WriteTextfile(path))
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(contents)
}

func TestRunPretalxWritesDefaultPath(t *testing.T) {
	dir := t.TempDir()
	metrics := runmetrics.NewRecorder()

	res, err := RunPretalx(context.Background(), PretalxOptions{
		Client:  fakePretalx(t, "2024-07-08"),
		Policy:  pretalx.MissingSpeakerFail,
		Output:  Output{DataDir: dir, Conference: "EuroPython"},
		Metrics: metrics,
		Now:     fixedNow,
	})
	require.NoError(t, err)
	require.Equal(t, 2024, res.Year)
	require.Equal(t, 2, res.Records)
	require.Equal(t, store.DefaultPath(dir, store.KindSpeakers, "EuroPython", 2024), res.Path)

	contents, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	var doc records.SpeakerDocument
	require.NoError(t, json.Unmarshal(contents, &doc))

	expected := records.SpeakerDocument{
		Year: 2024,
		Speakers: []records.Speaker{
			{Fullname: "Ada Lovelace", Type: "Talk", Title: "Engines"},
			{Fullname: "Grace Hopper", Type: "Talk", Title: "Engines"},
		},
	}
	if diff := cmp.Diff(expected, doc); diff != "" {
		t.Fatalf("unexpected document (-want +got):\n%s", diff)
	}

	text := readMetrics(t, metrics)
	require.Contains(t, text, `confdata_pages_fetched_total{source="pretalx"} 3`)
	require.Contains(t, text, `confdata_records_emitted_total{kind="speakers"} 2`)
	require.Contains(t, text, "confdata_documents_written_total 1")
}

func TestRunPretalxStdoutAndYearFallback(t *testing.T) {
	var stdout bytes.Buffer
	res, err := RunPretalx(context.Background(), PretalxOptions{
		Client: fakePretalx(t, ""),
		Output: Output{Stdout: &stdout},
		Now:    fixedNow,
	})
	require.NoError(t, err)
	require.Empty(t, res.Path)
	require.Equal(t, 2026, res.Year)

	var doc records.SpeakerDocument
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	require.Equal(t, 2026, doc.Year)
	require.Len(t, doc.Speakers, 2)
}

func TestRunPretalxYearOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	res, err := RunPretalx(context.Background(), PretalxOptions{
		Client: fakePretalx(t, "2024-07-08"),
		Year:   2019,
		Output: Output{Path: path, Conference: "Ignored"},
	})
	require.NoError(t, err)
	require.Equal(t, path, res.Path)
	require.Equal(t, 2019, res.Year)
}

func TestRunPretalxBadExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	_, err := RunPretalx(context.Background(), PretalxOptions{
		Client: fakePretalx(t, "2024-07-08"),
		Output: Output{Path: path},
	})
	require.ErrorIs(t, err, store.ErrBadExtension)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func fakePyConIt(t *testing.T, response string) *pyconit.Client {
	t.Helper()
	srv := serveBodies(t, map[string]string{"/graphql": response})
	return pyconit.NewClient(pyconit.ClientOptions{Endpoint: srv.URL + "/graphql"})
}

func TestRunPyConItSpeakers(t *testing.T) {
	dir := t.TempDir()
	client := fakePyConIt(t, `{"data": {"conference": {
		"start": "2024-05-22T09:00:00",
		"days": [{"day": "2024-05-22", "slots": [{"items": [
			{"type": "talk", "title": "Intro to X", "speakers": [{"fullName": "Ada"}, {"fullName": "Grace"}]}
		]}]}]
	}}}`)

	res, err := RunPyConItSpeakers(context.Background(), PyConItOptions{
		Client:         client,
		ConferenceCode: "pycon2024",
		Output:         Output{DataDir: dir},
	})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "speakers", "PyConItalia", "2024.json"), res.Path)
	require.Equal(t, 2, res.Records)

	contents, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	var doc records.SpeakerDocument
	require.NoError(t, json.Unmarshal(contents, &doc))
	for _, speaker := range doc.Speakers {
		require.Equal(t, "Talk", speaker.Type)
		require.Equal(t, "Intro to X", speaker.Title)
	}
}

func TestRunPyConItSponsorsGraphQLErrorWritesNothing(t *testing.T) {
	dir := t.TempDir()
	client := fakePyConIt(t, `{"data": null, "errors": [{"message": "boom"}]}`)

	_, err := RunPyConItSponsors(context.Background(), PyConItOptions{
		Client:         client,
		ConferenceCode: "pycon2024",
		Output:         Output{DataDir: dir},
	})
	var gqlErr *pyconit.GraphQLError
	require.ErrorAs(t, err, &gqlErr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunPyConItSponsorsThenReport(t *testing.T) {
	dir := t.TempDir()
	client := fakePyConIt(t, `{"data": {"conference": {
		"start": "2024-05-22",
		"sponsorLevels": [{"name": "Gold", "price": "15000.00"}, {"name": "Silver", "price": "invalid"}],
		"sponsorsByLevel": [
			{"level": "Gold", "sponsors": [{"name": "Acme", "link": "https://acme.example"}]},
			{"level": "Silver", "sponsors": [{"name": "Initech", "link": null}]}
		]
	}}}`)

	_, err := RunPyConItSponsors(context.Background(), PyConItOptions{
		Client:         client,
		ConferenceCode: "pycon2024",
		Output:         Output{DataDir: dir},
	})
	require.NoError(t, err)

	// an older edition of another conference, Silver is not a known level there
	require.NoError(t, store.WriteDocument(store.DefaultPath(dir, store.KindSponsors, "EuroPython", 2023), records.SponsorDocument{
		Year:   2023,
		Levels: records.Levels{"Gold": 10000},
		Sponsors: []records.Sponsor{
			{Name: "Acme", Level: "Gold"},
			{Name: "Initech", Level: "Silver"},
		},
	}))

	out := filepath.Join(dir, "public", "sponsors.html")
	dbPath := filepath.Join(dir, "archive.db")
	var table bytes.Buffer
	res, err := RunReport(context.Background(), ReportOptions{
		DataDir: filepath.Join(dir, store.KindSponsors),
		Out:     out,
		Title:   "Sponsors",
		Table:   &table,
		Archive: archive.Config{File: dbPath},
	})
	require.NoError(t, err)
	require.Equal(t, ReportResult{Documents: 2, Rows: 4, Groups: 2}, res)
	require.Contains(t, table.String(), "25000")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)

	first := doc.Find("#grouped tbody tr").First()
	require.Equal(t, "Acme", first.Find("td.name").Text())
	require.Equal(t, "25000", first.Find("td.value").First().Text())
	second := doc.Find("#grouped tbody tr").Eq(1)
	require.Equal(t, "Initech", second.Find("td.name").Text())
	require.Equal(t, "0", second.Find("td.value").First().Text())

	db, err := archive.Config{File: dbPath}.OpenDB()
	require.NoError(t, err)
	defer db.Close()
	var missing int
	require.NoError(t, db.QueryRow("select count(*) from sponsor_rows where value is null").Scan(&missing))
	require.Equal(t, 1, missing)
	var total sql.NullInt64
	require.NoError(t, db.QueryRow("select sum(value) from sponsor_rows where name = 'Acme'").Scan(&total))
	require.Equal(t, int64(25000), total.Int64)
}

func TestRunReportKeepsPageWhenArchiveFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, store.WriteDocument(store.DefaultPath(dir, "", "EuroPython", 2023), records.SponsorDocument{
		Year:     2023,
		Levels:   records.Levels{"Gold": 10000},
		Sponsors: []records.Sponsor{{Name: "Acme", Level: "Gold"}},
	}))

	out := filepath.Join(t.TempDir(), "sponsors.html")
	require.NoError(t, os.WriteFile(out, []byte("previous report"), 0644))

	_, err := RunReport(context.Background(), ReportOptions{
		DataDir: dir,
		Out:     out,
		// the parent directory does not exist, so the database cannot be opened
		Archive: archive.Config{File: filepath.Join(t.TempDir(), "missing", "archive.db")},
	})
	require.Error(t, err)

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "previous report", string(contents))
}

func TestRunReportNoDocuments(t *testing.T) {
	_, err := RunReport(context.Background(), ReportOptions{
		DataDir: t.TempDir(),
		Out:     filepath.Join(t.TempDir(), "sponsors.html"),
	})
	require.ErrorIs(t, err, store.ErrNoDocuments)
}
