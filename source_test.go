package gridloader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

const generationXML = `<GL_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-6:generationloaddocument:3:0">
  <TimeSeries>
    <inBiddingZone_Domain.mRID codingScheme="A01">10YFR-RTE------C</inBiddingZone_Domain.mRID>
    <MktPSRType><psrType>B04</psrType></MktPSRType>
    <Period>
      <timeInterval><start>2024-03-01T00:00Z</start><end>2024-03-01T03:00Z</end></timeInterval>
      <resolution>PT60M</resolution>
      <Point><position>1</position><quantity>812</quantity></Point>
      <Point><position>2</position><quantity>790</quantity></Point>
      <Point><position>3</position><quantity>805</quantity></Point>
    </Period>
  </TimeSeries>
  <TimeSeries>
    <inBiddingZone_Domain.mRID codingScheme="A01">10YFR-RTE------C</inBiddingZone_Domain.mRID>
    <MktPSRType><psrType>B14</psrType></MktPSRType>
    <Period>
      <timeInterval><start>2024-03-01T00:00Z</start><end>2024-03-01T03:00Z</end></timeInterval>
      <resolution>PT60M</resolution>
      <Point><position>1</position><quantity>40000</quantity></Point>
      <Point><position>2</position><quantity>40100</quantity></Point>
      <Point><position>3</position><quantity>39950</quantity></Point>
    </Period>
  </TimeSeries>
</GL_MarketDocument>`

const noDataXML = `<Acknowledgement_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-1:acknowledgementdocument:7:0">
  <Reason>
    <code>999</code>
    <text>No matching data found for Data item Aggregated Generation per Type</text>
  </Reason>
</Acknowledgement_MarketDocument>`

type captureArchiver struct {
	task    Task
	payload []byte
}

func (a *captureArchiver) Archive(_ context.Context, t Task, payload []byte) error {
	a.task = t
	a.payload = payload
	return nil
}

func testTask() Task {
	return Task{
		Country:     "FR",
		Document:    DocActualGeneration,
		PeriodStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func newTestSource(srv *httptest.Server, archiver Archiver) *entsoeSource {
	s := newEntsoeSource("test-token", archiver)
	s.baseURL = srv.URL
	s.client = srv.Client()
	return s
}

func TestEntsoeSource_Fetch(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(generationXML))
	}))
	defer srv.Close()

	archiver := &captureArchiver{}
	s := newTestSource(srv, archiver)

	frame, err := s.Fetch(context.Background(), testTask())
	if err != nil {
		t.Fatalf("Fetch returned unexpected error: %v", err)
	}

	if query.Get("securityToken") != "test-token" {
		t.Errorf("securityToken = %q, want test-token", query.Get("securityToken"))
	}
	if query.Get("documentType") != "A75" {
		t.Errorf("documentType = %q, want A75", query.Get("documentType"))
	}
	if query.Get("processType") != "A16" {
		t.Errorf("processType = %q, want A16", query.Get("processType"))
	}
	if query.Get("in_Domain") != "10YFR-RTE------C" {
		t.Errorf("in_Domain = %q, want 10YFR-RTE------C", query.Get("in_Domain"))
	}
	if query.Get("periodStart") != "202403010000" {
		t.Errorf("periodStart = %q, want 202403010000", query.Get("periodStart"))
	}

	wantColumns := []string{"Timestamp", "Fossil Gas/Actual Aggregated", "Nuclear/Actual Aggregated"}
	if len(frame.Columns) != len(wantColumns) {
		t.Fatalf("frame has %d columns (%v), want %d", len(frame.Columns), frame.Columns, len(wantColumns))
	}
	for i := range wantColumns {
		if frame.Columns[i] != wantColumns[i] {
			t.Errorf("column %d = %q, want %q", i, frame.Columns[i], wantColumns[i])
		}
	}

	if len(frame.Rows) != 3 {
		t.Fatalf("frame has %d rows, want 3", len(frame.Rows))
	}

	first := frame.Rows[0]
	if ts, ok := first[0].(time.Time); !ok || !ts.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("row 0 timestamp = %v, want 2024-03-01T00:00Z", first[0])
	}
	if first[1] != 812.0 {
		t.Errorf("row 0 fossil gas = %v, want 812", first[1])
	}
	if first[2] != 40000.0 {
		t.Errorf("row 0 nuclear = %v, want 40000", first[2])
	}

	if !bytes.Equal(archiver.payload, []byte(generationXML)) {
		t.Error("archiver did not receive the raw payload")
	}
	if archiver.task.Country != "FR" {
		t.Errorf("archiver task country = %q, want FR", archiver.task.Country)
	}
}

type failingArchiver struct{}

func (failingArchiver) Archive(context.Context, Task, []byte) error {
	return errors.New("bucket unavailable")
}

func TestEntsoeSource_Fetch_archiveFailureIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(generationXML))
	}))
	defer srv.Close()

	s := newTestSource(srv, failingArchiver{})

	frame, err := s.Fetch(context.Background(), testTask())
	if err != nil {
		t.Fatalf("Fetch should survive an archive failure, got: %v", err)
	}
	if len(frame.Rows) != 3 {
		t.Errorf("frame has %d rows, want 3", len(frame.Rows))
	}
}

func TestEntsoeSource_Fetch_noData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(noDataXML))
	}))
	defer srv.Close()

	s := newTestSource(srv, nil)

	_, err := s.Fetch(context.Background(), testTask())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("Fetch error = %v, want ErrNoData", err)
	}
}

func TestEntsoeSource_Fetch_transientFailures(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		s := newTestSource(srv, nil)

		_, err := s.Fetch(context.Background(), testTask())

		var serr *SourceError
		if !errors.As(err, &serr) {
			t.Errorf("status %d: error = %v, want *SourceError", status, err)
		}

		srv.Close()
	}
}

func TestPointInstant_calendarResolutions(t *testing.T) {
	cases := []struct {
		start      time.Time
		resolution string
		position   int
		want       time.Time
	}{
		// Hourly positions are plain offsets.
		{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "PT60M", 3,
			time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)},
		// February is 29 days in 2024; a fixed 30-day step would land on
		// March 2nd.
		{time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "P1M", 2,
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "P1M", 4,
			time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		// 2024 is a leap year; a fixed 365-day step would land on
		// December 31st.
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "P1Y", 2,
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, c := range cases {
		got, err := pointInstant(c.start, c.resolution, c.position)
		if err != nil {
			t.Errorf("pointInstant(%s, %s, %d) returned unexpected error: %v",
				c.start, c.resolution, c.position, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("pointInstant(%s, %s, %d) = %s, want %s",
				c.start, c.resolution, c.position, got, c.want)
		}
	}
}

func TestPointInstant_unsupported(t *testing.T) {
	if _, err := pointInstant(time.Now(), "P3D", 1); err == nil {
		t.Error("expected error for unsupported resolution")
	}
}

func TestEntsoeSource_Fetch_unknownCountry(t *testing.T) {
	s := newEntsoeSource("test-token", nil)

	task := testTask()
	task.Country = "XX"

	_, err := s.Fetch(context.Background(), task)

	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("error = %v, want *ConfigError for unknown country", err)
	}
}
