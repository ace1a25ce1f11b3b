package gridloader

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// Source fetches one task's window from the transparency platform and
// returns it in tabular form. It reports ErrNoData when the platform
// published nothing for the combination, and *SourceError on transient
// faults.
type Source interface {
	Fetch(ctx context.Context, t Task) (*Frame, error)
}

const defaultBaseURL = "https://web-api.tp.entsoe.eu/api"

// areaEIC maps ISO country codes to the bidding-zone EIC identifiers the
// API expects as in_Domain.
var areaEIC = map[string]string{
	"AT": "10YAT-APG------L",
	"BE": "10YBE----------2",
	"BG": "10YCA-BULGARIA-R",
	"CH": "10YCH-SWISSGRIDZ",
	"CZ": "10YCZ-CEPS-----N",
	"DE": "10Y1001A1001A83F",
	"DK": "10Y1001A1001A65H",
	"EE": "10Y1001A1001A39I",
	"ES": "10YES-REE------0",
	"FI": "10YFI-1--------U",
	"FR": "10YFR-RTE------C",
	"GR": "10YGR-HTSO-----Y",
	"HR": "10YHR-HEP------M",
	"HU": "10YHU-MAVIR----U",
	"IE": "10YIE-1001A00010",
	"IT": "10YIT-GRTN-----B",
	"LT": "10YLT-1001A0008Q",
	"LU": "10YLU-CEGEDEL-NQ",
	"LV": "10YLV-1001A00074",
	"NL": "10YNL----------L",
	"NO": "10YNO-0--------C",
	"PL": "10YPL-AREA-----S",
	"PT": "10YPT-REN------W",
	"RO": "10YRO-TEL------P",
	"SE": "10YSE-1--------K",
	"SI": "10YSI-ELES-----O",
	"SK": "10YSK-SEPS-----K",
}

// processTypes maps each document type to the process the API expects
// alongside it: realised data for generation, year-ahead for capacity.
var processTypes = map[DocumentType]string{
	DocActualGeneration:  "A16",
	DocGenerationPerUnit: "A16",
	DocInstalledCapacity: "A33",
}

// psrNames maps production source codes to the labels used in column names.
var psrNames = map[string]string{
	"B01": "Biomass",
	"B02": "Fossil Brown coal/Lignite",
	"B03": "Fossil Coal-derived gas",
	"B04": "Fossil Gas",
	"B05": "Fossil Hard coal",
	"B06": "Fossil Oil",
	"B07": "Fossil Oil shale",
	"B08": "Fossil Peat",
	"B09": "Geothermal",
	"B10": "Hydro Pumped Storage",
	"B11": "Hydro Run-of-river and poundage",
	"B12": "Hydro Water Reservoir",
	"B13": "Marine",
	"B14": "Nuclear",
	"B15": "Other renewable",
	"B16": "Solar",
	"B17": "Waste",
	"B18": "Wind Offshore",
	"B19": "Wind Onshore",
	"B20": "Other",
}

func areaFor(country string) (string, error) {
	eic, ok := areaEIC[country]
	if !ok {
		return "", &ConfigError{Err: xerrors.Errorf("unknown country code %q", country)}
	}
	return eic, nil
}

type entsoeSource struct {
	baseURL  string
	token    string
	client   *http.Client
	archiver Archiver
}

func newEntsoeSource(token string, archiver Archiver) *entsoeSource {
	return &entsoeSource{
		baseURL:  defaultBaseURL,
		token:    token,
		client:   &http.Client{Timeout: 2 * time.Minute},
		archiver: archiver,
	}
}

func (s *entsoeSource) Fetch(ctx context.Context, t Task) (*Frame, error) {
	l := log.Ctx(ctx)

	eic, err := areaFor(t.Country)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("securityToken", s.token)
	q.Set("documentType", string(t.Document))
	q.Set("processType", processTypes[t.Document])
	q.Set("in_Domain", eic)
	q.Set("periodStart", t.PeriodStart.UTC().Format("200601021504"))
	q.Set("periodEnd", t.PeriodEnd.UTC().Format("200601021504"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, xerrors.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &SourceError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SourceError{Reason: "failed to read response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &SourceError{Reason: "authorization rejected"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &SourceError{Reason: "rate limited"}
	case resp.StatusCode >= 500:
		return nil, &SourceError{Reason: "server error", Err: xerrors.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &SourceError{Reason: "unexpected status", Err: xerrors.Errorf("status %d", resp.StatusCode)}
	}

	// Raw payloads land in the archive before decoding so a decode bug can
	// be replayed. Archive failure never fails the task.
	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, t, body); err != nil {
			l.Warn().Err(err).Str("task", t.String()).Msg("failed to archive raw payload")
		}
	}

	if bytes.Contains(body, []byte("Acknowledgement_MarketDocument")) {
		return nil, decodeAcknowledgement(body)
	}

	return decodeMarketDocument(body, t)
}

type acknowledgementDocument struct {
	Reasons []struct {
		Code string `xml:"code"`
		Text string `xml:"text"`
	} `xml:"Reason"`
}

// decodeAcknowledgement distinguishes the platform's "no data" answer,
// which it delivers as a 200 acknowledgement with reason code 999, from a
// genuine refusal.
func decodeAcknowledgement(body []byte) error {
	var ack acknowledgementDocument
	if err := xml.Unmarshal(body, &ack); err != nil {
		return &SourceError{Reason: "failed to decode acknowledgement", Err: err}
	}

	for _, r := range ack.Reasons {
		if r.Code == "999" || strings.Contains(r.Text, "No matching data") {
			return ErrNoData
		}
	}

	reason := "request rejected"
	if len(ack.Reasons) > 0 {
		reason = ack.Reasons[0].Text
	}
	return &SourceError{Reason: reason}
}

type marketDocument struct {
	TimeSeries []timeSeries `xml:"TimeSeries"`
}

type timeSeries struct {
	InDomain  string   `xml:"inBiddingZone_Domain.mRID"`
	OutDomain string   `xml:"outBiddingZone_Domain.mRID"`
	PsrType   string   `xml:"MktPSRType>psrType"`
	UnitName  string   `xml:"MktPSRType>PowerSystemResources>name"`
	Periods   []period `xml:"Period"`
}

type period struct {
	Start      string  `xml:"timeInterval>start"`
	Resolution string  `xml:"resolution"`
	Points     []point `xml:"Point"`
}

type point struct {
	Position int     `xml:"position"`
	Quantity float64 `xml:"quantity"`
}

const timestampLabel = "Timestamp"

// decodeMarketDocument pivots the document's time series into one row per
// instant with one column per series label, mirroring how downstream
// consumers expect generation data laid out.
func decodeMarketDocument(body []byte, t Task) (*Frame, error) {
	var doc marketDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, &SourceError{Reason: "failed to decode market document", Err: err}
	}

	labels := []string{}
	cells := map[time.Time]map[string]Value{}

	for _, ts := range doc.TimeSeries {
		label := seriesLabel(ts, t.Document)

		known := false
		for _, l := range labels {
			if l == label {
				known = true
				break
			}
		}
		if !known {
			labels = append(labels, label)
		}

		for _, p := range ts.Periods {
			start, err := time.Parse("2006-01-02T15:04Z", p.Start)
			if err != nil {
				return nil, &SourceError{Reason: "failed to parse period start", Err: err}
			}

			for _, pt := range p.Points {
				instant, err := pointInstant(start, p.Resolution, pt.Position)
				if err != nil {
					return nil, &SourceError{Reason: "failed to parse resolution", Err: err}
				}

				row, ok := cells[instant]
				if !ok {
					row = map[string]Value{}
					cells[instant] = row
				}
				row[label] = pt.Quantity
			}
		}
	}

	instants := make([]time.Time, 0, len(cells))
	for instant := range cells {
		instants = append(instants, instant)
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i].Before(instants[j]) })

	frame := &Frame{Columns: append([]string{timestampLabel}, labels...)}
	for _, instant := range instants {
		row := make([]Value, len(frame.Columns))
		row[0] = instant
		for j, label := range labels {
			if v, ok := cells[instant][label]; ok {
				row[j+1] = v
			}
		}
		frame.Rows = append(frame.Rows, row)
	}

	return frame, nil
}

// seriesLabel names a time series the way the platform's own exports do:
// production type plus aggregation kind for zone-level generation, unit
// name for per-unit data, bare production type for installed capacity.
func seriesLabel(ts timeSeries, doc DocumentType) string {
	name, ok := psrNames[ts.PsrType]
	if !ok {
		name = ts.PsrType
	}

	switch doc {
	case DocGenerationPerUnit:
		if ts.UnitName != "" {
			return ts.UnitName
		}
		return name
	case DocInstalledCapacity:
		return name
	default:
		if ts.OutDomain != "" && ts.InDomain == "" {
			return name + "/Actual Consumption"
		}
		return name + "/Actual Aggregated"
	}
}

// pointInstant places a point's 1-based position on the timeline. Calendar
// resolutions step via AddDate so month lengths and leap years stay exact.
func pointInstant(start time.Time, resolution string, position int) (time.Time, error) {
	n := position - 1

	switch resolution {
	case "PT15M":
		return start.Add(time.Duration(n) * 15 * time.Minute), nil
	case "PT30M":
		return start.Add(time.Duration(n) * 30 * time.Minute), nil
	case "PT60M", "PT1H":
		return start.Add(time.Duration(n) * time.Hour), nil
	case "P1D":
		return start.AddDate(0, 0, n), nil
	case "P7D":
		return start.AddDate(0, 0, 7*n), nil
	case "P1M":
		return start.AddDate(0, n, 0), nil
	case "P1Y":
		return start.AddDate(n, 0, 0), nil
	default:
		return time.Time{}, xerrors.Errorf("unsupported resolution %q", resolution)
	}
}
