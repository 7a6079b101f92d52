package parser

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ncaab_v2/ingestion/internal/models"
)

// RefResolver fetches a "$ref" link and returns the raw JSON it points to.
// Parsers call it only when a payload carries a reference in place of an
// inline object (the events endpoint does this for status and score).
type RefResolver func(ref string) (json.RawMessage, error)

type refOnly struct {
	Ref string `json:"$ref"`
}

type eventPayload struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Self string `json:"$ref"`

	Season struct {
		Ref  string `json:"$ref"`
		Year int    `json:"year"`
	} `json:"season"`
	SeasonType struct {
		Ref string   `json:"$ref"`
		ID  LooseInt `json:"id"`
	} `json:"seasonType"`
	Week struct {
		Number int `json:"number"`
	} `json:"week"`

	Competitions []struct {
		Attendance            int  `json:"attendance"`
		NeutralSite           bool `json:"neutralSite"`
		ConferenceCompetition bool `json:"conferenceCompetition"`

		Venue struct {
			ID       LooseInt `json:"id"`
			FullName string   `json:"fullName"`
		} `json:"venue"`

		Status json.RawMessage `json:"status"`

		Competitors []struct {
			ID       LooseInt        `json:"id"`
			HomeAway string          `json:"homeAway"`
			Winner   bool            `json:"winner"`
			Score    json.RawMessage `json:"score"`
		} `json:"competitors"`

		Broadcasts []struct {
			Media struct {
				ShortName string `json:"shortName"`
			} `json:"media"`
			Names []string `json:"names"`
		} `json:"broadcasts"`
	} `json:"competitions"`
}

type statusPayload struct {
	Type struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Detail      string `json:"detail"`
		Completed   bool   `json:"completed"`
	} `json:"type"`
}

// ParseEvent converts one upstream event payload into an Event row.
// resolve may be nil; referenced status/score objects are then left unset.
func ParseEvent(data []byte, resolve RefResolver) (*models.Event, error) {
	var p eventPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}

	eventID, err := strconv.Atoi(p.ID)
	if err != nil {
		return nil, fmt.Errorf("event id %q: %w", p.ID, err)
	}
	if len(p.Competitions) == 0 {
		return nil, fmt.Errorf("event %d has no competitions", eventID)
	}
	comp := p.Competitions[0]

	date, err := parseEventDate(p.Date)
	if err != nil {
		return nil, fmt.Errorf("event %d date %q: %w", eventID, p.Date, err)
	}

	ev := &models.Event{
		EventID:          eventID,
		SeasonID:         seasonYear(p.Season.Year, p.Season.Ref),
		SeasonTypeID:     p.SeasonType.ID.Value,
		Date:             date,
		IsConferenceGame: comp.ConferenceCompetition,
		IsNeutralSite:    comp.NeutralSite,
	}
	if p.Self != "" {
		ev.APIRef = sql.NullString{String: p.Self, Valid: true}
	}
	if p.Week.Number > 0 {
		ev.Week = sql.NullInt32{Int32: int32(p.Week.Number), Valid: true}
	}
	if comp.Venue.ID.Valid {
		ev.VenueID = sql.NullInt32{Int32: int32(comp.Venue.ID.Value), Valid: true}
	}
	if comp.Venue.FullName != "" {
		ev.VenueName = sql.NullString{String: comp.Venue.FullName, Valid: true}
	}
	if comp.Attendance > 0 {
		ev.Attendance = sql.NullInt32{Int32: int32(comp.Attendance), Valid: true}
	}
	if n := broadcastNetwork(comp.Broadcasts); n != "" {
		ev.BroadcastNetwork = sql.NullString{String: n, Valid: true}
	}

	if st, err := resolveStatus(comp.Status, resolve); err == nil && st != nil {
		ev.Status = st.Type.Name
		ev.StatusDetail = st.Type.Detail
		if ev.StatusDetail == "" {
			ev.StatusDetail = st.Type.Description
		}
		ev.IsCompleted = st.Type.Completed
	}

	for _, c := range comp.Competitors {
		if !c.ID.Valid {
			continue
		}
		score, winner := resolveScore(c.Score, resolve)
		switch c.HomeAway {
		case "home":
			ev.HomeTeamID = c.ID.Value
			if score.Valid {
				ev.HomeScore = sql.NullInt32{Int32: int32(score.Value), Valid: true}
			}
			if c.Winner || winner {
				ev.WinnerTeamID = sql.NullInt32{Int32: int32(c.ID.Value), Valid: true}
			}
		case "away":
			ev.AwayTeamID = c.ID.Value
			if score.Valid {
				ev.AwayScore = sql.NullInt32{Int32: int32(score.Value), Valid: true}
			}
			if c.Winner || winner {
				ev.WinnerTeamID = sql.NullInt32{Int32: int32(c.ID.Value), Valid: true}
			}
		}
	}
	if ev.HomeTeamID == 0 || ev.AwayTeamID == 0 {
		return nil, fmt.Errorf("event %d missing home/away competitors", eventID)
	}
	return ev, nil
}

func parseEventDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04Z07:00", time.RFC3339, "2006-01-02T15:04:05Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// seasonYear prefers the inline year and falls back to the trailing
// path segment of a seasons/<year> reference.
func seasonYear(year int, ref string) int {
	if year > 0 {
		return year
	}
	idx := strings.Index(ref, "seasons/")
	if idx < 0 {
		return 0
	}
	rest := ref[idx+len("seasons/"):]
	if cut := strings.IndexAny(rest, "/?"); cut >= 0 {
		rest = rest[:cut]
	}
	y, _ := strconv.Atoi(rest)
	return y
}

func broadcastNetwork(broadcasts []struct {
	Media struct {
		ShortName string `json:"shortName"`
	} `json:"media"`
	Names []string `json:"names"`
}) string {
	for _, b := range broadcasts {
		if b.Media.ShortName != "" {
			return b.Media.ShortName
		}
		if len(b.Names) > 0 && b.Names[0] != "" {
			return b.Names[0]
		}
	}
	return ""
}

// resolveStatus handles both the inline and the referenced status shape
func resolveStatus(raw json.RawMessage, resolve RefResolver) (*statusPayload, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ref refOnly
	if err := json.Unmarshal(raw, &ref); err == nil && ref.Ref != "" {
		if resolve == nil {
			return nil, nil
		}
		resolved, err := resolve(ref.Ref)
		if err != nil {
			return nil, err
		}
		raw = resolved
	}
	var st statusPayload
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	if st.Type.Name == "" && !st.Type.Completed {
		// Some payloads flatten type fields to the top level
		var flat struct {
			Name      string `json:"name"`
			Detail    string `json:"detail"`
			Completed bool   `json:"completed"`
		}
		if err := json.Unmarshal(raw, &flat); err == nil && flat.Name != "" {
			st.Type.Name = flat.Name
			st.Type.Detail = flat.Detail
			st.Type.Completed = flat.Completed
		}
	}
	return &st, nil
}

// resolveScore handles scores encoded as numbers, strings, inline
// objects, or references.
func resolveScore(raw json.RawMessage, resolve RefResolver) (LooseInt, bool) {
	if len(raw) == 0 {
		return LooseInt{}, false
	}
	var ref refOnly
	if err := json.Unmarshal(raw, &ref); err == nil && ref.Ref != "" {
		if resolve == nil {
			return LooseInt{}, false
		}
		resolved, err := resolve(ref.Ref)
		if err != nil {
			return LooseInt{}, false
		}
		raw = resolved
	}
	var obj struct {
		Value  LooseFloat `json:"value"`
		Winner bool       `json:"winner"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Value.Valid {
		return LooseInt{Value: int(obj.Value.Value), Valid: true}, obj.Winner
	}
	var v LooseInt
	if err := v.UnmarshalJSON(raw); err != nil {
		return LooseInt{}, false
	}
	return v, false
}
