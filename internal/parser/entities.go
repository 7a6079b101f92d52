package parser

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"ncaab_v2/ingestion/internal/models"
)

// ParseAthlete converts one athlete payload into an Athlete row
func ParseAthlete(data []byte) (*models.Athlete, error) {
	var p struct {
		Ref         string   `json:"$ref"`
		ID          LooseInt `json:"id"`
		FullName    string   `json:"fullName"`
		DisplayName string   `json:"displayName"`
		ShortName   string   `json:"shortName"`
		Jersey      string   `json:"jersey"`

		Height      LooseFloat `json:"height"`
		Weight      LooseFloat `json:"weight"`
		Age         LooseInt   `json:"age"`
		DateOfBirth string     `json:"dateOfBirth"`

		Position struct {
			Name         string `json:"name"`
			Abbreviation string `json:"abbreviation"`
		} `json:"position"`

		BirthPlace struct {
			City    string `json:"city"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"birthPlace"`

		Headshot struct {
			Href string `json:"href"`
		} `json:"headshot"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding athlete: %w", err)
	}
	if !p.ID.Valid || p.ID.Value == 0 {
		return nil, fmt.Errorf("athlete payload missing id")
	}

	a := &models.Athlete{
		AthleteID:    p.ID.Value,
		FullName:     p.FullName,
		DisplayName:  p.DisplayName,
		ShortName:    p.ShortName,
		PositionName: p.Position.Name,
		PositionAbbr: p.Position.Abbreviation,
		Jersey:       p.Jersey,
	}
	if p.Height.Valid {
		a.Height = sql.NullFloat64{Float64: p.Height.Value, Valid: true}
	}
	if p.Weight.Valid {
		a.Weight = sql.NullFloat64{Float64: p.Weight.Value, Valid: true}
	}
	if p.Age.Valid {
		a.Age = sql.NullInt32{Int32: int32(p.Age.Value), Valid: true}
	}
	setStr := func(s string, dst *sql.NullString) {
		if s != "" {
			*dst = sql.NullString{String: s, Valid: true}
		}
	}
	setStr(p.DateOfBirth, &a.DateOfBirth)
	setStr(p.BirthPlace.City, &a.BirthCity)
	setStr(p.BirthPlace.State, &a.BirthState)
	setStr(p.BirthPlace.Country, &a.BirthCountry)
	setStr(p.Headshot.Href, &a.HeadshotURL)
	setStr(p.Ref, &a.APIRef)
	return a, nil
}

// ParseVenue converts one venue payload into a Venue row
func ParseVenue(data []byte) (*models.Venue, error) {
	var p struct {
		Ref      string   `json:"$ref"`
		ID       LooseInt `json:"id"`
		FullName string   `json:"fullName"`
		Capacity LooseInt `json:"capacity"`
		Grass    bool     `json:"grass"`
		Indoor   bool     `json:"indoor"`
		Address  struct {
			City  string `json:"city"`
			State string `json:"state"`
		} `json:"address"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding venue: %w", err)
	}
	if !p.ID.Valid || p.ID.Value == 0 {
		return nil, fmt.Errorf("venue payload missing id")
	}

	v := &models.Venue{
		VenueID:  p.ID.Value,
		FullName: p.FullName,
		Grass:    p.Grass,
		Indoor:   p.Indoor,
	}
	if p.Capacity.Valid && p.Capacity.Value > 0 {
		v.Capacity = sql.NullInt32{Int32: int32(p.Capacity.Value), Valid: true}
	}
	if p.Address.City != "" {
		v.City = sql.NullString{String: p.Address.City, Valid: true}
	}
	if p.Address.State != "" {
		v.State = sql.NullString{String: p.Address.State, Valid: true}
	}
	if p.Ref != "" {
		v.APIRef = sql.NullString{String: p.Ref, Valid: true}
	}
	return v, nil
}
