package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"ncaab_v2/ingestion/internal/models"
)

// ParseGroup converts one conference group payload into a Group row
func ParseGroup(seasonID int, data []byte) (*models.Group, error) {
	var p struct {
		ID   LooseInt `json:"id"`
		Name string   `json:"name"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding group: %w", err)
	}
	if !p.ID.Valid || p.ID.Value == 0 {
		return nil, fmt.Errorf("group payload missing id")
	}
	return &models.Group{SeasonID: seasonID, GroupID: p.ID.Value, Name: p.Name}, nil
}

type standingEntry struct {
	Team struct {
		Ref string   `json:"$ref"`
		ID  LooseInt `json:"id"`
	} `json:"team"`
	Stats []struct {
		Name  string     `json:"name"`
		Value LooseFloat `json:"value"`
	} `json:"stats"`
	Records []struct {
		Name    string     `json:"name"`
		Type    string     `json:"type"`
		Summary string     `json:"summary"`
		Value   LooseFloat `json:"value"`
		Stats   []struct {
			Name  string     `json:"name"`
			Value LooseFloat `json:"value"`
		} `json:"stats"`
	} `json:"records"`
}

// ParseStandingsGroup converts one conference's standings payload into
// standing rows. The endpoint has two shapes: a "standings" array whose
// entries carry win/loss records, and an "entries" array with a flat
// stats list. Both are handled.
func ParseStandingsGroup(seasonID, seasonTypeID, groupID int, data []byte) ([]models.Standing, error) {
	var p struct {
		Standings []standingEntry `json:"standings"`
		Entries   []standingEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding standings: %w", err)
	}
	entries := p.Standings
	if len(entries) == 0 {
		entries = p.Entries
	}

	rows := make([]models.Standing, 0, len(entries))
	for _, entry := range entries {
		teamID := entry.Team.ID.Value
		if teamID == 0 {
			id, ok := idFromRef(entry.Team.Ref)
			if !ok {
				continue
			}
			teamID = id
		}

		s := models.Standing{
			SeasonID:     seasonID,
			SeasonTypeID: seasonTypeID,
			GroupID:      groupID,
			TeamID:       teamID,
		}
		stats := map[string]float64{}
		for _, st := range entry.Stats {
			if st.Value.Valid {
				stats[strings.ToLower(st.Name)] = st.Value.Value
			}
		}

		for _, rec := range entry.Records {
			name := strings.ToLower(rec.Name)
			w, l, pairOK := parseMadeAttempted(rec.Summary)
			switch {
			case pairOK && (name == "overall" || rec.Type == "total"):
				s.Wins, s.Losses = w, l
				if rec.Value.Valid {
					s.WinPct = rec.Value.Value
				}
			case pairOK && strings.Contains(name, "conf"):
				s.ConfWins, s.ConfLosses = w, l
			}
			for _, st := range rec.Stats {
				if st.Value.Valid {
					stats[strings.ToLower(st.Name)] = st.Value.Value
				}
			}
		}

		if s.Wins == 0 && s.Losses == 0 {
			s.Wins = int(stats["wins"])
			s.Losses = int(stats["losses"])
		}
		if s.ConfWins == 0 && s.ConfLosses == 0 {
			s.ConfWins = int(stats["conferencewins"])
			s.ConfLosses = int(stats["conferencelosses"])
		}
		if v, ok := stats["rank"]; ok {
			s.Rank = int(v)
		} else if v, ok := stats["playoffseed"]; ok {
			s.Rank = int(v)
		}
		if s.WinPct == 0 {
			if v, ok := stats["winpercent"]; ok {
				s.WinPct = v
			}
		}
		if v, ok := stats["streak"]; ok {
			s.Streak = v
		}
		if v, ok := stats["differential"]; ok {
			s.Differential = v
		} else if v, ok := stats["pointdifferential"]; ok {
			s.Differential = v
		}
		rows = append(rows, s)
	}
	return rows, nil
}
