package parser

import (
	"encoding/json"
	"fmt"

	"ncaab_v2/ingestion/internal/models"
)

// ParseRankingIndex returns the week references listed by a season's
// rankings endpoint.
func ParseRankingIndex(data []byte) ([]string, error) {
	var idx struct {
		Rankings []refOnly `json:"rankings"`
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decoding ranking index: %w", err)
	}
	refs := make([]string, 0, len(idx.Rankings))
	for _, r := range idx.Rankings {
		if r.Ref != "" {
			refs = append(refs, r.Ref)
		}
	}
	return refs, nil
}

// ParseRankingWeek converts one poll week payload into ranking rows.
// Entries whose team reference cannot be resolved to an ID are skipped.
func ParseRankingWeek(seasonID, rankingTypeID int, data []byte) (int, []models.Ranking, error) {
	var p struct {
		Week struct {
			Number int `json:"number"`
		} `json:"week"`
		Ranks []struct {
			Current         int        `json:"current"`
			Previous        LooseInt   `json:"previous"`
			Points          LooseFloat `json:"points"`
			FirstPlaceVotes int        `json:"firstPlaceVotes"`
			Team            struct {
				Ref string   `json:"$ref"`
				ID  LooseInt `json:"id"`
			} `json:"team"`
		} `json:"ranks"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, nil, fmt.Errorf("decoding ranking week: %w", err)
	}

	rows := make([]models.Ranking, 0, len(p.Ranks))
	for _, r := range p.Ranks {
		// Teams arrive inline on some endpoints and as a reference on others
		teamID := r.Team.ID.Value
		if teamID == 0 {
			id, ok := idFromRef(r.Team.Ref)
			if !ok {
				continue
			}
			teamID = id
		}
		row := models.Ranking{
			SeasonID:        seasonID,
			WeekNumber:      p.Week.Number,
			RankingTypeID:   rankingTypeID,
			TeamID:          teamID,
			CurrentRank:     r.Current,
			Points:          r.Points.Value,
			FirstPlaceVotes: r.FirstPlaceVotes,
		}
		if r.Previous.Valid && r.Previous.Value > 0 {
			row.PreviousRank.Int32 = int32(r.Previous.Value)
			row.PreviousRank.Valid = true
		}
		rows = append(rows, row)
	}
	return p.Week.Number, rows, nil
}
