package parser

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"ncaab_v2/ingestion/internal/models"
)

// SummaryRows is everything a single game summary yields for the store
type SummaryRows struct {
	TeamStats   []models.TeamStatistics
	PlayerStats []models.PlayerStatistics
	Odds        []models.Odds
	Prediction  *models.Prediction
	LineScores  *models.LineScoreUpdate

	// Athlete IDs seen in the player box score, for entity backfill
	AthleteIDs []int
}

// Empty reports whether the summary yielded no rows at all. The caller
// still stamps the event as fetched so gap detection does not retry a
// game the upstream has nothing for.
func (s *SummaryRows) Empty() bool {
	return len(s.TeamStats) == 0 && len(s.PlayerStats) == 0 &&
		len(s.Odds) == 0 && s.Prediction == nil && s.LineScores == nil
}

type summaryPayload struct {
	Boxscore struct {
		Teams []struct {
			Team struct {
				ID LooseInt `json:"id"`
			} `json:"team"`
			HomeAway   string `json:"homeAway"`
			Statistics []struct {
				Name         string `json:"name"`
				DisplayValue string `json:"displayValue"`
			} `json:"statistics"`
		} `json:"teams"`

		Players []struct {
			Team struct {
				ID LooseInt `json:"id"`
			} `json:"team"`
			Statistics []struct {
				Athletes []playerEntry `json:"athletes"`
			} `json:"statistics"`
		} `json:"players"`
	} `json:"boxscore"`

	Pickcenter []oddsItem `json:"pickcenter"`

	Predictor struct {
		Ref            string     `json:"$ref"`
		LastModified   string     `json:"lastModified"`
		GameProjection LooseFloat `json:"gameProjection"`
		HomeTeam       struct {
			GameProjection LooseFloat `json:"gameProjection"`
		} `json:"homeTeam"`
		AwayTeam struct {
			GameProjection LooseFloat `json:"gameProjection"`
		} `json:"awayTeam"`
	} `json:"predictor"`

	Header struct {
		Competitions []struct {
			Competitors []struct {
				HomeAway   string `json:"homeAway"`
				Linescores []struct {
					DisplayValue string `json:"displayValue"`
				} `json:"linescores"`
			} `json:"competitors"`
		} `json:"competitions"`
	} `json:"header"`
}

type playerEntry struct {
	Athlete struct {
		ID          LooseInt `json:"id"`
		DisplayName string   `json:"displayName"`
		ShortName   string   `json:"shortName"`
	} `json:"athlete"`
	Active  *bool    `json:"active"`
	Starter bool     `json:"starter"`
	Stats   []string `json:"stats"`
}

type oddsItem struct {
	Ref      string `json:"$ref"`
	Provider struct {
		ID       LooseInt `json:"id"`
		Name     string   `json:"name"`
		Priority int      `json:"priority"`
	} `json:"provider"`
	OverUnder    LooseFloat `json:"overUnder"`
	Spread       LooseFloat `json:"spread"`
	OverOdds     LooseFloat `json:"overOdds"`
	UnderOdds    LooseFloat `json:"underOdds"`
	Details      string     `json:"details"`
	LastModified string     `json:"lastModified"`
	HomeTeamOdds struct {
		Favorite   bool       `json:"favorite"`
		MoneyLine  LooseInt   `json:"moneyLine"`
		SpreadOdds LooseFloat `json:"spreadOdds"`
	} `json:"homeTeamOdds"`
	AwayTeamOdds struct {
		Favorite   bool       `json:"favorite"`
		MoneyLine  LooseInt   `json:"moneyLine"`
		SpreadOdds LooseFloat `json:"spreadOdds"`
	} `json:"awayTeamOdds"`
}

// ParseSummary extracts team and player box scores, betting lines, the
// win-probability projection, and per-period line scores from one game
// summary payload. Sections the payload omits simply produce no rows.
func ParseSummary(eventID int, data []byte) (*SummaryRows, error) {
	var p summaryPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding summary for event %d: %w", eventID, err)
	}

	rows := &SummaryRows{}
	seen := make(map[int]bool)

	for _, t := range p.Boxscore.Teams {
		if !t.Team.ID.Valid || t.Team.ID.Value == 0 {
			continue
		}
		stats := make(map[string]string, len(t.Statistics))
		for _, s := range t.Statistics {
			stats[s.Name] = s.DisplayValue
		}
		rows.TeamStats = append(rows.TeamStats, buildTeamStats(eventID, t.Team.ID.Value, t.HomeAway, stats))
	}

	for _, tp := range p.Boxscore.Players {
		if !tp.Team.ID.Valid || tp.Team.ID.Value == 0 {
			continue
		}
		for _, group := range tp.Statistics {
			for _, entry := range group.Athletes {
				ps, ok := buildPlayerStats(eventID, tp.Team.ID.Value, entry)
				if !ok {
					continue
				}
				rows.PlayerStats = append(rows.PlayerStats, ps)
				if !seen[ps.AthleteID] {
					seen[ps.AthleteID] = true
					rows.AthleteIDs = append(rows.AthleteIDs, ps.AthleteID)
				}
			}
		}
	}

	for _, item := range p.Pickcenter {
		if !item.Provider.ID.Valid {
			continue
		}
		rows.Odds = append(rows.Odds, buildOdds(eventID, item))
	}

	if pred := buildPrediction(eventID, &p); pred != nil {
		rows.Prediction = pred
	}
	if ls := buildLineScores(eventID, &p); ls != nil {
		rows.LineScores = ls
	}
	return rows, nil
}

func buildTeamStats(eventID, teamID int, homeAway string, stats map[string]string) models.TeamStatistics {
	ts := models.TeamStatistics{EventID: eventID, TeamID: teamID, HomeAway: homeAway}

	setPair := func(key string, made, att *sql.NullInt32) {
		if m, a, ok := parseMadeAttempted(stats[key]); ok {
			*made = sql.NullInt32{Int32: int32(m), Valid: true}
			*att = sql.NullInt32{Int32: int32(a), Valid: true}
		}
	}
	setInt := func(key string, dst *sql.NullInt32) {
		if v, ok := parseStatInt(stats[key]); ok {
			*dst = sql.NullInt32{Int32: int32(v), Valid: true}
		}
	}
	setPct := func(key string, dst *sql.NullFloat64) {
		if v, ok := parseStatFloat(stats[key]); ok {
			*dst = sql.NullFloat64{Float64: v, Valid: true}
		}
	}

	setPair("fieldGoalsMade-fieldGoalsAttempted", &ts.FieldGoalsMade, &ts.FieldGoalsAttempted)
	setPct("fieldGoalPct", &ts.FieldGoalPct)
	setPair("threePointFieldGoalsMade-threePointFieldGoalsAttempted", &ts.ThreePointMade, &ts.ThreePointAttempted)
	setPct("threePointFieldGoalPct", &ts.ThreePointPct)
	setPair("freeThrowsMade-freeThrowsAttempted", &ts.FreeThrowsMade, &ts.FreeThrowsAttempted)
	setPct("freeThrowPct", &ts.FreeThrowPct)

	setInt("totalRebounds", &ts.TotalRebounds)
	setInt("offensiveRebounds", &ts.OffensiveRebounds)
	setInt("defensiveRebounds", &ts.DefensiveRebounds)

	setInt("assists", &ts.Assists)
	setInt("steals", &ts.Steals)
	setInt("blocks", &ts.Blocks)

	setInt("turnovers", &ts.Turnovers)
	setInt("teamTurnovers", &ts.TeamTurnovers)
	setInt("totalTurnovers", &ts.TotalTurnovers)

	setInt("fouls", &ts.Fouls)
	setInt("technicalFouls", &ts.TechnicalFouls)
	setInt("flagrantFouls", &ts.FlagrantFouls)

	setInt("turnoverPoints", &ts.TurnoverPoints)
	setInt("fastBreakPoints", &ts.FastBreakPoints)
	setInt("pointsInPaint", &ts.PointsInPaint)
	setInt("largestLead", &ts.LargestLead)
	setInt("leadChanges", &ts.LeadChanges)
	setPct("leadPercent", &ts.LeadPercentage)

	return ts
}

// Player stat array order: MIN, PTS, FG, 3PT, FT, OREB, DREB, REB, AST,
// STL, BLK, TO, PF. Entries shorter than 10 are DNP rows and are dropped.
func buildPlayerStats(eventID, teamID int, entry playerEntry) (models.PlayerStatistics, bool) {
	if !entry.Athlete.ID.Valid || entry.Athlete.ID.Value == 0 {
		return models.PlayerStatistics{}, false
	}
	if len(entry.Stats) < 10 {
		return models.PlayerStatistics{}, false
	}

	stat := func(i int) string {
		if i < len(entry.Stats) {
			return entry.Stats[i]
		}
		return ""
	}

	ps := models.PlayerStatistics{
		EventID:          eventID,
		TeamID:           teamID,
		AthleteID:        entry.Athlete.ID.Value,
		AthleteName:      entry.Athlete.DisplayName,
		AthleteShortName: entry.Athlete.ShortName,
		IsActive:         entry.Active == nil || *entry.Active,
		IsStarter:        entry.Starter,
	}
	if m := stat(0); m != "" && m != "--" {
		ps.MinutesPlayed = sql.NullString{String: m, Valid: true}
	}

	setInt := func(i int, dst *sql.NullInt32) {
		if v, ok := parseStatInt(stat(i)); ok {
			*dst = sql.NullInt32{Int32: int32(v), Valid: true}
		}
	}
	setPair := func(i int, made, att *sql.NullInt32) {
		if m, a, ok := parseMadeAttempted(stat(i)); ok {
			*made = sql.NullInt32{Int32: int32(m), Valid: true}
			*att = sql.NullInt32{Int32: int32(a), Valid: true}
		}
	}

	setInt(1, &ps.Points)
	setPair(2, &ps.FieldGoalsMade, &ps.FieldGoalsAttempted)
	setPair(3, &ps.ThreePointMade, &ps.ThreePointAttempted)
	setPair(4, &ps.FreeThrowsMade, &ps.FreeThrowsAttempted)
	setInt(5, &ps.OffensiveRebounds)
	setInt(6, &ps.DefensiveRebounds)
	setInt(7, &ps.Rebounds)
	setInt(8, &ps.Assists)
	setInt(9, &ps.Steals)
	setInt(10, &ps.Blocks)
	setInt(11, &ps.Turnovers)
	setInt(12, &ps.Fouls)

	return ps, true
}

func buildOdds(eventID int, item oddsItem) models.Odds {
	o := models.Odds{
		EventID:          eventID,
		ProviderID:       item.Provider.ID.Value,
		ProviderName:     item.Provider.Name,
		ProviderPriority: item.Provider.Priority,
	}
	setF := func(src LooseFloat, dst *sql.NullFloat64) {
		if src.Valid {
			*dst = sql.NullFloat64{Float64: src.Value, Valid: true}
		}
	}
	setF(item.OverUnder, &o.OverUnder)
	setF(item.OverOdds, &o.OverOdds)
	setF(item.UnderOdds, &o.UnderOdds)
	setF(item.Spread, &o.Spread)
	setF(item.HomeTeamOdds.SpreadOdds, &o.HomeSpreadOdds)
	setF(item.AwayTeamOdds.SpreadOdds, &o.AwaySpreadOdds)

	if item.HomeTeamOdds.MoneyLine.Valid {
		o.HomeMoneyline = sql.NullInt32{Int32: int32(item.HomeTeamOdds.MoneyLine.Value), Valid: true}
	}
	if item.AwayTeamOdds.MoneyLine.Valid {
		o.AwayMoneyline = sql.NullInt32{Int32: int32(item.AwayTeamOdds.MoneyLine.Value), Valid: true}
	}

	// Favorite flags are only meaningful when one side is marked
	if item.HomeTeamOdds.Favorite {
		o.HomeIsFavorite = sql.NullBool{Bool: true, Valid: true}
		o.AwayIsFavorite = sql.NullBool{Bool: false, Valid: true}
	} else if item.AwayTeamOdds.Favorite {
		o.HomeIsFavorite = sql.NullBool{Bool: false, Valid: true}
		o.AwayIsFavorite = sql.NullBool{Bool: true, Valid: true}
	}

	if item.Details != "" {
		o.Details = sql.NullString{String: item.Details, Valid: true}
	}
	if item.LastModified != "" {
		o.LastModified = sql.NullString{String: item.LastModified, Valid: true}
	}
	if item.Ref != "" {
		o.APIRef = sql.NullString{String: item.Ref, Valid: true}
	}
	return o
}

func buildPrediction(eventID int, p *summaryPayload) *models.Prediction {
	pr := &p.Predictor
	if !pr.HomeTeam.GameProjection.Valid && !pr.AwayTeam.GameProjection.Valid {
		return nil
	}
	pred := &models.Prediction{EventID: eventID}
	if pr.LastModified != "" {
		pred.LastModified = sql.NullString{String: pr.LastModified, Valid: true}
	}
	if pr.GameProjection.Valid {
		pred.MatchupQuality = sql.NullFloat64{Float64: pr.GameProjection.Value, Valid: true}
	}
	if pr.HomeTeam.GameProjection.Valid {
		pred.HomeWinProbability = sql.NullFloat64{Float64: pr.HomeTeam.GameProjection.Value, Valid: true}
	}
	if pr.AwayTeam.GameProjection.Valid {
		pred.AwayWinProbability = sql.NullFloat64{Float64: pr.AwayTeam.GameProjection.Value, Valid: true}
	}
	if pr.Ref != "" {
		pred.APIRef = sql.NullString{String: pr.Ref, Valid: true}
	}
	return pred
}

// buildLineScores returns per-period scores as JSON string arrays, only
// when both sides have them. Partial line scores are left for a later run.
func buildLineScores(eventID int, p *summaryPayload) *models.LineScoreUpdate {
	if len(p.Header.Competitions) == 0 {
		return nil
	}
	var home, away []string
	for _, c := range p.Header.Competitions[0].Competitors {
		var scores []string
		for _, ls := range c.Linescores {
			v := ls.DisplayValue
			if v == "" {
				v = "0"
			}
			scores = append(scores, v)
		}
		switch c.HomeAway {
		case "home":
			home = scores
		case "away":
			away = scores
		}
	}
	if len(home) == 0 || len(away) == 0 {
		return nil
	}
	hb, err := json.Marshal(home)
	if err != nil {
		return nil
	}
	ab, err := json.Marshal(away)
	if err != nil {
		return nil
	}
	return &models.LineScoreUpdate{
		EventID:        eventID,
		HomeLineScores: string(hb),
		AwayLineScores: string(ab),
	}
}

