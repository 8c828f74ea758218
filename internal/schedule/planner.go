package schedule

import (
	"context"
	"fmt"

	"scrimbot/internal/db"
	"scrimbot/internal/db/models"
)

// Planner derives common team availability from the store.
type Planner struct {
	db *db.DB
}

func NewPlanner(database *db.DB) *Planner {
	return &Planner{db: database}
}

// TeamSchedule computes, for each day of the week, the hours when every
// member of the team is simultaneously available.
//
// Returns the members alongside the schedule; a team with no members on the
// guild yields (nil, nil, nil), which is distinct from an existing team
// whose days are all empty. A member with nothing declared for a day
// collapses that whole day to empty for the team: a non-response is never
// treated as available.
func (p *Planner) TeamSchedule(ctx context.Context, guildID, team string) (map[int][]Interval, []*models.Player, error) {
	members, err := p.db.GetTeamMembers(ctx, guildID, team)
	if err != nil {
		return nil, nil, fmt.Errorf("error fetching team members: %w", err)
	}
	if len(members) == 0 {
		return nil, nil, nil
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.DiscordID
	}

	// One batched fetch for the whole team, then fold in memory.
	rows, err := p.db.GetAvailabilityForPlayers(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("error fetching availability: %w", err)
	}

	// slots[day][discordID] = declared windows for that member on that day
	slots := make(map[int]map[string][]Interval, 7)
	for day := 0; day < 7; day++ {
		slots[day] = make(map[string][]Interval)
	}
	for _, r := range rows {
		if r.Day < 0 || r.Day > 6 {
			continue
		}
		slots[r.Day][r.DiscordID] = append(slots[r.Day][r.DiscordID],
			Interval{Start: r.StartHour, End: r.EndHour})
	}

	common := make(map[int][]Interval, 7)
	for day := 0; day < 7; day++ {
		common[day] = foldDay(ids, slots[day])
	}
	return common, members, nil
}

// foldDay intersects all members' windows for one day, short-circuiting as
// soon as the running set empties. Any member with no declared window
// forces the day empty.
func foldDay(memberIDs []string, byMember map[string][]Interval) []Interval {
	for _, id := range memberIDs {
		if len(byMember[id]) == 0 {
			return nil
		}
	}

	running := byMember[memberIDs[0]]
	for _, id := range memberIDs[1:] {
		running = Intersect(running, byMember[id])
		if len(running) == 0 {
			return nil
		}
	}
	return running
}

// PlayerSchedule returns one person's declared week. All 7 days are always
// present as keys; an unregistered or silent person yields all-empty, not
// an error.
func (p *Planner) PlayerSchedule(ctx context.Context, discordID string) (map[int][]Interval, error) {
	rows, err := p.db.GetPlayerAvailability(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("error fetching availability: %w", err)
	}

	week := make(map[int][]Interval, 7)
	for day := 0; day < 7; day++ {
		week[day] = nil
	}
	for _, r := range rows {
		if r.Day < 0 || r.Day > 6 {
			continue
		}
		week[r.Day] = append(week[r.Day], Interval{Start: r.StartHour, End: r.EndHour})
	}
	return week, nil
}
