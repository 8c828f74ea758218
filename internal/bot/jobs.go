package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"scrimbot/internal/db"
	"scrimbot/internal/schedule"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Job timings, server-local.
const (
	dailyPurgeSpec      = "0 0 * * *" // every midnight
	weeklyBroadcastSpec = "0 12 * * 1" // Monday noon
	weeklyReminderSpec  = "0 18 * * 0" // Sunday evening
)

// Jobs owns the periodic work: the daily availability purge that makes the
// week roll, the weekly common-availability broadcast and the weekly
// reminder to silent players. Each job is constructed with its store and
// notifier up front; nothing is attached after the fact.
type Jobs struct {
	db       *db.DB
	planner  *schedule.Planner
	notifier Notifier
	cron     *cron.Cron
}

func NewJobs(database *db.DB, planner *schedule.Planner, notifier Notifier) *Jobs {
	return &Jobs{
		db:       database,
		planner:  planner,
		notifier: notifier,
		cron:     cron.New(),
	}
}

func (j *Jobs) Start() {
	register := func(spec string, name string, run func()) {
		if _, err := j.cron.AddFunc(spec, run); err != nil {
			log.Printf("Failed to register %s job: %v", name, err)
			return
		}
		log.Printf("%s job registered (%s)", name, spec)
	}
	register(dailyPurgeSpec, "daily purge", j.runDailyPurge)
	register(weeklyBroadcastSpec, "weekly broadcast", j.runWeeklyBroadcast)
	register(weeklyReminderSpec, "weekly reminder", j.runWeeklyReminder)
	j.cron.Start()
}

func (j *Jobs) Stop() {
	j.cron.Stop()
}

// runDailyPurge deletes every availability row for the day that has just
// elapsed. Rows for a day index always describe the next upcoming
// occurrence of that weekday, so once the weekday passes they are stale by
// definition and members re-declare for the next cycle.
func (j *Jobs) runDailyPurge() {
	runID := uuid.New()
	ctx := context.Background()

	day := schedule.YesterdayIndex(time.Now())
	n, err := j.db.PurgeAvailabilityForDay(ctx, day)
	if err != nil {
		log.Printf("[purge %s] error purging day %s: %v", runID, schedule.DayName(day), err)
		return
	}
	log.Printf("[purge %s] cleared %d availability rows for %s", runID, n, schedule.DayName(day))

	configs, err := j.db.ListGuildConfigs(ctx)
	if err != nil {
		log.Printf("[purge %s] error listing guild configs: %v", runID, err)
		return
	}
	for _, cfg := range configs {
		if cfg.DefaultChannelID == "" {
			continue
		}
		msg := fmt.Sprintf("Availability for **%s** has been cleared. Declare your hours for next %s with `/availability add`.",
			schedule.DayName(day), schedule.DayName(day))
		if err := j.notifier.SendChannelMessage(cfg.DefaultChannelID, msg); err != nil {
			log.Printf("[purge %s] error notifying guild %s: %v", runID, cfg.GuildID, err)
		}
	}
}

// runWeeklyBroadcast posts every team's common availability to its guild's
// planning channel. One team's failure never stops the rest.
func (j *Jobs) runWeeklyBroadcast() {
	runID := uuid.New()
	ctx := context.Background()

	configs, err := j.db.ListGuildConfigs(ctx)
	if err != nil {
		log.Printf("[broadcast %s] error listing guild configs: %v", runID, err)
		return
	}

	for _, cfg := range configs {
		channelID := cfg.PlanningChannel()
		if channelID == "" {
			continue
		}

		teams, err := j.db.ListTeams(ctx, cfg.GuildID)
		if err != nil {
			log.Printf("[broadcast %s] error listing teams for guild %s: %v", runID, cfg.GuildID, err)
			continue
		}

		for _, team := range teams {
			common, members, err := j.planner.TeamSchedule(ctx, cfg.GuildID, team)
			if err != nil {
				log.Printf("[broadcast %s] error computing schedule for team %s: %v", runID, team, err)
				continue
			}
			if members == nil {
				continue
			}
			// Teams with nothing in common still get an explicit notice
			if err := j.notifier.SendChannelEmbed(channelID, teamScheduleEmbed(team, common)); err != nil {
				log.Printf("[broadcast %s] error posting schedule for team %s: %v", runID, team, err)
			}
		}
	}
}

// runWeeklyReminder DMs every registered person who has declared no
// availability at all. One declared day anywhere is enough to be left
// alone. When a DM fails (closed DMs, left the server) the reminder falls
// back to a mention in the guild's reminder channel, if one is configured.
func (j *Jobs) runWeeklyReminder() {
	runID := uuid.New()
	ctx := context.Background()

	players, err := j.db.PlayersWithoutAvailability(ctx)
	if err != nil {
		log.Printf("[reminder %s] error finding silent players: %v", runID, err)
		return
	}
	if len(players) == 0 {
		return
	}

	channels := make(map[string]string)
	configs, err := j.db.ListGuildConfigs(ctx)
	if err != nil {
		log.Printf("[reminder %s] error listing guild configs: %v", runID, err)
	}
	for _, cfg := range configs {
		channels[cfg.GuildID] = cfg.ReminderChannel()
	}

	const prompt = "Friendly reminder to declare your availability for the coming week with `/availability add`."
	for _, p := range players {
		err := j.notifier.SendDirectMessage(p.DiscordID, fmt.Sprintf("Hi %s! %s", p.Username, prompt))
		if err == nil {
			log.Printf("[reminder %s] reminder sent to %s", runID, p.Username)
			continue
		}
		log.Printf("[reminder %s] could not reach %s: %v", runID, p.Username, err)

		channelID := channels[p.GuildID]
		if channelID == "" {
			continue
		}
		if err := j.notifier.SendChannelMessage(channelID, fmt.Sprintf("<@%s> %s", p.DiscordID, prompt)); err != nil {
			log.Printf("[reminder %s] fallback for %s failed too: %v", runID, p.Username, err)
		}
	}
}
