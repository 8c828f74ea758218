package db

import (
	"context"
	"fmt"

	"scrimbot/internal/db/models"

	"github.com/jackc/pgx/v5"
)

// GetOrCreateGuildConfig retrieves a guild's settings, creating an empty
// row on first contact.
func (db *DB) GetOrCreateGuildConfig(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	query := `
		SELECT guild_id, default_channel_id, planning_channel_id, reminder_channel_id, admin_role_id, report_channel_id
		FROM guild_configs
		WHERE guild_id = $1`

	cfg := &models.GuildConfig{}
	err := db.Pool.QueryRow(ctx, query, guildID).Scan(
		&cfg.GuildID,
		&cfg.DefaultChannelID,
		&cfg.PlanningChannelID,
		&cfg.ReminderChannelID,
		&cfg.AdminRoleID,
		&cfg.ReportChannelID,
	)

	if err == pgx.ErrNoRows {
		cfg = &models.GuildConfig{GuildID: guildID}
		_, err = db.Pool.Exec(ctx,
			`INSERT INTO guild_configs (guild_id) VALUES ($1)`, guildID)
		if err != nil {
			return nil, fmt.Errorf("error creating guild config: %w", err)
		}
		return cfg, nil
	}

	if err != nil {
		return nil, fmt.Errorf("error getting guild config: %w", err)
	}

	return cfg, nil
}

// SetGuildChannel points one notification kind ("planning", "reminders",
// "report") at a channel. Kind "global" resets default, planning and
// reminders to the same channel.
func (db *DB) SetGuildChannel(ctx context.Context, guildID, kind, channelID string) error {
	if _, err := db.GetOrCreateGuildConfig(ctx, guildID); err != nil {
		return err
	}

	var query string
	switch kind {
	case "global":
		query = `
			UPDATE guild_configs
			SET default_channel_id = $1, planning_channel_id = $1, reminder_channel_id = $1
			WHERE guild_id = $2`
	case "planning":
		query = `UPDATE guild_configs SET planning_channel_id = $1 WHERE guild_id = $2`
	case "reminders":
		query = `UPDATE guild_configs SET reminder_channel_id = $1 WHERE guild_id = $2`
	case "report":
		query = `UPDATE guild_configs SET report_channel_id = $1 WHERE guild_id = $2`
	default:
		return fmt.Errorf("unknown channel kind: %s", kind)
	}

	_, err := db.Pool.Exec(ctx, query, channelID, guildID)
	return err
}

// SetGuildAdminRole records the role allowed to run management commands.
func (db *DB) SetGuildAdminRole(ctx context.Context, guildID, roleID string) error {
	if _, err := db.GetOrCreateGuildConfig(ctx, guildID); err != nil {
		return err
	}

	_, err := db.Pool.Exec(ctx,
		`UPDATE guild_configs SET admin_role_id = $1 WHERE guild_id = $2`,
		roleID, guildID)
	return err
}

// ListGuildConfigs retrieves every configured guild, for the periodic jobs
// to iterate.
func (db *DB) ListGuildConfigs(ctx context.Context) ([]*models.GuildConfig, error) {
	query := `
		SELECT guild_id, default_channel_id, planning_channel_id, reminder_channel_id, admin_role_id, report_channel_id
		FROM guild_configs
		ORDER BY guild_id`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.GuildConfig
	for rows.Next() {
		cfg := &models.GuildConfig{}
		err := rows.Scan(
			&cfg.GuildID,
			&cfg.DefaultChannelID,
			&cfg.PlanningChannelID,
			&cfg.ReminderChannelID,
			&cfg.AdminRoleID,
			&cfg.ReportChannelID,
		)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}
