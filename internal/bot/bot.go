package bot

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"scrimbot/internal/config"
	"scrimbot/internal/db"
	"scrimbot/internal/schedule"

	"github.com/bwmarrin/discordgo"
)

var (
	dmAllowedCommands = map[string]bool{
		"help": true, // Keep only essential commands in DMs
	}
)

type Bot struct {
	config     *config.Config
	db         *db.DB
	planner    *schedule.Planner
	session    *discordgo.Session
	jobs       *Jobs
	shutdownCh chan struct{}
	isShutdown bool
	mu         sync.Mutex
	wg         sync.WaitGroup
}

func New(cfg *config.Config, database *db.DB) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages

	// Required permissions for visibility
	requiredPermissions := int64(
		discordgo.PermissionViewChannel |
			discordgo.PermissionSendMessages |
			discordgo.PermissionReadMessageHistory |
			discordgo.PermissionUseSlashCommands)

	cfg.Discord.Permissions = requiredPermissions

	log.Printf("Bot intents: %d", session.Identify.Intents)
	log.Printf("Bot permissions: %d", cfg.Discord.Permissions)

	planner := schedule.NewPlanner(database)
	bot := &Bot{
		config:     cfg,
		db:         database,
		planner:    planner,
		session:    session,
		shutdownCh: make(chan struct{}),
		isShutdown: false,
	}
	bot.jobs = NewJobs(database, planner, &discordNotifier{session: session})
	return bot, nil
}

// Helper function to register commands for a guild
func (b *Bot) registerGuildCommands(guildID string) error {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := b.registerGuildCommandsOnce(guildID)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("Attempt %d to register commands failed: %v", i+1, err)
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return fmt.Errorf("failed to register commands after %d attempts: %v", maxRetries, lastErr)
}

func (b *Bot) registerGuildCommandsOnce(guildID string) error {
	serverName := getServerName(b.session, guildID)

	log.Printf(formatLogMessage(guildID, "Registering commands", "BOT", serverName))

	// Clear existing commands
	existing, err := b.session.ApplicationCommands(b.config.Discord.ClientID, guildID)
	if err != nil {
		return fmt.Errorf("error getting existing commands: %w", err)
	}

	for _, v := range existing {
		err := b.session.ApplicationCommandDelete(b.config.Discord.ClientID, guildID, v.ID)
		if err != nil {
			log.Printf(formatLogMessage(guildID,
				fmt.Sprintf("%s: Failed to delete command (%v)", v.Name, err), "BOT", serverName))
		} else {
			log.Printf(formatLogMessage(guildID,
				fmt.Sprintf("%s: Successfully removed command", v.Name), "BOT", serverName))
		}
	}

	// Wait a moment to ensure all deletions are processed
	time.Sleep(time.Second)

	for _, v := range commands {
		_, err := b.session.ApplicationCommandCreate(b.config.Discord.ClientID, guildID, v)
		if err != nil {
			return fmt.Errorf("error creating command %s: %w", v.Name, err)
		}
		log.Printf(formatLogMessage(guildID,
			fmt.Sprintf("%s: Registered command", v.Name), "BOT", serverName))
	}

	return nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.Println("Starting scrimbot...")

	// Keep trying to connect until successful
	for {
		log.Println("Testing Discord API connection...")
		if _, err := b.session.User("@me"); err != nil {
			log.Printf("Failed to connect to Discord API: %v. Retrying in 5 seconds...", err)
			time.Sleep(5 * time.Second)
			continue
		}
		log.Println("Successfully connected to Discord API")
		break
	}

	// Keep trying to open session until successful
	for {
		if err := b.session.Open(); err != nil {
			log.Printf("Error opening Discord session: %v. Retrying in 5 seconds...", err)
			time.Sleep(5 * time.Second)
			continue
		}
		log.Printf("Session opened successfully (Session ID: %s)", b.session.State.SessionID)
		break
	}

	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type == discordgo.InteractionApplicationCommand {
			b.handleCommand(s, i)
		}
	})

	log.Println("Force re-registering commands for all guilds...")
	for _, guild := range b.session.State.Guilds {
		if err := b.registerGuildCommands(guild.ID); err != nil {
			log.Printf("Error registering commands for guild %s: %v", guild.ID, err)
		}
	}

	// Now add the guild create handler for future guilds
	b.session.AddHandler(b.handleGuildCreate)

	// Periodic jobs: daily purge, weekly broadcast, weekly reminder
	b.jobs.Start()

	log.Println("Bot is now running. Press CTRL-C to exit.")

	<-ctx.Done()
	return b.Shutdown()
}

// Shutdown performs a graceful shutdown of the bot
func (b *Bot) Shutdown() error {
	log.Println("Initiating graceful shutdown...")

	// Ensure we only close the channel once
	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		return nil
	}
	b.isShutdown = true
	close(b.shutdownCh)
	b.mu.Unlock()

	b.jobs.Stop()

	// Wait for all handlers to complete
	log.Println("Waiting for active handlers to complete...")
	b.wg.Wait()

	log.Printf(formatLogMessage("", "Removing Discord commands", "BOT", ""))

	for _, guild := range b.session.State.Guilds {
		serverName := getServerName(b.session, guild.ID)

		log.Printf(formatLogMessage(guild.ID, "Removing commands", "BOT", serverName))

		registeredCommands, err := b.session.ApplicationCommands(b.config.Discord.ClientID, guild.ID)
		if err != nil {
			log.Printf(formatLogMessage(guild.ID, fmt.Sprintf("Error getting commands: %v", err), "BOT", serverName))
			continue
		}
		for _, cmd := range registeredCommands {
			err := b.session.ApplicationCommandDelete(b.config.Discord.ClientID, guild.ID, cmd.ID)
			if err != nil {
				log.Printf(formatLogMessage(guild.ID, fmt.Sprintf("%s: Failed to remove command (%v)", cmd.Name, err), "BOT", serverName))
			} else {
				log.Printf(formatLogMessage(guild.ID, fmt.Sprintf("%s: Successfully removed command", cmd.Name), "BOT", serverName))
			}
		}
	}

	log.Println("Closing Discord session...")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing Discord session: %w", err)
	}

	log.Println("Closing database connection...")
	b.db.Close()

	log.Println("Shutdown completed successfully")
	return nil
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Bot is ready! Connected to %d guilds", len(r.Guilds))

	// Initialize settings for all current guilds
	for _, guild := range r.Guilds {
		log.Printf("Initializing config for guild: %s", guild.ID)
		if _, err := b.db.GetOrCreateGuildConfig(context.Background(), guild.ID); err != nil {
			log.Printf("Error initializing config for guild %s: %v", guild.ID, err)
		}
	}
}

func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf(formatLogMessage(g.ID, "Bot joined new guild", "BOT", g.Name))

	if _, err := b.db.GetOrCreateGuildConfig(context.Background(), g.ID); err != nil {
		log.Printf(formatLogMessage(g.ID, fmt.Sprintf("Error initializing config: %v", err), "BOT", g.Name))
	}

	if err := b.registerGuildCommands(g.ID); err != nil {
		log.Printf(formatLogMessage(g.ID, fmt.Sprintf("Error registering commands: %v", err), "BOT", g.Name))
	} else {
		log.Printf(formatLogMessage(g.ID, "Successfully registered all commands", "BOT", g.Name))
	}
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Catch panics with a stack trace so a bad command never takes the bot down
	defer func() {
		if r := recover(); r != nil {
			var username, where string
			if i.Member != nil && i.Member.User != nil {
				username = i.Member.User.Username
				where = fmt.Sprintf("guild ID %s", i.GuildID)
			} else if i.User != nil {
				username = i.User.Username
				where = "DM"
			} else {
				username = "unknown"
				where = "unknown context"
			}

			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			log.Printf("Panic in command handler for user %s in %s:\nError: %v\nStack Trace:\n%s",
				username, where, r, string(buf[:n]))

			respondWithError(s, i, "An internal error occurred")
		}
	}()

	commandName := i.ApplicationCommandData().Name

	// Strict DM check
	if i.GuildID == "" {
		if !dmAllowedCommands[commandName] {
			respondWithError(s, i, fmt.Sprintf("The `/%s` command can only be used in a server", commandName))
			return
		}
	}

	switch commandName {
	case "addplayer":
		b.handleAddPlayer(s, i)
	case "removeplayer":
		b.handleRemovePlayer(s, i)
	case "players":
		b.handlePlayers(s, i)
	case "availability":
		b.handleAvailability(s, i)
	case "schedule":
		b.handleSchedule(s, i)
	case "sessions":
		b.handleSessions(s, i)
	case "cancelsession":
		b.handleCancelSession(s, i)
	case "setchannel":
		b.handleSetChannel(s, i)
	case "setadminrole":
		b.handleSetAdminRole(s, i)
	case "help":
		b.handleHelp(s, i)
	case "info":
		b.handleInfo(s, i)
	case "report":
		b.handleReport(s, i)
	default:
		log.Printf(formatLogMessage(i.GuildID, "Unknown command: "+commandName, "", ""))
		respondWithError(s, i, "Unknown command")
	}
}
