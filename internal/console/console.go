// Package console assembles the client core for one signed-in user.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"labbooking/config"
	"labbooking/internal/adapters/api"
	"labbooking/internal/adapters/auth"
	"labbooking/internal/domain"
	"labbooking/internal/i18n"
	"labbooking/internal/services"
)

// Console is the wired set of components a UI session works with.
// The event list and tracker belong to this session only.
type Console struct {
	Config       *config.Config
	Logger       *slog.Logger
	Viewer       domain.Viewer
	API          *api.Client
	Tracker      *services.Tracker
	Events       *services.EventList
	Orchestrator *services.Orchestrator
	Messages     *i18n.Translator
}

// New builds a Console for the user behind tokens. A nil logger is built from cfg.
func New(ctx context.Context, cfg *config.Config, tokens domain.TokenSource, logger *slog.Logger) (*Console, error) {
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	token, err := tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationRequired, err)
	}
	viewer, err := auth.ViewerFromToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationRequired, err)
	}
	logger = logger.With("user_id", viewer.UserID, "role", string(viewer.Role))

	httpClient := &http.Client{Transport: api.NewLoggingTransport(nil, logger)}
	client := api.NewClient(cfg.APIBaseURL, httpClient, auth.NewSharedRefresh(tokens, logger), cfg.RequestTimeout, logger)

	tracker := services.NewTracker(client, logger)
	events := services.NewEventList(client, tracker, viewer, cfg.PageSize, logger)

	return &Console{
		Config:       cfg,
		Logger:       logger,
		Viewer:       viewer,
		API:          client,
		Tracker:      tracker,
		Events:       events,
		Orchestrator: services.NewOrchestrator(client, client, events, tracker, logger),
		Messages:     i18n.NewTranslator(cfg.Locale, logger),
	}, nil
}

// Describe returns the message to show for err in the configured locale.
func (c *Console) Describe(err error) string {
	return c.Messages.Describe(c.Config.Locale, err)
}

// RoomsBanner returns the "N rooms" label for q, or "" when the queue spans a single room.
func (c *Console) RoomsBanner(q *services.ApprovalQueue) string {
	if !q.ShowRoomBanner() {
		return ""
	}
	return c.Messages.RoomsBanner(c.Config.Locale, q.RoomCount())
}
