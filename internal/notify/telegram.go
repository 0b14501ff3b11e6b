package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"hotelier/internal/domain"
	"hotelier/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ManagerNotifier pushes booking events to the managers' telegram chats.
// Delivery is best effort; a failed send is logged and dropped, never
// retried, so a telegram outage cannot back-pressure bookings.
type ManagerNotifier struct {
	sender domain.TelegramSender
	chats  []int64
	log    zerolog.Logger
}

func NewManagerNotifier(sender domain.TelegramSender, chats []int64, logger *zerolog.Logger) *ManagerNotifier {
	return &ManagerNotifier{
		sender: sender,
		chats:  chats,
		log:    logger.With().Str("component", "notify").Logger(),
	}
}

// SubscribeTo registers the notifier on the event bus.
func (n *ManagerNotifier) SubscribeTo(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleBookingCreated)
}

func (n *ManagerNotifier) handleBookingCreated(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.log.Error().Err(err).Msg("failed to decode booking event")
		return err
	}

	rooms := make([]string, 0, len(payload.RoomNumbers))
	for _, num := range payload.RoomNumbers {
		rooms = append(rooms, fmt.Sprintf("%d", num))
	}

	text := fmt.Sprintf(
		"New booking %s\n%s at %s\nRooms: %s\n%s - %s\nTotal: %.2f",
		payload.Reference,
		payload.CustomerName,
		payload.HotelName,
		strings.Join(rooms, ", "),
		payload.StartDate.Format("2006-01-02"),
		payload.EndDate.Format("2006-01-02"),
		payload.TotalPrice,
	)

	for _, chatID := range n.chats {
		if _, err := n.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			n.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to notify manager")
		}
	}
	return nil
}
