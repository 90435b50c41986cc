package notifications

import (
	"fmt"
	"time"

	"github.com/okestore/storefront-sync/pkg/models"
)

// DayLayout matches the calendar-day string earlier clients wrote to the marker key.
const DayLayout = "Mon Jan 02 2006"

// Template is the content of one automated daily notification.
type Template struct {
	Icon    string
	Title   string
	Message string
}

// DefaultTemplates rotate by day of month.
var DefaultTemplates = []Template{
	{Icon: "💰", Title: "Start earning", Message: "Resell our premium e-books and start your online business today."},
	{Icon: "📦", Title: "New stock alert", Message: "Fresh arrivals in accessories and footwear are in the store."},
	{Icon: "🎓", Title: "Build a skill", Message: "Repair master courses have been updated."},
	{Icon: "⚡", Title: "Limited time offer", Message: "Today's orders come with a free e-book coupon at checkout."},
	{Icon: "📢", Title: "Digital library", Message: "Over 100 PDFs now available on your phone."},
}

// dailyFor builds the notification for the calendar day of now.
func dailyFor(templates []Template, now time.Time) models.Notification {
	selected := templates[now.Day()%len(templates)]
	return models.Notification{
		ID:        fmt.Sprintf("daily-%d", now.UnixMilli()),
		Icon:      selected.Icon,
		Title:     selected.Title,
		Message:   selected.Message,
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}
