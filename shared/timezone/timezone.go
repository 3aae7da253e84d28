// Package timezone renders and stamps times in the zone configured by APP_TIMEZONE
// (an IANA name such as "Asia/Jakarta"). Todo dates are stored as timestamptz and
// only converted here, on the way out.
package timezone

import (
	"sync"
	"taskboard/config"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	once        sync.Once
	appLocation *time.Location
)

func location() *time.Location {
	once.Do(func() {
		appLocation = Load(config.Get().App.Timezone)
	})

	return appLocation
}

// Load resolves name, falling back to UTC when it is empty or unknown.
func Load(name string) *time.Location {
	if name == "" {
		log.Warn().Msg("No timezone configured, using UTC as default")

		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Failed to load timezone, falling back to UTC")

		return time.UTC
	}

	log.Info().Str("timezone", loc.String()).Msg("Application timezone initialized")

	return loc
}

// Now returns the current time in the application timezone.
func Now() time.Time {
	return time.Now().In(location())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(location())
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// FormatPtr formats an optional timestamp such as a todo's start or due date.
// A nil time stays nil.
func FormatPtr(t *time.Time, layout string) *string {
	if t == nil {
		return nil
	}

	formatted := Format(*t, layout)

	return &formatted
}
