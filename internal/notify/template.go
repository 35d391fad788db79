// Package notify holds the message templating used by reminders. Templates
// are plain strings with {placeholder} markers; substitution is a pure
// function so it can be exercised without any I/O.
package notify

import (
	"fmt"
	"strings"

	"github.com/kickoffhq/clubpush/internal/domain/reminder"
	"github.com/kickoffhq/clubpush/internal/domain/session"
)

// Placeholders understood by the default templates. Unknown placeholders in a
// custom template are left verbatim; substitution never fails.
const (
	PlaceholderSport   = "{sport}"
	PlaceholderDate    = "{date}"
	PlaceholderHeure   = "{heure}"
	PlaceholderJoueurs = "{joueurs}"
)

const (
	DefaultReminderTemplate       = "Rappel : entraînement {sport} le {date} à {heure}. Pense à confirmer ta présence !"
	DefaultMissingPlayersTemplate = "Il manque des joueurs pour l'entraînement {sport} du {date} à {heure} ({joueurs} inscrits). Inscris-toi !"
	DefaultDayBeforeTemplate      = "C'est demain : entraînement {sport} le {date} à {heure}. À ne pas manquer !"

	ReminderTitle       = "Rappel d'entraînement"
	MissingPlayersTitle = "Joueurs manquants"
	DayBeforeTitle      = "Entraînement demain"
)

// FormatMessage substitutes the known placeholders of template with the given
// replacements. Placeholders absent from replacements, and anything that is
// not a known placeholder, pass through untouched.
func FormatMessage(template string, replacements map[string]string) string {
	if len(replacements) == 0 {
		return template
	}
	pairs := make([]string, 0, len(replacements)*2)
	for k, v := range replacements {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// SessionReplacements builds the placeholder values for one session.
func SessionReplacements(s *session.Session) map[string]string {
	return map[string]string{
		PlaceholderSport:   s.Sport,
		PlaceholderDate:    s.StartsAt.Format("02/01/2006"),
		PlaceholderHeure:   s.StartsAt.Format("15h04"),
		PlaceholderJoueurs: fmt.Sprintf("%d", s.PlayerCount()),
	}
}

// ForBand selects the template and title for a session and band outcome. The
// session's own template wins over the default when it defines one.
func ForBand(s *session.Session, band reminder.Band, enoughPlayers bool) (title, template string) {
	switch band {
	case reminder.BandDayBefore:
		title, template = DayBeforeTitle, DefaultDayBeforeTemplate
		if s.DayBeforeTemplate != "" {
			template = s.DayBeforeTemplate
		}
	case reminder.BandWeekBefore:
		if enoughPlayers {
			title, template = ReminderTitle, DefaultReminderTemplate
			if s.ReminderTemplate != "" {
				template = s.ReminderTemplate
			}
		} else {
			title, template = MissingPlayersTitle, DefaultMissingPlayersTemplate
			if s.MissingPlayersTemplate != "" {
				template = s.MissingPlayersTemplate
			}
		}
	}
	return title, template
}
