// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package i18n holds the user-facing strings of the warning surface and the
// status bar in English and Spanish.
//
// Messages are keyed by their English text, as golang.org/x/text/message
// expects. Unknown locales fall back to English.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	WarningTitle    = "Session About to Expire"
	WarningBody     = "Your session is about to expire due to inactivity."
	TimeRemaining   = "Time remaining:"
	WarningQuestion = "Do you want to keep your session active?"
	ContinueButton  = "Yes, continue"
	LogoutButton    = "No, log out"
	Renewing        = "Renewing session..."
	LoggedOut       = "Session ended. You have been logged out."
	StatusIdle      = "Session active"
	StatusWarning   = "Session expiring in %s"
	StatusLoggedOut = "Logged out"
	ThemeChanged    = "Theme: %s"
	HelpHint        = "? help"
	LinePrompt      = "sessionwatch> "
	LineWarning     = "Session expires in %s. Type 'continue' or 'logout'."
)

var spanish = map[string]string{
	WarningTitle:    "Sesión por Expirar",
	WarningBody:     "Tu sesión está a punto de expirar por inactividad.",
	TimeRemaining:   "Tiempo restante:",
	WarningQuestion: "¿Deseas continuar con la sesión activa?",
	ContinueButton:  "Sí, continuar",
	LogoutButton:    "No, cerrar sesión",
	Renewing:        "Renovando sesión...",
	LoggedOut:       "Sesión finalizada. Has cerrado sesión.",
	StatusIdle:      "Sesión activa",
	StatusWarning:   "La sesión expira en %s",
	StatusLoggedOut: "Sesión cerrada",
	ThemeChanged:    "Tema: %s",
	HelpHint:        "? ayuda",
	LinePrompt:      "sessionwatch> ",
	LineWarning:     "La sesión expira en %s. Escribe 'continue' o 'logout'.",
}

var (
	supported = []language.Tag{language.English, language.Spanish}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, es := range spanish {
		b.SetString(language.English, key, key)
		b.SetString(language.Spanish, key, es)
	}
	return b
}

// Supported returns the locales with translations.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Translator formats messages for one locale.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for the closest supported match to locale.
func New(locale string) *Translator {
	tag := Match(locale)
	return &Translator{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messages)),
	}
}

// Match resolves locale ("es-MX", "en_US", "") to a supported tag.
func Match(locale string) language.Tag {
	parsed, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, conf := matcher.Match(parsed)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// Tag returns the resolved locale.
func (t *Translator) Tag() language.Tag {
	return t.tag
}

// T formats the message for key.
func (t *Translator) T(key string, args ...interface{}) string {
	return t.printer.Sprintf(key, args...)
}
