// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// The [App] renders one view per route of the [router.Router]:
//  1. login and register : guest-only forms built from bubbles/textinput
//  2. home : the watchlist as a bubbles/table with an edit mode, deletion, poster refresh and poster preview
//  3. about : the form that creates a new entry
//  4. account : the profile form and logout
//
// The header greets the signed-in user and links the protected views. Views never decide access themselves:
// every navigation goes through the router, and after each update the App switches to whatever route the router
// currently holds, so a logout anywhere lands on the login view.
//
// Network round trips run as [tea.Cmd]s that call a form's Send method. Their outcomes come back as [Msg] values
// and are applied with the matching Complete method inside Update, which is the only place session writes happen.
//
// Navigation uses alt+1..3 and alt+x (logout), since plain keys belong to the focused text input.
// Contextual help is rendered with charmbracelet/bubbles/help.
package ui
