// Package cli provides the interactive FlowCross account client.
//
// It wires configuration, storage, the account and profile services, the
// notification sink and the optional Kafka session feed, then runs a REPL.
//
// Key features:
//   - Register / Login / Quick login / Logout
//   - Profile editing, avatars, verification channels
//   - Theme and background selection
//   - Account sections and derived activity stats
//   - A full-screen dashboard (bubbletea)
//
// Errors from any command are shown as destructive notifications; the REPL
// keeps running. Start it with App.Run(ctx), which blocks until the user
// exits.
package cli
