// Package state provides a lightweight FSM/session manager for Telegram bots.
// Sessions expire after a configurable TTL so abandoned conversations do not
// pin their drafts forever.
package state
