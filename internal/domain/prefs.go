package domain

import (
	"context"
	"fmt"
)

// Preference keys are namespaced per user: hint.<user> records that the
// one-time onboarding hint was sent, optout.<user> records an opt-out.

func hintKey(userID string) string   { return "hint." + userID }
func optoutKey(userID string) string { return "optout." + userID }

// HasHinted reports whether the onboarding hint was already sent to a user.
func HasHinted(ctx context.Context, store PreferenceStore, userID string) (bool, error) {
	_, ok, err := store.Get(ctx, hintKey(userID))
	if err != nil {
		return false, fmt.Errorf("get hint flag: %w", err)
	}
	return ok, nil
}

// MarkHinted records that the onboarding hint was sent. Idempotent.
func MarkHinted(ctx context.Context, store PreferenceStore, userID string) error {
	if err := store.Set(ctx, hintKey(userID), "1"); err != nil {
		return fmt.Errorf("set hint flag: %w", err)
	}
	return nil
}

// IsOptedOut reports whether a user has opted out of public replies.
func IsOptedOut(ctx context.Context, store PreferenceStore, userID string) (bool, error) {
	_, ok, err := store.Get(ctx, optoutKey(userID))
	if err != nil {
		return false, fmt.Errorf("get optout flag: %w", err)
	}
	return ok, nil
}

// OptOut records a user's opt-out. Idempotent.
func OptOut(ctx context.Context, store PreferenceStore, userID string) error {
	if err := store.Set(ctx, optoutKey(userID), "1"); err != nil {
		return fmt.Errorf("set optout flag: %w", err)
	}
	return nil
}

// OptIn clears a user's opt-out. Idempotent.
func OptIn(ctx context.Context, store PreferenceStore, userID string) error {
	if err := store.Delete(ctx, optoutKey(userID)); err != nil {
		return fmt.Errorf("delete optout flag: %w", err)
	}
	return nil
}
