package database

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *LocalStore {
	t.Helper()
	t.Setenv("APPDATA", t.TempDir())
	store, err := Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestKVRoundtrip(t *testing.T) {
	store := openTestStore(t)

	if err := store.SetValue(KeyOutletID, "3"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	got, err := store.GetValue(KeyOutletID)
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if got != "3" {
		t.Errorf("GetValue = %q, want %q", got, "3")
	}

	// Overwrite, last writer wins
	if err := store.SetValue(KeyOutletID, "5"); err != nil {
		t.Fatalf("SetValue overwrite: %v", err)
	}
	got, _ = store.GetValue(KeyOutletID)
	if got != "5" {
		t.Errorf("after overwrite = %q, want %q", got, "5")
	}
}

func TestMissingKeyIsEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetValue("never_written")
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if got != "" {
		t.Errorf("GetValue = %q, want empty", got)
	}
}

func TestDeleteValue(t *testing.T) {
	store := openTestStore(t)

	store.SetValue(KeyUsername, "cashier")
	if err := store.DeleteValue(KeyUsername); err != nil {
		t.Fatalf("DeleteValue: %v", err)
	}
	got, _ := store.GetValue(KeyUsername)
	if got != "" {
		t.Errorf("value survived delete: %q", got)
	}

	// Deleting a missing key is not an error
	if err := store.DeleteValue("never_written"); err != nil {
		t.Errorf("DeleteValue missing key: %v", err)
	}
}

func TestSecretRoundtrip(t *testing.T) {
	store := openTestStore(t)

	if err := store.SetSecret(KeyAccessToken, "tok-abc"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}

	// Stored form must not be the plaintext
	raw, _ := store.GetValue(KeyAccessToken)
	if raw == "tok-abc" {
		t.Error("secret stored in plaintext")
	}

	got, err := store.GetSecret(KeyAccessToken)
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if got != "tok-abc" {
		t.Errorf("GetSecret = %q, want %q", got, "tok-abc")
	}
}
