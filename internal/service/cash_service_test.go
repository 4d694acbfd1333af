package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/api"
)

func TestCashBook(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := signup(t, env, "alice")
	bob := signup(t, env, "bob")

	resp, err := env.cash.AddCash(ctx, authed(alice, &api.AddCashRequest{
		Name: "Rahim", OwedToMe: dec("500"),
	}))
	if err != nil {
		t.Fatalf("AddCash failed: %v", err)
	}
	entry := resp.Msg.Entry
	if entry.ID == "" || entry.Name != "Rahim" || !entry.OwedToMe.Equal(dec("500")) || !entry.OwedToThem.IsZero() {
		t.Errorf("entry = %+v", entry)
	}

	t.Run("validation", func(t *testing.T) {
		_, err := env.cash.AddCash(ctx, authed(alice, &api.AddCashRequest{Name: " "}))
		wantCode(t, err, connect.CodeInvalidArgument)

		_, err = env.cash.AddCash(ctx, authed(alice, &api.AddCashRequest{Name: "Karim", OwedToThem: dec("-1")}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("partial update", func(t *testing.T) {
		owed := dec("120")
		resp, err := env.cash.UpdateCash(ctx, authed(alice, &api.UpdateCashRequest{EntryID: entry.ID, OwedToThem: &owed}))
		if err != nil {
			t.Fatalf("UpdateCash failed: %v", err)
		}
		got := resp.Msg.Entry
		if got.Name != "Rahim" || !got.OwedToMe.Equal(dec("500")) || !got.OwedToThem.Equal(dec("120")) {
			t.Errorf("entry = %+v", got)
		}
	})

	t.Run("entries are private", func(t *testing.T) {
		resp, err := env.cash.ListCash(ctx, authed(bob, &api.ListCashRequest{}))
		if err != nil {
			t.Fatalf("ListCash failed: %v", err)
		}
		if len(resp.Msg.Entries) != 0 {
			t.Errorf("bob sees %+v", resp.Msg.Entries)
		}

		name := "Mine"
		_, err = env.cash.UpdateCash(ctx, authed(bob, &api.UpdateCashRequest{EntryID: entry.ID, Name: &name}))
		wantCode(t, err, connect.CodeNotFound)
	})

	t.Run("list", func(t *testing.T) {
		resp, err := env.cash.ListCash(ctx, authed(alice, &api.ListCashRequest{}))
		if err != nil {
			t.Fatalf("ListCash failed: %v", err)
		}
		if len(resp.Msg.Entries) != 1 || resp.Msg.Entries[0].ID != entry.ID {
			t.Errorf("entries = %+v", resp.Msg.Entries)
		}
	})
}
