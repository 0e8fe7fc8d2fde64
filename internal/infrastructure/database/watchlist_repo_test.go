package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/testutil"
)

func TestWatchlistRepo(t *testing.T) {
	repo := NewWatchlistRepo(newTestDB(t).DB())
	ctx := context.Background()

	btc := testutil.CreateTestWatchlistItem(testutil.BitcoinID)
	eth := testutil.CreateTestWatchlistItem(testutil.EthereumID)
	eth.AddedAt = btc.AddedAt.Add(time.Minute)

	if err := repo.Add(ctx, &btc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Add(ctx, &eth); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("duplicate coin", func(t *testing.T) {
		dup := testutil.CreateTestWatchlistItem(testutil.BitcoinID)
		dup.ID = "99999999-9999-9999-9999-999999999999"
		if err := repo.Add(ctx, &dup); !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("expected ErrDuplicateEntry, got %v", err)
		}
	})

	t.Run("most recent first", func(t *testing.T) {
		items, err := repo.FindByUser(ctx, testutil.AliceUserID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 2 || items[0].CoinID != testutil.EthereumID {
			t.Errorf("expected ethereum first, got %+v", items)
		}
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.Exists(ctx, testutil.AliceUserID, testutil.BitcoinID)
		if err != nil || !ok {
			t.Errorf("expected bitcoin to be watched, got %v (%v)", ok, err)
		}
		ok, err = repo.Exists(ctx, testutil.BobUserID, testutil.BitcoinID)
		if err != nil || ok {
			t.Errorf("expected bob to watch nothing, got %v (%v)", ok, err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := repo.Remove(ctx, testutil.AliceUserID, testutil.BitcoinID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		err := repo.Remove(ctx, testutil.AliceUserID, testutil.BitcoinID)
		if !errors.Is(err, apperrors.ErrWatchlistItemNotFound) {
			t.Errorf("expected ErrWatchlistItemNotFound, got %v", err)
		}
	})
}
